package service

import (
	"fmt"
	"strings"

	"dex_trader/internal/helper"
)

func (t *Telegram) handleCommand(cmd, args string) string {
	switch cmd {
	case "status":
		positions := t.reader()
		if positions == nil {
			return "📭 Открытой позиции нет"
		}
		p, ok := positions.Position()
		if !ok {
			return "📭 Открытой позиции нет"
		}
		return formatPosition(p)

	case "blacklist":
		addr := strings.TrimSpace(args)
		if !helper.IsSolanaAddress(addr) {
			return "❗️ Формат: /blacklist <адрес токена>"
		}
		if t.blacklist.IsBlacklisted(addr) {
			return fmt.Sprintf("%s уже в блеклисте", helper.ShortAddr(addr))
		}
		t.blacklist.Add(addr)
		return fmt.Sprintf("⛔️ %s добавлен в блеклист", helper.ShortAddr(addr))

	default:
		return "Команды:\n/status - текущая позиция\n/blacklist <адрес> - не покупать токен"
	}
}
