package service

import (
	"context"
	"fmt"
	"sync"

	"dex_trader/internal/models"
	"dex_trader/internal/modules/config"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type PositionReader interface {
	Position() (models.Position, bool)
}

type BlacklistEditor interface {
	IsBlacklisted(address string) bool
	Add(address string)
}

// Telegram: уведомления в один чат и пара команд оттуда же.
type Telegram struct {
	bot    *tgbot.BotAPI
	chatID int64
	log    *zap.Logger

	mu        sync.RWMutex
	positions PositionReader
	blacklist BlacklistEditor
}

func NewTelegram(cfg *config.Config, log *zap.Logger, blacklist BlacklistEditor) (*Telegram, error) {
	b, err := tgbot.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return nil, errors.Wrap(err, "telegram bot api")
	}
	return &Telegram{
		bot:       b,
		chatID:    cfg.Telegram.ChatID,
		log:       log.Named("telegram"),
		blacklist: blacklist,
	}, nil
}

// Attach подключает источник позиции для /status. Отдельно от конструктора:
// lifecycle сам зависит от нотифайера.
func (t *Telegram) Attach(positions PositionReader) {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.positions = positions
	t.mu.Unlock()
}

// reader читается из горутины long-polling.
func (t *Telegram) reader() PositionReader {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.positions
}

func (t *Telegram) Send(msg string) {
	if t == nil || t.bot == nil || t.chatID == 0 {
		return
	}
	if _, err := t.bot.Send(tgbot.NewMessage(t.chatID, msg)); err != nil {
		t.log.Warn("send failed", zap.Error(err))
	}
}

func (t *Telegram) Sendf(format string, args ...any) { t.Send(fmt.Sprintf(format, args...)) }

// Start: long-polling, только команды из нашего чата.
func (t *Telegram) Start(ctx context.Context) {
	if t == nil || t.bot == nil {
		return
	}

	u := tgbot.NewUpdate(0)
	u.Timeout = 30
	u.AllowedUpdates = []string{"message"}

	updates := t.bot.GetUpdatesChan(u)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case upd, ok := <-updates:
				if !ok {
					return
				}
				msg := upd.Message
				if msg == nil || msg.Chat == nil || msg.Chat.ID != t.chatID || !msg.IsCommand() {
					continue
				}
				t.Send(t.handleCommand(msg.Command(), msg.CommandArguments()))
			}
		}
	}()
}

func (t *Telegram) Stop() {
	if t == nil || t.bot == nil {
		return
	}
	t.bot.StopReceivingUpdates()
}
