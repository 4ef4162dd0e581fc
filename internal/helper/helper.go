package helper

import (
	"github.com/mr-tron/base58"
)

const solanaPubkeyLen = 32

// IsSolanaAddress: base58 строка, декодирующаяся ровно в 32 байта.
func IsSolanaAddress(s string) bool {
	if len(s) < 32 || len(s) > 44 {
		return false
	}
	b, err := base58.Decode(s)
	return err == nil && len(b) == solanaPubkeyLen
}

// ShortAddr: "AbCd…WxYz" для сообщений и логов.
func ShortAddr(s string) string {
	if len(s) <= 10 {
		return s
	}
	return s[:4] + "…" + s[len(s)-4:]
}

// PctBelow: на сколько процентов price ниже ref.
func PctBelow(ref, price float64) float64 {
	if ref <= 0 {
		return 0
	}
	return (ref - price) / ref * 100
}
