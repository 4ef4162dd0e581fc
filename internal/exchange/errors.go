package exchange

import "github.com/pkg/errors"

var (
	// ErrSwapFailed: транзакция однозначно не прошла.
	ErrSwapFailed = errors.New("swap failed")
	// ErrUnconfirmed: статус транзакции так и не удалось выяснить.
	ErrUnconfirmed = errors.New("swap confirmation unknown")
	// ErrSourceDisabled: источник данных не настроен (нет ключа и т.п.).
	ErrSourceDisabled = errors.New("data source disabled")
)
