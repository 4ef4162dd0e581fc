package telegram

import (
	"context"

	"dex_trader/internal/modules/config"
	market "dex_trader/internal/modules/market/service"
	"dex_trader/internal/modules/telegram_bot/service"
	"dex_trader/internal/notify"
	"dex_trader/internal/runner/sessions"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// newNotifier: телеграм, если задан токен, иначе лог.
func newNotifier(cfg *config.Config, log *zap.Logger, bl *market.Blacklist) (*service.Telegram, notify.Notifier, error) {
	if cfg.Telegram.Token == "" {
		log.Warn("telegram token is empty, notifications go to log")
		return nil, notify.NewLog(log), nil
	}
	t, err := service.NewTelegram(cfg, log, bl)
	if err != nil {
		return nil, nil, err
	}
	return t, t, nil
}

func Module() fx.Option {
	return fx.Module("telegram",
		fx.Provide(newNotifier),
		// Запуск основного цикла через Lifecycle
		fx.Invoke(
			func(lc fx.Lifecycle, t *service.Telegram, slot *sessions.Lifecycle) {
				t.Attach(slot)
				lc.Append(fx.Hook{
					OnStart: func(ctx context.Context) error {
						// ctx OnStart короткоживущий, polling живёт до Stop
						t.Start(context.Background())
						return nil
					},
					OnStop: func(ctx context.Context) error {
						t.Stop()
						return nil
					},
				})
			},
		),
	)
}
