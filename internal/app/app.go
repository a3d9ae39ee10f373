package app

import (
	"context"

	"github.com/GioMach/rentwatch/internal/config"
	"github.com/GioMach/rentwatch/internal/delivery/telegram"
	"github.com/GioMach/rentwatch/internal/domain"
	"github.com/GioMach/rentwatch/internal/infra/db"
	"github.com/GioMach/rentwatch/internal/infra/log"
	"github.com/GioMach/rentwatch/internal/usecase"
	"go.uber.org/zap"
)

type App struct {
	bot       *telegram.Bot
	logger    *zap.Logger
	cleanupFn func() error
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	logger, err := log.NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	dbConn, err := db.Open(cfg, logger)
	if err != nil {
		return nil, err
	}

	userRepo := db.NewUserRepository(dbConn)
	eventRepo := db.NewEventRepository(dbConn)
	notificationRepo := db.NewNotificationRepository(dbConn)

	catalog := domain.DefaultCatalog()
	classifier := usecase.NewClassifier(catalog)
	subs := usecase.NewSubscriptionUsecase(userRepo, catalog, cfg.TrialDays, logger)

	api, err := telegram.NewAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, err
	}

	notifier := telegram.NewNotifier(api, logger)
	fanout := usecase.NewFanoutUsecase(userRepo, subs, notificationRepo, notifier, cfg.NotifyMode, logger)
	ingest := usecase.NewIngestUsecase(classifier, eventRepo, fanout, logger)

	payments, err := telegram.NewPayments(cfg.PaymentProviderToken, cfg.SubscriptionPrice, cfg.SubscriptionCurrency)
	if err != nil {
		return nil, err
	}

	handlers := telegram.NewHandlers(subs, ingest, payments, logger)
	bot := telegram.NewBot(api, handlers, cfg.TelegramPollTimeout, logger)

	cleanup := func() error {
		sqlDB, err := dbConn.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}

	return &App{bot: bot, logger: logger, cleanupFn: cleanup}, nil
}

func (a *App) Run(ctx context.Context) error {
	a.logger.Info("rentwatch service started")
	return a.bot.Start(ctx)
}

func (a *App) Shutdown() {
	a.logger.Info("rentwatch service shutting down")
	if a.cleanupFn != nil {
		if err := a.cleanupFn(); err != nil {
			a.logger.Warn("failed to close database", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}
