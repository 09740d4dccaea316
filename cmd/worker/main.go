package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wacrm/whatsapp-crm-backend/internal/config"
	"github.com/wacrm/whatsapp-crm-backend/internal/db"
	"github.com/wacrm/whatsapp-crm-backend/internal/dispatch"
	"github.com/wacrm/whatsapp-crm-backend/internal/models"
	"github.com/wacrm/whatsapp-crm-backend/internal/queue"
	"github.com/wacrm/whatsapp-crm-backend/internal/repository"
	"github.com/wacrm/whatsapp-crm-backend/internal/scheduler"
	"github.com/wacrm/whatsapp-crm-backend/internal/service"
	"github.com/wacrm/whatsapp-crm-backend/internal/settings"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	logger.Info("starting campaign dispatch worker")

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	database, err := db.New(db.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		logger.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.Close()

	logger.Info("connected to database")

	queueClient, err := queue.NewRedisClient(queue.RedisConfig{
		URL:       cfg.Queue.RedisURL,
		QueueName: cfg.Queue.QueueName,
	}, logger)
	if err != nil {
		logger.Error("failed to connect to Redis", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer queueClient.Close()

	redisOpts, err := redis.ParseURL(cfg.Queue.RedisURL)
	if err != nil {
		logger.Error("failed to parse Redis URL", slog.String("error", err.Error()))
		os.Exit(1)
	}
	settingsClient := redis.NewClient(redisOpts)
	defer settingsClient.Close()

	settingsStore := settings.NewRedisStore(settingsClient, cfg.Dispatcher.DefaultSendDelay)

	// Repositories
	contactRepo := repository.NewContactRepository(database.DB)
	campaignRepo := repository.NewCampaignRepository(database.DB)
	templateRepo := repository.NewTemplateRepository(database.DB)

	templateSvc := service.NewTemplateService(templateRepo, logger)

	// One pacer per process: all campaigns share the same WhatsApp
	// connection, so rate and concurrency ceilings are global.
	pacer := dispatch.NewPacer(cfg.Dispatcher.DefaultSendDelay, cfg.Dispatcher.MaxInFlight)

	gateway := dispatch.NewMockGateway(0.92)

	dispatcher := dispatch.NewDispatcher(
		campaignRepo,
		contactRepo,
		templateRepo,
		templateSvc,
		gateway,
		pacer,
		cfg.Dispatcher.SendTimeout,
		logger,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Scheduled campaigns become launch jobs when their send time arrives.
	campaignScheduler := scheduler.New(campaignRepo, queueClient, cfg.Scheduler.PollInterval, logger)
	go campaignScheduler.Run(ctx)

	consumerErrors := make(chan error, 1)
	go func() {
		handler := func(ctx context.Context, job *models.LaunchJob) error {
			// Pick up the operator's current bot delay before each launch.
			if delay, err := settingsStore.SendDelay(ctx); err != nil {
				logger.Warn("failed to read send delay, keeping current pacing",
					slog.String("error", err.Error()),
				)
			} else {
				pacer.SetInterval(delay)
			}

			return dispatcher.Launch(ctx, job.CampaignID)
		}

		consumerErrors <- queueClient.Consume(ctx, handler, 2)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-consumerErrors:
		if err != nil && err != context.Canceled {
			logger.Error("consumer error", slog.String("error", err.Error()))
			os.Exit(1)
		}

	case sig := <-quit:
		logger.Info("shutting down worker", slog.String("signal", sig.String()))

		cancel()

		// Give in-flight sends time to settle before exiting.
		time.Sleep(5 * time.Second)

		logger.Info("worker stopped gracefully")
	}
}
