package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/wacrm/whatsapp-crm-backend/internal/config"
	"github.com/wacrm/whatsapp-crm-backend/internal/db"
	"github.com/wacrm/whatsapp-crm-backend/internal/handler"
	"github.com/wacrm/whatsapp-crm-backend/internal/queue"
	"github.com/wacrm/whatsapp-crm-backend/internal/repository"
	"github.com/wacrm/whatsapp-crm-backend/internal/service"
	"github.com/wacrm/whatsapp-crm-backend/internal/settings"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	logger.Info("starting CRM API server")

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

	// Services
	contactSvc := service.NewContactService(contactRepo, logger)
	templateSvc := service.NewTemplateService(templateRepo, logger)
	campaignSvc := service.NewCampaignService(campaignRepo, templateRepo, queueClient, logger)
	statsSvc := service.NewStatsService(contactRepo, campaignRepo)

	// Handlers
	contactHandler := handler.NewContactHandler(contactSvc, logger)
	campaignHandler := handler.NewCampaignHandler(campaignSvc, logger)
	templateHandler := handler.NewTemplateHandler(templateSvc, logger)
	settingsHandler := handler.NewSettingsHandler(settingsStore, logger)
	statsHandler := handler.NewStatsHandler(statsSvc, logger)
	healthHandler := handler.NewHealthHandler(database.DB, queueClient, logger)

	r := chi.NewRouter()

	r.Use(handler.RecoveryMiddleware(logger))
	r.Use(handler.LoggingMiddleware(logger))
	r.Use(handler.MetricsMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	r.Get("/health", healthHandler.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/contacts", func(r chi.Router) {
		r.Get("/", contactHandler.ListContacts)
		r.Post("/interaction", contactHandler.RecordInteraction)
		r.Get("/{phone}", contactHandler.GetContact)
		r.Put("/{phone}/status", contactHandler.ChangeStatus)
		r.Put("/{phone}/pause", contactHandler.SetPaused)
		r.Put("/{phone}/profile", contactHandler.UpdateProfile)
		r.Post("/{phone}/payment/confirm", contactHandler.ConfirmPayment)
		r.Post("/{phone}/appointment/confirm", contactHandler.ConfirmAppointment)
	})

	r.Route("/campaigns", func(r chi.Router) {
		r.Post("/", campaignHandler.CreateCampaign)
		r.Get("/", campaignHandler.ListCampaigns)
		r.Get("/{id}", campaignHandler.GetCampaign)
		r.Get("/{id}/results", campaignHandler.GetCampaignResults)
		r.Post("/{id}/launch", campaignHandler.LaunchCampaign)
	})

	r.Route("/templates", func(r chi.Router) {
		r.Post("/", templateHandler.CreateTemplate)
		r.Get("/", templateHandler.ListTemplates)
		r.Get("/{id}", templateHandler.GetTemplate)
		r.Put("/{id}", templateHandler.UpdateTemplate)
		r.Delete("/{id}", templateHandler.DeleteTemplate)
	})

	r.Route("/settings", func(r chi.Router) {
		r.Get("/bot-delay", settingsHandler.GetBotDelay)
		r.Put("/bot-delay", settingsHandler.SetBotDelay)
	})

	r.Get("/stats", statsHandler.GetStats)

	addr := fmt.Sprintf(":%d", cfg.API.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("API server listening", slog.String("addr", addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)

	case sig := <-quit:
		logger.Info("shutting down server", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("server shutdown failed", slog.String("error", err.Error()))
			os.Exit(1)
		}

		logger.Info("server stopped gracefully")
	}
}
