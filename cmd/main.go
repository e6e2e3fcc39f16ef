package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dosada05/hackathon-teams/config"
	"github.com/Dosada05/hackathon-teams/db"
	"github.com/Dosada05/hackathon-teams/handlers"
	"github.com/Dosada05/hackathon-teams/middleware"
	"github.com/Dosada05/hackathon-teams/realtime"
	"github.com/Dosada05/hackathon-teams/repositories"
	api "github.com/Dosada05/hackathon-teams/routes"
	"github.com/Dosada05/hackathon-teams/services"
	"github.com/Dosada05/hackathon-teams/storage"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort), slog.String("store_driver", cfg.Store.Driver))

	if cfg.JWTSecretKey == "" {
		logger.Error("JWT_SECRET_KEY environment variable is required")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Подключение к хранилищу. Без него сервер продолжает работать и отдает пустой список.
	store, err := db.Open(ctx, cfg.Store)
	if err != nil {
		logger.Error("document store is unavailable, serving empty roster", slog.Any("error", err))
		store = db.NewUnavailableStore(err)
	} else {
		logger.Info("document store connection established")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close document store", slog.Any("error", err))
		} else {
			logger.Info("document store closed")
		}
	}()

	// Инициализация загрузчика файлов (Cloudflare R2), если он настроен
	var uploader storage.FileUploader
	if cfg.R2.Enabled() {
		uploader, err = storage.NewCloudflareR2Uploader(ctx, storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2.AccountID,
			AccessKeyID:     cfg.R2.AccessKeyID,
			SecretAccessKey: cfg.R2.SecretAccessKey,
			BucketName:      cfg.R2.BucketName,
			PublicBaseURL:   cfg.R2.PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Info("R2 is not configured, photo uploads are disabled")
	}

	// Инициализация WebSocket Hub
	wsHub := realtime.NewHub(logger)
	go wsHub.Run(ctx)

	// Инициализация репозиториев
	teamRepo := repositories.NewTeamRepository(store)
	poolRepo := repositories.NewPoolRepository(store)
	joinRequestRepo := repositories.NewJoinRequestRepository(store)
	userRepo := repositories.NewUserRepository(store)

	// Инициализация сервисов
	rosterService := services.NewRosterService(teamRepo, poolRepo, joinRequestRepo, logger)
	profileService := services.NewProfileService(userRepo, uploader, logger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := middleware.NewMetrics(registry)

	// Инициализация обработчиков HTTP
	healthHandler := handlers.NewHealthHandler(store, cfg.Store.Timeout, logger)
	rosterHandler := handlers.NewRosterHandler(rosterService, wsHub, metrics, logger)
	profileHandler := handlers.NewProfileHandler(profileService, logger)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub, cfg.CORSAllowedOrigins, logger)

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		api.Options{
			AllowedOrigins: cfg.CORSAllowedOrigins,
			StoreTimeout:   cfg.Store.Timeout,
			Authenticator:  middleware.NewAuthenticator(cfg.JWTSecretKey, logger),
			Metrics:        metrics,
			Gatherer:       registry,
			Logger:         logger,
		},
		healthHandler,
		rosterHandler,
		profileHandler,
		webSocketHandler,
	)

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
