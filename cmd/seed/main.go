// Команда seed пересоздает тестовые данные текущего хакатона.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Dosada05/hackathon-teams/config"
	"github.com/Dosada05/hackathon-teams/db"
	"github.com/Dosada05/hackathon-teams/repositories"
	"github.com/Dosada05/hackathon-teams/services"
	"github.com/Dosada05/hackathon-teams/storage"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "seed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := db.Open(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("cannot reach the document store: %w", err)
	}
	defer store.Close()

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
			// Аватар необязателен
			logger.Warn("R2 uploader unavailable, seeding without avatar", slog.Any("error", err))
			uploader = nil
		}
	}

	seeder := services.NewSeeder(
		repositories.NewTeamRepository(store),
		repositories.NewPoolRepository(store),
		repositories.NewJoinRequestRepository(store),
		repositories.NewInviteRepository(store),
		repositories.NewSubmissionRepository(store),
		repositories.NewUserRepository(store),
		uploader,
		logger,
	)

	report, err := seeder.Run(ctx, "")
	if err != nil {
		return fmt.Errorf("seeding failed, data may be partially written: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
