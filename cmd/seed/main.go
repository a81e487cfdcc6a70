package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/kruchat2026/devlog/internal/apiclient"
	"github.com/kruchat2026/devlog/internal/config"
	"github.com/kruchat2026/devlog/internal/logger"
	"github.com/kruchat2026/devlog/internal/repository"
	"github.com/kruchat2026/devlog/internal/utils"
)

func main() {
	var email string
	var n int

	flag.StringVar(&email, "email", "", "owner of the generated records")
	flag.IntVar(&n, "n", 5, "number of records to insert")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{Level: cfg.Log.Level, Pretty: true})

	if email == "" {
		log.Error().Msg("-email is required")
		os.Exit(1)
	}

	client := apiclient.New(apiclient.Options{
		URL:     cfg.API.URL,
		Timeout: time.Duration(cfg.API.Timeout) * time.Second,
	}, log)
	if client.MockMode() {
		log.Warn().Msg("API_URL is not set, records will not be stored")
	}

	repo := repository.NewRepository(client)
	ctx := apiclient.WithEmail(context.Background(), email)

	if _, err := repo.GetMe(ctx); err != nil {
		log.Error().Err(err).Str("email", email).Msg("owner not found")
		os.Exit(1)
	}

	now := time.Now()
	inserted := 0
	for i := 0; i < n; i++ {
		record := utils.GenerateRandomRecord(now)
		record.OwnerEmail = email

		id, err := repo.UpsertRecord(ctx, record)
		if err != nil {
			log.Error().Err(err).Str("title", record.Title).Msg("failed to insert record")
			continue
		}
		inserted++
		log.Info().Str("record_id", id).Str("title", record.Title).Float64("hours", record.Hours).Msg("record inserted")
	}

	log.Info().Int("inserted", inserted).Int("requested", n).Msg("seeding finished")
}
