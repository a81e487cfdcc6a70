package main

import (
	"context"
	"fmt"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/kruchat2026/devlog/internal/apiclient"
	"github.com/kruchat2026/devlog/internal/config"
	"github.com/kruchat2026/devlog/internal/handler"
	"github.com/kruchat2026/devlog/internal/logger"
	"github.com/kruchat2026/devlog/internal/notify"
	"github.com/kruchat2026/devlog/internal/repository"
	"github.com/kruchat2026/devlog/internal/session"
)

func main() {
	/**********************************************
	 * config and logger
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})

	/**********************************************
	 * remote api client
	 **********************************************/
	client := apiclient.New(apiclient.Options{
		URL:     cfg.API.URL,
		Timeout: time.Duration(cfg.API.Timeout) * time.Second,
	}, log)
	if client.MockMode() {
		log.Warn().Msg("API_URL is not set, running in mock mode")
	}

	/**********************************************
	 * redis
	 **********************************************/
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Redis.ConnectTimeout)*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Error().Err(err).Msg("failed to connect to redis")
		return
	}

	/**********************************************
	 * rabbitmq, optional
	 **********************************************/
	var publisher notify.Publisher = notify.Nop{}
	if cfg.NotificationsEnabled() {
		conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
		if err != nil {
			log.Error().Err(err).Msg("failed to connect to rabbitmq")
			return
		}
		defer conn.Close()

		ch, err := conn.Channel()
		if err != nil {
			log.Error().Err(err).Msg("failed to open channel")
			return
		}
		defer ch.Close()

		if _, err := ch.QueueDeclare(cfg.RabbitMQ.Queue, true, false, false, false, nil); err != nil {
			log.Error().Err(err).Msg("failed to declare queue")
			return
		}
		publisher = notify.NewAMQPPublisher(ch, cfg.RabbitMQ.Queue, time.Duration(cfg.RabbitMQ.PublishTimeout)*time.Second, log)
	} else {
		log.Info().Msg("RABBITMQ_DSN is not set, mail notifications are disabled")
	}

	/**********************************************
	 * sessions and handler
	 **********************************************/
	expiration := time.Duration(cfg.Session.Expiration) * time.Hour
	sessions := session.NewManager(
		session.NewStore(rdb, expiration),
		session.CookieConfig{
			Name:       cfg.Session.CookieName,
			Secret:     cfg.Session.Secret,
			Expiration: expiration,
			Secure:     cfg.IsProduction(),
		},
		repository.NewRepository(client),
		log,
	)

	h, err := handler.NewHandler(cfg, client, sessions, publisher, log)
	if err != nil {
		log.Error().Err(err).Msg("failed to create handler")
		return
	}
	h.RegisterRoutes()

	/**********************************************
	 * http server
	 **********************************************/
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      h.Mux,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		ErrorLog:     stdlog.New(log.With().Str("component", "http").Logger(), "", 0),
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server failed")
			quit <- syscall.SIGTERM
		}
	}()

	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	log.Info().Msg("server stopped")
}
