// Command api serves the LMS authentication API.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/edulearn/lms/internal/api"
	"github.com/edulearn/lms/internal/api/handler"
	"github.com/edulearn/lms/internal/core/ports"
	"github.com/edulearn/lms/internal/core/service"
	"github.com/edulearn/lms/internal/infrastructure/db/mongo"
	"github.com/edulearn/lms/internal/infrastructure/db/redis"
	"github.com/edulearn/lms/internal/infrastructure/messaging/kafka"
	"github.com/edulearn/lms/internal/infrastructure/queue"
	"github.com/edulearn/lms/internal/pkg/config"
	"github.com/edulearn/lms/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
		Service: "lms-api",
	})

	if err := run(cfg, log); err != nil {
		log.Error().Err(err).Msg("fatal error")
		os.Exit(1)
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  "lms-api",
	})
	if err != nil {
		return fmt.Errorf("connect mongo: %w", err)
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = mongoClient.Disconnect(dctx)
	}()

	users := mongo.NewUserRepository(db)
	if err := users.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}

	redisClient, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer redisClient.Close()

	publisher := newPublisher(cfg.Kafka, log)
	defer publisher.Close()

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	events := service.NewEventService(mongo.NewEventRepository(db), publisher, logger.Component("events"))
	dispatcher := queue.NewDispatcher(cfg.Events.Workers, events, logger.Component("dispatcher"))
	dispatcher.Start(workerCtx)

	revoker := redis.NewRevocationList(redisClient)
	auth := service.NewAuthService(service.AuthDependencies{
		Users:   users,
		Revoker: revoker,
		Resets:  redis.NewResetTokenStore(redisClient),
		Events:  dispatcher,
	}, service.AuthOptions{
		JWTSecret: cfg.JWTSecret,
		TokenTTL:  cfg.Auth.TokenTTL,
		ResetTTL:  cfg.Auth.ResetTokenTTL,
		ResetURL:  cfg.Auth.ResetURL,
	}, logger.Component("auth"))

	e := api.NewRouter(api.Dependencies{
		Auth:    auth,
		Revoker: revoker,
		Checks: map[string]handler.DependencyCheck{
			"mongo": func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) },
			"redis": func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		},
		Log:           logger.Component("http"),
		JWTSecret:     cfg.JWTSecret,
		AuthRateLimit: cfg.Auth.RateLimit,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting lms api")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			stopWorkers()
			return fmt.Errorf("serve: %w", err)
		}
	}

	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(sctx); err != nil {
		log.Warn().Err(err).Msg("http shutdown")
	}

	stopWorkers()
	dispatcher.Wait()
	log.Info().Msg("lms api stopped")
	return nil
}

type closingPublisher interface {
	ports.EventPublisher
	Close() error
}

func newPublisher(cfg config.KafkaConfig, log zerolog.Logger) closingPublisher {
	if len(cfg.Brokers) == 0 {
		log.Warn().Msg("no kafka brokers configured, auth events are only logged")
		return kafka.NewLogPublisher(logger.Component("events"))
	}
	return kafka.NewPublisher(kafka.Config{Brokers: cfg.Brokers, Topic: cfg.Topic}, logger.Component("kafka"))
}
