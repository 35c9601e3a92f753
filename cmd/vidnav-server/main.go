// cmd/vidnav-server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Yhangokk/vidnav/internal/common/config"
	"github.com/Yhangokk/vidnav/internal/common/database"
	"github.com/Yhangokk/vidnav/internal/common/logger"
	"github.com/Yhangokk/vidnav/internal/common/observability"
	githubstore "github.com/Yhangokk/vidnav/internal/github"
	"github.com/Yhangokk/vidnav/internal/moderation"
	"github.com/Yhangokk/vidnav/internal/notify"
	"github.com/Yhangokk/vidnav/internal/publish"
	"github.com/Yhangokk/vidnav/internal/server"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting submission service...",
		zap.String("environment", cfg.App.Environment),
		zap.String("version", cfg.App.Version),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	if cfg.Redis.Address != "" {
		err = retryWithBackoff(func() error {
			var err error
			redis, err = database.NewRedis(cfg.Redis)
			if err != nil {
				return err
			}
			return redis.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")

		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer redis.Close()
		zapLog.Info("Redis connected successfully")
	} else {
		zapLog.Warn("Redis not configured, approval events will not be published")
	}

	// --- Init Issue Store Client ---
	store := githubstore.NewClient(
		cfg.GitHub.Token,
		cfg.GitHub.Owner,
		cfg.GitHub.Repo,
		cfg.GitHub.BaseURL,
		time.Duration(cfg.GitHub.RequestTimeout)*time.Millisecond,
		cfg.GitHub.ReadRetries,
	)
	zapLog.Info("Issue store client initialized",
		zap.String("owner", cfg.GitHub.Owner),
		zap.String("repo", cfg.GitHub.Repo),
	)

	// --- Init Publisher ---
	var publisher moderation.Publisher
	if redis != nil {
		publisher = publish.NewRedisPublisher(redis, cfg.Publish.Channel, log)
	}

	// --- Init Operator Notifier ---
	var notifier moderation.Notifier
	if cfg.Notifications.Email.Enabled {
		emailNotifier, err := notify.NewEmailNotifier(ctx, cfg.Notifications, log)
		if err != nil {
			zapLog.Fatal("email notifier failed", zap.Error(err))
		}
		notifier = emailNotifier
		zapLog.Info("Email notifier initialized",
			zap.Int("operators", len(cfg.Notifications.Email.Operators)),
		)
	}

	engine := moderation.NewEngine(store, publisher, notifier, log)
	srv := server.New(cfg, engine, redis, obs, log)

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down http server", zap.Error(err))
	}

	zapLog.Info("Submission service stopped gracefully")
}
