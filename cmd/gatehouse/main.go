// Command gatehouse runs the authentication HTTP server.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gatehouse-io/gatehouse/internal/auth"
	"github.com/gatehouse-io/gatehouse/internal/cache"
	"github.com/gatehouse-io/gatehouse/internal/config"
	"github.com/gatehouse-io/gatehouse/internal/httpapi"
	"github.com/gatehouse-io/gatehouse/internal/logging"
	"github.com/gatehouse-io/gatehouse/internal/mail"
	"github.com/gatehouse-io/gatehouse/internal/password"
	"github.com/gatehouse-io/gatehouse/internal/rate"
	"github.com/gatehouse-io/gatehouse/internal/rolecipher"
	"github.com/gatehouse-io/gatehouse/internal/store/postgres"
	"github.com/gatehouse-io/gatehouse/internal/token"
)

func main() {
	log := logging.NewDefault(slog.LevelInfo)
	if err := run(log); err != nil {
		log.Error(context.Background(), "fatal", "error", err)
		os.Exit(1)
	}
}

func run(log logging.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.PostgresDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisClient.Close()

	sessions := cache.NewSessionStore(redisClient)
	if err := sessions.Ping(ctx); err != nil {
		return err
	}

	var cipher *rolecipher.Cipher
	if cfg.RoleCipherKey != nil {
		cipher, err = rolecipher.New(cfg.RoleCipherKey, cfg.RoleCipherIV)
	} else {
		log.Warn(ctx, "no role cipher key configured, using an ephemeral key; bearer tokens will not survive restarts")
		cipher, err = rolecipher.NewEphemeral()
	}
	if err != nil {
		return err
	}

	tokens, err := token.NewManager(token.Config{
		Secret:    cfg.JWTSecret,
		AccessTTL: cfg.AccessTTL,
		Issuer:    cfg.JWTIssuer,
	})
	if err != nil {
		return err
	}

	service := auth.NewService(
		auth.Config{RefreshTTL: cfg.RefreshTTL, ResetTTL: cfg.ResetTTL},
		postgres.NewUserRepository(db),
		postgres.NewRefreshTokenRepository(db),
		postgres.NewResetTokenRepository(db),
		sessions,
		cipher,
		tokens,
		password.NewHasher(password.DefaultParams),
		mail.NewLogSender(log),
		log,
	)

	router := httpapi.NewRouter(httpapi.RouterDeps{
		Handlers: httpapi.NewHandlers(service, log),
		Tokens:   tokens,
		Cipher:   cipher,
		Limiter:  rate.New(redisClient, rate.Config{Window: cfg.RateWindow, Ceiling: cfg.RateCeiling}),
		Log:      log,
	})

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "listening", "addr", cfg.HTTPAddr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info(ctx, "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
