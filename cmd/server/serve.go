package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"userlist/internal/application/services"
	"userlist/internal/client"
	"userlist/internal/delivery/handler"
	"userlist/internal/infrastructure"
	"userlist/internal/infrastructure/db/postgres"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server (page, /api/users, /health)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
}

func runServe(ctx context.Context, opts *rootOptions) error {
	cfg, logger, err := opts.load()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer postgres.Close(db)

	cache := infrastructure.NewRedisService(ctx, cfg.RedisService(), logger)
	defer cache.Close()

	svc := services.NewUserService(postgres.NewUserRepository(db), cache, logger)
	if _, err := svc.Seed(ctx, services.DefaultDirectory()); err != nil {
		return err
	}

	limiter := infrastructure.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, time.Minute)
	defer limiter.Close()

	h := handler.NewHandler(svc, client.NewUsersClient(cfg.PublicURL, nil), cfg.AppTitle, cfg.RenderWait, logger)
	e := handler.NewRouter(h, limiter, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", zap.String("addr", cfg.HTTPAddr), zap.String("public_url", cfg.PublicURL))
		if err := e.Start(cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("shutting down")
		return e.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
