package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"guestbook/internal/ratelimit"
	"guestbook/internal/util"
	"guestbook/services/guestbook/internal/server"
	"guestbook/services/guestbook/internal/view"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
}

func runServe(ctx context.Context, opts *rootOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	logger := util.InitLogger(cfg.LogLevel)

	appCore, err := openApp(cfg)
	if err != nil {
		return err
	}
	defer appCore.Close()

	renderer, err := view.NewRenderer(cfg.Language)
	if err != nil {
		return fmt.Errorf("failed to init views: %w", err)
	}
	trusted, err := util.NewTrustedProxies(cfg.TrustedProxyCIDRs)
	if err != nil {
		return fmt.Errorf("invalid trusted proxy list: %w", err)
	}
	limiter, limiterKind, err := newSubmitLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.SubmitRateLimitPerMinute)
	if err != nil {
		return fmt.Errorf("failed to init rate limiter: %w", err)
	}
	if c, ok := limiter.(io.Closer); ok {
		defer c.Close()
	}

	httpServer, err := server.New(server.Config{
		App:            appCore,
		Renderer:       renderer,
		Limiter:        limiter,
		TrustedProxies: trusted,
	})
	if err != nil {
		return fmt.Errorf("failed to init server: %w", err)
	}

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("guestbook server listening", "addr", addr, "store", cfg.StoreDriver, "rate_limit", limiterKind)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		logger.Error("server error", "err", err)
		return err
	}
	logger.Info("guestbook server stopped")
	return nil
}

// newSubmitLimiter picks Redis when an address is configured, otherwise an
// in-process limiter. A zero limit disables throttling.
func newSubmitLimiter(redisAddr, redisPassword string, perMinute int) (ratelimit.Limiter, string, error) {
	if perMinute <= 0 {
		return nil, "off", nil
	}
	if redisAddr != "" {
		l, err := ratelimit.NewRedisFixedWindowLimiter(redisAddr, redisPassword, "guestbook:submit", perMinute, time.Minute)
		if err != nil {
			return nil, "", err
		}
		return l, "redis", nil
	}
	l, err := ratelimit.NewLocalLimiter(perMinute, time.Minute)
	if err != nil {
		return nil, "", err
	}
	return l, "local", nil
}
