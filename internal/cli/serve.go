package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/stormboard/stormboard/internal/api"
	"github.com/stormboard/stormboard/pkg/cache"
	"github.com/stormboard/stormboard/pkg/pipeline"
	"github.com/stormboard/stormboard/pkg/store"
)

// serveCommand creates the serve command for running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		configPath string
		addr       string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the stormboard HTTP API",
		Long: `Run the stormboard HTTP API.

The server exposes layout, board storage, and rendering endpoints. Backends
are selected via a stormboard.toml config file: the cache can be file-based,
redis, or disabled, and boards can be stored on disk or in MongoDB. Flags
override file values.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}
			return c.runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "config file (default ./stormboard.toml)")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")

	return cmd
}

// runServe assembles the backends and serves until the context is cancelled.
func (c *CLI) runServe(ctx context.Context, cfg Config) error {
	cc, err := c.serveCache(ctx, cfg.Cache)
	if err != nil {
		return fmt.Errorf("initialize cache: %w", err)
	}

	boards, err := c.serveStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize store: %w", err)
	}
	defer boards.Close()

	runner := pipeline.NewRunner(cc, nil, c.Logger)
	defer runner.Close()

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.NewServer(runner, boards, c.Logger).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		c.Logger.Info("listening", "addr", cfg.Addr, "cache", cfg.Cache.Backend, "store", cfg.Store.Backend)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	c.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// serveCache builds the cache backend named by the config.
func (c *CLI) serveCache(ctx context.Context, cfg CacheConfig) (cache.Cache, error) {
	switch cfg.Backend {
	case "redis":
		return cache.NewRedisCache(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	case "none":
		return cache.NewNullCache(), nil
	default:
		return newCache(false)
	}
}

// serveStore builds the board store backend named by the config.
func (c *CLI) serveStore(ctx context.Context, cfg Config) (store.Store, error) {
	switch cfg.Store.Backend {
	case "mongo":
		return store.NewMongoStore(ctx, cfg.Store.Mongo.URI, cfg.Store.Mongo.Database)
	default:
		if cfg.DataDir != "" {
			return store.NewFileStore(filepath.Join(cfg.DataDir, "boards"))
		}
		return newStore()
	}
}
