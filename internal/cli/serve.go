package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/wordle-helper/internal/config"
	"github.com/robalobadob/wordle-helper/internal/httpserver"
	"github.com/robalobadob/wordle-helper/internal/store"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("log-level") {
				applyLevel(cfg.LogLevel, "info")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			st, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() {
				if err := st.Close(); err != nil {
					log.Warn().Err(err).Msg("close store")
				}
			}()

			if p, ok := st.(store.Purger); ok && cfg.SessionTTL > 0 {
				go purgeLoop(ctx, p, cfg.SessionTTL)
			}

			srv := httpserver.New(st, httpserver.Options{
				ClientOrigin:   cfg.ClientOrigin,
				RequestTimeout: cfg.RequestTimeout,
				JWTSecret:      cfg.JWTSecret,
				CookieName:     cfg.CookieName,
				TokenTTL:       cfg.SessionTTL,
				Secure:         cfg.IsProduction(),
			})
			return listen(ctx, ":"+cfg.Port, srv.Router(), cfg.Store)
		},
	}
}

// openStore builds the backend named in cfg.Store.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Store {
	case config.StoreSQLite:
		return store.NewSQLiteStore(ctx, cfg.SQLitePath)
	case config.StoreRedis:
		return store.NewRedisStore(ctx, cfg.Redis.Addr(), cfg.SessionTTL)
	case config.StoreMemory:
		return store.NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("unknown store %q", cfg.Store)
}

// purgeLoop drops sessions idle for longer than ttl, checking every ttl/24 (at least once a minute).
func purgeLoop(ctx context.Context, p store.Purger, ttl time.Duration) {
	every := ttl / 24
	if every < time.Minute {
		every = time.Minute
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := p.PurgeBefore(ctx, time.Now().Add(-ttl))
			if err != nil {
				log.Warn().Err(err).Msg("purge sessions")
				continue
			}
			if n > 0 {
				log.Info().Int64("purged", n).Msg("purged idle sessions")
			}
		}
	}
}

// listen serves h on addr until ctx is cancelled, then shuts down gracefully.
func listen(ctx context.Context, addr string, h http.Handler, backend string) error {
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Str("store", backend).Msg("starting wordle-helper")
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server exited: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}
