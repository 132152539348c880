package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dukerupert/notiprefs/internal/auth"
	"github.com/dukerupert/notiprefs/internal/config"
	"github.com/dukerupert/notiprefs/internal/database"
	"github.com/dukerupert/notiprefs/internal/logging"
	"github.com/dukerupert/notiprefs/internal/model"
	"github.com/dukerupert/notiprefs/internal/prefs"
	"github.com/dukerupert/notiprefs/internal/scheduler"
	"github.com/dukerupert/notiprefs/internal/server"
)

const (
	shutdownTimeout = 10 * time.Second
	limiterIdle     = 10 * time.Minute
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "notiprefs",
		Short:         "Notification preferences service",
		SilenceUsage:  true,
	}

	flags := root.PersistentFlags()
	flags.String("db-driver", "sqlite", "database driver: sqlite or postgres")
	flags.String("db-dsn", "notiprefs.db", "database DSN or SQLite file path")
	flags.String("log-level", "info", "log level: debug, info, warn, error")
	flags.String("log-format", "text", "log format: text or json")

	root.AddCommand(newServeCmd(), newSeedTypesCmd(), newCreateUserCmd(), newBackfillCmd())
	return root
}

// app holds what every subcommand needs.
type app struct {
	cfg    *config.Config
	db     *database.DB
	logger *slog.Logger
}

func setup(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, err
	}

	logger := logging.Setup(cfg.Log.Level, cfg.Log.Format)

	db, err := database.Open(cfg.DB.Driver, cfg.DB.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return &app{cfg: cfg, db: db, logger: logger}, nil
}

func (a *app) service() *prefs.Service {
	return prefs.NewService(a.db, prefs.WithLogger(a.logger.With("component", "prefs")))
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd)
			if err != nil {
				return err
			}
			defer a.db.Close()
			if err := a.cfg.RequireSecret(); err != nil {
				return err
			}
			return serve(cmd.Context(), a)
		},
	}
	cmd.Flags().String("addr", ":8080", "listen address")
	return cmd
}

func serve(ctx context.Context, a *app) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tokens := auth.NewTokenIssuer(a.cfg.Auth.Secret, a.cfg.Auth.TokenTTL)
	srv := server.New(a.db, tokens, server.Config{
		LoginRPS:   a.cfg.RateLimit.LoginRPS,
		LoginBurst: a.cfg.RateLimit.LoginBurst,
	}, a.logger)

	var sched *scheduler.Scheduler
	if a.cfg.Backfill.Schedule != "" {
		var err error
		sched, err = scheduler.New(srv.Service(), a.cfg.Backfill.Schedule, a.logger.With("component", "scheduler"))
		if err != nil {
			return err
		}
	}

	httpServer := &http.Server{
		Addr:              a.cfg.Addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("listening", "addr", a.cfg.Addr, "db_driver", a.db.Dialect)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if sched != nil {
		sched.Start()
	}

	g.Go(func() error {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				srv.RateLimiter().Cleanup(limiterIdle)
			}
		}
	})

	g.Go(func() error {
		<-ctx.Done()
		a.logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if sched != nil {
			if err := sched.Stop(shutdownCtx); err != nil {
				a.logger.Warn("scheduler stop", "error", err)
			}
		}
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

func newSeedTypesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed-types",
		Short: "Create every known notification type that does not exist yet",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd)
			if err != nil {
				return err
			}
			defer a.db.Close()

			svc := a.service()
			out := cmd.OutOrStdout()
			for _, c := range model.TypeChoices {
				_, created, err := svc.EnsureType(cmd.Context(), c.Name)
				if err != nil {
					return fmt.Errorf("seed %s: %w", c.Name, err)
				}
				if created {
					fmt.Fprintf(out, "Created notification type: %s\n", c.Label)
				} else {
					fmt.Fprintf(out, "Notification type already exists: %s\n", c.Label)
				}
			}
			return nil
		},
	}
}

func newCreateUserCmd() *cobra.Command {
	var (
		username string
		password string
		admin    bool
	)
	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a user and seed their preferences",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd)
			if err != nil {
				return err
			}
			defer a.db.Close()

			u, err := a.service().CreateUser(cmd.Context(), username, password, admin)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created user %s (id %d, admin %t)\n", u.Username, u.ID, u.IsAdmin)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "username")
	cmd.Flags().StringVar(&password, "password", "", "password")
	cmd.Flags().BoolVar(&admin, "admin", false, "grant the admin role")
	cmd.MarkFlagRequired("username")
	cmd.MarkFlagRequired("password")
	return cmd
}

func newBackfillCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backfill",
		Short: "Insert default preferences for every missing user and type pair",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd)
			if err != nil {
				return err
			}
			defer a.db.Close()

			n, err := a.service().Backfill(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Inserted %d preferences\n", n)
			return nil
		},
	}
}
