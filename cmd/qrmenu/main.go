package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/akaza50z/libabbitak/internal/auth"
	"github.com/akaza50z/libabbitak/internal/cart"
	"github.com/akaza50z/libabbitak/internal/catalog"
	"github.com/akaza50z/libabbitak/internal/config"
	h "github.com/akaza50z/libabbitak/internal/http"
	"github.com/akaza50z/libabbitak/internal/metrics"
	"github.com/akaza50z/libabbitak/internal/upload"
	"github.com/akaza50z/libabbitak/internal/whatsapp"
)

var configPath string

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	root := &cobra.Command{
		Use:          "qrmenu",
		Short:        "Digital menu and ordering storefront",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file")

	root.AddCommand(
		serveCmd(log),
		migrateCmd(log),
		seedCmd(log),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func openRepository(cfg *config.Config) (*catalog.Repository, error) {
	repo, err := catalog.NewRepository(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}
	if err := repo.RunMigrations(cfg.MigrationsDir); err != nil {
		repo.Close()
		return nil, err
	}
	return repo, nil
}

func serveCmd(log *logrus.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the storefront server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			repo, err := openRepository(cfg)
			if err != nil {
				return err
			}
			defer repo.Close()

			var storage cart.Storage
			if cfg.RedisAddr != "" {
				client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
				if err := client.Ping(cmd.Context()).Err(); err != nil {
					return err
				}
				storage = cart.NewRedisStorage(client)
				log.WithField("addr", cfg.RedisAddr).Info("carts persisted in redis")
			} else {
				storage = cart.NewLocalStorage()
				log.Warn("no redis configured, carts live in process memory")
			}

			tag, err := language.Parse(cfg.Locale)
			if err != nil {
				return err
			}

			router := h.NewRouter(h.RouterConfig{
				Catalog:        repo,
				Carts:          cart.NewManager(storage, log),
				Sessions:       auth.NewSessions(cfg.SessionTTL.Std()),
				LoginLimiter:   auth.NewLoginLimiter(1, 5),
				Uploader:       &upload.Saver{Dir: cfg.UploadsDir},
				Formatter:      whatsapp.NewFormatter(tag),
				Metrics:        metrics.NewServerMetrics(),
				CountryCode:    cfg.CountryCode,
				RequestTimeout: cfg.RequestTimeout.Std(),
				Log:            log,
			})

			srv := &http.Server{
				Addr:         ":" + cfg.HTTPPort,
				Handler:      router,
				ReadTimeout:  10 * time.Second,
				WriteTimeout: 30 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			go func() {
				log.WithField("port", cfg.HTTPPort).Info("server starting")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.WithError(err).Fatal("server error")
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			<-quit

			log.Info("shutting down server")
			ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout.Std())
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				return err
			}
			log.Info("server exited")
			return nil
		},
	}
}

func migrateCmd(log *logrus.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			repo, err := openRepository(cfg)
			if err != nil {
				return err
			}
			defer repo.Close()
			log.Info("migrations applied")
			return nil
		},
	}
}

func seedCmd(log *logrus.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load sample menu data into an empty database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			repo, err := openRepository(cfg)
			if err != nil {
				return err
			}
			defer repo.Close()
			if err := repo.Seed(cmd.Context()); err != nil {
				return err
			}
			log.Info("sample data loaded")
			return nil
		},
	}
}
