package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"german-reading-quiz/internal/app"
	"german-reading-quiz/internal/config"
	"german-reading-quiz/internal/infra/filesystem"
	"german-reading-quiz/internal/infra/memory"
	pgstore "german-reading-quiz/internal/infra/postgres"
	redisstore "german-reading-quiz/internal/infra/redis"
	transport "german-reading-quiz/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string, envPort string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the reading service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
	cmd.Flags().StringVar(port, "port", envPort, "port to listen on (overrides config)")
	return cmd
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "5000"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var loader memory.LevelLoader = filesystem.NewLevelLoader(cfg.Readings.Dir)
	if pool != nil {
		loader = pgstore.NewLevelLoader(pool)
	}

	cacheTTL := config.TTLDuration(cfg.Cache.TTL, 10*time.Minute)
	var levels app.LevelRepository
	if redisClient != nil {
		levels = redisstore.NewLevelRepository(redisClient, loader, cacheTTL)
	} else {
		levels = memory.NewLevelRepository(loader, cacheTTL)
	}

	var progress app.ProgressStore
	switch {
	case pool != nil:
		progress = pgstore.NewProgressStore(pool)
	case redisClient != nil:
		progress = redisstore.NewProgressStore(redisClient)
	default:
		progress = filesystem.NewProgressStore(cfg.Progress.File)
	}

	feed := app.NewProgressFeed()
	if current, err := progress.Load(ctx); err == nil {
		feed.Seed(len(current.CompletedReadings))
	} else {
		log.Printf("load progress: %v", err)
	}

	service := app.NewReadingService(levels, progress, feed)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      transport.NewRouter(service, cfg.CORS.AllowedOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting reading service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
