package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/skillsphere/web/internal/api"
	"github.com/skillsphere/web/internal/api/handler"
	"github.com/skillsphere/web/internal/api/middleware"
	"github.com/skillsphere/web/internal/core/service"
	"github.com/skillsphere/web/internal/core/session"
	"github.com/skillsphere/web/internal/infrastructure/backend"
	mongodb "github.com/skillsphere/web/internal/infrastructure/db/mongo"
	redisdb "github.com/skillsphere/web/internal/infrastructure/db/redis"
	"github.com/skillsphere/web/internal/infrastructure/queue"
	"github.com/skillsphere/web/internal/pkg/config"
	"github.com/skillsphere/web/pkg/logger"
)

const (
	shutdownTimeout = 10 * time.Second
	sweepInterval   = time.Minute
)

func serveCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, port)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (default from PORT)")

	return cmd
}

func runServe(ctx context.Context, port string) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	if port != "" {
		cfg.Port = port
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "skillsphere",
		Version: version,
	})

	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer mongodb.Disconnect(mongoClient, shutdownTimeout)

	users := mongodb.NewUserRepository(db)
	if err := users.EnsureIndexes(ctx); err != nil {
		return err
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		return err
	}
	defer rdb.Close()

	dispatcher := queue.NewDispatcher(cfg.ResolveWorkers, logger.Component("dispatcher"))
	dispatcher.Start(ctx)

	identity := service.NewIdentityService(users, cfg.JWTSecret, cfg.TokenTTL, cfg.APITokenTTL)
	sessions := session.NewProvider(
		redisdb.NewSessionStore(rdb),
		identity,
		dispatcher,
		logger.Component("session"),
		session.Options{TokenTTL: cfg.TokenTTL, RevalidateAfter: cfg.Session.Revalidate},
	)
	go sessions.Run(ctx, sweepInterval, cfg.Session.IdleTTL)

	client, err := backend.NewClient(backend.Config{BaseURL: cfg.Backend.URL, Timeout: cfg.Backend.Timeout}, identity, logger.Component("backend"))
	if err != nil {
		return err
	}
	courses := service.NewCourseService(client, redisdb.NewCourseCache(rdb, cfg.EnrollmentCacheTTL), logger.Component("courses"))

	e, err := api.NewRouter(api.Deps{
		Logger:   logger.Component("http"),
		Identity: identity,
		Sessions: sessions,
		Flashes:  redisdb.NewFlashStore(rdb),
		Courses:  courses,
		Health: []handler.Dependency{
			{Name: "mongo", Ping: mongodb.Pinger(mongoClient)},
			{Name: "redis", Ping: redisdb.Pinger(rdb)},
			{Name: "backend", Ping: client.Ping},
		},
		Cookie: middleware.SessionOptions{
			CookieName: cfg.Session.Cookie,
			TTL:        cfg.Session.TTL,
			Secure:     cfg.IsProduction(),
		},
		ResolveWait: cfg.Session.ResolveWait,
		Metrics:     true,
	})
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Str("version", version).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(sctx)
}
