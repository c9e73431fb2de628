package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/kinolist/kinolist/internal/config"
	"github.com/kinolist/kinolist/internal/database"
	"github.com/kinolist/kinolist/internal/handler"
	"github.com/kinolist/kinolist/internal/middleware"
	"github.com/kinolist/kinolist/internal/observability"
	"github.com/kinolist/kinolist/internal/repository"
	"github.com/kinolist/kinolist/internal/router"
	"github.com/kinolist/kinolist/internal/session"
	"github.com/kinolist/kinolist/internal/view"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := observability.InitSlog(cfg.Env)

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logger.Error("open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(context.Background(), db, logger); err != nil {
		logger.Error("run migrations", "error", err)
		os.Exit(1)
	}

	rdb := config.NewRedisClient()
	ttl := time.Duration(cfg.SessionTTLHours) * time.Hour
	var sessions session.Store
	if rdb != nil {
		sessions = session.NewRedisStore(rdb, ttl)
		logger.Info("sessions backed by redis")
	} else {
		sessions = session.NewMemoryStore(ttl)
		logger.Warn("redis unavailable, sessions held in memory")
	}

	renderer, err := view.NewRenderer()
	if err != nil {
		logger.Error("parse templates", "error", err)
		os.Exit(1)
	}

	e := echo.New()
	e.HideBanner = true
	e.Renderer = renderer
	e.Use(echomw.Recover())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogStatus:   true,
		LogMethod:   true,
		LogURI:      true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			if v.Error != nil {
				logger.Error("request", "method", v.Method, "uri", v.URI, "status", v.Status, "error", v.Error)
			} else {
				logger.Info("request", "method", v.Method, "uri", v.URI, "status", v.Status)
			}
			return nil
		},
	}))
	e.Use(middleware.LoadSession(sessions, cfg.SessionSecret))

	users := repository.NewUserRepo(db)
	movies := repository.NewMovieRepo(db)
	auth := handler.NewAuthHandler(cfg, users, sessions, logger)
	catalog := handler.NewMovieHandler(movies, logger)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, auth, middleware.RateLimit(config.LoadRateLimitConfig(), rdb))
	router.RegisterMovies(e, catalog)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := ":" + cfg.Port
	logger.Info("listening", "addr", addr, "env", cfg.Env)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
