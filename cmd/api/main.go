// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/kurakampus-api/internal/admin"
	"github.com/carterperez-dev/kurakampus-api/internal/auth"
	"github.com/carterperez-dev/kurakampus-api/internal/config"
	"github.com/carterperez-dev/kurakampus-api/internal/core"
	"github.com/carterperez-dev/kurakampus-api/internal/health"
	"github.com/carterperez-dev/kurakampus-api/internal/middleware"
	"github.com/carterperez-dev/kurakampus-api/internal/server"
	"github.com/carterperez-dev/kurakampus-api/internal/user"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate", false, "apply database migrations and exit")
	flag.Parse()

	if err := run(*configPath, *migrateOnly); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string, migrateOnly bool) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	core.ExposeInternalErrors(cfg.IsDevelopment())

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("database close error", "error", err)
		}
	}()
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	if migrateOnly || cfg.Database.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			return err
		}
		logger.Info("database migrations applied")
		if migrateOnly {
			return nil
		}
	}

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer func() {
		if err := redis.Close(); err != nil {
			logger.Error("redis close error", "error", err)
		}
	}()
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	tokens, err := auth.NewTokenManager(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("token signer initialized",
		"algorithm", "HS256",
		"access_lifetime", cfg.JWT.AccessExpire,
		"refresh_lifetime", cfg.JWT.RefreshExpire,
	)

	hasher, err := core.NewPasswordHasher(core.Argon2Params{
		Memory:  cfg.Password.Memory,
		Time:    cfg.Password.Time,
		Threads: cfg.Password.Threads,
		KeyLen:  core.DefaultArgon2Params.KeyLen,
		SaltLen: core.DefaultArgon2Params.SaltLen,
	})
	if err != nil {
		return err
	}

	validate := auth.NewValidator(cfg.IsProduction())

	userRepo := user.NewRepository(db.DB)
	userSvc := user.NewService(userRepo)
	userHandler := user.NewHandler(userSvc, validate)

	authRepo := auth.NewRepository(db.DB)
	authSvc := auth.NewService(authRepo, tokens, userSvc, hasher,
		auth.WithLogger(logger),
	)
	authHandler := auth.NewHandler(
		authSvc,
		validate,
		auth.NewCookieWriter(cfg.IsProduction(), tokens.AccessTTL(), tokens.RefreshTTL()),
	)

	healthHandler := health.NewHandler(
		health.Dependency{Name: "database", Checker: db},
		health.Dependency{Name: "redis", Checker: redis},
	)

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		DBStats:    db.Stats,
		RedisStats: redis.PoolStats,
		DBPing:     db.Ping,
		RedisPing:  redis.Ping,
		Auditor:    authSvc,
	})

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	limiter := middleware.NewRateLimiter(redis.Client)
	defer limiter.Close()

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recoverer(logger))
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	authenticator := middleware.Authenticator(tokens)
	adminOnly := middleware.RequireAdmin
	window := cfg.RateLimit.Window

	apiLimit := limiter.Route("api", middleware.PerMinute(
		cfg.RateLimit.Requests,
		cfg.RateLimit.Burst,
	))

	router.Group(func(r chi.Router) {
		r.Use(apiLimit)

		authHandler.RegisterRoutes(r, authenticator, auth.RouteLimits{
			Register: limiter.Route("auth.register",
				middleware.PerWindow(cfg.RateLimit.Register, window)),
			Login: limiter.Route("auth.login",
				middleware.PerWindow(cfg.RateLimit.Login, window)),
			Refresh: limiter.Route("auth.refresh",
				middleware.PerWindow(cfg.RateLimit.Refresh, window)),
		})
	})

	router.Route("/v1", func(r chi.Router) {
		r.Use(apiLimit)

		userHandler.RegisterRoutes(r, authenticator)
		userHandler.RegisterAdminRoutes(r, authenticator, adminOnly)
		adminHandler.RegisterRoutes(r, authenticator, adminOnly)
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	logger.Info("application stopped")
	return nil
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
