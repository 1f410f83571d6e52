package main

import (
	"context"
	"log"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	apiHandler "github.com/fastygo/restaurant/api/handler"
	"github.com/fastygo/restaurant/internal/config"
	"github.com/fastygo/restaurant/internal/infrastructure/mail"
	mongoInfra "github.com/fastygo/restaurant/internal/infrastructure/mongo"
	"github.com/fastygo/restaurant/internal/infrastructure/monitor"
	"github.com/fastygo/restaurant/internal/infrastructure/outbox"
	pgInfra "github.com/fastygo/restaurant/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/restaurant/internal/infrastructure/redis"
	"github.com/fastygo/restaurant/internal/infrastructure/retry"
	"github.com/fastygo/restaurant/internal/middleware"
	"github.com/fastygo/restaurant/internal/router"
	"github.com/fastygo/restaurant/internal/services"
	"github.com/fastygo/restaurant/internal/services/lifecycle"
	"github.com/fastygo/restaurant/pkg/httpcontext"
	"github.com/fastygo/restaurant/pkg/logger"
	"github.com/fastygo/restaurant/pkg/token"
	mongoRepo "github.com/fastygo/restaurant/repository/mongo"
	"github.com/fastygo/restaurant/repository/postgres"
	redisRepo "github.com/fastygo/restaurant/repository/redis"
	userUC "github.com/fastygo/restaurant/usecase/user"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:       cfg.Logger.Level,
		Encoding:    cfg.Logger.Encoding,
		Service:     cfg.AppName,
		Environment: cfg.Environment,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	connectPolicy := retry.Policy{Attempts: cfg.Connect.Attempts, InitialBackoff: cfg.Connect.Backoff}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, connectPolicy, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pool.Close()
		return nil
	})

	if err := pgInfra.RunMigrations(appCtx, cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	redisClient, err := redisInfra.NewClient(appCtx, cfg.Redis, connectPolicy, zapLogger)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.Register("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})

	mongoClient, err := mongoInfra.NewClient(appCtx, cfg.Mongo, connectPolicy, zapLogger)
	if err != nil {
		zapLogger.Fatal("mongodb connection failed", zap.Error(err))
	}
	manager.Register("mongodb", func(ctx context.Context) error {
		return mongoInfra.Close(ctx, mongoClient, zapLogger)
	})
	mongoDB := mongoClient.Database(cfg.Mongo.Database)
	if err := mongoRepo.EnsureIndexes(appCtx, mongoDB); err != nil {
		zapLogger.Warn("mongodb index setup failed", zap.Error(err))
	}

	outboxStore, err := outbox.Open(cfg.Outbox.Path, "")
	if err != nil {
		zapLogger.Fatal("failed to open mail outbox", zap.Error(err))
	}
	manager.Register("outbox", func(ctx context.Context) error {
		return outboxStore.Close()
	})

	mon := monitor.New(pool, redisClient, mongoClient, outboxStore, cfg.Monitor.Interval, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	sender := mail.NewSender(mail.Config{
		Host:     cfg.Mail.Host,
		Port:     cfg.Mail.Port,
		Username: cfg.Mail.Username,
		Password: cfg.Mail.Password,
		From:     cfg.Mail.From,
	}, zapLogger)

	mailProcessor := services.NewMailProcessor(outboxStore, sender, zapLogger, services.ProcessorConfig{
		Interval:   cfg.Outbox.SyncInterval,
		BatchSize:  cfg.Outbox.BatchSize,
		MaxRetries: cfg.Outbox.MaxRetry,
		MaxAge:     cfg.Reset.TokenTTL,
	})
	mailProcessor.Start()
	manager.Register("mail_processor", func(ctx context.Context) error {
		mailProcessor.Stop(ctx)
		return nil
	})

	tokenService, err := token.New(cfg.JWT.Secret, cfg.TokenTTL())
	if err != nil {
		zapLogger.Fatal("token service init failed", zap.Error(err))
	}

	userRepo := postgres.NewUserRepository(pool)
	reviewRepo := mongoRepo.NewReviewRepository(mongoDB)
	resetRepo := redisRepo.NewResetTokenRepository(redisClient, cfg.Reset.TokenTTL)

	userUseCase := userUC.New(userRepo, reviewRepo, resetRepo, tokenService, services.NewMailBridge(mailProcessor), userUC.Config{
		BcryptCost:      bcrypt.DefaultCost,
		ResetTokenTTL:   cfg.Reset.TokenTTL,
		DefaultCurrency: cfg.DefaultCurrency,
	}, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)
	onError := apiHandler.NewErrorHandler(zapLogger)

	limiter := middleware.NewRateLimiter(cfg.RateLimit.PerMinute, cfg.RateLimit.Burst)
	janitor := cron.New()
	if _, err := janitor.AddFunc("@every 5m", func() {
		if removed := limiter.Cleanup(); removed > 0 {
			zapLogger.Debug("rate limiter cleanup", zap.Int("removed", removed))
		}
	}); err != nil {
		zapLogger.Fatal("failed to schedule rate limiter cleanup", zap.Error(err))
	}
	janitor.Start()
	manager.Register("rate_limiter", func(ctx context.Context) error {
		select {
		case <-janitor.Stop().Done():
		case <-ctx.Done():
		}
		return nil
	})

	opts := router.Options{
		APIVersion:  cfg.APIVersion,
		Auth:        middleware.NewAuthenticator(tokenService, userRepo, ctxAdapter, zapLogger),
		OnError:     onError,
		Limiter:     limiter,
		EnablePprof: cfg.HTTP.EnablePprof,
		Logger:      zapLogger,
	}
	if cfg.HTTP.EnableMetrics {
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		opts.Metrics = middleware.NewMetrics("restaurant", registry)
		opts.MetricsHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	}

	handlers := router.Handlers{
		User: apiHandler.NewUserHandler(userUseCase, cfg.APIVersion, apiHandler.CookieConfig{
			TTL:    cfg.JWT.CookieExpiresIn,
			Secure: cfg.IsProduction(),
		}, ctxAdapter, zapLogger),
		Health: apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	server := &fasthttp.Server{
		Handler:         router.New(handlers, opts),
		ReadTimeout:     cfg.HTTP.ReadTimeout,
		WriteTimeout:    cfg.HTTP.WriteTimeout,
		IdleTimeout:     cfg.HTTP.IdleTimeout,
		Concurrency:     cfg.HTTP.MaxConn,
		Name:            cfg.AppName,
		Logger:          zap.NewStdLog(zapLogger),
		CloseOnShutdown: true,
	}

	zapLogger.Info("server started",
		zap.String("address", cfg.Address()),
		zap.String("environment", cfg.Environment),
		zap.String("api_version", cfg.APIVersion))
	manager.Go("http_server", func() error {
		return server.ListenAndServe(cfg.Address())
	})

	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
	if err := manager.Err(); err != nil {
		zapLogger.Error("stopped after component failure", zap.Error(err))
		_ = zapLogger.Sync()
		os.Exit(1)
	}
}
