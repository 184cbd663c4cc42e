package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/reimbursement-service/internal/api/http"
	"github.com/spec-kit/reimbursement-service/internal/api/http/handlers"
	"github.com/spec-kit/reimbursement-service/internal/auth"
	"github.com/spec-kit/reimbursement-service/internal/config"
	"github.com/spec-kit/reimbursement-service/internal/events"
	"github.com/spec-kit/reimbursement-service/internal/observability"
	"github.com/spec-kit/reimbursement-service/internal/persistence"
	"github.com/spec-kit/reimbursement-service/internal/repository"
	"github.com/spec-kit/reimbursement-service/internal/service"
	"github.com/spec-kit/reimbursement-service/internal/storage"
	"github.com/spec-kit/reimbursement-service/internal/worker"
)

const shutdownTimeout = 10 * time.Second

func main() {
	envFile := pflag.String("env-file", "", "path to a dotenv file; defaults to ./.env when present")
	pflag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracer, err := observability.InitTracer(ctx, cfg.Tracing, cfg.App)
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}

	if cfg.Postgres.DSN == "" {
		logger.Fatal("POSTGRES_DSN is required")
	}
	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	sinks, err := buildSinks(cfg, redis, logger)
	if err != nil {
		logger.Fatal("failed to init event sink", zap.Error(err))
	}
	dispatcher := events.NewInMemoryDispatcher(logger, sinks...)

	db := pg.DB()
	userRepo := repository.NewUserRepository(db)
	ticketRepo := repository.NewTicketRepository(db)

	hasher, err := auth.NewHasher(cfg.Auth.PasswordScheme, cfg.Auth.BcryptCost)
	if err != nil {
		logger.Fatal("failed to init password hasher", zap.Error(err))
	}
	tokens := auth.NewTokenManager(auth.TokenOptions{
		Secret:        cfg.Auth.SecretKey,
		Issuer:        cfg.Auth.Issuer,
		TTL:           cfg.Auth.TokenTTL(),
		EnforceExpiry: cfg.Auth.EnforceTokenExpiry,
	})

	authService := service.NewAuthService(service.AuthDependencies{
		UserRepo: userRepo,
		Hasher:   hasher,
		Tokens:   tokens,
		Logger:   logger,
	})
	userService := service.NewUserService(userRepo, dispatcher, logger)
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: ticketRepo,
		UserRepo:   userRepo,
		Dispatcher: dispatcher,
		Logger:     logger,
	})

	disk, err := storage.NewDisk(cfg.Storage.UploadDir, cfg.Storage.URLPrefix, cfg.Storage.MaxFileSize())
	if err != nil {
		logger.Fatal("failed to prepare upload dir", zap.Error(err))
	}
	logger.Info("attachment storage ready",
		zap.String("dir", disk.Dir()),
		zap.String("url_prefix", disk.URLPrefix()),
		zap.Int64("max_file_bytes", disk.MaxSize()))
	fileService := service.NewFileService(disk, logger)

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notify)
	notifier := worker.StartNotificationWorker(ctx, notificationService, logger)

	var redisPinger handlers.Pinger
	if redis.Enabled() {
		redisPinger = redis
	}
	metrics := observability.NewMetrics()

	app := httptransport.NewApp(httptransport.AppConfig{
		Name:      cfg.App.Name,
		BodyLimit: cfg.App.BodyLimit(),
		Middleware: httptransport.MiddlewareConfig{
			Timeout:        cfg.App.RequestTimeout(),
			AllowedOrigins: cfg.CORS.AllowedOrigins,
			Tracing:        cfg.Tracing.Enabled,
		},
		Routes: httptransport.RouteConfig{
			Health:                  handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redisPinger, metrics),
			Users:                   handlers.NewUsersHandler(authService, userService),
			Tickets:                 handlers.NewTicketsHandler(ticketService),
			Files:                   handlers.NewFilesHandler(fileService),
			Gate:                    auth.NewGate(tokens, userRepo),
			SuspendRequiresEmployer: cfg.Auth.SuspendRequiresEmployer,
			StaticPrefix:            disk.URLPrefix(),
			StaticDir:               disk.Dir(),
		},
	}, logger, metrics)

	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	notifier.Stop()
	for _, sink := range sinks {
		if err := sink.Close(); err != nil {
			logger.Warn("close event sink", zap.Error(err))
		}
	}

	flushCtx, flushCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer flushCancel()
	if err := shutdownTracer(flushCtx); err != nil {
		logger.Warn("tracer shutdown", zap.Error(err))
	}
}

func buildSinks(cfg *config.Config, redis *persistence.Redis, logger *zap.Logger) ([]events.Sink, error) {
	switch cfg.Events.Sink {
	case "redis":
		logger.Info("publishing events to redis", zap.String("channel", cfg.Events.RedisChannel))
		return []events.Sink{events.NewRedisSink(redis.Client, cfg.Events.RedisChannel)}, nil
	case "amqp":
		sink, err := events.NewAMQPSink(cfg.Events.AMQPURL, cfg.Events.AMQPExchange)
		if err != nil {
			return nil, err
		}
		logger.Info("publishing events to amqp", zap.String("exchange", cfg.Events.AMQPExchange))
		return []events.Sink{sink}, nil
	}
	return nil, nil
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
