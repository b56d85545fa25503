package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"

	"github.com/Skotchmaster/pet_shop/internal/broadcast"
	"github.com/Skotchmaster/pet_shop/internal/compensation"
	"github.com/Skotchmaster/pet_shop/internal/config"
	"github.com/Skotchmaster/pet_shop/internal/es"
	"github.com/Skotchmaster/pet_shop/internal/httpserver"
	"github.com/Skotchmaster/pet_shop/internal/lock"
	"github.com/Skotchmaster/pet_shop/internal/mykafka"
	"github.com/Skotchmaster/pet_shop/internal/notify"
	"github.com/Skotchmaster/pet_shop/internal/repo"
	"github.com/Skotchmaster/pet_shop/internal/service"
	"github.com/Skotchmaster/pet_shop/internal/worker"
	"github.com/Skotchmaster/pet_shop/pkg/db"
	"github.com/Skotchmaster/pet_shop/pkg/logging"
	"github.com/Skotchmaster/pet_shop/pkg/middleware/csrf"
	loggingmw "github.com/Skotchmaster/pet_shop/pkg/middleware/logging"
)

const (
	sweepLockTTL    = 5 * time.Minute
	kafkaPartitions = 3
	shutdownTimeout = 10 * time.Second
	initTimeout     = 10 * time.Second
	retryBatchLimit = 100
	serverReadTO    = 10 * time.Second
	serverReadHdrTO = 3 * time.Second
)

// integrations holds the optional backends; each field is nil when its
// env var is unset.
type integrations struct {
	producer *mykafka.Producer
	index    *es.OrderIndex
	redis    *redis.Client
	mongo    *mongo.Client
}

func (in *integrations) close(l *slog.Logger) {
	if in.producer != nil {
		if err := in.producer.Close(); err != nil {
			l.Warn("kafka_close_error", "error", err)
		}
	}
	if in.redis != nil {
		if err := in.redis.Close(); err != nil {
			l.Warn("redis_close_error", "error", err)
		}
	}
	if in.mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := in.mongo.Disconnect(ctx); err != nil {
			l.Warn("mongo_disconnect_error", "error", err)
		}
	}
}

func connect(ctx context.Context, cfg config.ServiceConfig, l *slog.Logger) (*integrations, error) {
	in := &integrations{}

	if len(cfg.KafkaBrokers) > 0 {
		if err := mykafka.EnsureTopic(ctx, cfg.KafkaBrokers[0], cfg.KafkaTopic, kafkaPartitions); err != nil {
			l.Warn("kafka_topic_error", "topic", cfg.KafkaTopic, "error", err)
		}
		in.producer = mykafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		l.Info("kafka_enabled", "topic", in.producer.Topic())
	}

	if cfg.ESURL != "" {
		client, err := es.NewClient(ctx, es.Config{URL: cfg.ESURL, User: cfg.ESUser, Password: cfg.ESPassword})
		if err != nil {
			in.close(l)
			return nil, fmt.Errorf("elasticsearch: %w", err)
		}
		in.index = es.NewOrderIndex(client, cfg.ESOrderIndex)
		if err := in.index.EnsureIndex(ctx); err != nil {
			in.close(l)
			return nil, fmt.Errorf("elasticsearch index: %w", err)
		}
		l.Info("search_enabled", "index", cfg.ESOrderIndex)
	}

	if cfg.RedisAddr != "" {
		in.redis = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		if err := in.redis.Ping(ctx).Err(); err != nil {
			in.close(l)
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		l.Info("redis_lock_enabled", "addr", cfg.RedisAddr)
	}

	if cfg.MongoURI != "" {
		client, err := notify.Connect(ctx, cfg.MongoURI)
		if err != nil {
			in.close(l)
			return nil, err
		}
		in.mongo = client
		l.Info("mongo_notifications_enabled", "database", cfg.MongoDatabase)
	}

	return in, nil
}

func main() {
	cfg := config.Load()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logging.IntoContext(ctx, logger)

	initCtx, cancel := context.WithTimeout(ctx, initTimeout)
	gdb, err := db.Open(initCtx, cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		cancel()
		log.Fatalf("db init error: %v", err)
	}
	Repo := &repo.GormRepo{DB: gdb}
	if err := Repo.Migrate(initCtx); err != nil {
		cancel()
		log.Fatalf("migrate error: %v", err)
	}
	in, err := connect(initCtx, cfg, logger)
	cancel()
	if err != nil {
		log.Fatalf("integration init error: %v", err)
	}

	if err := run(ctx, cfg, logger, Repo, in); err != nil {
		logger.Error("server_stopped", "error", err)
		in.close(logger)
		_ = db.Close(gdb)
		os.Exit(1)
	}
	in.close(logger)
	if err := db.Close(gdb); err != nil {
		logger.Warn("db_close_error", "error", err)
	}
	logger.Info("server_stopped")
}

func run(ctx context.Context, cfg config.ServiceConfig, logger *slog.Logger, Repo *repo.GormRepo, in *integrations) error {
	var sinks []broadcast.Sink
	if in.producer != nil {
		sinks = append(sinks, broadcast.KafkaSink{Producer: in.producer})
	}
	if in.index != nil {
		sinks = append(sinks, &es.Indexer{Orders: Repo, Index: in.index})
	}
	hub := broadcast.NewHub(logger, sinks...)
	defer hub.Close()

	var notifications notify.Sink = &notify.GormStore{Repo: Repo}
	if in.mongo != nil {
		notifications = notify.NewMongoStore(in.mongo, cfg.MongoDatabase)
	}

	var locker lock.Locker = lock.NewLocal()
	if in.redis != nil {
		locker = lock.NewRedis(in.redis, sweepLockTTL)
	}

	runner := &compensation.Runner{Store: Repo, Notifier: notifications}
	maint := service.NewMaintenanceService(Repo, locker, cfg.DanglingGrace)
	orders := &service.OrderService{Repo: Repo, Compensations: runner, Events: hub}

	admin := &httpserver.AdminHTTP{
		Orders:      orders,
		Maintenance: maint,
		Reports: &service.ReportService{
			Repo:              Repo,
			Maintenance:       maint,
			Location:          cfg.ReportLocation,
			LowStockThreshold: cfg.LowStockThreshold,
		},
		Notifications:           notifications,
		Compensations:           runner,
		CompensationMaxAttempts: cfg.CompensationMaxAttempts,
	}
	if in.index != nil {
		admin.Search = in.index
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Server.ReadTimeout = serverReadTO
	// No WriteTimeout: the order event stream stays open.
	e.Server.ReadHeaderTimeout = serverReadHdrTO

	e.Use(loggingmw.RequestLogger(logger))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(csrf.Middleware(csrf.DefaultConfig()))

	httpserver.Register(e, &httpserver.Deps{
		OrderHandler:   &httpserver.OrderHTTP{Orders: orders, Ratings: &service.RatingService{Repo: Repo, Compensations: runner}},
		CartHandler:    &httpserver.CartHTTP{Carts: &service.CartService{Repo: Repo}},
		BookingHandler: &httpserver.BookingHTTP{Bookings: &service.BookingService{Repo: Repo, Compensations: runner, Events: hub}},
		AdminHandler:   admin,
		EventsHandler:  &httpserver.EventsHTTP{Source: hub},
		JWTSecret:      cfg.JWTAccessSecret,
		Ready:          Repo.Ping,
	})

	scheduler := worker.NewScheduler(service.ErrSweepInProgress,
		worker.Job{
			Name:     "cleanup-dangling",
			Interval: cfg.CleanupInterval,
			Run: func(ctx context.Context) error {
				_, err := maint.CleanupDanglingOrders(ctx)
				return err
			},
		},
		worker.Job{
			Name:     "compensation-retry",
			Interval: cfg.CompensationRetryInterval,
			Run: func(ctx context.Context) error {
				_, err := runner.Retry(ctx, cfg.CompensationMaxAttempts, retryBatchLimit)
				return err
			},
		},
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		addr := fmt.Sprintf(":%d", cfg.ServerPort)
		logger.Info("server_starting", "addr", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("echo start: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		scheduler.Run(gctx)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("server_shutting_down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("echo shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}
