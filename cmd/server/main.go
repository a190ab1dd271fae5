package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/event-seat-booking/internal/booking"
	"github.com/iliyamo/event-seat-booking/internal/config"
	"github.com/iliyamo/event-seat-booking/internal/database"
	"github.com/iliyamo/event-seat-booking/internal/handler"
	"github.com/iliyamo/event-seat-booking/internal/inventory"
	"github.com/iliyamo/event-seat-booking/internal/middleware"
	"github.com/iliyamo/event-seat-booking/internal/queue"
	"github.com/iliyamo/event-seat-booking/internal/repository"
	"github.com/iliyamo/event-seat-booking/internal/router"
	"github.com/iliyamo/event-seat-booking/internal/session"
	"github.com/iliyamo/event-seat-booking/internal/warmup"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("load .env: %v", err)
	}
	cfg := config.Load()

	e := echo.New()
	e.HideBanner = true
	e.Logger.SetLevel(cfg.LogLevel)
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	logger := e.Logger

	db, err := database.Open(database.Options{
		User: cfg.DBUser, Pass: cfg.DBPass, Host: cfg.DBHost, Port: cfg.DBPort, Name: cfg.DBName,
	})
	if err != nil {
		logger.Fatalf("mysql: %v", err)
	}
	defer db.Close()
	events := repository.NewEventRepo(db)

	// Without Redis, sessions fall back to memory and rate limiting and
	// caching are disabled.
	rdb, err := config.NewRedisClient(config.LoadRedisConfig())
	if err != nil {
		logger.Warnf("redis unavailable, rate limiting and caching disabled: %v", err)
	}
	store := newSessionStore(cfg, rdb, logger)

	gw := inventory.NewClient(cfg.InventoryBaseURL, cfg.InventoryTimeout)

	opts := []booking.Option{booking.WithMaxSeats(cfg.MaxSeatsPerSale)}
	if cfg.AMQPURL != "" {
		opts = append(opts, booking.WithPublisher(queue.NewPublisher(cfg.AMQPURL, cfg.AMQPDialTimeout, logger)))
	}
	bc := booking.New(store, gw, events, logger, opts...)

	wc := warmup.New(events, gw, logger,
		warmup.WithDelay(cfg.WarmupDelay),
		warmup.WithDefaultBounds(cfg.WarmupRows, cfg.WarmupCols),
	)

	deps := map[string]handler.Pinger{"mysql": db}
	if rdb != nil {
		deps["redis"] = handler.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
	}
	router.RegisterRoutes(e, deps)
	router.RegisterPublic(e, handler.NewEventHandler(events, bc), middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
	router.RegisterSession(e, handler.NewSessionHandler(bc), cfg.JWTSecret, middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	router.RegisterAdmin(e, &handler.WarmupHandler{Runner: wc}, cfg.JWTSecret)

	if cfg.WarmupEnabled {
		done := wc.Start()
		go func() {
			sum := <-done
			logger.Infof("startup warm-up: %d/%d events primed", sum.Succeeded, sum.Events)
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	addr := ":" + cfg.Port
	g.Go(func() error {
		logger.Infof("listening on %s (env=%s, sessions=%s, inventory=%s)", addr, cfg.Env, cfg.SessionBackend, cfg.InventoryBaseURL)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if cfg.AMQPURL != "" {
		g.Go(func() error {
			err := queue.NewConsumer(cfg.AMQPURL, "logs", repository.NewSaleRepo(db), logger).Run(gctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("stopping server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Errorf("server: %v", err)
	}
	closeRedis(rdb)
}

func newSessionStore(cfg config.Config, rdb *redis.Client, logger echo.Logger) session.Store {
	if cfg.SessionBackend == "redis" {
		if rdb != nil {
			return session.NewRedisStore(rdb, cfg.SessionPrefix, cfg.SessionTTL)
		}
		logger.Warnf("session backend redis unreachable, keeping sessions in memory")
	}
	return session.NewMemoryStore(cfg.SessionTTL)
}

func closeRedis(rdb *redis.Client) {
	if rdb != nil {
		_ = rdb.Close()
	}
}
