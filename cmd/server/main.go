package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"donezo/config"
	"donezo/internal/cache"
	"donezo/internal/events"
	"donezo/internal/handler"
	"donezo/internal/httpserver"
	"donezo/internal/repository"
	todosvc "donezo/internal/service/todo"
	"donezo/pkg/circuitbreaker"
	"donezo/pkg/db"
	"donezo/pkg/logger"
	"donezo/pkg/mq"
	"donezo/pkg/redis"
)

// todoStore is what both repositories provide.
type todoStore interface {
	todosvc.Store
	httpserver.Pinger
}

func main() {
	cfg := config.Load()

	log := logger.NewLogger(cfg.LogLevel)
	defer log.Sync()

	log.Info("Starting donezo server...",
		zap.String("db_driver", cfg.DB.Driver),
		zap.String("db_host", cfg.DB.Host),
		zap.Int("db_port", cfg.DB.Port),
		zap.Bool("redis_enabled", cfg.Redis.Enabled),
		zap.Bool("mq_enabled", cfg.MQ.Enabled),
	)

	gin.SetMode(gin.ReleaseMode)

	// Store
	var (
		store   todoStore
		closeDB = func() {}
	)
	switch cfg.DB.Driver {
	case "memory":
		log.Warn("Using in-memory store, data is lost on restart")
		store = repository.NewMemoryTodoRepository()
	default:
		log.Info("Initializing database connection...")
		pool, err := db.NewConnection(cfg.DB, log)
		if err != nil {
			log.Fatal("Failed to init DB", zap.Error(err))
		}
		closeDB = pool.Close

		repo := repository.NewTodoRepository(pool, log)
		schemaCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err = repo.EnsureSchema(schemaCtx)
		cancel()
		if err != nil {
			pool.Close()
			log.Fatal("Failed to ensure schema", zap.Error(err))
		}
		log.Info("Database connection established successfully")
		store = repo
	}

	opts := []todosvc.Option{todosvc.WithLoadTimeout(cfg.Server.RequestTimeout)}

	// Redis list cache
	var cacheClose func() error
	if cfg.Redis.Enabled {
		client, err := redis.NewRedisClient(cfg.Redis)
		if err != nil {
			log.Warn("Redis unavailable, list cache disabled", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		} else {
			cacheClose = client.Close
			opts = append(opts, todosvc.WithCache(cache.NewTodoCache(client, cache.DefaultKey, cfg.Redis.TTL)))
			log.Info("Redis list cache enabled", zap.String("addr", cfg.Redis.Addr), zap.Duration("ttl", cfg.Redis.TTL))
		}
	}

	// RabbitMQ change events
	routerOpts := httpserver.Options{
		Logger:         log,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		DB:             store,
	}
	var publisher *mq.Publisher
	if cfg.MQ.Enabled {
		p, err := mq.NewPublisher(cfg.MQ)
		if err != nil {
			log.Warn("RabbitMQ unavailable, change events disabled", zap.Error(err))
		} else {
			publisher = p
			routerOpts.Broker = p
			notifier := events.NewTodoPublisher(p, log).
				WithBreaker(circuitbreaker.New(circuitbreaker.DefaultConfig()))
			opts = append(opts, todosvc.WithNotifier(notifier))
			log.Info("Change events enabled", zap.String("exchange", p.Exchange()))
		}
	}

	svc := todosvc.NewService(store, log, opts...)
	todoHandler := handler.NewTodoHandler(svc, log, cfg.Server.RequestTimeout)
	router := httpserver.NewRouter(todoHandler, routerOpts)

	srv := &http.Server{
		Addr:              cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// 优雅退出处理
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down donezo server gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		log.Info("HTTP server stopped")
	}

	if publisher != nil {
		publisher.Close()
	}
	if cacheClose != nil {
		if err := cacheClose(); err != nil {
			log.Warn("Redis close error", zap.Error(err))
		}
	}

	log.Info("Closing database connection...")
	closeDB()

	log.Info("donezo server shutdown complete")
}
