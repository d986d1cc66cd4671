package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/athena-ems/athena/internal/auth"
	"github.com/athena-ems/athena/internal/config"
	"github.com/athena-ems/athena/internal/lib/logger/sl"
	"github.com/athena-ems/athena/internal/metrics"
	"github.com/athena-ems/athena/internal/repository"
	"github.com/athena-ems/athena/internal/server"
	"github.com/athena-ems/athena/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

const (
	envLocal = "local"
	envDev   = "development"
	envProd  = "production"
)

// main is the entry point of the application.
func main() {
	var err error
	var wgr sync.WaitGroup

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad()

	logger := setupLogger(cfg.Env)

	// Create a separate registry for metrics with exemplar
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	dtb, err := repository.NewDatabase(
		cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.Dbname)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer dtb.Close()

	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password})
	if err = rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer rdb.Close()

	employeeRepo := repository.NewEmployeeRepository(dtb, appMetrics)
	attendanceRepo := repository.NewAttendanceRepository(dtb, appMetrics)
	taskRepo := repository.NewTaskRepository(dtb, appMetrics)
	userRepo := repository.NewUserRepository(dtb, appMetrics)

	domainStore := store.New(logger, employeeRepo, attendanceRepo, taskRepo, appMetrics)
	sessions := auth.NewRedisSessionStore(rdb, cfg.Redis.SessionTTL)
	identity := auth.NewService(logger, userRepo, employeeRepo, sessions, domainStore, appMetrics)

	logger.InfoContext(ctx, "Loading domain collections...")
	if err = domainStore.LoadAll(ctx); err != nil {
		// Prior (empty) state stays; the API starts and reports per-request.
		logger.ErrorContext(ctx, "Initial collection load failed", sl.Err(err))
	}

	router := server.NewRouter(identity, domainStore, appMetrics, cfg.Env)
	apiServer := &http.Server{
		Addr:              cfg.HTTP.APIAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	wgr.Add(2)

	go func() {
		defer wgr.Done()
		healthChecker := server.NewHealthChecker(dtb, server.NewRedisPinger(rdb), logger)
		server.StartMonitoringServer(ctx, logger, reg, healthChecker, cfg.HTTP.MonitoringAddr)
	}()

	go func() {
		defer wgr.Done()
		logger.InfoContext(ctx, "API server listening", "addr", cfg.HTTP.APIAddr)
		if srvErr := apiServer.ListenAndServe(); srvErr != nil && !errors.Is(srvErr, http.ErrServerClosed) {
			logger.ErrorContext(ctx, "API server failed", sl.Err(srvErr))
			stop()
		}
	}()

	logger.InfoContext(ctx, "Application started. Press Ctrl+C to stop.")

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err = apiServer.Shutdown(shutdownCtx); err != nil {
		logger.ErrorContext(shutdownCtx, "Failed to shut down API server", sl.Err(err))
	}

	wgr.Wait()

	logger.InfoContext(ctx, "Application stopped gracefully...")
}

// setupLogger initializes and returns a logger based on the environment provided.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelDebug,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					return a
				},
			}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelInfo,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					return a
				},
			}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelWarn,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					if a.Key == slog.TimeKey {
						return slog.Attr{Key: "", Value: slog.Value{}}
					}
					return a
				},
			}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelError,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					if a.Key == slog.TimeKey {
						return slog.Attr{Key: "", Value: slog.Value{}}
					}
					return a
				},
			}),
		)

		log.Error(
			"The env parameter was not specified, or was invalid. Logging will be minimal, by default." +
				" Please specify the value of `env`: local, development, production")
	}

	return log
}
