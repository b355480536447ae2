package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/oggycat-dev/dot-net-booking-swp391-be-sub000/internal/approval"
	"github.com/oggycat-dev/dot-net-booking-swp391-be-sub000/internal/attendance"
	"github.com/oggycat-dev/dot-net-booking-swp391-be-sub000/internal/cache"
	"github.com/oggycat-dev/dot-net-booking-swp391-be-sub000/internal/config"
	"github.com/oggycat-dev/dot-net-booking-swp391-be-sub000/internal/conflict"
	"github.com/oggycat-dev/dot-net-booking-swp391-be-sub000/internal/database"
	"github.com/oggycat-dev/dot-net-booking-swp391-be-sub000/internal/domain"
	"github.com/oggycat-dev/dot-net-booking-swp391-be-sub000/internal/events"
	"github.com/oggycat-dev/dot-net-booking-swp391-be-sub000/internal/metrics"
	"github.com/oggycat-dev/dot-net-booking-swp391-be-sub000/internal/notify"
	"github.com/oggycat-dev/dot-net-booking-swp391-be-sub000/internal/penalty"
	"github.com/oggycat-dev/dot-net-booking-swp391-be-sub000/internal/service"
)

func main() {
	_ = godotenv.Load(".env")

	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	cfg, err := config.Load(os.Getenv("BOOKING_CONFIG_PATH"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	campusLoc, err := time.LoadLocation(cfg.Campus.Timezone)
	if err != nil {
		logger.Fatal().Err(err).Str("timezone", cfg.Campus.Timezone).Msg("invalid campus timezone")
	}

	db, err := database.NewDB(cfg.Database.Path, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("open db error")
	}
	defer db.Close()

	var rdb *redis.Client
	avail := cache.New(nil, 0)
	if cfg.Redis.Address != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		avail = cache.New(rdb, cfg.CacheTTL())
		logger.Info().Str("address", cfg.Redis.Address).Msg("availability cache enabled")
	}

	clock := domain.SystemClock{Loc: campusLoc}
	bus := events.NewBus()

	svc := service.NewBookingService(
		db, db, db,
		conflict.NewDetector(db),
		approval.NewWorkflow(),
		attendance.NewEnforcer(clock, logger),
		penalty.NewTracker(clock, cfg.NoShowLimit(), cfg.BlockDuration(), logger),
		clock,
		bus,
		avail,
		logger,
	)
	notifier := notify.New(notify.LogSender{Logger: logger}, notify.Config{
		RatePerSecond: cfg.Notify.RatePerSecond,
		Burst:         cfg.Notify.Burst,
		QueueSize:     cfg.Notify.QueueSize,
	}, logger)
	notifier.Attach(bus)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go notifier.Run(ctx)

	if cfg.Monitoring.HealthCheckPort == 0 {
		cfg.Monitoring.HealthCheckPort = 8081
	}
	go startHealthServer(ctx, cfg.Monitoring.HealthCheckPort, db, rdb, svc, &logger)

	if cfg.Monitoring.PrometheusEnabled {
		if cfg.Monitoring.PrometheusPort == 0 {
			cfg.Monitoring.PrometheusPort = 9091
		}
		metrics.Register()
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	logger.Info().Str("timezone", cfg.Campus.Timezone).Msg("booking core started")
	<-ctx.Done()
	logger.Info().Msg("shutting down")
}

func startHealthServer(ctx context.Context, port int, db *database.DB, rdb *redis.Client, svc *service.BookingService, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	// Ops-only view of a facility's day; the web layer proper lives upstream.
	mux.HandleFunc("/availability", func(w http.ResponseWriter, r *http.Request) {
		facilityID, err := uuid.Parse(r.URL.Query().Get("facility"))
		if err != nil {
			http.Error(w, "invalid facility id", http.StatusBadRequest)
			return
		}
		date, err := time.Parse("2006-01-02", r.URL.Query().Get("date"))
		if err != nil {
			http.Error(w, "invalid date, want YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		intervals, err := svc.DayAvailability(r.Context(), facilityID, date)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(intervals)
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		ctxPing, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		if err := db.PingContext(ctxPing); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		if rdb != nil {
			if err := rdb.Ping(ctxPing).Err(); err != nil {
				http.Error(w, "redis not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("health server error")
	}
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
