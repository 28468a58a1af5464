package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/DrashtiGohil19/bookingcrown/libs/auth"
	"github.com/DrashtiGohil19/bookingcrown/libs/config"
	"github.com/DrashtiGohil19/bookingcrown/libs/db"
	"github.com/DrashtiGohil19/bookingcrown/libs/events"
	"github.com/DrashtiGohil19/bookingcrown/libs/httpx"
	"github.com/DrashtiGohil19/bookingcrown/libs/kafkax"
	otelx "github.com/DrashtiGohil19/bookingcrown/libs/otel"
	"github.com/DrashtiGohil19/bookingcrown/libs/runtime"
	"github.com/DrashtiGohil19/bookingcrown/services/booking-service/internal/bookings"
	"github.com/DrashtiGohil19/bookingcrown/services/booking-service/internal/clock"
	"github.com/DrashtiGohil19/bookingcrown/services/booking-service/internal/conflict"
	"github.com/DrashtiGohil19/bookingcrown/services/booking-service/internal/consumer"
	"github.com/DrashtiGohil19/bookingcrown/services/booking-service/internal/handlers"
	"github.com/DrashtiGohil19/bookingcrown/services/booking-service/internal/metrics"
	"github.com/DrashtiGohil19/bookingcrown/services/booking-service/internal/model"
	"github.com/DrashtiGohil19/bookingcrown/services/booking-service/internal/reports"
	"github.com/DrashtiGohil19/bookingcrown/services/booking-service/internal/storage"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		slog.Error("load .env", "err", err)
		os.Exit(1)
	}

	service := config.String("SERVICE_NAME", "booking-service")
	logger := runtime.NewLogger(service)
	if err := run(service, logger); err != nil {
		logger.Error("booking service exited", "err", err)
		os.Exit(1)
	}
}

func run(service string, logger *slog.Logger) error {
	port, err := config.Port("PORT", "8083")
	if err != nil {
		return err
	}
	dbURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		return err
	}
	jwtSecret, err := config.RequiredString("JWT_SECRET")
	if err != nil {
		return err
	}
	clk, err := clock.Load(config.String("TIMEZONE", "Asia/Kolkata"))
	if err != nil {
		return err
	}
	hours, err := openingHours(clk)
	if err != nil {
		return err
	}

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	pool, err := db.Open(ctx, dbURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	if config.Bool("AUTO_MIGRATE", true) {
		if err := storage.EnsureSchema(ctx, pool); err != nil {
			return err
		}
		logger.Info("schema ensured")
	}

	m := metrics.New()
	bookingRepo := storage.NewBookingRepository(pool)
	expenseRepo := storage.NewExpenseRepository(pool)
	profileRepo := storage.NewOwnerProfileRepository(pool)

	writer := bookings.NewWriter(bookingRepo, conflict.NewChecker(), clk, logger, bookings.WithRecorder(m))
	bookingHandler := handlers.NewBookingHandler(writer, profileRepo, bookingRepo, clk, hours, logger)
	expenseHandler := handlers.NewExpenseHandler(expenseRepo, clk, m, logger)
	reportHandler := handlers.NewReportHandler(reports.NewService(bookingRepo, expenseRepo), clk, logger)

	brokers := config.String("KAFKA_BROKERS", "")
	if strings.TrimSpace(brokers) != "" {
		ownerConsumer := consumer.New(logger, pool, consumer.Config{
			Brokers: brokers,
			GroupID: config.String("KAFKA_GROUP_ID", service),
			Topic:   config.String("KAFKA_OWNER_TOPIC", events.OwnerUpdatedV1),
		}, consumer.OwnerProjection(profileRepo), m)
		go ownerConsumer.Run(ctx)
	} else {
		logger.Warn("owner projection consumer disabled (no kafka brokers configured)")
	}

	readyChecks := []runtime.ReadyCheck{
		{Name: "db", Check: db.ReadyCheck(pool)},
		{Name: "kafka", Check: kafkax.ReadyCheck(brokers), Optional: true},
	}
	limiter, rdb, err := rateLimiter(logger)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
		readyChecks = append(readyChecks, runtime.ReadyCheck{Name: "redis", Check: httpx.RedisReadyCheck(rdb)})
	}

	mux := runtime.NewBaseMuxWithReady(readyChecks...)
	mux.Handle("GET /metrics", m.Handler())
	handlers.Mount(mux, auth.RequireOwner(jwtSecret), bookingHandler, expenseHandler, reportHandler)

	bodyLimit, err := config.Int("REQUEST_BODY_LIMIT_BYTES", 1<<20)
	if err != nil {
		return err
	}
	timeout, err := config.Duration("REQUEST_TIMEOUT_SECONDS", 15*time.Second)
	if err != nil {
		return err
	}

	httpHandler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithRecover(logger),
		httpx.WithCORS(httpx.BrowserOriginsFromEnv()),
		limiter,
		httpx.WithBodyLimit(int64(bodyLimit)),
		httpx.WithTimeout(timeout),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, "booking")

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	runtime.Serve(ctx, srv, logger, 10*time.Second)
	return nil
}

func openingHours(clk *clock.Clock) (handlers.OpeningHours, error) {
	open, err := clk.ParseWallClock(config.String("SLOT_OPEN_TIME", "06:00 AM"))
	if err != nil {
		return handlers.OpeningHours{}, err
	}
	closing, err := clk.ParseWallClock(config.String("SLOT_CLOSE_TIME", "11:00 PM"))
	if err != nil {
		return handlers.OpeningHours{}, err
	}
	step, err := config.Int("SLOT_STEP_MINUTES", 30)
	if err != nil {
		return handlers.OpeningHours{}, err
	}
	return handlers.OpeningHours{Window: model.NewTimeWindow(open, closing), Step: step}, nil
}

// rateLimiter prefers the shared Redis limiter and falls back to a per-process one.
func rateLimiter(logger *slog.Logger) (httpx.Middleware, *redis.Client, error) {
	limit, err := config.Int("RATE_LIMIT_PER_MINUTE", 120)
	if err != nil {
		return nil, nil, err
	}
	addr := config.String("REDIS_ADDR", "")
	if addr == "" {
		return httpx.NewRateLimiter(limit, time.Minute, httpx.ClientIP).Middleware(), nil, nil
	}
	redisDB, err := config.Int("REDIS_DB", 0)
	if err != nil {
		return nil, nil, err
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: config.String("REDIS_PASSWORD", ""),
		DB:       redisDB,
	})
	rl := httpx.NewRedisRateLimiter(rdb, limit, time.Minute, "booking", httpx.ClientIP)
	return rl.Middleware(logger, config.Bool("RATE_LIMIT_FAIL_OPEN", true)), rdb, nil
}
