package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/DrashtiGohil19/bookingcrown/libs/auth"
	"github.com/DrashtiGohil19/bookingcrown/libs/config"
	"github.com/DrashtiGohil19/bookingcrown/libs/db"
	"github.com/DrashtiGohil19/bookingcrown/libs/httpx"
	"github.com/DrashtiGohil19/bookingcrown/libs/kafkax"
	otelx "github.com/DrashtiGohil19/bookingcrown/libs/otel"
	"github.com/DrashtiGohil19/bookingcrown/libs/runtime"
	"github.com/DrashtiGohil19/bookingcrown/services/account-service/internal/handlers"
	"github.com/DrashtiGohil19/bookingcrown/services/account-service/internal/outbox"
	"github.com/DrashtiGohil19/bookingcrown/services/account-service/internal/storage"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		slog.Error("load .env", "err", err)
		os.Exit(1)
	}

	service := config.String("SERVICE_NAME", "account-service")
	logger := runtime.NewLogger(service)
	if err := run(service, logger); err != nil {
		logger.Error("account service exited", "err", err)
		os.Exit(1)
	}
}

func run(service string, logger *slog.Logger) error {
	port, err := config.Port("PORT", "8081")
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
	ttlHours, err := config.Int("JWT_TTL_HOURS", 24)
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

	brokers := config.String("KAFKA_BROKERS", "")
	pollEvery, err := config.Duration("OUTBOX_POLL_SECONDS", 2*time.Second)
	if err != nil {
		return err
	}
	publisher := outbox.NewPublisher(pool, logger, outbox.PublisherConfig{Brokers: brokers, PollEvery: pollEvery})
	go publisher.Run(ctx)

	accountHandler := handlers.NewAccountHandler(storage.NewOwnerRepository(pool), jwtSecret, time.Duration(ttlHours)*time.Hour, logger)

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
	handlers.Mount(mux, auth.RequireOwner(jwtSecret), accountHandler)

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
		httpx.WithBodyLimit(64<<10),
		httpx.WithTimeout(timeout),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, "account")

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	runtime.Serve(ctx, srv, logger, 10*time.Second)
	return nil
}

// rateLimiter keys login and registration attempts by client IP, shared through Redis when configured.
func rateLimiter(logger *slog.Logger) (httpx.Middleware, *redis.Client, error) {
	limit, err := config.Int("RATE_LIMIT_PER_MINUTE", 30)
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
	rl := httpx.NewRedisRateLimiter(rdb, limit, time.Minute, "account", httpx.ClientIP)
	return rl.Middleware(logger, config.Bool("RATE_LIMIT_FAIL_OPEN", true)), rdb, nil
}
