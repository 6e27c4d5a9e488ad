package main

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/rezervalabs/rezerva/internal/booking"
	"github.com/rezervalabs/rezerva/internal/handlers"
	"github.com/rezervalabs/rezerva/internal/migrate"
	"github.com/rezervalabs/rezerva/internal/outbox"
	"github.com/rezervalabs/rezerva/internal/storage"
	"github.com/rezervalabs/rezerva/libs/config"
	"github.com/rezervalabs/rezerva/libs/db"
	"github.com/rezervalabs/rezerva/libs/httpx"
	"github.com/rezervalabs/rezerva/libs/kafkax"
	otelx "github.com/rezervalabs/rezerva/libs/otel"
	"github.com/rezervalabs/rezerva/libs/runtime"
)

func main() {
	_ = godotenv.Load()

	service := config.String("SERVICE_NAME", "rezerva")
	port, err := config.Port("PORT", "8080")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

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

	dbURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		panic(err)
	}
	jwtSecret, err := config.RequiredString("JWT_SECRET")
	if err != nil {
		panic(err)
	}

	pool, err := db.Open(ctx, dbURL)
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	if err := migrate.Up(ctx, pool); err != nil {
		logger.Error("migrations failed", "err", err)
		panic(err)
	}

	kafkaBrokers := config.String("KAFKA_BROKERS", "")
	outboxRepo := outbox.NewRepository(pool)
	outboxPublisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   kafkaBrokers,
		PollEvery: config.Duration("OUTBOX_POLL_INTERVAL", 2*time.Second),
		BatchSize: config.Int("OUTBOX_BATCH_SIZE", 50),
	})
	go outboxPublisher.Run(ctx)

	identityRepo := storage.NewIdentityRepository(pool)
	subcategoryRepo := storage.NewSubcategoryRepository(pool)
	serviceRepo := storage.NewServiceRepository(pool)
	employeeRepo := storage.NewEmployeeRepository(pool)
	workingDayRepo := storage.NewWorkingDayRepository(pool)
	reservationRepo := storage.NewReservationRepository(pool, outboxRepo)

	core := booking.NewService(reservationRepo, serviceRepo, workingDayRepo, identityRepo, logger)

	authHandler := handlers.NewAuthHandler(identityRepo, jwtSecret, config.Duration("JWT_TTL", 24*time.Hour))
	directoryHandler := handlers.NewDirectoryHandler(identityRepo, subcategoryRepo)
	catalogHandler := handlers.NewCatalogHandler(serviceRepo, subcategoryRepo, identityRepo)
	employeeHandler := handlers.NewEmployeeHandler(employeeRepo, identityRepo)
	scheduleHandler := handlers.NewScheduleHandler(workingDayRepo, identityRepo)
	bookingHandler := handlers.NewBookingHandler(core, logger)

	readyChecks := []runtime.ReadyCheck{
		{Name: "db", Check: db.ReadyCheck(pool)},
	}
	if strings.TrimSpace(kafkaBrokers) != "" {
		readyChecks = append(readyChecks, runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(kafkaBrokers)})
	}
	mux := runtime.NewBaseMuxWithReady(readyChecks...)

	mux.HandleFunc("/api/v1/auth/register", authHandler.Register)
	mux.HandleFunc("/api/v1/auth/login", authHandler.Login)
	mux.HandleFunc("/api/v1/auth/me", authHandler.Me)
	mux.HandleFunc("/api/v1/clients", directoryHandler.CreateClient)
	mux.HandleFunc("/api/v1/companies", directoryHandler.Companies)
	mux.HandleFunc("/api/v1/subcategories", directoryHandler.Subcategories)
	mux.HandleFunc("/api/v1/services", catalogHandler.Services)
	mux.HandleFunc("/api/v1/services/update", catalogHandler.UpdateService)
	mux.HandleFunc("/api/v1/services/delete", catalogHandler.DeleteService)
	mux.HandleFunc("/api/v1/services/employees", catalogHandler.ServiceEmployees)
	mux.HandleFunc("/api/v1/services/employees/remove", catalogHandler.RemoveEmployee)
	mux.HandleFunc("/api/v1/employees", employeeHandler.Employees)
	mux.HandleFunc("/api/v1/employees/delete", employeeHandler.Delete)
	mux.HandleFunc("/api/v1/working-days", scheduleHandler.WorkingDays)
	mux.HandleFunc("/api/v1/reservations", bookingHandler.Create)
	mux.HandleFunc("/api/v1/reservations/available", bookingHandler.AvailableSlots)
	mux.HandleFunc("/api/v1/reservations/get", bookingHandler.Get)
	mux.HandleFunc("/api/v1/reservations/client", bookingHandler.ListByClient)
	mux.HandleFunc("/api/v1/reservations/company", bookingHandler.ListByCompany)
	mux.HandleFunc("/api/v1/reservations/employee", bookingHandler.ListByEmployee)
	mux.HandleFunc("/api/v1/reservations/status", bookingHandler.UpdateStatus)

	httpHandler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithBodyLimit(int64(config.Int("MAX_BODY_BYTES", 1<<20))),
		httpx.WithTimeout(config.Duration("REQUEST_TIMEOUT", 30*time.Second)),
		httpx.WithBearerAuth(jwtSecret),
		rateLimitMiddleware(logger),
		httpx.WithCORS(httpx.CORSPolicy{
			AllowedOrigins:   splitCSV(config.String("CORS_ALLOWED_ORIGINS", "")),
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut},
			AllowedHeaders:   []string{"Authorization", "Content-Type"},
			AllowCredentials: false,
			MaxAge:           10 * time.Minute,
		}),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, service)

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}

// rateLimitMiddleware prefers shared Redis state so multiple instances see one
// window; without REDIS_ADDR it falls back to a per-process limiter.
func rateLimitMiddleware(logger *slog.Logger) httpx.Middleware {
	limit := config.Int("RATE_LIMIT_PER_MINUTE", 120)
	if addr := strings.TrimSpace(config.String("REDIS_ADDR", "")); addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: addr})
		limiter := httpx.NewRedisRateLimiter(rdb, limit, time.Minute, "rezerva")
		return limiter.Middleware(logger, true)
	}
	return httpx.NewRateLimiter(limit, time.Minute).Middleware()
}

func splitCSV(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
