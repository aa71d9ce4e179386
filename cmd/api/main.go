// Package main is the entry point for the car rental API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pkordes/car-rental/backend/api"
	"github.com/pkordes/car-rental/backend/internal/catalog"
	"github.com/pkordes/car-rental/backend/internal/config"
	"github.com/pkordes/car-rental/backend/internal/daterange"
	"github.com/pkordes/car-rental/backend/internal/handler"
	"github.com/pkordes/car-rental/backend/internal/integrations/breaker"
	"github.com/pkordes/car-rental/backend/internal/integrations/emailjs"
	"github.com/pkordes/car-rental/backend/internal/integrations/sheets"
	"github.com/pkordes/car-rental/backend/internal/metrics"
	"github.com/pkordes/car-rental/backend/internal/pricing"
	"github.com/pkordes/car-rental/backend/internal/repo"
	"github.com/pkordes/car-rental/backend/internal/service"
	"github.com/pkordes/car-rental/backend/internal/storage"
	"github.com/pkordes/car-rental/backend/migrations"
)

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		// Use plain stderr before the logger is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()

	// --- Database ---------------------------------------------------------
	// New() does not open connections immediately; the first query does.
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Verify the DB is reachable before accepting traffic.
	if err := pool.Ping(ctx); err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	slog.Info("database connection established")

	if cfg.MigrateOnStart {
		if err := migrate(ctx, pool, logger); err != nil {
			slog.Error("migrations failed", "error", err)
			os.Exit(1)
		}
	}

	// --- Metrics ----------------------------------------------------------
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// --- Static data ------------------------------------------------------
	rates, err := loadRates(cfg.RatesFile)
	if err != nil {
		slog.Error("failed to load rate table", "error", err)
		os.Exit(1)
	}

	// --- Upstreams --------------------------------------------------------
	breakers := breaker.Settings{
		Interval:         cfg.Breaker.Interval,
		Timeout:          cfg.Breaker.Timeout,
		FailureThreshold: cfg.Breaker.FailureThreshold,
	}
	if cfg.Sheets.URL == "" {
		slog.Warn("BOOKING_SHEET_URL is not set; every booking submission will fail")
	}
	sheet := sheets.NewClient(cfg.Sheets.URL, cfg.Sheets.Token, cfg.Sheets.Timeout, breakers, m.BreakerStateChanged, logger)

	// mailer stays a nil interface when EmailJS is not configured.
	var mailer service.Mailer
	if cfg.Email.ServiceID != "" {
		mailer = emailjs.NewClient(cfg.Email.BaseURL, emailjs.Credentials{
			ServiceID:  cfg.Email.ServiceID,
			PublicKey:  cfg.Email.PublicKey,
			PrivateKey: cfg.Email.PrivateKey,
		}, cfg.Email.Timeout, breakers, m.BreakerStateChanged, logger)
	} else {
		slog.Warn("EMAILJS_SERVICE_ID is not set; emails are disabled")
	}

	// images stays a nil interface when no bucket is configured; a typed nil
	// *storage.ImageStore would not compare equal to nil inside CarService.
	var images service.ImageStore
	store, err := storage.NewImageStore(ctx, storage.Config{
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		PublicURL: cfg.Storage.PublicURL,
		MaxBytes:  cfg.Storage.MaxBytes,
	}, logger)
	if err != nil {
		slog.Error("failed to configure image storage", "error", err)
		os.Exit(1)
	}
	if store != nil {
		images = store
	} else {
		slog.Warn("S3_BUCKET is not set; car image uploads are disabled")
	}

	// --- Services ---------------------------------------------------------
	clock := pricing.SystemClock{}
	policies := service.Policies{
		QuickBooking: pricing.Policy{
			MinimumDays:             cfg.Booking.QuickBookingMinDays,
			DisallowSameCalendarDay: cfg.Booking.QuickBookingNoSameDay,
			Location:                cfg.Location,
		},
		Wizard: pricing.Policy{
			MinimumDays: cfg.Booking.WizardMinDays,
			Location:    cfg.Location,
		},
	}

	dates := service.NewDateRangeService(daterange.NewCodec(logger, m))
	notifier := service.NewNotifier(mailer, service.EmailTemplates{
		CustomerConfirmation: cfg.Email.CustomerTemplate,
		OwnerNotification:    cfg.Email.OwnerTemplate,
		Contact:              cfg.Email.ContactTemplate,
		OwnerEmail:           cfg.Email.OwnerEmail,
	}, cfg.Location, logger)

	carRepo := repo.NewCarRepo(pool)
	bookingRepo := repo.NewBookingRepo(pool)

	srv := handler.NewServer(handler.Services{
		Dates:  dates,
		Quotes: service.NewQuoteService(dates, rates, clock, policies),
		Cars:   service.NewCarService(carRepo, rates, images, logger),
		Bookings: service.NewBookingService(service.BookingDeps{
			Dates:    dates,
			Cars:     carRepo,
			Bookings: bookingRepo,
			Rates:    rates,
			Sheet:    sheet,
			Notifier: notifier,
			Clock:    clock,
			Policy:   policies.Wizard,
			Counter:  m,
			Log:      logger,
		}),
		Contact: service.NewContactService(notifier, logger),
		Admin:   service.NewAdminService(repo.NewAdminRepo(pool), cfg.Admin.JWTSecret, cfg.Admin.SessionTTL, clock, logger),
	}, handler.ServerOptions{
		OpenAPI:      api.OpenAPI,
		CookieSecure: cfg.Admin.CookieSecure,
		Log:          logger,
	})

	// --- Router -----------------------------------------------------------
	routerOpts := handler.RouterOptions{
		Log:           logger,
		CORSOrigins:   cfg.CORSOrigins,
		MaxBodyBytes:  cfg.MaxBodyBytes,
		MaxImageBytes: cfg.Storage.MaxBytes,
	}
	if cfg.MetricsEnabled {
		routerOpts.Observer = m
		routerOpts.Metrics = promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
	}

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	// WriteTimeout leaves room for the booking sheet call plus both emails.
	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.NewRouter(srv, routerOpts),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// migrate applies every pending embedded migration.
func migrate(ctx context.Context, pool *pgxpool.Pool, log *slog.Logger) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return err
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return err
	}
	for _, r := range results {
		log.Info("migration applied", "version", r.Source.Version, "file", r.Source.Path, "duration", r.Duration)
	}
	return nil
}

func loadRates(path string) (*catalog.RateTable, error) {
	if path == "" {
		return catalog.Load()
	}
	return catalog.LoadFile(path)
}
