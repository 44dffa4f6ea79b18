package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"

	"github.com/example/room-booking/internal/application"
	"github.com/example/room-booking/internal/config"
	httptransport "github.com/example/room-booking/internal/http"
	"github.com/example/room-booking/internal/logging"
	"github.com/example/room-booking/internal/mail"
	"github.com/example/room-booking/internal/maintenance"
	"github.com/example/room-booking/internal/persistence"
	"github.com/example/room-booking/internal/persistence/gormstore"
	"github.com/example/room-booking/internal/persistence/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		slog.Error("booking service stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	cfg, err := config.Load(args)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	logger := logging.New(cfg.Env, level, os.Stdout)
	slog.SetDefault(logger)

	store, err := openStore(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	handler, err := newHandler(cfg, store, time.Now, logger)
	if err != nil {
		return err
	}

	janitor, err := maintenance.NewJanitor(store, cfg.Maintenance.CleanupSchedule, time.Now, logger)
	if err != nil {
		return err
	}
	janitor.Start()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
		janitor.Stop(shutdownCtx)
	}()

	logger.Info("booking API listening", "addr", server.Addr, "env", cfg.Env)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server encountered error: %w", err)
	}
	<-shutdownDone
	logger.Info("booking API stopped")
	return nil
}

// openStore picks the gorm store for postgres URLs and the SQL store
// otherwise. Both apply their schema before returning.
func openStore(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (persistence.Store, error) {
	if gormstore.IsPostgresDSN(cfg.URL) {
		store, err := gormstore.Open(ctx, gormstore.Config{DSN: cfg.URL}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres storage: %w", err)
		}
		logger.Info("storage ready", "driver", "postgres")
		return store, nil
	}

	store, err := sqlite.Open(ctx, sqlite.Config{DSN: cfg.URL}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite storage: %w", err)
	}
	logger.Info("storage ready", "driver", "sqlite")
	return store, nil
}

// newHandler wires the services and handlers onto store.
func newHandler(cfg config.Config, store persistence.Store, now func() time.Time, logger *slog.Logger) (http.Handler, error) {
	idGenerator := uuid.NewString

	tokens, err := application.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create token issuer: %w", err)
	}

	mailer := mail.New(mail.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		User:     cfg.SMTP.User,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	}, logger)
	if !mailer.Configured() {
		logger.Warn("SMTP is not configured; registration codes cannot be sent")
	}
	domains := application.ParseDomainPolicy(cfg.Registration.AllowedDomain)

	settingsService := application.NewSettingsServiceWithLogger(store, now, logger)
	authService := application.NewAuthServiceWithLogger(store, tokens, application.VerifyPassword, logger)
	registrationService := application.NewRegistrationServiceWithLogger(store, mailer, domains, application.HashPassword, idGenerator, now, logger)
	roomService := application.NewRoomServiceWithLogger(store, idGenerator, now, logger)
	userService := application.NewUserServiceWithLogger(store, logger)
	bookingService := application.NewBookingServiceWithLogger(store, settingsService, idGenerator, now, logger)

	return httptransport.NewRouter(httptransport.RouterConfig{
		Auth:     httptransport.NewAuthHandler(authService, registrationService, cfg.HTTP.SecureCookies, logger),
		Bookings: httptransport.NewBookingHandler(bookingService, logger),
		Rooms:    httptransport.NewRoomHandler(roomService, logger),
		Users:    httptransport.NewUserHandler(userService, logger),
		Settings: httptransport.NewSettingsHandler(settingsService, logger),
		Kiosk:    httptransport.NewKioskHandler(bookingService, roomService, settingsService, now, logger),
		Sessions: authService,
		Logger:   logger,
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
			httptransport.CORS(cfg.HTTP.CORSOrigins),
		},
	}), nil
}
