package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"eventmanager/config"
	_ "eventmanager/docs"
	"eventmanager/internal/adapters/auth"
	"eventmanager/internal/adapters/notify"
	"eventmanager/internal/clock"
	delivery "eventmanager/internal/delivery/http"
	"eventmanager/internal/delivery/http/controllers"
	"eventmanager/internal/delivery/http/middleware"
	"eventmanager/internal/repository/postgres"
	"eventmanager/internal/services"
)

const (
	serviceTimeout  = 10 * time.Second
	shutdownTimeout = 15 * time.Second
	bcryptCost      = 10
)

// @title Event Manager API
// @version 1.0
// @description Events, locations and registrations with a capacity-accounted lifecycle.
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger := config.NewLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("load config", "err", err)
		os.Exit(1)
	}

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Error("ping database", "err", err)
		os.Exit(1)
	}
	logger.Info("connected to postgres")

	clk := clock.NewSystem()

	// Repositories
	eventRepo := postgres.NewEventRepository(db)
	locationRepo := postgres.NewLocationRepository(db)
	regRepo := postgres.NewRegistrationRepository(db)
	userRepo := postgres.NewUserRepository(db)
	tx := postgres.NewTransactor(db)

	// Adapters
	hasher := auth.NewBcryptHasher(bcryptCost)
	tokenIssuer := auth.NewJWTIssuer(cfg.JWTSecret)
	tokenVerifier := auth.NewJWTVerifier(cfg.JWTSecret)
	mailer := notify.NewMailer(notify.MailerConfig{
		Provider:    cfg.MailProvider,
		FromAddress: cfg.MailFromAddress,
		FromName:    cfg.MailFromName,
		SES: notify.SESConfig{
			Region:          cfg.SESRegion,
			AccessKeyID:     cfg.SESAccessKeyID,
			SecretAccessKey: cfg.SESSecretKey,
		},
	}, logger)
	publisher := notify.NewFanoutPublisher(
		notify.NewLogPublisher(logger),
		notify.NewEmailPublisher(mailer, userRepo, logger),
	)

	// Services
	userService := services.NewUserService(userRepo, hasher, tokenIssuer, cfg.JWTExpiry, clk, logger, serviceTimeout)
	locationService := services.NewLocationService(locationRepo, clk, logger, serviceTimeout)
	eventService := services.NewEventService(eventRepo, locationRepo, regRepo, userRepo, tx, publisher, clk, logger, serviceTimeout)
	registrationService := services.NewRegistrationService(eventRepo, regRepo, tx, clk, logger, serviceTimeout)
	scheduler := services.NewStatusScheduler(eventRepo, regRepo, tx, publisher, clk, logger, cfg.SchedulerInterval)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.AdminPassword != "" {
		if err := userService.EnsureDefaultAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			logger.Error("seed default admin", "err", err)
			os.Exit(1)
		}
	} else {
		logger.Warn("ADMIN_PASSWORD not set, skipping default admin seeding")
	}

	go scheduler.Run(ctx)

	// Controllers and router
	authController := controllers.NewAuthController(logger, userService)
	eventController := controllers.NewEventController(logger, eventService)
	registrationController := controllers.NewRegistrationController(logger, registrationService)
	locationController := controllers.NewLocationController(logger, locationService)
	mux := delivery.NewRouter(authController, eventController, registrationController, locationController, tokenVerifier)

	allowedOrigins := []string{"http://localhost:3000"}
	handler := middleware.Logging(logger, middleware.CORS(allowedOrigins, mux))

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "err", err)
	}
}
