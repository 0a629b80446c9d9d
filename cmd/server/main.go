package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"github.com/xerp/xerp/internal/config"
	"github.com/xerp/xerp/internal/handlers"
	"github.com/xerp/xerp/internal/middleware"
	"github.com/xerp/xerp/internal/repository"
	"github.com/xerp/xerp/internal/service"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	} else {
		logger.WithField("log_level", cfg.LogLevel).Warn("Unknown log level, keeping info")
	}

	for _, warning := range cfg.Warnings() {
		logger.Warn(warning)
	}

	pool, err := initPostgres(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to DB")
	}
	defer pool.Close()

	// Initialize repositories
	otpRepo := repository.NewOTPRepository(pool, logger)
	userRepo := repository.NewUserRepository(pool, logger)
	adminRepo := repository.NewAdminRepository(pool, logger)

	// Initialize services
	jwtService, err := service.NewJWTService(&cfg.JWT, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize JWT service")
	}

	mailer := service.NewSMTPMailer(&cfg.SMTP, logger)
	otpService := service.NewOTPService(otpRepo, mailer, &cfg.OTP, logger)
	codeGenerator := service.NewCodeGenerator(adminRepo, logger)
	registrationService := service.NewRegistrationService(userRepo, adminRepo, codeGenerator, logger)

	authHandlers := handlers.NewAuthHandlers(otpService, registrationService, logger)
	adminHandlers := handlers.NewAdminHandlers(registrationService, logger)
	healthHandlers := handlers.NewHealthHandlers(pool, logger)

	authMiddleware := middleware.NewAuthMiddleware(jwtService, logger)
	router := setupRouter(authHandlers, adminHandlers, healthHandlers, authMiddleware, logger)

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.WithFields(logrus.Fields{
			"addr": cfg.Server.Addr,
			"app":  cfg.AppName,
		}).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server exited")
}

// initPostgres builds the shared pool and refuses to continue unless SELECT 1
// succeeds.
func initPostgres(cfg *config.Config, logger *logrus.Logger) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolCfg, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DATABASE_URL: %w", err)
	}
	poolCfg.MaxConns = cfg.Database.MaxConns

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := handlers.CheckDatabase(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database connection failed during startup: %w", err)
	}

	if cfg.Database.AutoMigrate {
		if err := repository.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		logger.Info("Database schema applied")
	}

	logger.WithFields(logrus.Fields{
		"app":       cfg.AppName,
		"max_conns": cfg.Database.MaxConns,
	}).Info("Connected to DB")
	return pool, nil
}

func setupRouter(
	authHandlers *handlers.AuthHandlers,
	adminHandlers *handlers.AdminHandlers,
	healthHandlers *handlers.HealthHandlers,
	authMiddleware *middleware.AuthMiddleware,
	logger *logrus.Logger,
) *mux.Router {
	router := mux.NewRouter()

	router.Use(middleware.CORSMiddleware)
	router.Use(middleware.LoggingMiddleware(logger))

	router.HandleFunc("/", healthHandlers.Root).Methods("GET")
	router.HandleFunc("/health", healthHandlers.Health).Methods("GET")

	router.HandleFunc("/login", authHandlers.Login).Methods("POST", "OPTIONS")
	router.HandleFunc("/verify", authHandlers.VerifyOTP).Methods("POST", "OPTIONS")
	router.HandleFunc("/add_user", authHandlers.Register).Methods("POST", "OPTIONS")

	// Route names keep the spelling existing clients call.
	router.Handle("/ceate_user", authMiddleware.RequireAuth(http.HandlerFunc(adminHandlers.CreateAdmin))).Methods("POST", "OPTIONS")
	router.Handle("/ceate_admin_user", authMiddleware.RequireAuth(http.HandlerFunc(adminHandlers.CreateAdminUser))).Methods("POST", "OPTIONS")

	return router
}
