// Package main initializes and starts the medicine tracker API server,
// setting up configuration, logging, database connections, repositories,
// services, the retention sweeper and the HTTP router.
package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"github.com/NikhilYadav04/pillbin-v2/internal/config"
	"github.com/NikhilYadav04/pillbin-v2/internal/db"
	"github.com/NikhilYadav04/pillbin-v2/internal/logger"
	"github.com/NikhilYadav04/pillbin-v2/internal/repository"
	"github.com/NikhilYadav04/pillbin-v2/internal/server/handler/http"
	"github.com/NikhilYadav04/pillbin-v2/internal/service"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse command-line, file and environment configuration.
	options, err := config.Parse()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", orDefault(version, "N/A"))
	fmt.Printf("Build date: %s\n", orDefault(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(2)
	}
	zapLogger := log.Log

	// Initialize PostgreSQL connection and schema.
	postgresDB, err := db.InitPostgres(options.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}
	defer postgresDB.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize repositories.
	medicineRepo := repository.NewPostgresMedicineRepository(postgresDB)
	userRepo := repository.NewPostgresUserRepository(postgresDB)

	// Initialize business-logic services.
	limits := service.DefaultLimits()
	limits.RetentionWindow = options.RetentionWindow()
	medicineService := service.NewMedicineService(medicineRepo, userRepo, zapLogger, service.WithLimits(limits))
	authService := service.NewAuthService(userRepo, options.JWTSecret)
	userService := service.NewUserService(userRepo)

	// Start the periodic status refresh and retention sweep.
	if interval := options.SweepInterval(); interval > 0 {
		db.StartRetentionSweeper(ctx, medicineService, interval, zapLogger)
	}

	// Build the router with middleware and routes.
	router := http.NewRouter(http.Handlers{
		Auth:     &http.AuthHandler{AuthService: authService, Log: zapLogger},
		User:     &http.UserHandler{UserService: userService, Reconciler: medicineService, Log: zapLogger},
		Medicine: &http.MedicineHandler{MedicineService: medicineService, Log: zapLogger},
	}, options.JWTSecret, options.AdminToken, zapLogger)

	server := &nethttp.Server{
		Addr:              options.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		TLSConfig:         &tls.Config{MinVersion: tls.VersionTLS12},
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("graceful shutdown failed", zap.Error(err))
		}
	}()

	if options.TLSEnabled() {
		zapLogger.Info("starting HTTPS server", zap.String("addr", options.Address))
		err = server.ListenAndServeTLS(options.TLSCert, options.TLSKey)
	} else {
		zapLogger.Info("starting HTTP server", zap.String("addr", options.Address))
		err = server.ListenAndServe()
	}
	if err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		zapLogger.Fatal("server stopped", zap.Error(err))
	}
	zapLogger.Info("server stopped")
}

// orDefault returns s, or def when s is empty (equivalent to cmp.Or(s, def),
// which requires Go 1.22).
func orDefault(s, def string) string {
	if s != "" {
		return s
	}
	return def
}
