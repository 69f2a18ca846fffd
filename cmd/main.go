package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cgpa-backend/internal/config"
	"cgpa-backend/internal/database"
	"cgpa-backend/internal/handler"
	"cgpa-backend/internal/logger"
	"cgpa-backend/internal/service"
	"github.com/gorilla/handlers"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize record store
	st, err := database.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Warn("Error closing store", "error", err)
		}
	}()

	// Initialize services
	studentService := service.NewStudentService(st, log, loc)
	uploadService := service.NewUploadService(studentService, log)

	// Initialize handlers
	studentHandler := handler.NewStudentHandler(studentService, log)
	uploadHandler := handler.NewUploadHandler(uploadService, cfg.MaxUploadBytes(), log)

	r := handler.NewRouter(studentHandler, uploadHandler)

	var h http.Handler = r
	h = handlers.CORS(
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)(h)
	h = handlers.RecoveryHandler(handlers.RecoveryLogger(log.StdLog()), handlers.PrintRecoveryStack(true))(h)
	h = handlers.CombinedLoggingHandler(log.StdLog().Writer(), h)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server running", "port", cfg.Port, "driver", cfg.DBDriver)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
	case <-ctx.Done():
		log.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
	}
	return nil
}
