package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/armagangokce/arpay-go"
	"github.com/armagangokce/arpay-go/infra/config"
	"github.com/armagangokce/arpay-go/infra/logger"
	"github.com/armagangokce/arpay-go/infra/middle"
	"github.com/armagangokce/arpay-go/infra/response"
	"github.com/armagangokce/arpay-go/router"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load(".env")

	cfg := config.App()
	logger.Init(cfg.LogLevel, cfg.Development())
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", zap.Error(err))
		os.Exit(1)
	}

	r := chi.NewRouter()

	// Basic Middleware
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middle.RequestLogging())
	r.Use(middle.PanicRecovery())

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Origin", "X-Requested-With"},
		ExposedHeaders:   []string{"Link", "Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_ = response.WriteJSON(w, http.StatusOK, response.Response{
			Code:    http.StatusOK,
			Success: true,
			Message: "Service is healthy",
			Data: map[string]any{
				"status":    "ok",
				"timestamp": time.Now().UTC(),
				"version":   arpay.Version,
				"gateways":  arpay.AvailableGateways(),
			},
		})
	})

	router.Routes(r, nil)

	// Not Found
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		_ = response.WriteJSON(w, http.StatusNotFound, response.Response{Code: http.StatusNotFound, Success: false, Message: "Not Found"})
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           r,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("API is running", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()

	logger.Info("shutting down gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
	}
}
