package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kruegge82/adressCorrector/app/bootstrap"
	"github.com/kruegge82/adressCorrector/app/controllers"
	"github.com/kruegge82/adressCorrector/routes"
	"go.uber.org/zap"
)

func main() {
	// 1. Load configuration
	settings := bootstrap.LoadConfig(os.Getenv("APP_CONFIG"))

	// 2. Logger
	logger, err := bootstrap.InitLogger(bootstrap.GetEnv("APP_ENV", settings.Env))
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	logger.Info("Starting Address Corrector Service", zap.String("version", controllers.Version))

	// 3. Backends and services
	startCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	app, err := bootstrap.New(startCtx, settings, logger)
	cancel()
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer app.Close()

	// 4. Controllers
	addressController := controllers.NewAddressController(app.Corrections, app.Jobs, app.Checks, settings.RequestTimeout, logger)
	adminController := controllers.NewAdminController(app.Admin, logger)

	// 5. Router
	if settings.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	routes.SetupAllRoutes(router, addressController, adminController, routes.Options{
		RateLimit: settings.RateLimit,
		Burst:     settings.Burst,
		Logger:    logger,
	})

	// 6. Serve until interrupted
	srv := &http.Server{
		Addr:              ":" + settings.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("Starting HTTP server", zap.String("port", settings.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
