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

	"github.com/gin-gonic/gin"
	logrus "github.com/sirupsen/logrus"

	"pilotos_api/internal/config"
	"pilotos_api/internal/logger"
	"pilotos_api/internal/middleware"
	"pilotos_api/internal/routes"
	"pilotos_api/internal/services"
)

func main() {
	cfg := config.Load()

	// Initialize structured logging to file
	accessLog := logger.Setup(cfg.LogFile, cfg.LogLevel)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to the database
	db, err := config.InitDB(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("database init failed")
	}

	created, err := services.NewAuthService(db).EnsureAdmin(context.Background(), cfg.AdminEmail, cfg.AdminPassword)
	if err != nil {
		logrus.WithError(err).Fatal("admin bootstrap failed")
	}
	if created {
		logger.Audit("users.bootstrap_admin", logrus.Fields{"email": cfg.AdminEmail})
	}

	r := routes.SetupRouter(cfg, db, accessLog)

	// Wrap with CORS
	srv := &http.Server{
		Addr:              fmt.Sprintf("0.0.0.0:%d", cfg.AppPort),
		Handler:           middleware.EnableCORS(cfg.CORSAllowedOrigins, r),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logrus.Infof("server running at %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("graceful shutdown failed")
	}
	logrus.Info("server stopped")
}
