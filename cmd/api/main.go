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

	_ "tourops/api/swagger" // swagger docs
	"tourops/internal/backend"
	"tourops/internal/backup"
	"tourops/internal/config"
	"tourops/internal/handler"
	"tourops/internal/logger"
	"tourops/internal/middleware"
	"tourops/internal/model"
	"tourops/internal/service"
	"tourops/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// @title           Tour Operations API
// @version         1.0
// @description     Back office for tour bookings and their master data.
// @host            localhost:8080
// @BasePath        /
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Config failed: %v", err)
	}

	zl, err := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output})
	if err != nil {
		log.Fatalf("Logger failed: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ds, err := backend.Open(ctx, cfg.Storage, zl,
		backend.WithSQLLogger(logger.NewGormLogger(zl, logger.MapGormLogLevel(cfg.Log.SQLLevel))))
	if err != nil {
		zl.Fatal("storage unavailable", zap.Error(err))
	}
	defer func() {
		if err := ds.Close(); err != nil {
			zl.Error("close storage", zap.Error(err))
		}
	}()

	var metrics *middleware.Metrics
	if cfg.Metrics.Enabled {
		metrics = middleware.NewMetrics()
		metrics.SetBackend(ds.Backend())
	}

	backups, err := backup.New(ctx, cfg.Backup)
	if err != nil {
		zl.Fatal("backup store unavailable", zap.Error(err), zap.String("driver", cfg.Backup.Driver))
	}

	// Set up WebSocket Hub
	wsHub := websocket.NewHub(zl, cfg.HTTP.CORSAllowOrigins)
	go wsHub.Run(ctx)

	notify := service.Notifiers{
		wsHub,
		service.NotifyFunc(func(kind model.Kind, action model.ChangeAction, _ string) {
			metrics.ObserveChange(kind, action)
		}),
	}
	services := service.New(ds, backups, notify, zl)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(zl), metrics.Middleware())

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Accept", middleware.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{middleware.RequestIDHeader, "Content-Disposition"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":     "OK",
			"backend":    ds.Backend(),
			"ws_clients": wsHub.ClientCount(),
		})
	})
	if metrics != nil {
		router.GET("/metrics", gin.WrapH(metrics.Handler()))
	}
	router.GET("/ws", wsHub.ServeWs)

	handler.RegisterAll(router.Group(""), services)

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	go func() {
		zl.Info("server listening",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.App.Env),
			zap.String("backend", string(ds.Backend())))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Error("server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	zl.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("graceful shutdown failed", zap.Error(err))
	}
}
