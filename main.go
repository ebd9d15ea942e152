package main

import (
	// standard library
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	// third-party
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	// internal
	"github.com/rmitchellscott/mediamaster/internal/bootstrap"
	"github.com/rmitchellscott/mediamaster/internal/config"
	"github.com/rmitchellscott/mediamaster/internal/database"
	"github.com/rmitchellscott/mediamaster/internal/handlers"
	"github.com/rmitchellscott/mediamaster/internal/logging"
	"github.com/rmitchellscott/mediamaster/internal/metrics"
	"github.com/rmitchellscott/mediamaster/internal/middleware"
	"github.com/rmitchellscott/mediamaster/internal/pollers"
	"github.com/rmitchellscott/mediamaster/internal/proxy"
	"github.com/rmitchellscott/mediamaster/internal/version"
)

func main() {
	_ = godotenv.Load()
	logging.InfoWithComponent(logging.ComponentStartup, "Starting Mediamaster", "version", version.String())

	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-v") {
		fmt.Println(version.String())
		os.Exit(0)
	}

	// Initialize database
	if err := database.Initialize(); err != nil {
		logging.ErrorWithComponent(logging.ComponentStartup, "Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	db := database.GetDB()

	// Seed instances from a declarative file if configured
	if err := bootstrap.SeedInstances(db); err != nil {
		logging.ErrorWithComponent(logging.ComponentStartup, "Failed to seed instances", "error", err)
		os.Exit(1)
	}

	// Initialize and start background pollers
	pollerManager := pollers.NewManager()

	healthPoller := pollers.NewHealthPoller(db)
	pollerManager.Register(healthPoller)
	handlers.SetHealthPoller(healthPoller)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := pollerManager.Start(ctx); err != nil {
		logging.ErrorWithComponent(logging.ComponentStartup, "Failed to start pollers", "error", err)
		os.Exit(1)
	}

	port := config.Get("PORT", "")
	if port == "" {
		port = "8000"
	}
	addr := ":" + port

	if mode := config.Get("GIN_MODE", ""); mode != "" {
		gin.SetMode(mode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	// Configure CORS for a separately served frontend
	corsConfig := cors.DefaultConfig()
	if origin := config.Get("CORS_ALLOW_ORIGIN", ""); origin != "" {
		corsConfig.AllowOrigins = []string{origin}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))

	api := router.Group("/api")
	{
		api.GET("/instances", handlers.GetInstancesHandler)
		api.POST("/instances", handlers.CreateInstanceHandler)
		api.POST("/instances/test", handlers.TestConnectionHandler)
		api.GET("/instances/:id", handlers.GetInstanceHandler)
		api.PUT("/instances/:id", handlers.UpdateInstanceHandler)
		api.DELETE("/instances/:id", handlers.DeleteInstanceHandler)
		api.POST("/instances/:id/test", handlers.TestInstanceHandler)

		api.GET("/settings", handlers.GetSettingsHandler)
		api.GET("/settings/:key", handlers.GetSettingHandler)
		api.PUT("/settings/:key", handlers.UpsertSettingHandler)

		api.GET("/reports/duplicates", handlers.DuplicatesHandler)
		api.GET("/reports/cutoff-unmet", handlers.CutoffUnmetHandler)
		api.GET("/reports/compare", handlers.CompareHandler)
		api.GET("/reports/quality-profiles", handlers.QualityProfilesHandler)
		api.GET("/reports/disk-space", handlers.DiskSpaceHandler)

		api.POST("/actions/:id/monitor", handlers.BulkMonitorHandler)
		api.POST("/actions/:id/quality-profile", handlers.BulkQualityProfileHandler)
		api.POST("/actions/:id/delete", handlers.BulkDeleteHandler)
		api.POST("/actions/:id/move", handlers.BulkMoveHandler)

		api.GET("/health", handlers.HealthHandler)
		api.GET("/config", handlers.ConfigHandler)
		api.GET("/version", handlers.VersionHandler)
		api.GET("/metadata/poster", handlers.PosterHandler)

		// Passthrough proxy to the upstream servers, rate limited per client
		upstreamProxy := proxy.New(db)
		rateLimiter := middleware.NewProxyRateLimiter()
		api.Any("/sonarr/:id/*path", rateLimiter.RateLimit(), upstreamProxy.Handler(database.InstanceTypeSonarr))
		api.Any("/radarr/:id/*path", rateLimiter.RateLimit(), upstreamProxy.Handler(database.InstanceTypeRadarr))
		api.Any("/plex/:id/*path", rateLimiter.RateLimit(), upstreamProxy.Handler(database.InstanceTypePlex))
	}

	router.GET("/metrics", metrics.Handler())

	// Create HTTP server
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		logging.InfoWithComponent(logging.ComponentStartup, "Listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.ErrorWithComponent(logging.ComponentStartup, "Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logging.InfoWithComponent(logging.ComponentShutdown, "Shutting down server and pollers")

	// Stop pollers first
	if err := pollerManager.Stop(); err != nil {
		logging.ErrorWithComponent(logging.ComponentShutdown, "Error stopping pollers", "error", err)
	}

	// Give a timeout context for shutdown
	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := srv.Shutdown(ctx); err != nil {
		logging.ErrorWithComponent(logging.ComponentShutdown, "Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logging.InfoWithComponent(logging.ComponentShutdown, "Server and pollers stopped")
}
