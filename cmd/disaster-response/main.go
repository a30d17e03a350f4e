package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ayush112812/disaster-response-platform-sub001/internal/aggregate"
	"github.com/ayush112812/disaster-response-platform-sub001/internal/api"
	"github.com/ayush112812/disaster-response-platform-sub001/internal/cache"
	"github.com/ayush112812/disaster-response-platform-sub001/internal/config"
	"github.com/ayush112812/disaster-response-platform-sub001/internal/feeds"
	"github.com/ayush112812/disaster-response-platform-sub001/internal/geocode"
	"github.com/ayush112812/disaster-response-platform-sub001/internal/hub"
	"github.com/ayush112812/disaster-response-platform-sub001/internal/logging"
	"github.com/ayush112812/disaster-response-platform-sub001/internal/observability"
	"github.com/ayush112812/disaster-response-platform-sub001/internal/relay"
	"github.com/ayush112812/disaster-response-platform-sub001/internal/repository"
	"github.com/ayush112812/disaster-response-platform-sub001/internal/snapshot"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level)

	slog.Info("Server starting", "host", cfg.Server.Host, "port", cfg.Server.Port)

	db, err := repository.NewSQLiteDB(cfg.DB.Path)
	if err != nil {
		logging.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db.StartFeed(ctx)

	clock := clockwork.NewRealClock()
	metrics := observability.NewMetrics()
	store := snapshot.NewStore()
	snapshotCache := cache.NewMemory(clock)

	connHub := hub.New(metrics)

	changeRelay := relay.New(db, connHub, metrics)
	changeRelay.Start()

	var adapters []feeds.Adapter
	if cfg.Sources.WeatherEnabled {
		adapters = append(adapters, feeds.NewWeatherAdapter(cfg.Sources.WeatherURL, cfg.Aggregator.FetchTimeout))
	}
	if cfg.Sources.SeismicEnabled {
		adapters = append(adapters, feeds.NewSeismicAdapter(cfg.Sources.SeismicURL, cfg.Aggregator.FetchTimeout))
	}
	social := feeds.NewSocialAdapter(clock, cfg.Sources.MockSeed)
	if cfg.Sources.SocialEnabled {
		adapters = append(adapters, social)
	}
	if cfg.Sources.NewsEnabled {
		adapters = append(adapters, feeds.NewNewsAdapter(clock, cfg.Sources.MockSeed))
	}

	aggregator := aggregate.New(adapters, store, snapshotCache, metrics, clock, aggregate.Options{
		Interval:     cfg.Aggregator.Interval,
		FetchTimeout: cfg.Aggregator.FetchTimeout,
		SnapshotTTL:  cfg.Aggregator.SnapshotTTL,
	})
	aggregator.Start(ctx)

	official := feeds.NewOfficialUpdates(clock)
	pusher := hub.NewPusher(connHub, db, social, official, clock, cfg.Hub.PushInterval)
	pusher.Start(ctx)

	var geocoder geocode.Geocoder = geocode.Disabled{}
	if cfg.Geocode.MapboxToken != "" {
		geocoder = geocode.NewCached(
			geocode.NewClient(cfg.Geocode.MapboxToken, cfg.Geocode.Timeout),
			cfg.Geocode.CacheSize,
		)
	} else {
		slog.Warn("MAPBOX_TOKEN not set, geocoding disabled")
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "X-User-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false, // Set to false when using wildcard origins
	}))
	router.Use(api.RateLimitMiddleware(10)) // 10 req/s global limit

	handler := api.NewHandler(db, store, geocoder, clock)
	handler.RegisterRoutes(router)

	router.GET("/ws", gin.WrapF(hub.WSHandler(connHub)))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down...")

	cancel()
	pusher.Stop()
	aggregator.Stop()
	changeRelay.Stop()
	connHub.Close() // Close all client channels gracefully

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
}
