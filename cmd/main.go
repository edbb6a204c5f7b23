package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/kdduha/mermaid-mapgen/internal/cache"
	"github.com/kdduha/mermaid-mapgen/internal/config"
	"github.com/kdduha/mermaid-mapgen/internal/handler"
	"github.com/kdduha/mermaid-mapgen/internal/logger"
	"github.com/kdduha/mermaid-mapgen/internal/metrics"
	"github.com/kdduha/mermaid-mapgen/internal/oracle"
	"github.com/kdduha/mermaid-mapgen/internal/service"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "github.com/kdduha/mermaid-mapgen/docs"
	httpSwagger "github.com/swaggo/http-swagger"
)

// @title Mermaid map generator
// @version 1.0
// @description Generates Mermaid mind maps, concept graphs, flowcharts and sequence diagrams with an LLM.
// @BasePath /
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	appLogger, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer appLogger.Sync()

	o, err := newOracle(ctx, cfg)
	if err != nil {
		appLogger.Fatal("oracle init failed", "provider", cfg.Oracle.Provider, "error", err)
	}
	appLogger.Info("oracle ready", "name", o.Name())

	diagramService := service.NewDiagramService(appLogger, o, cfg.Oracle.Timeout)

	if c := newCache(cfg); c != nil {
		defer c.Close()
		diagramService.SetCacheClient(c)
		appLogger.Info("cache enabled", "backend", cfg.Cache.Backend, "ttl", cfg.Cache.TTL)
	}

	g := handler.NewGenerateHandler(diagramService, appLogger)

	r := chi.NewRouter()
	r.Use([]func(http.Handler) http.Handler{
		middleware.Logger,
		middleware.Recoverer,
		middleware.Throttle(cfg.Server.ThrottleLimit),
		middleware.Timeout(cfg.Server.Timeout),
		metrics.Middleware,
	}...)

	r.Post("/generate", g.Generate)
	r.Get("/healthz", g.Health)
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	r.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	go func() {
		appLogger.Info("server started", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("listen error", "error", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("server forced to shutdown", "error", err)
		return
	}
	appLogger.Info("server stopped")
}

func newOracle(ctx context.Context, cfg *config.Config) (oracle.Oracle, error) {
	switch cfg.Oracle.Provider {
	case config.ProviderGemini:
		return oracle.NewGemini(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
	default:
		return oracle.NewOpenAI(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Model), nil
	}
}

type closableCache interface {
	service.Cache
	io.Closer
}

func newCache(cfg *config.Config) closableCache {
	switch cfg.Cache.Backend {
	case config.CacheRedis:
		return cache.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Cache.TTL)
	case config.CacheMemory:
		return cache.NewLRUCache(cfg.Cache.Size, cfg.Cache.TTL)
	default:
		return nil
	}
}
