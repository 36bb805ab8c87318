package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sankalpa/vivah-portrait-go/internal/config"
	"github.com/sankalpa/vivah-portrait-go/internal/server"
	"github.com/sankalpa/vivah-portrait-go/internal/service"
	"github.com/sankalpa/vivah-portrait-go/internal/service/cache"
)

// Container bundles the assembled services. All heavy-weight initialization
// (redis, model clients) happens in Build so the HTTP server stays focused
// on request handling.
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	httpServer *server.Server
	closers    []func()
}

func (c *Container) Server() *server.Server {
	return c.httpServer
}

func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (container *Container, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var closers []func()
	defer func() {
		if err != nil {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		}
	}()

	// Rate limiting is optional: no redis host, no limiter.
	var rateLimiter *server.RateLimiter
	if cfg.Redis.Enabled() {
		cacheSvc, cacheErr := cache.NewCacheService(cache.CacheConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, logger)
		if cacheErr != nil {
			return nil, fmt.Errorf("failed to create cache service: %w", cacheErr)
		}
		closers = append(closers, func() {
			_ = cacheSvc.Close()
		})
		rateLimiter = server.NewRateLimiter(cacheSvc, cfg.Server.RateLimitPerMinute, logger)
	} else {
		logger.Info("Redis not configured, rate limiting disabled")
	}

	clients, err := service.NewModelClients(ctx, service.ModelClientsConfig{
		OpenAIAPIKey: cfg.OpenAI.APIKey,
		GeminiAPIKey: cfg.Gemini.APIKey,
		VisionModel:  cfg.OpenAI.VisionModel,
		ImageModel:   cfg.Gemini.ImageModel,
		ImageSeed:    cfg.Pipeline.ImageSeed,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create model clients: %w", err)
	}

	analyzer := service.NewAnalyzer(clients, logger)
	generator := service.NewGenerator(clients, logger)
	evaluator := service.NewEvaluator(clients, cfg.Pipeline.AcceptanceThreshold, logger)
	orchestrator := service.NewOrchestrator(analyzer, generator, evaluator, cfg.Pipeline.MaxAttempts, logger)
	headcount := service.NewHeadcountProbe(clients, logger)

	httpServer := server.New(cfg.Server.Port, &server.Dependencies{
		Generator:       orchestrator,
		Headcount:       headcount,
		RateLimiter:     rateLimiter,
		Breaker:         clients.Breaker(),
		MaxUploadBytes:  cfg.Server.MaxUploadBytes,
		SubjectPrecheck: cfg.Pipeline.SubjectPrecheck,
		Logger:          logger,
	})

	return &Container{
		Config:     cfg,
		Logger:     logger,
		httpServer: httpServer,
		closers:    closers,
	}, nil
}
