// Package app arma el grafo de dependencias a partir de la configuracion.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"reddit-persona/internal/config"
	"reddit-persona/internal/db"
	"reddit-persona/internal/llm"
	"reddit-persona/internal/metrics"
	"reddit-persona/internal/peopledata"
	"reddit-persona/internal/reddit"
	"reddit-persona/internal/repository"
	"reddit-persona/internal/service"
)

// App agrupa los servicios compartidos por la API y la CLI.
type App struct {
	Personas *service.PersonaService
	Reports  repository.ReportRepository
	Topics   repository.TopicRepository
	JWT      *service.JWTService
	Limiter  service.GenerationRateLimiter
	Metrics  *metrics.Metrics
	LLM      llm.LLMClient

	pool        *pgxpool.Pool
	redisClient *redis.Client
}

// New construye la aplicacion. reg nil desactiva las metricas.
// Base de datos, Redis, enriquecimiento y temas son opcionales.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger, reg prometheus.Registerer) (*App, error) {
	a := &App{}

	if reg != nil {
		a.Metrics = metrics.New(reg)
	}

	llmClient, err := llm.NewClient(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("llm client: %w", err)
	}
	a.LLM = llmClient

	redditClient := reddit.NewClient(reddit.Options{
		ClientID:     cfg.RedditClientID,
		ClientSecret: cfg.RedditClientSecret,
		UserAgent:    cfg.RedditUserAgent,
		BaseURL:      cfg.RedditBaseURL,
		AuthURL:      cfg.RedditAuthURL,
		Timeout:      cfg.RedditTimeout,
	}, logger)

	var lookup service.PeopleLookup
	if cfg.EnrichmentEnabled() {
		lookup = peopledata.NewClient(cfg.PeopleAPIURL, cfg.PeopleAPIKey, cfg.PeopleTimeout)
	} else {
		logger.Warn("people data api key not configured, enrichment disabled")
	}

	var labeler *service.TopicLabeler
	if cfg.TopicsEnabled {
		model := service.NewKeywordTopicModel(cfg.TopicMinClusterSize, cfg.TopicMaxFeatures)
		labeler = service.NewTopicLabeler(model, llmClient, logger)
	}

	if cfg.DatabaseURL != "" {
		pool, err := db.NewPool(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("db connect: %w", err)
		}
		if err := db.Ping(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("db ping: %w", err)
		}
		if err := db.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		a.pool = pool
		a.Reports = repository.NewPgReportRepository(pool)
		a.Topics = repository.NewPgTopicRepository(pool)
	} else {
		logger.Warn("database not configured, reports will not be stored")
	}

	if cfg.RedisAddr != "" {
		a.redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := a.redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, rate limiting disabled", zap.Error(err))
		} else {
			a.Limiter = service.NewRedisRateLimiter(a.redisClient, cfg.RateLimitWindow, cfg.RateLimitMax)
		}
		cancel()
	}

	a.JWT = service.NewJWTService(cfg.JWTSecret, time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute)
	if !a.JWT.Enabled() {
		logger.Warn("jwt secret not configured, api is open")
	}

	a.Personas = service.NewPersonaService(
		service.NewActivityCollector(redditClient, logger),
		service.NewNarrativeSynthesizer(llmClient, logger),
		service.NewEnrichmentResolver(lookup, logger),
		labeler,
		a.Reports,
		a.Topics,
		a.Metrics,
		logger,
	)
	return a, nil
}

// StorageEnabled indica si hay base de datos para los reportes.
func (a *App) StorageEnabled() bool {
	return a.Reports != nil
}

// Close libera conexiones abiertas.
func (a *App) Close() {
	if a.redisClient != nil {
		_ = a.redisClient.Close()
	}
	if a.pool != nil {
		a.pool.Close()
	}
}
