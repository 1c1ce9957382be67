package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"reddit-persona/internal/config"
)

// NewPool construye y devuelve un pool de conexiones configurado.
func NewPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	return NewPoolFromURL(ctx, cfg.DatabaseURL)
}

// NewPoolFromURL arma el pool a partir de un DSN.
func NewPoolFromURL(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}

	// La carga es un request por persona; no hace falta un pool grande.
	poolCfg.MaxConns = 10
	poolCfg.MinConns = 1
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.HealthCheckPeriod = 30 * time.Second
	poolCfg.ConnConfig.ConnectTimeout = 5 * time.Second

	return pgxpool.NewWithConfig(ctx, poolCfg)
}

// Ping verifica conectividad con la base de datos.
func Ping(ctx context.Context, pool *pgxpool.Pool) error {
	return pool.Ping(ctx)
}

var schema = []string{
	`CREATE EXTENSION IF NOT EXISTS vector`,
	`CREATE TABLE IF NOT EXISTS persona_reports (
		id          UUID PRIMARY KEY,
		handle      TEXT NOT NULL,
		persona     JSONB NOT NULL,
		enrichment  TEXT NOT NULL,
		topics      JSONB,
		created_at  TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS persona_reports_handle_idx ON persona_reports (lower(handle), created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS persona_topics (
		report_id   UUID NOT NULL REFERENCES persona_reports(id) ON DELETE CASCADE,
		topic_id    INT NOT NULL,
		handle      TEXT NOT NULL,
		name        TEXT NOT NULL,
		doc_count   INT NOT NULL,
		keywords    TEXT[] NOT NULL,
		centroid    vector(256) NOT NULL,
		PRIMARY KEY (report_id, topic_id)
	)`,
}

// EnsureSchema crea las tablas si no existen. Es idempotente.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
