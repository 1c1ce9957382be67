package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"reddit-persona/internal/domain"
)

// ErrNotFound indica que el registro no existe.
var ErrNotFound = errors.New("not found")

// ReportRepository guarda los reportes generados. El snapshot de actividad nunca se persiste.
type ReportRepository interface {
	Save(ctx context.Context, report domain.PersonaReport) error
	GetByID(ctx context.Context, id string) (domain.PersonaReport, error)
	ListByHandle(ctx context.Context, handle string, limit int) ([]domain.PersonaReport, error)
}

type PgReportRepository struct {
	pool *pgxpool.Pool
}

func NewPgReportRepository(pool *pgxpool.Pool) *PgReportRepository {
	return &PgReportRepository{pool: pool}
}

func (r *PgReportRepository) Save(ctx context.Context, report domain.PersonaReport) error {
	persona, err := json.Marshal(report.Persona)
	if err != nil {
		return fmt.Errorf("marshal persona: %w", err)
	}
	var topics []byte
	if report.Topics != nil {
		if topics, err = json.Marshal(report.Topics); err != nil {
			return fmt.Errorf("marshal topics: %w", err)
		}
	}

	const query = `
		INSERT INTO persona_reports (id, handle, persona, enrichment, topics, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = r.pool.Exec(ctx, query,
		report.ID,
		report.Handle,
		persona,
		string(report.Enrichment),
		topics,
		report.CreatedAt,
	)
	return err
}

func (r *PgReportRepository) GetByID(ctx context.Context, id string) (domain.PersonaReport, error) {
	const query = `
		SELECT id::text, handle, persona, enrichment, topics, created_at
		FROM persona_reports
		WHERE id::text = $1
	`
	rows, err := r.pool.Query(ctx, query, id)
	if err != nil {
		return domain.PersonaReport{}, err
	}
	defer rows.Close()

	reports, err := scanReports(rows)
	if err != nil {
		return domain.PersonaReport{}, err
	}
	if len(reports) == 0 {
		return domain.PersonaReport{}, ErrNotFound
	}
	return reports[0], nil
}

func (r *PgReportRepository) ListByHandle(ctx context.Context, handle string, limit int) ([]domain.PersonaReport, error) {
	if limit <= 0 {
		limit = 20
	}
	const query = `
		SELECT id::text, handle, persona, enrichment, topics, created_at
		FROM persona_reports
		WHERE lower(handle) = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, strings.ToLower(strings.TrimSpace(handle)), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanReports(rows)
}

func scanReports(rows pgxRows) ([]domain.PersonaReport, error) {
	var reports []domain.PersonaReport
	for rows.Next() {
		var (
			rep        domain.PersonaReport
			persona    []byte
			topics     []byte
			enrichment string
		)
		if err := rows.Scan(&rep.ID, &rep.Handle, &persona, &enrichment, &topics, &rep.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(persona, &rep.Persona); err != nil {
			return nil, fmt.Errorf("decode persona %s: %w", rep.ID, err)
		}
		if len(topics) > 0 {
			var summary domain.TopicSummary
			if err := json.Unmarshal(topics, &summary); err != nil {
				return nil, fmt.Errorf("decode topics %s: %w", rep.ID, err)
			}
			rep.Topics = &summary
		}
		rep.Enrichment = domain.EnrichmentOutcome(enrichment)
		reports = append(reports, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return reports, nil
}

// pgxRows es la interfaz minima para escanear filas de pgx y simplificar tests.
type pgxRows interface {
	Next() bool
	Scan(...interface{}) error
	Err() error
	Close()
}
