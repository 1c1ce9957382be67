package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"reddit-persona/internal/domain"
)

// DefaultRelatedTopics es el k usado cuando no se pide otro.
const DefaultRelatedTopics = 5

// TopicRepository guarda los centroides de temas para encontrar cuentas con intereses parecidos.
type TopicRepository interface {
	SaveTopics(ctx context.Context, reportID, handle string, topics []domain.Topic) error
	Related(ctx context.Context, reportID string, k int) ([]domain.RelatedTopic, error)
}

type PgTopicRepository struct {
	pool *pgxpool.Pool
}

func NewPgTopicRepository(pool *pgxpool.Pool) *PgTopicRepository {
	return &PgTopicRepository{pool: pool}
}

// SaveTopics ignora el tema outlier y los centroides vacios.
func (r *PgTopicRepository) SaveTopics(ctx context.Context, reportID, handle string, topics []domain.Topic) error {
	const query = `
		INSERT INTO persona_topics (report_id, topic_id, handle, name, doc_count, keywords, centroid)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (report_id, topic_id) DO NOTHING
	`
	batch := &pgx.Batch{}
	for _, t := range topics {
		if t.ID == domain.OutlierTopicID || !hasSignal(t.Centroid) {
			continue
		}
		keywords := t.Keywords
		if keywords == nil {
			keywords = []string{}
		}
		batch.Queue(query, reportID, t.ID, handle, t.Name, t.Count, keywords, pgvector.NewVector(t.Centroid))
	}
	if batch.Len() == 0 {
		return nil
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// Related devuelve los k temas de otras cuentas mas cercanos (distancia coseno) a los del reporte.
// Cada tema aparece una sola vez, con su distancia minima a cualquier tema del reporte.
func (r *PgTopicRepository) Related(ctx context.Context, reportID string, k int) ([]domain.RelatedTopic, error) {
	if k <= 0 {
		k = DefaultRelatedTopics
	}
	const query = `
		SELECT handle, report_id, topic_id, name, keywords, distance
		FROM (
			SELECT DISTINCT ON (o.report_id, o.topic_id)
				o.handle, o.report_id::text AS report_id, o.topic_id, o.name, o.keywords,
				o.centroid <=> t.centroid AS distance
			FROM persona_topics t
			JOIN persona_topics o ON lower(o.handle) <> lower(t.handle)
			WHERE t.report_id::text = $1
			ORDER BY o.report_id, o.topic_id, distance
		) nearest
		ORDER BY distance, report_id, topic_id
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, reportID, k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var related []domain.RelatedTopic
	for rows.Next() {
		var rt domain.RelatedTopic
		if err := rows.Scan(&rt.Handle, &rt.ReportID, &rt.TopicID, &rt.Name, &rt.Keywords, &rt.Distance); err != nil {
			return nil, err
		}
		related = append(related, rt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return related, nil
}

func hasSignal(v []float32) bool {
	for _, x := range v {
		if x != 0 {
			return true
		}
	}
	return false
}
