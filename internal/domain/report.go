package domain

import "time"

// PersonaReport es el producto final de un request: lo que consume la capa de render.
type PersonaReport struct {
	ID         string            `json:"id"`
	Handle     string            `json:"handle"`
	Snapshot   *ActivitySnapshot `json:"snapshot,omitempty"`
	Persona    Persona           `json:"persona"`
	Enrichment EnrichmentOutcome `json:"enrichment"`
	Topics     *TopicSummary     `json:"topics,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}
