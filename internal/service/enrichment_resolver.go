package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"reddit-persona/internal/domain"
	"reddit-persona/internal/peopledata"
)

// DefaultEnrichmentTimeout acota la unica llamada al servicio de identidad.
const DefaultEnrichmentTimeout = 15 * time.Second

// PeopleLookup es el servicio externo de identidad.
type PeopleLookup interface {
	Enrich(ctx context.Context, req peopledata.EnrichRequest) (domain.PersonMatch, error)
}

// EnrichmentResolver completa la persona con datos de identidad. Nunca falla el pipeline.
type EnrichmentResolver struct {
	lookup  PeopleLookup
	logger  *zap.Logger
	timeout time.Duration
}

// NewEnrichmentResolver recibe lookup nil cuando no hay API key configurada.
func NewEnrichmentResolver(lookup PeopleLookup, logger *zap.Logger) *EnrichmentResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrichmentResolver{
		lookup:  lookup,
		logger:  logger,
		timeout: DefaultEnrichmentTimeout,
	}
}

// Enrich devuelve la persona enriquecida o la de entrada sin cambios, junto con el resultado.
func (r *EnrichmentResolver) Enrich(ctx context.Context, persona domain.Persona) (domain.Persona, domain.EnrichmentOutcome) {
	if r == nil || r.lookup == nil {
		if r != nil {
			r.logger.Info("people data api key not set, skipping enrichment")
		}
		return persona, domain.EnrichmentSkipped
	}

	query := BuildEnrichmentQuery(persona)
	if query.Empty() {
		r.logger.Info("insufficient data for enrichment")
		return persona, domain.EnrichmentSkipped
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	match, err := r.lookup.Enrich(ctx, peopledata.EnrichRequest{
		Params:        query,
		MinLikelihood: EnrichmentMinLikelihood,
		Required:      append([]string{}, EnrichmentRequiredFields...),
	})
	if err != nil {
		r.logger.Warn("enrichment failed, keeping persona unchanged", zap.Error(err))
		return persona, domain.EnrichmentFailed
	}

	return ApplyMatch(persona, match), domain.EnrichmentMatched
}
