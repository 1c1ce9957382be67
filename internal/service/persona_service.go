package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"reddit-persona/internal/domain"
	"reddit-persona/internal/metrics"
	"reddit-persona/internal/repository"
)

// PersonaService orquesta el pipeline completo para un handle: recolectar, sintetizar,
// enriquecer, etiquetar temas y guardar el reporte. Todo en la goroutine del request.
type PersonaService struct {
	collector   *ActivityCollector
	synthesizer *NarrativeSynthesizer
	resolver    *EnrichmentResolver
	labeler     *TopicLabeler
	reportRepo  repository.ReportRepository
	topicRepo   repository.TopicRepository
	metrics     *metrics.Metrics
	logger      *zap.Logger

	now   func() time.Time
	newID func() string
}

// NewPersonaService acepta labeler y repositorios nil: esas etapas se omiten.
func NewPersonaService(
	collector *ActivityCollector,
	synthesizer *NarrativeSynthesizer,
	resolver *EnrichmentResolver,
	labeler *TopicLabeler,
	reportRepo repository.ReportRepository,
	topicRepo repository.TopicRepository,
	m *metrics.Metrics,
	logger *zap.Logger,
) *PersonaService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PersonaService{
		collector:   collector,
		synthesizer: synthesizer,
		resolver:    resolver,
		labeler:     labeler,
		reportRepo:  reportRepo,
		topicRepo:   topicRepo,
		metrics:     m,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
		newID:       uuid.NewString,
	}
}

// Generate corre el pipeline. Solo fallan el handle, la recoleccion y la sintesis;
// enriquecimiento, temas y guardado degradan sin error.
func (s *PersonaService) Generate(ctx context.Context, input string) (domain.PersonaReport, error) {
	handle, err := ParseHandle(input)
	if err != nil {
		s.metrics.Generation(generationResult(err))
		return domain.PersonaReport{}, err
	}

	start := time.Now()
	snapshot, err := s.collector.Collect(ctx, handle)
	s.metrics.ObserveStage(metrics.StageCollect, start)
	if err != nil {
		s.metrics.Generation(generationResult(err))
		return domain.PersonaReport{}, err
	}

	start = time.Now()
	persona, err := s.synthesizer.Synthesize(ctx, snapshot)
	s.metrics.ObserveStage(metrics.StageSynthesize, start)
	if err != nil {
		s.metrics.Generation(generationResult(err))
		return domain.PersonaReport{}, err
	}

	start = time.Now()
	persona, outcome := s.resolver.Enrich(ctx, persona)
	s.metrics.ObserveStage(metrics.StageEnrich, start)
	s.metrics.Enrichment(string(outcome))

	report := domain.PersonaReport{
		ID:         s.newID(),
		Handle:     handle,
		Snapshot:   &snapshot,
		Persona:    persona,
		Enrichment: outcome,
		CreatedAt:  s.now(),
	}

	if s.labeler != nil {
		start = time.Now()
		summary, ok := s.labeler.Label(ctx, snapshot.Records())
		s.metrics.ObserveStage(metrics.StageTopics, start)
		s.metrics.Topics(ok)
		if ok {
			report.Topics = &summary
		}
	}

	s.save(ctx, report)

	s.metrics.Generation("ok")
	s.logger.Info("persona generated",
		zap.String("handle", handle),
		zap.String("report_id", report.ID),
		zap.String("enrichment", string(outcome)),
		zap.Bool("partial", snapshot.Partial()),
	)
	return report, nil
}

// Topics corre solo recoleccion y etiquetado de temas.
func (s *PersonaService) Topics(ctx context.Context, input string) (string, domain.TopicSummary, error) {
	if s.labeler == nil {
		return "", domain.TopicSummary{}, ErrTopicsDisabled
	}
	handle, err := ParseHandle(input)
	if err != nil {
		return "", domain.TopicSummary{}, err
	}
	snapshot, err := s.collector.Collect(ctx, handle)
	if err != nil {
		return "", domain.TopicSummary{}, err
	}
	summary, ok := s.labeler.Label(ctx, snapshot.Records())
	s.metrics.Topics(ok)
	if !ok {
		return handle, domain.TopicSummary{Topics: []domain.Topic{}, Assignments: []domain.TopicAssignment{}}, nil
	}
	return handle, summary, nil
}

// save es best-effort: un fallo de la base nunca se propaga al request.
func (s *PersonaService) save(ctx context.Context, report domain.PersonaReport) {
	if s.reportRepo == nil {
		return
	}
	start := time.Now()
	defer s.metrics.ObserveStage(metrics.StageSave, start)

	if err := s.reportRepo.Save(ctx, report); err != nil {
		s.logger.Warn("save report failed", zap.String("report_id", report.ID), zap.Error(err))
		return
	}
	if s.topicRepo == nil || report.Topics == nil {
		return
	}
	if err := s.topicRepo.SaveTopics(ctx, report.ID, report.Handle, report.Topics.Topics); err != nil {
		s.logger.Warn("save topics failed", zap.String("report_id", report.ID), zap.Error(err))
	}
}

func generationResult(err error) string {
	switch {
	case errors.Is(err, ErrInvalidHandle):
		return "invalid_handle"
	case errors.Is(err, ErrAccountNotFound):
		return "not_found"
	case errors.Is(err, ErrSourceUnavailable):
		return "source_unavailable"
	case errors.Is(err, ErrServiceFailure):
		return "service_failure"
	case errors.Is(err, ErrMalformedResponse):
		return "malformed_response"
	default:
		return "error"
	}
}
