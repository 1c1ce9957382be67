package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"reddit-persona/internal/domain"
	"reddit-persona/internal/llm"
)

// NarrativeSynthesizer convierte el snapshot en una persona candidata con una sola llamada al LLM.
type NarrativeSynthesizer struct {
	llmClient llm.LLMClient
	builder   PersonaPromptBuilder
	logger    *zap.Logger
}

func NewNarrativeSynthesizer(llmClient llm.LLMClient, logger *zap.Logger) *NarrativeSynthesizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NarrativeSynthesizer{
		llmClient: llmClient,
		builder:   DefaultPersonaPromptBuilder,
		logger:    logger,
	}
}

// Synthesize no reintenta: un fallo del LLM es terminal para el request.
func (s *NarrativeSynthesizer) Synthesize(ctx context.Context, snapshot domain.ActivitySnapshot) (domain.Persona, error) {
	prompt := s.builder.BuildPersonaPrompt(snapshot)

	raw, err := s.llmClient.Generate(ctx, prompt)
	if err != nil {
		s.logger.Error("persona llm call failed", zap.String("handle", snapshot.Handle), zap.Error(err))
		return domain.Persona{}, fmt.Errorf("%w: %v", ErrServiceFailure, err)
	}

	persona, dropped, err := ParsePersonaResponse(raw)
	if err != nil {
		s.logger.Warn("persona llm response malformed", zap.String("handle", snapshot.Handle), zap.Int("raw_len", len(raw)), zap.Error(err))
		return domain.Persona{}, err
	}
	if len(dropped) > 0 {
		s.logger.Warn("persona fields dropped", zap.String("handle", snapshot.Handle), zap.Strings("fields", dropped))
	}
	return persona, nil
}

// ParsePersonaResponse quita el fence opcional y decodifica un unico objeto JSON.
// No valida esquema: los campos ausentes quedan como desconocidos y los que traen un
// tipo imposible de convertir se devuelven en dropped en lugar de fallar.
func ParsePersonaResponse(raw string) (domain.Persona, []string, error) {
	cleaned := cleanLLMJSONResponse(raw)
	if cleaned == "" {
		return domain.Persona{}, nil, fmt.Errorf("%w: empty response", ErrMalformedResponse)
	}
	if cleaned[0] != '{' {
		return domain.Persona{}, nil, fmt.Errorf("%w: expected a JSON object", ErrMalformedResponse)
	}

	persona, dropped, err := domain.DecodePersona([]byte(cleaned))
	if err != nil {
		return domain.Persona{}, nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return persona, dropped, nil
}
