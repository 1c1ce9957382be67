package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"reddit-persona/internal/domain"
	"reddit-persona/internal/llm"
)

const (
	OutlierTopicName = "Outlier Topic"
	minTopicTextLen  = 15
)

const topicNamePrompt = `Analyze the following keywords and generate a concise, descriptive topic name of 2-3 words.
Reply with the topic name only.

Example:
Keywords: game, release, update, community
Topic Name: Gaming News & Community

Keywords: %s
Topic Name:`

// TopicLabeler agrupa la actividad en temas y les pone nombre. Nunca falla el pipeline.
type TopicLabeler struct {
	model     TopicModel
	llmClient llm.LLMClient
	logger    *zap.Logger
}

func NewTopicLabeler(model TopicModel, llmClient llm.LLMClient, logger *zap.Logger) *TopicLabeler {
	if model == nil {
		model = NewKeywordTopicModel(DefaultTopicMinClusterSize, DefaultTopicMaxFeatures)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TopicLabeler{model: model, llmClient: llmClient, logger: logger}
}

// Label devuelve ok=false cuando no quedo ningun documento utilizable o el modelo fallo.
func (l *TopicLabeler) Label(ctx context.Context, records []domain.ActivityRecord) (domain.TopicSummary, bool) {
	docs := make([]string, 0, len(records))
	for _, r := range records {
		text := strings.TrimSpace(r.Text())
		if utf8.RuneCountInString(text) <= minTopicTextLen {
			continue
		}
		if cleaned := PreprocessTopicText(text); cleaned != "" {
			docs = append(docs, cleaned)
		}
	}
	if len(docs) == 0 {
		return domain.TopicSummary{}, false
	}

	fit, err := l.model.Fit(ctx, docs)
	if err != nil {
		l.logger.Warn("topic model failed", zap.Int("docs", len(docs)), zap.Error(err))
		return domain.TopicSummary{}, false
	}

	summary := domain.TopicSummary{
		Topics:      make([]domain.Topic, 0, len(fit.Clusters)),
		Assignments: make([]domain.TopicAssignment, len(docs)),
	}
	for i, doc := range docs {
		summary.Assignments[i] = domain.TopicAssignment{Document: doc, TopicID: fit.Assignments[i]}
	}
	for _, c := range fit.Clusters {
		summary.Topics = append(summary.Topics, domain.Topic{
			ID:       c.ID,
			Name:     l.nameTopic(ctx, c),
			Count:    c.Count,
			Keywords: c.Keywords,
			Centroid: c.Centroid,
		})
	}
	return summary, true
}

func (l *TopicLabeler) nameTopic(ctx context.Context, c TopicCluster) string {
	if c.ID == domain.OutlierTopicID {
		return OutlierTopicName
	}
	fallback := fmt.Sprintf("Topic %d", c.ID)
	if l.llmClient == nil || len(c.Keywords) == 0 {
		return fallback
	}

	raw, err := l.llmClient.Generate(ctx, fmt.Sprintf(topicNamePrompt, strings.Join(c.Keywords, ", ")))
	if err != nil {
		l.logger.Warn("topic naming failed", zap.Int("topic_id", c.ID), zap.Error(err))
		return fallback
	}
	if name := TrimTopicLabel(firstTopicLine(raw), MaxTopicLabelWords); name != "" {
		return name
	}
	return fallback
}

// firstTopicLine quita el prefijo "Topic Name:" que algunos modelos repiten.
func firstTopicLine(raw string) string {
	line := strings.TrimSpace(raw)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	const prefix = "topic name:"
	if strings.HasPrefix(strings.ToLower(line), prefix) {
		line = line[len(prefix):]
	}
	return strings.TrimSpace(line)
}
