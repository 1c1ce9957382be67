package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"reddit-persona/internal/domain"
	"reddit-persona/internal/llm"
)

// maxJudgeRecords limita la actividad que ve el juez.
const maxJudgeRecords = 20

// judgeResponse representa la respuesta estructurada del juez evaluador en formato JSON.
type judgeResponse struct {
	Reasoning      string `json:"reasoning"`
	GroundingScore int    `json:"grounding_score"`
	CoverageScore  int    `json:"coverage_score"`
}

func evaluatePersona(
	ctx context.Context,
	judge llm.LLMClient,
	report domain.PersonaReport,
	hasUngrounded bool,
) (judgeResponse, error) {
	persona, err := json.MarshalIndent(report.Persona, "", "  ")
	if err != nil {
		return judgeResponse{}, err
	}

	heuristicLine := fmt.Sprintf("Heuristic indicators: ungrounded_citation=%t", hasUngrounded)
	prompt := buildJudgePrompt(sampleActivity(report.Snapshot), string(persona), heuristicLine)

	raw, err := judge.Generate(ctx, prompt)
	if err != nil {
		return judgeResponse{}, err
	}

	jsonStr := extractFirstJSONObject(raw)
	if jsonStr == "" {
		return judgeResponse{}, fmt.Errorf("juez devolvió no-json: %q", raw)
	}

	var jr judgeResponse
	if err := json.Unmarshal([]byte(jsonStr), &jr); err != nil {
		return judgeResponse{}, fmt.Errorf("error parseando JSON juez: %w (raw=%q full=%q)", err, jsonStr, raw)
	}

	jr.GroundingScore = clamp1to5(jr.GroundingScore)
	jr.CoverageScore = clamp1to5(jr.CoverageScore)

	// Penalización dura por cita sin respaldo.
	if hasUngrounded && jr.GroundingScore > 2 {
		jr.GroundingScore = 2
	}

	return jr, nil
}

func clamp1to5(v int) int {
	if v < 1 {
		return 1
	}
	if v > 5 {
		return 5
	}
	return v
}

// collectCitations junta las citas de todas las listas con evidencia.
func collectCitations(p domain.Persona) []string {
	var out []string
	for _, list := range [][]domain.EvidenceItem{
		p.PersonalityTraits, p.Motivations, p.BehaviourHabits, p.Frustrations, p.GoalsNeeds,
	} {
		for _, item := range list {
			out = append(out, item.Citations...)
		}
	}
	return out
}

// ungroundedCitations devuelve las citas que no aparecen en ningun comentario o submission.
// La comparacion ignora mayusculas, espacios repetidos y comillas del borde.
func ungroundedCitations(citations []string, snapshot *domain.ActivitySnapshot) []string {
	if snapshot == nil {
		return citations
	}
	var corpus []string
	for _, r := range snapshot.Records() {
		corpus = append(corpus, normalizeText(r.Text()))
	}

	var out []string
	for _, c := range citations {
		needle := normalizeText(strings.Trim(c, `"'“”`))
		if needle == "" {
			continue
		}
		found := false
		for _, doc := range corpus {
			if strings.Contains(doc, needle) {
				found = true
				break
			}
		}
		if !found {
			out = append(out, c)
		}
	}
	return out
}

func normalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func sampleActivity(snapshot *domain.ActivitySnapshot) string {
	if snapshot == nil {
		return "(no activity)"
	}
	var b strings.Builder
	for i, r := range snapshot.Records() {
		if i == maxJudgeRecords {
			break
		}
		fmt.Fprintf(&b, "- [%s r/%s] %s\n", r.Kind, r.Subreddit, strings.ReplaceAll(r.Text(), "\n", " "))
	}
	return b.String()
}

func buildJudgePrompt(activity, persona, heuristicLine string) string {
	return fmt.Sprintf(
		`You are an expert UX researcher reviewing a user persona that was generated from a Reddit account.

Account activity (sample):
%s

Generated persona (JSON):
%s

%s

Score (1-5):
1) Grounding: are traits, motivations, habits, frustrations and goals supported by the activity, with citations quoted from it?
   - If ungrounded_citation=true => Grounding at most 2/5.
2) Coverage: does the persona capture the main interests and tone visible in the activity without inventing demographics?

Respond ONLY with JSON (no markdown):
{
  "reasoning": "...",
  "grounding_score": 0,
  "coverage_score": 0
}`,
		activity, persona, heuristicLine,
	)
}

// extractFirstJSONObject devuelve el primer objeto {...} balanceado.
func extractFirstJSONObject(s string) string {
	start := strings.Index(s, "{")
	if start < 0 {
		return ""
	}
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}
