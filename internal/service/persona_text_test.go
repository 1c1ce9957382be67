package service

import (
	"strings"
	"testing"

	"reddit-persona/internal/domain"
)

func TestRenderPersonaText(t *testing.T) {
	report := domain.PersonaReport{
		Handle: "alice",
		Persona: domain.Persona{
			Age:               domain.LoosePtr("29"),
			PersonalityTraits: []domain.EvidenceItem{{Label: "Curious", Citations: []string{"I love compilers"}}},
			SubredditsActive:  []string{"golang", "r/rust"},
			SocialProfile:     []string{"https://github.com/alice"},
		},
		Topics: &domain.TopicSummary{Topics: []domain.Topic{{ID: 0, Name: "Go Compilers", Count: 7}}},
	}

	text := RenderPersonaText(report)

	for _, want := range []string{
		"User Persona for alice",
		"Age: 29",
		"Occupation: N/A",
		"- Curious\n  > \"I love compilers\"",
		"r/golang, r/rust",
		"- https://github.com/alice",
		"- Go Compilers (7)",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected text to contain %q, got:\n%s", want, text)
		}
	}
	if strings.Contains(text, "--- Skills ---") {
		t.Fatalf("expected absent skills section to be omitted")
	}
}

func TestRenderPersonaTextSummaryQuoteVerbatim(t *testing.T) {
	report := domain.PersonaReport{
		Handle: "alice",
		Persona: domain.Persona{
			SummaryQuote: domain.StringPtr(`Ship it, then say "it works", café`),
		},
	}

	text := RenderPersonaText(report)

	want := "--- Summary Quote ---\n\"Ship it, then say \"it works\", café\"\n"
	if !strings.Contains(text, want) {
		t.Fatalf("expected quote without escapes, got:\n%s", text)
	}
	if strings.Contains(text, `\"`) || strings.Contains(text, `\u`) {
		t.Fatalf("expected no Go escape sequences in quote, got:\n%s", text)
	}
}

func TestRenderPersonaTextCitationsVerbatim(t *testing.T) {
	report := domain.PersonaReport{
		Handle: "alice",
		Persona: domain.Persona{
			Motivations: []domain.EvidenceItem{{Label: "Craft", Citations: []string{`it's "done", naïvely`}}},
		},
	}

	text := RenderPersonaText(report)

	if !strings.Contains(text, "  > \"it's \"done\", naïvely\"\n") {
		t.Fatalf("expected citation without escapes, got:\n%s", text)
	}
}
