package service

import (
	"fmt"
	"strings"

	"reddit-persona/internal/domain"
)

const notAvailable = "N/A"

// RenderPersonaText arma la exportacion en texto plano de un reporte.
func RenderPersonaText(report domain.PersonaReport) string {
	p := report.Persona
	var b strings.Builder

	fmt.Fprintf(&b, "User Persona for %s\n", domain.Value(p.Name, report.Handle))

	b.WriteString("\n--- Basic Information ---\n")
	fmt.Fprintf(&b, "Age: %s\n", looseOr(p.Age))
	fmt.Fprintf(&b, "Occupation: %s\n", domain.Value(p.Occupation, notAvailable))
	fmt.Fprintf(&b, "Status: %s\n", domain.Value(p.Status, notAvailable))
	fmt.Fprintf(&b, "Location: %s\n", domain.Value(p.Location, notAvailable))
	fmt.Fprintf(&b, "Comment Karma: %s\n", looseOr(p.CommentKarma))
	fmt.Fprintf(&b, "Link Karma: %s\n", looseOr(p.LinkKarma))
	if p.Intro != nil {
		fmt.Fprintf(&b, "Intro: %s\n", *p.Intro)
	}
	if p.Company != nil {
		fmt.Fprintf(&b, "Company: %s\n", *p.Company)
	}

	writeEvidence(&b, "Personality Traits", p.PersonalityTraits)
	writeEvidence(&b, "Motivations", p.Motivations)

	b.WriteString("\n--- Active Subreddits ---\n")
	subs := make([]string, 0, len(p.SubredditsActive))
	for _, s := range p.SubredditsActive {
		subs = append(subs, "r/"+strings.TrimPrefix(s, "r/"))
	}
	b.WriteString(strings.Join(subs, ", ") + "\n")

	b.WriteString("\n--- Sentiment & Tone ---\n")
	b.WriteString(domain.Value(p.SentimentTone, notAvailable) + "\n")

	b.WriteString("\n--- Summary Quote ---\n")
	fmt.Fprintf(&b, "\"%s\"\n", domain.Value(p.SummaryQuote, ""))

	writeEvidence(&b, "Behaviour & Habits", p.BehaviourHabits)
	writeEvidence(&b, "Frustrations", p.Frustrations)
	writeEvidence(&b, "Goals & Needs", p.GoalsNeeds)

	if len(p.Skills) > 0 {
		b.WriteString("\n--- Skills ---\n")
		b.WriteString(strings.Join(p.Skills, ", ") + "\n")
	}
	if len(p.WorkHistory) > 0 {
		b.WriteString("\n--- Work History ---\n")
		for _, w := range p.WorkHistory {
			fmt.Fprintf(&b, "- %s, %s (%s - %s)\n", w.Title, w.Company, orNA(w.StartDate), orNA(w.EndDate))
		}
	}
	if len(p.Education) > 0 {
		b.WriteString("\n--- Education ---\n")
		for _, e := range p.Education {
			fmt.Fprintf(&b, "- %s: %s %s\n", e.School, e.Degree, e.Field)
		}
	}
	if len(p.SocialProfile) > 0 {
		b.WriteString("\n--- Social Profiles ---\n")
		for _, u := range p.SocialProfile {
			fmt.Fprintf(&b, "- %s\n", u)
		}
	}
	if report.Topics != nil && len(report.Topics.Topics) > 0 {
		b.WriteString("\n--- Topics ---\n")
		for _, t := range report.Topics.Topics {
			fmt.Fprintf(&b, "- %s (%d)\n", t.Name, t.Count)
		}
	}
	return b.String()
}

func writeEvidence(b *strings.Builder, title string, items []domain.EvidenceItem) {
	fmt.Fprintf(b, "\n--- %s ---\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item.Label)
		for _, c := range item.Citations {
			fmt.Fprintf(b, "  > \"%s\"\n", c)
		}
	}
}

func looseOr(v *domain.LooseString) string {
	if v == nil {
		return notAvailable
	}
	return v.String()
}

func orNA(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}
