package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"reddit-persona/internal/domain"
)

func init() {
	cmd := &cobra.Command{
		Use:   "generate <handle|profile-url>",
		Short: "Generate a persona for a Reddit account",
		Args:  cobra.ExactArgs(1),
		Run:   runGenerate,
	}
	RootCmd.AddCommand(cmd)
}

func runGenerate(cmd *cobra.Command, args []string) {
	a, logger, err := openApp(cmd.Context())
	if err != nil {
		exitErr("init", err)
	}
	defer a.Close()
	defer logger.Sync()

	report, err := a.Personas.Generate(cmd.Context(), args[0])
	if err != nil {
		exitErr("generate", err)
	}

	if formatFlag == "json" {
		b, _ := json.MarshalIndent(report, "", "  ")
		fmt.Fprintln(cmd.OutOrStdout(), string(b))
		return
	}
	fmt.Fprint(cmd.OutOrStdout(), renderReport(report))
}

func renderReport(report domain.PersonaReport) string {
	p := report.Persona
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s\n", bold("Persona for"), cyan(domain.Value(p.Name, report.Handle)))
	if p.Intro != nil {
		fmt.Fprintf(&b, "%s\n", *p.Intro)
	}
	if report.Snapshot != nil && report.Snapshot.Partial() {
		fmt.Fprintf(&b, "%s %s\n", yellow("partial data:"), strings.Join(report.Snapshot.Warnings, ", "))
	}
	b.WriteString("\n")

	field := func(label, value string) {
		fmt.Fprintf(&b, "  %-16s %s\n", gray(label), value)
	}
	field("occupation", domain.Value(p.Occupation, "N/A"))
	field("location", domain.Value(p.Location, "N/A"))
	field("status", domain.Value(p.Status, "N/A"))
	field("tone", domain.Value(p.SentimentTone, "N/A"))
	field("subreddits", strings.Join(p.SubredditsActive, ", "))
	if len(p.SocialProfile) > 0 {
		field("profiles", strings.Join(p.SocialProfile, " "))
	}
	field("enrichment", string(report.Enrichment))

	section := func(title string, items []domain.EvidenceItem) {
		if len(items) == 0 {
			return
		}
		fmt.Fprintf(&b, "\n%s\n", bold(title))
		for _, item := range items {
			fmt.Fprintf(&b, "  %s %s\n", green("-"), item.Label)
			for _, c := range item.Citations {
				fmt.Fprintf(&b, "      %s\n", gray("\""+c+"\""))
			}
		}
	}
	section("Personality traits", p.PersonalityTraits)
	section("Motivations", p.Motivations)
	section("Behaviour & habits", p.BehaviourHabits)
	section("Frustrations", p.Frustrations)
	section("Goals & needs", p.GoalsNeeds)

	if p.SummaryQuote != nil {
		fmt.Fprintf(&b, "\n  %s\n", cyan("\""+*p.SummaryQuote+"\""))
	}
	if report.Topics != nil {
		b.WriteString(renderTopics(*report.Topics))
	}
	return b.String()
}
