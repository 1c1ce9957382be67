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
		Use:   "topics <handle|profile-url>",
		Short: "Cluster an account's activity into named topics",
		Args:  cobra.ExactArgs(1),
		Run:   runTopics,
	}
	RootCmd.AddCommand(cmd)
}

func runTopics(cmd *cobra.Command, args []string) {
	a, logger, err := openApp(cmd.Context())
	if err != nil {
		exitErr("init", err)
	}
	defer a.Close()
	defer logger.Sync()

	handle, summary, err := a.Personas.Topics(cmd.Context(), args[0])
	if err != nil {
		exitErr("topics", err)
	}

	if formatFlag == "json" {
		b, _ := json.MarshalIndent(map[string]any{"handle": handle, "topics": summary}, "", "  ")
		fmt.Fprintln(cmd.OutOrStdout(), string(b))
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", bold("Topics for"), cyan(handle))
	if len(summary.Topics) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), gray("  not enough text to build topics"))
		return
	}
	fmt.Fprint(cmd.OutOrStdout(), renderTopics(summary))
}

func renderTopics(summary domain.TopicSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n%s\n", bold("Topics"))
	for _, t := range summary.Topics {
		name := t.Name
		if t.ID == domain.OutlierTopicID {
			name = gray(name)
		}
		fmt.Fprintf(&b, "  %s %s (%d)", green("-"), name, t.Count)
		if len(t.Keywords) > 0 {
			fmt.Fprintf(&b, " %s", gray(strings.Join(t.Keywords, ", ")))
		}
		b.WriteString("\n")
	}
	return b.String()
}
