package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"reddit-persona/internal/app"
	"reddit-persona/internal/config"
)

var (
	cyan   = color.New(color.FgCyan).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
)

// Cuentas por defecto cuando no se pasan handles por argumento.
var defaultHandles = []string{"kojied", "Hungry-Move-6603"}

func main() {
	ctx := context.Background()
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}
	// El juez solo mira lo que produce el LLM a partir de la actividad.
	cfg.PeopleAPIKey = ""
	cfg.TopicsEnabled = false
	cfg.DatabaseURL = ""

	a, err := app.New(ctx, cfg, zap.NewNop(), nil)
	if err != nil {
		log.Fatal(err)
	}
	defer a.Close()

	handles := os.Args[1:]
	if len(handles) == 0 {
		handles = defaultHandles
	}

	var totalGrounding, totalCoverage, evaluated int
	for _, handle := range handles {
		fmt.Printf("%s %s\n", cyan("[Handle]"), handle)

		report, err := a.Personas.Generate(ctx, handle)
		if err != nil {
			fmt.Printf("%s %v\n\n", yellow("skip:"), err)
			continue
		}

		citations := collectCitations(report.Persona)
		ungrounded := ungroundedCitations(citations, report.Snapshot)
		fmt.Printf("%s %d citas, %d sin respaldo en la actividad\n", green("[Persona]"), len(citations), len(ungrounded))
		for _, c := range ungrounded {
			fmt.Printf("  %s %q\n", yellow("?"), c)
		}

		jr, err := evaluatePersona(ctx, a.LLM, report, len(ungrounded) > 0)
		if err != nil {
			log.Fatalf("judge failed: %v", err)
		}

		fmt.Printf("%s %q\n", cyan("Juez"), jr.Reasoning)
		fmt.Printf("Scores: Respaldo %d/5 | Cobertura %d/5\n\n", jr.GroundingScore, jr.CoverageScore)

		totalGrounding += jr.GroundingScore
		totalCoverage += jr.CoverageScore
		evaluated++
	}

	if evaluated == 0 {
		fmt.Println("ninguna cuenta evaluada")
		return
	}
	fmt.Println("==== Promedios ====")
	fmt.Printf("Respaldo: %.2f/5 | Cobertura: %.2f/5\n",
		float64(totalGrounding)/float64(evaluated), float64(totalCoverage)/float64(evaluated))
}
