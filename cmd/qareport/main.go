// Command qareport runs the connectivity QA analysis over an already
// extracted record and writes the report JSON.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pwmlx/pwmlx/qa"
	"github.com/pwmlx/pwmlx/record"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: qareport <extracted.json> [qa_report.json]")
		os.Exit(1)
	}
	inPath := os.Args[1]
	outPath := "qa_report.json"
	if len(os.Args) > 2 {
		outPath = os.Args[2]
	}

	data, err := os.ReadFile(inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "reading %s: %v\n", inPath, err)
		os.Exit(1)
	}

	var rec record.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		fmt.Fprintf(os.Stderr, "parsing %s: %v\n", inPath, err)
		os.Exit(1)
	}

	g, meta := qa.BuildGraph(rec)
	report := qa.Analyze(g, qa.CollectEntities(rec), meta)

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "encoding report: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(outPath, append(out, '\n'), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "writing %s: %v\n", outPath, err)
		os.Exit(1)
	}

	fmt.Printf("Wrote QA report: %s\n", outPath)
	fmt.Printf("Components: %d | Main size: %d | Orphans: %d\n",
		report.NComponents, report.MainComponentSize, len(report.OrphanComponents))
}
