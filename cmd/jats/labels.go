package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/matsen/jats/internal/labels"
)

// LabelsResponse lists the labels assigned to one document.
type LabelsResponse struct {
	Targets   []labels.Target   `json:"targets"`
	Footnotes map[string]string `json:"footnotes"`
}

var labelsCmd = &cobra.Command{
	Use:   "labels <document.json>",
	Short: "Show figure, table and footnote labels",
	Long: `Show the labels assigned to labelled elements and footnotes.

Labelled elements (figures, tables, equations, listings, boxes, media and
images) are numbered per type in document order. Footnotes are labelled
a, b, c, ... per footnotes element.`,
	Args: cobra.ExactArgs(1),
	Run:  runLabels,
}

func init() {
	rootCmd.AddCommand(labelsCmd)
}

func runLabels(cmd *cobra.Command, args []string) {
	root := mustLoadDocument(args[0])

	resp := LabelsResponse{
		Targets:   labels.BuildTargets(root).All(),
		Footnotes: labels.FootnoteLabels(root),
	}

	if !humanOutput {
		outputJSON(resp)
		return
	}

	if len(resp.Targets) == 0 && len(resp.Footnotes) == 0 {
		fmt.Println("No labelled elements")
		return
	}
	for _, t := range resp.Targets {
		fmt.Printf("%-12s %-40s %s\n", t.Label, t.ID, truncateString(t.Caption, 60))
	}
	if len(resp.Footnotes) > 0 {
		fmt.Println()
		ids := make([]string, 0, len(resp.Footnotes))
		for id := range resp.Footnotes {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			fmt.Printf("%-12s %s\n", resp.Footnotes[id], id)
		}
	}
}
