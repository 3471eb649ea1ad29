package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/jats/internal/citeproc"
	"github.com/matsen/jats/internal/config"
	"github.com/matsen/jats/internal/jats"
)

var (
	exportOutput     string
	exportBib        string
	exportVersion    string
	exportStyle      string
	exportLocale     string
	exportReferences string
	exportIDs        string
)

var exportCmd = &cobra.Command{
	Use:   "export <document.json>",
	Short: "Export a document tree as JATS XML",
	Long: `Export a manuscript document tree as JATS XML.

Citations are resolved against the CSL-JSON bibliography given by --bib
(or the configured bibliography). Without --output the XML is written to
stdout.

Examples:
  jats export paper.json --bib refs.jsonl
  jats export paper.json --bib refs.jsonl --style apa -o paper.xml
  jats export paper.json --jats-version 1.2 --references formatted`,
	Args: cobra.ExactArgs(1),
	Run:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Write XML to this file instead of stdout")
	exportCmd.Flags().StringVar(&exportBib, "bib", "", "CSL-JSON bibliography (JSONL)")
	exportCmd.Flags().StringVar(&exportVersion, "jats-version", "", "JATS version: 1.1, 1.2 (default 1.3)")
	exportCmd.Flags().StringVar(&exportStyle, "style", "", "Citation style (default vancouver)")
	exportCmd.Flags().StringVar(&exportLocale, "locale", "", "Citation locale (default en-US)")
	exportCmd.Flags().StringVar(&exportReferences, "references", "", "Reference mode: structured, formatted")
	exportCmd.Flags().StringVar(&exportIDs, "ids", "", "Id scheme: sequential, uuid")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) {
	cfg := mustLoadConfig()
	applyExportFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	logger := newLogger(cfg)
	defer logger.Sync()

	root := mustLoadDocument(args[0])

	var lookup citeproc.LookupFunc
	if cfg.Bibliography != "" {
		lookup = mustLoadLibrary(cfg.Bibliography).Lookup
	}

	exporter := jats.New(jats.Config{
		Lookup:         lookup,
		Logger:         logger,
		NewIDGenerator: cfg.IDGenerator(),
	})
	xml, err := exporter.Export(root, cfg.ExportOptions())
	if err != nil {
		exitWithError(exportExitCode(err), "exporting %s: %v", args[0], err)
	}

	if exportOutput == "" {
		fmt.Print(xml)
		return
	}
	if err := os.WriteFile(exportOutput, []byte(xml), 0644); err != nil {
		exitWithError(ExitError, "writing %s: %v", exportOutput, err)
	}
	if humanOutput {
		fmt.Printf("Exported %s to %s\n", args[0], exportOutput)
		return
	}
	outputJSON(StatusResponse{Status: "exported", Path: exportOutput})
}

// applyExportFlags overrides config values with explicitly set flags.
func applyExportFlags(cmd *cobra.Command, cfg *config.Config) {
	for _, f := range []struct {
		name  string
		value string
		field *string
	}{
		{"bib", exportBib, &cfg.Bibliography},
		{"jats-version", exportVersion, &cfg.Version},
		{"style", exportStyle, &cfg.CSL.Style},
		{"locale", exportLocale, &cfg.CSL.Locale},
		{"references", exportReferences, &cfg.References},
		{"ids", exportIDs, &cfg.IDs},
	} {
		if cmd.Flags().Changed(f.name) {
			*f.field = f.value
		}
	}
	cfg.Bibliography = config.ExpandTilde(cfg.Bibliography)
}

// exportExitCode maps export failures caused by options to the config exit
// code and everything else to the data exit code.
func exportExitCode(err error) int {
	switch {
	case errors.Is(err, jats.ErrUnsupportedVersion),
		errors.Is(err, citeproc.ErrUnknownStyle),
		errors.Is(err, citeproc.ErrUnknownFormat):
		return ExitConfigError
	default:
		return ExitDataError
	}
}
