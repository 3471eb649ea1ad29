package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/jats/internal/author"
	"github.com/matsen/jats/internal/citeproc"
	"github.com/matsen/jats/internal/config"
	"github.com/matsen/jats/internal/csl"
	"github.com/matsen/jats/internal/importer"
	"github.com/matsen/jats/internal/storage"
)

var (
	bibPath   string
	bibDB     string
	bibLimit  int
	bibAuthor []string
	bibDryRun bool
	bibStyle  string
	bibLocale string
	bibFormat string
)

var bibCmd = &cobra.Command{
	Use:   "bib",
	Short: "Manage the CSL-JSON bibliography",
	Long: `Manage the CSL-JSON bibliography used to resolve citations.

The bibliography is a JSONL file with one CSL-JSON item per line. A SQLite
cache next to it (same name, .db extension) serves id, DOI and full-text
lookups; rebuild it after editing the JSONL file.`,
}

var bibRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the SQLite cache from the JSONL bibliography",
	Args:  cobra.NoArgs,
	Run:   runBibRebuild,
}

var bibGetCmd = &cobra.Command{
	Use:   "get <id-or-doi>",
	Short: "Get a bibliography item by id or DOI",
	Args:  cobra.ExactArgs(1),
	Run:   runBibGet,
}

var bibSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search bibliography items by text and author",
	Long: `Search bibliography items.

The query is matched against titles and author names with full-text search.
--author filters by author name ("Yu", "Timothy Yu" or "Yu, Timothy"); repeat
it to require several authors.

Examples:
  jats bib search "phylogenetic inference"
  jats bib search --author Matsen --author "Bloom, J"`,
	Args: cobra.MaximumNArgs(1),
	Run:   runBibSearch,
}

var bibImportCmd = &cobra.Command{
	Use:   "import [items.json]",
	Short: "Import CSL-JSON items into the bibliography",
	Long: `Import CSL-JSON items into the bibliography.

Accepts a CSL-JSON array (as exported by Zotero, Paperpile or Mendeley) or a
single item object, from the given file or from stdin. Items whose id or DOI
already exist are skipped.

Examples:
  jats bib import zotero-export.json
  jats bib import --dry-run < item.json`,
	Args: cobra.MaximumNArgs(1),
	Run:  runBibImport,
}

var bibFormatCmd = &cobra.Command{
	Use:   "format <id>...",
	Short: "Format bibliography entries with a citation style",
	Long: `Format bibliography entries with a citation style.

Examples:
  jats bib format smith2020 jones2019
  jats bib format smith2020 --style apa --format html`,
	Args: cobra.MinimumNArgs(1),
	Run:  runBibFormat,
}

func init() {
	bibCmd.PersistentFlags().StringVar(&bibPath, "bib", "", "CSL-JSON bibliography (JSONL, default from config)")
	bibCmd.PersistentFlags().StringVar(&bibDB, "db", "", "SQLite cache (default: bibliography path with .db extension)")
	bibSearchCmd.Flags().IntVarP(&bibLimit, "limit", "n", 20, "Maximum results")
	bibSearchCmd.Flags().StringArrayVarP(&bibAuthor, "author", "a", nil, "Filter by author (repeatable, AND logic)")
	bibImportCmd.Flags().BoolVar(&bibDryRun, "dry-run", false, "Report what would be imported without writing")
	bibFormatCmd.Flags().StringVar(&bibStyle, "style", "", "Citation style (default from config, then vancouver)")
	bibFormatCmd.Flags().StringVar(&bibLocale, "locale", "", "Citation locale (default from config, then en-US)")
	bibFormatCmd.Flags().StringVar(&bibFormat, "format", citeproc.DefaultFormat, "Output format: text, html")

	bibCmd.AddCommand(bibRebuildCmd, bibGetCmd, bibSearchCmd, bibImportCmd, bibFormatCmd)
	rootCmd.AddCommand(bibCmd)
}

// mustBibPath resolves the bibliography file, exits when none is configured.
func mustBibPath() string {
	if bibPath != "" {
		return config.ExpandTilde(bibPath)
	}
	cfg := mustLoadConfig()
	if cfg.Bibliography == "" {
		exitWithError(ExitConfigError, "no bibliography: pass --bib or set bibliography in the config")
	}
	return cfg.Bibliography
}

// dbPathFor returns the cache path for a bibliography file.
func dbPathFor(bib string) string {
	if bibDB != "" {
		return bibDB
	}
	return strings.TrimSuffix(bib, filepath.Ext(bib)) + ".db"
}

func runBibRebuild(cmd *cobra.Command, args []string) {
	bib := mustBibPath()
	dbPath := dbPathFor(bib)

	db := mustOpenDatabase(dbPath)
	defer db.Close()

	count, err := db.RebuildFromJSONL(bib)
	if err != nil {
		exitWithError(ExitDataError, "rebuilding database: %v", err)
	}

	if humanOutput {
		fmt.Printf("Rebuilt %s: %d items\n", dbPath, count)
		return
	}
	outputJSON(RebuildResponse{Status: "rebuilt", Path: dbPath, Items: count})
}

func runBibGet(cmd *cobra.Command, args []string) {
	db := mustOpenDatabase(dbPathFor(mustBibPath()))
	defer db.Close()

	key := args[0]
	item, err := db.GetByID(key)
	if err == nil && item == nil && strings.HasPrefix(key, "10.") {
		item, err = db.GetByDOI(key)
	}
	if err != nil {
		exitWithError(ExitError, "querying database: %v", err)
	}
	if item == nil {
		exitWithError(ExitDataError, "item not found: %s", key)
	}

	if humanOutput {
		printItemDetail(item)
		return
	}
	outputJSON(item)
}

func runBibSearch(cmd *cobra.Command, args []string) {
	if len(args) == 0 && len(bibAuthor) == 0 {
		exitWithError(ExitError, "search needs a query or --author")
	}

	db := mustOpenDatabase(dbPathFor(mustBibPath()))
	defer db.Close()

	queries := make([]author.Query, 0, len(bibAuthor))
	for _, a := range bibAuthor {
		q := author.ParseQuery(a)
		if q.Last == "" {
			exitWithError(ExitError, "invalid author query: %q", a)
		}
		queries = append(queries, q)
	}

	// Author filters apply after the text query; the limit is applied last.
	var items []csl.Item
	var err error
	if len(args) == 1 {
		limit := bibLimit
		if len(queries) > 0 {
			limit = 0
		}
		items, err = db.Search(args[0], limit)
	} else {
		items, err = db.ListAll(0)
	}
	if err != nil {
		exitWithError(ExitError, "searching: %v", err)
	}
	items = author.FilterItems(items, queries)
	if bibLimit > 0 && len(items) > bibLimit {
		items = items[:bibLimit]
	}

	if humanOutput {
		if len(items) == 0 {
			fmt.Println("No items found")
			return
		}
		for i := range items {
			printItemLine(&items[i])
		}
		return
	}
	if items == nil {
		items = []csl.Item{}
	}
	outputJSON(items)
}

func runBibImport(cmd *cobra.Command, args []string) {
	bib := mustBibPath()

	var data []byte
	var err error
	if len(args) == 1 {
		data, err = os.ReadFile(args[0])
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		exitWithError(ExitError, "reading items: %v", err)
	}

	incoming, parseErrs := importer.ParseCSLJSON(data)
	if len(incoming) == 0 && len(parseErrs) > 0 {
		exitWithError(ExitDataError, "%v", parseErrs[0])
	}

	existing, err := storage.ReadAll(bib)
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}
	added, skipped := importer.Merge(existing, incoming)

	if !bibDryRun {
		for _, item := range added {
			if err := storage.Append(bib, item); err != nil {
				exitWithError(ExitError, "appending item: %v", err)
			}
		}
	}

	resp := ImportResponse{
		Path:    bib,
		DryRun:  bibDryRun,
		Added:   []string{},
		Skipped: skipped,
	}
	for _, item := range added {
		resp.Added = append(resp.Added, item.ID)
	}
	for _, e := range parseErrs {
		resp.Errors = append(resp.Errors, e.Error())
	}

	if humanOutput {
		verb := "Imported"
		if bibDryRun {
			verb = "Would import"
		}
		fmt.Printf("%s %d items into %s\n", verb, len(resp.Added), bib)
		for _, s := range skipped {
			fmt.Printf("  skipped %s: %s\n", s.ID, s.Reason)
		}
		for _, e := range resp.Errors {
			fmt.Printf("  error: %s\n", e)
		}
		return
	}
	outputJSON(resp)
}

func runBibFormat(cmd *cobra.Command, args []string) {
	cfg := mustLoadConfig()
	bib := config.ExpandTilde(bibPath)
	if bib == "" {
		bib = cfg.Bibliography
	}
	if bib == "" {
		exitWithError(ExitConfigError, "no bibliography: pass --bib or set bibliography in the config")
	}
	style, locale := cfg.CSL.Style, cfg.CSL.Locale
	if bibStyle != "" {
		style = bibStyle
	}
	if bibLocale != "" {
		locale = bibLocale
	}

	lib := mustLoadLibrary(bib)
	proc, err := citeproc.New(citeproc.Options{
		Style:  style,
		Locale: locale,
		Format: bibFormat,
		Lookup: lib.Lookup,
	})
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	if missing := proc.Register(args...); len(missing) > 0 {
		exitWithError(ExitDataError, "items not found: %s", strings.Join(missing, ", "))
	}
	entries, err := proc.Bibliography()
	if err != nil {
		exitWithError(ExitDataError, "formatting bibliography: %v", err)
	}

	if humanOutput {
		for _, e := range entries {
			fmt.Println(e.Text)
		}
		return
	}
	resp := make([]FormattedEntry, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, FormattedEntry{ID: e.ID, Text: e.Text})
	}
	outputJSON(resp)
}

// RebuildResponse is the JSON output of bib rebuild.
type RebuildResponse struct {
	Status string `json:"status"`
	Path   string `json:"path"`
	Items  int    `json:"items"`
}

// ImportResponse is the JSON output of bib import.
type ImportResponse struct {
	Path    string          `json:"path"`
	DryRun  bool            `json:"dry_run,omitempty"`
	Added   []string        `json:"added"`
	Skipped []importer.Skip `json:"skipped,omitempty"`
	Errors  []string        `json:"errors,omitempty"`
}

// FormattedEntry is one formatted bibliography entry.
type FormattedEntry struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

func printItemLine(item *csl.Item) {
	year := ""
	if y := item.Issued.Year(); y != 0 {
		year = fmt.Sprintf(" (%d)", y)
	}
	fmt.Printf("%-24s %s%s\n", item.ID, truncateString(item.Title, 70), year)
}

func printItemDetail(item *csl.Item) {
	fmt.Printf("ID:      %s\n", item.ID)
	fmt.Printf("Type:    %s\n", item.Type)
	if item.Title != "" {
		fmt.Printf("Title:   %s\n", item.Title)
	}
	if len(item.Author) > 0 {
		names := make([]string, 0, len(item.Author))
		for _, n := range item.Author {
			if n.Literal != "" {
				names = append(names, n.Literal)
				continue
			}
			names = append(names, strings.TrimSpace(n.Given+" "+n.Family))
		}
		fmt.Printf("Authors: %s\n", strings.Join(names, ", "))
	}
	if item.ContainerTitle != "" {
		fmt.Printf("In:      %s\n", item.ContainerTitle)
	}
	if y := item.Issued.Year(); y != 0 {
		fmt.Printf("Year:    %d\n", y)
	}
	if item.DOI != "" {
		fmt.Printf("DOI:     %s\n", item.DOI)
	}
}
