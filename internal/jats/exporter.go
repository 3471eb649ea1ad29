// Package jats exports manuscript document trees as JATS XML.
//
// Export runs a fixed pipeline: collect citations and labels, build front
// matter, body and back matter as an XML tree, run the corrective passes in
// order, rewrite ids, and serialize.
package jats

import (
	"errors"
	"fmt"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"github.com/matsen/jats/internal/citeproc"
	"github.com/matsen/jats/internal/csl"
	"github.com/matsen/jats/internal/doctree"
	"github.com/matsen/jats/internal/jatscite"
	"github.com/matsen/jats/internal/labels"
)

var (
	// ErrUnsupportedVersion is returned for an unknown JATS version.
	ErrUnsupportedVersion = errors.New("unsupported JATS version")
	// ErrMissingCitationText is returned when a citation has no rendered text.
	ErrMissingCitationText = errors.New("missing citation text")
	// ErrInvalidContributor marks a contributor without a usable name.
	ErrInvalidContributor = errors.New("invalid contributor")
	// ErrInvalidMarkup is returned when embedded markup cannot be parsed.
	ErrInvalidMarkup = errors.New("invalid markup")
)

// ReferenceMode selects how ref-list entries are built.
type ReferenceMode string

const (
	// StructuredReferences builds element-citation entries field by field.
	StructuredReferences ReferenceMode = "structured"
	// FormattedReferences inserts the citation processor's formatted entries.
	FormattedReferences ReferenceMode = "formatted"
)

// Journal holds journal-level metadata for journal-meta.
type Journal struct {
	Identifiers       []JournalIdentifier `yaml:"identifiers" json:"identifiers,omitempty"`
	Title             string              `yaml:"title" json:"title,omitempty"`
	AbbreviatedTitles []AbbreviatedTitle  `yaml:"abbreviated_titles" json:"abbreviated_titles,omitempty"`
	ISSNs             []ISSN              `yaml:"issns" json:"issns,omitempty" validate:"dive"`
	PublisherName     string              `yaml:"publisher_name" json:"publisher_name,omitempty"`
}

// JournalIdentifier is a typed journal id.
type JournalIdentifier struct {
	Type string `yaml:"type" json:"type"`
	ID   string `yaml:"id" json:"id"`
}

// AbbreviatedTitle is a typed abbreviated journal title.
type AbbreviatedTitle struct {
	Type  string `yaml:"type" json:"type"`
	Title string `yaml:"title" json:"title"`
}

// ISSN is an ISSN with its publication type (ppub, epub).
type ISSN struct {
	ISSN            string `yaml:"issn" json:"issn" validate:"required,issn"`
	PublicationType string `yaml:"publication_type" json:"publication_type,omitempty"`
}

// CSLOptions selects the citation style and locale.
type CSLOptions struct {
	Style  string `yaml:"style" json:"style"`
	Locale string `yaml:"locale" json:"locale"`
}

// Options configures one export.
type Options struct {
	Version    string
	Journal    *Journal
	CSL        CSLOptions
	References ReferenceMode
}

// EngineFactory creates a citation engine for one export.
type EngineFactory func(opts citeproc.Options) (citeproc.Engine, error)

// Config configures an Exporter.
type Config struct {
	// Registry holds output formats. Nil creates a private registry.
	Registry *citeproc.Registry
	// Lookup resolves bibliography items. Nil resolves nothing.
	Lookup citeproc.LookupFunc
	// Logger receives warnings. Nil discards them.
	Logger *zap.Logger
	// NewIDGenerator creates the id generator for each export. Nil uses
	// SequentialIDs.
	NewIDGenerator func() IDGenerator
	// NewEngine creates the citation engine. Nil uses the built-in processor.
	NewEngine EngineFactory
}

// Exporter converts document trees to JATS. It is safe for concurrent use;
// each Export call has its own state.
type Exporter struct {
	registry  *citeproc.Registry
	lookup    citeproc.LookupFunc
	log       *zap.Logger
	newIDs    func() IDGenerator
	newEngine EngineFactory
}

// New creates an Exporter and registers the JATS citation format.
func New(cfg Config) *Exporter {
	e := &Exporter{
		registry:  cfg.Registry,
		lookup:    cfg.Lookup,
		log:       cfg.Logger,
		newIDs:    cfg.NewIDGenerator,
		newEngine: cfg.NewEngine,
	}
	if e.registry == nil {
		e.registry = citeproc.NewRegistry()
	}
	if e.lookup == nil {
		e.lookup = func(string) (*csl.Item, bool) { return nil, false }
	}
	if e.log == nil {
		e.log = zap.NewNop()
	}
	if e.newIDs == nil {
		e.newIDs = SequentialIDs
	}
	if e.newEngine == nil {
		e.newEngine = func(opts citeproc.Options) (citeproc.Engine, error) {
			return citeproc.New(opts)
		}
	}
	jatscite.Init(e.registry)
	return e
}

// exportState is the per-export context shared by the pipeline stages.
type exportState struct {
	opts    Options
	version Version
	log     *zap.Logger
	root    *doctree.Node
	index   *nodeIndex

	engine         citeproc.Engine
	citations      map[string]string
	bibliography   []citeproc.Entry
	targets        *labels.Targets
	footnoteLabels map[string]string

	tableFlags map[*etree.Element]tableFlags
	article    *etree.Element
	front      *etree.Element
	meta       *etree.Element
	body       *etree.Element
	back       *etree.Element
}

// Export converts a manuscript tree to a JATS XML string. The tree is not
// modified.
func (e *Exporter) Export(root *doctree.Node, opts Options) (string, error) {
	if root == nil || root.Type != doctree.Manuscript {
		return "", errors.New("export requires a manuscript root node")
	}
	version, err := SelectVersion(opts.Version)
	if err != nil {
		return "", err
	}
	switch opts.References {
	case "":
		opts.References = StructuredReferences
	case StructuredReferences, FormattedReferences:
	default:
		return "", fmt.Errorf("unknown reference mode %q", opts.References)
	}

	engine, err := e.newEngine(citeproc.Options{
		Style:    opts.CSL.Style,
		Locale:   opts.CSL.Locale,
		Format:   jatscite.FormatName,
		Registry: e.registry,
		Lookup:   e.lookup,
	})
	if err != nil {
		return "", fmt.Errorf("creating citation engine: %w", err)
	}

	s := &exportState{
		opts:       opts,
		version:    version,
		log:        e.log.With(zap.String("manuscript", root.ID())),
		root:       root,
		engine:     engine,
		tableFlags: make(map[*etree.Element]tableFlags),
	}

	if err := s.collect(); err != nil {
		return "", err
	}
	if err := s.build(); err != nil {
		return "", err
	}
	for _, p := range passes {
		s.log.Debug("running pass", zap.String("pass", p.name))
		p.run(s)
	}
	if len(s.back.ChildElements()) == 0 {
		detach(s.back)
	}
	rewriteIDs(s.article, e.newIDs())

	return serialize(s.article, version)
}

// build assembles front, body and back under a new article element.
func (s *exportState) build() error {
	lang := s.root.Attrs.String("primaryLanguageCode")
	if lang == "" {
		lang = "en"
	}
	articleType := s.root.Attrs.String("articleType")
	if articleType == "" {
		articleType = "other"
	}
	s.article = newElement("article",
		"xmlns:mml", mathNS,
		"xmlns:xlink", xlinkNS,
		"article-type", articleType,
		"dtd-version", s.version.DTDVersion,
		"xml:lang", lang,
	)

	if err := s.buildFront(); err != nil {
		return fmt.Errorf("building front matter: %w", err)
	}
	if err := s.buildBody(); err != nil {
		return fmt.Errorf("building body: %w", err)
	}
	if err := s.buildBack(); err != nil {
		return fmt.Errorf("building back matter: %w", err)
	}

	s.article.AddChild(s.front)
	s.article.AddChild(s.body)
	s.article.AddChild(s.back)
	return nil
}

func serialize(article *etree.Element, v Version) (string, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	doc.CreateText("\n")
	doc.CreateDirective(`DOCTYPE article PUBLIC "` + v.PublicID + `" "` + v.SystemID + `"`)
	doc.CreateText("\n")
	doc.SetRoot(article)
	doc.WriteSettings.CanonicalText = true
	doc.WriteSettings.CanonicalAttrVal = true

	out, err := doc.WriteToString()
	if err != nil {
		return "", fmt.Errorf("serializing article: %w", err)
	}
	return out, nil
}
