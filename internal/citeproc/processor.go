// Package citeproc formats citations and bibliographies from CSL items.
//
// Output formats are pluggable: a Format supplies escaping, decoration
// templates, a NameRenderer decorator and a per-variable wrapper, so the
// same style logic can produce plain text, HTML or XML fragments.
package citeproc

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/matsen/jats/internal/csl"
)

const (
	DefaultStyle  = "vancouver"
	DefaultLocale = "en-US"
	DefaultFormat = "text"
)

// LookupFunc resolves a bibliography item by id.
type LookupFunc func(id string) (*csl.Item, bool)

// Citation is one in-text citation cluster.
type Citation struct {
	ID      string
	ItemIDs []string
}

// Rendered is the formatted text of one citation cluster.
type Rendered struct {
	ID   string
	Text string
}

// Entry is one formatted bibliography entry.
type Entry struct {
	ID   string
	Item *csl.Item
	Text string
}

// Engine is the citation processor contract used by exporters.
type Engine interface {
	// Cite renders citation clusters in the given order. Clusters whose
	// items all fail to resolve are omitted from the result.
	Cite(citations []Citation) ([]Rendered, error)
	// Register adds items to the bibliography without citing them and
	// returns the ids that could not be resolved.
	Register(ids ...string) []string
	// Bibliography renders every cited or registered item in style order.
	Bibliography() ([]Entry, error)
}

// Options configures a Processor.
type Options struct {
	Style    string
	Locale   string
	Format   string
	Registry *Registry
	Lookup   LookupFunc
}

// Processor is the built-in Engine. It is not safe for concurrent use; create
// one per document.
type Processor struct {
	style    style
	lang     language.Tag
	format   *Format
	names    NameRenderer
	lookup   LookupFunc
	collator *collate.Collator

	items   map[string]*csl.Item
	numbers map[string]int
	order   []string
}

var _ Engine = (*Processor)(nil)

// New creates a Processor.
func New(opts Options) (*Processor, error) {
	if opts.Lookup == nil {
		return nil, errors.New("citeproc: lookup function is required")
	}

	styleName := opts.Style
	if styleName == "" {
		styleName = DefaultStyle
	}
	st, ok := styles[strings.ToLower(styleName)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStyle, styleName)
	}

	locale := opts.Locale
	if locale == "" {
		locale = DefaultLocale
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("parsing locale %q: %w", locale, err)
	}

	reg := opts.Registry
	if reg == nil {
		reg = NewRegistry()
	}
	formatName := opts.Format
	if formatName == "" {
		formatName = DefaultFormat
	}
	f, err := reg.Lookup(formatName)
	if err != nil {
		return nil, err
	}

	var names NameRenderer = PlainNames{Escape: f.Escape}
	if f.Names != nil {
		names = f.Names(names)
	}

	return &Processor{
		style:    st,
		lang:     tag,
		format:   f,
		names:    names,
		lookup:   opts.Lookup,
		collator: collate.New(tag, collate.IgnoreCase),
		items:    make(map[string]*csl.Item),
		numbers:  make(map[string]int),
	}, nil
}

// Styles lists the built-in style names.
func Styles() []string {
	names := make([]string, 0, len(styles))
	for name := range styles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Language returns the processor's locale.
func (p *Processor) Language() language.Tag {
	return p.lang
}

func (p *Processor) resolve(id string) (*csl.Item, bool) {
	if item, ok := p.items[id]; ok {
		return item, true
	}
	item, ok := p.lookup(id)
	if !ok || item == nil {
		return nil, false
	}
	p.items[id] = item
	return item, true
}

// number returns the citation number of id, assigning the next one on first use.
func (p *Processor) number(id string) int {
	if n, ok := p.numbers[id]; ok {
		return n
	}
	p.order = append(p.order, id)
	n := len(p.order)
	p.numbers[id] = n
	return n
}

func (p *Processor) renderer(area Area) *renderer {
	return &renderer{format: p.format, names: p.names, area: area}
}

// Cite renders each citation cluster.
func (p *Processor) Cite(citations []Citation) ([]Rendered, error) {
	out := make([]Rendered, 0, len(citations))
	for _, c := range citations {
		var cites []cited
		seen := make(map[string]bool)
		for _, id := range c.ItemIDs {
			if seen[id] {
				continue
			}
			seen[id] = true
			item, ok := p.resolve(id)
			if !ok {
				continue
			}
			cites = append(cites, cited{Item: item, Number: p.number(id)})
		}
		if len(cites) == 0 {
			continue
		}
		if !p.style.numeric {
			p.sort(cites)
		}
		out = append(out, Rendered{ID: c.ID, Text: p.style.citation(p.renderer(AreaCitation), cites)})
	}
	return out, nil
}

// Register adds uncited items to the bibliography.
func (p *Processor) Register(ids ...string) []string {
	var missing []string
	for _, id := range ids {
		if _, ok := p.resolve(id); !ok {
			missing = append(missing, id)
			continue
		}
		p.number(id)
	}
	return missing
}

// Bibliography renders the bibliography in style order.
func (p *Processor) Bibliography() ([]Entry, error) {
	cites := make([]cited, 0, len(p.order))
	for _, id := range p.order {
		cites = append(cites, cited{Item: p.items[id], Number: p.numbers[id]})
	}
	if p.style.numeric {
		slices.SortStableFunc(cites, func(a, b cited) int { return a.Number - b.Number })
	} else {
		p.sort(cites)
	}

	r := p.renderer(AreaBibliography)
	entries := make([]Entry, 0, len(cites))
	for _, c := range cites {
		text := p.format.entry(c.Item, p.style.entry(r, c))
		entries = append(entries, Entry{ID: c.Item.ID, Item: c.Item, Text: text})
	}
	return entries, nil
}

// sort orders items by first author, then year, then title, using the
// processor's collation.
func (p *Processor) sort(cites []cited) {
	slices.SortStableFunc(cites, func(a, b cited) int {
		ka, kb := sortKey(a.Item), sortKey(b.Item)
		for i := range ka {
			if c := p.collator.CompareString(ka[i], kb[i]); c != 0 {
				return c
			}
		}
		return 0
	})
}

func sortKey(item *csl.Item) [4]string {
	var family, given string
	if len(item.Author) > 0 {
		n := item.Author[0]
		if n.IsLiteral() {
			family = n.Literal
		} else {
			family, given = n.Family, n.Given
		}
	}
	if family == "" {
		family = item.Title
	}
	return [4]string{family, given, fmt.Sprintf("%04d", item.Issued.Year()), item.Title}
}

type cited struct {
	Item   *csl.Item
	Number int
}

type style struct {
	numeric  bool
	citation func(r *renderer, cites []cited) string
	entry    func(r *renderer, c cited) string
}

var styles = map[string]style{
	"vancouver": {numeric: true, citation: vancouverCitation, entry: vancouverEntry},
	"apa":       {citation: apaCitation, entry: apaEntry},
}

// renderer carries the output format and area through style code.
type renderer struct {
	format *Format
	names  NameRenderer
	area   Area
}

func (r *renderer) esc(s string) string {
	return r.format.escape(s)
}

// variable escapes and decorates value, then passes it through the format's
// variable wrapper.
func (r *renderer) variable(name, value string, item *csl.Item, decorations ...Decoration) string {
	if value == "" {
		return ""
	}
	s := r.esc(value)
	for _, d := range decorations {
		s = r.format.Decorate(d, s)
	}
	return r.wrap(name, s, item)
}

func (r *renderer) wrap(name, s string, item *csl.Item) string {
	if s == "" || r.format.Wrap == nil {
		return s
	}
	return r.format.Wrap(r.area, name, s, item)
}

type nameStyle struct {
	Short         bool
	Given         GivenForm
	Inverted      bool
	SortSeparator string
	Delimiter     string
	LastDelimiter string
	EtAlMin       int
	EtAlUseFirst  int
	EtAl          string
}

func (r *renderer) nameList(variable string, names []csl.Name, item *csl.Item, ns nameStyle) string {
	rendered := make([]string, 0, len(names))
	for _, n := range names {
		if s := r.name(n, ns); s != "" {
			rendered = append(rendered, s)
		}
	}

	var joined string
	switch {
	case len(rendered) == 0:
		return ""
	case ns.EtAlMin > 0 && len(rendered) >= ns.EtAlMin:
		joined = strings.Join(rendered[:ns.EtAlUseFirst], ns.Delimiter) + ns.EtAl
	case len(rendered) == 1:
		joined = rendered[0]
	default:
		last := len(rendered) - 1
		joined = strings.Join(rendered[:last], ns.Delimiter) + ns.LastDelimiter + rendered[last]
	}
	return r.wrap(variable, joined, item)
}

func (r *renderer) name(n csl.Name, ns nameStyle) string {
	family := r.names.FamilyName(r.area, n)
	if ns.Short {
		return family
	}
	given := r.names.GivenName(r.area, n, ns.Given)
	return r.names.FullName(r.area, n, NameParts{
		Family:        family,
		Given:         given,
		Inverted:      ns.Inverted,
		SortSeparator: ns.SortSeparator,
	})
}

var (
	monthNames = [...]string{"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December"}
	monthAbbrevs = [...]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun",
		"Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}
)

func monthName(m int, short bool) string {
	if m < 1 || m > 12 {
		return ""
	}
	if short {
		return monthAbbrevs[m-1]
	}
	return monthNames[m-1]
}

// sentences joins non-empty parts with ". " and terminates the result,
// avoiding doubled periods.
func sentences(parts ...string) string {
	var b strings.Builder
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString(p)
		if !strings.HasSuffix(p, ".") {
			b.WriteString(".")
		}
	}
	return b.String()
}

func joinNonEmpty(sep string, parts ...string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}
