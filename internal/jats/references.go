package jats

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/matsen/jats/internal/csl"
	"github.com/matsen/jats/internal/jatscite"
)

var (
	pageRange  = regexp.MustCompile(`^\s*([^-–\s,]+)\s*[-–]\s*([^-–\s,]+)\s*$`)
	singlePage = regexp.MustCompile(`^\s*[^-–\s,]+\s*$`)
)

// citationFields builds element-citation children from an item, in order.
var citationFields = []func(el *etree.Element, item *csl.Item){
	func(el *etree.Element, item *csl.Item) { personGroup(el, "author", item.Author) },
	func(el *etree.Element, item *csl.Item) { personGroup(el, "editor", item.Editor) },
	func(el *etree.Element, item *csl.Item) { textChild(el, "article-title", item.Title) },
	func(el *etree.Element, item *csl.Item) { textChild(el, "source", item.ContainerTitle) },
	issuedDate,
	func(el *etree.Element, item *csl.Item) { textChild(el, "volume", item.Volume) },
	func(el *etree.Element, item *csl.Item) { textChild(el, "issue", item.Issue) },
	func(el *etree.Element, item *csl.Item) { textChild(el, "supplement", item.Supplement) },
	pages,
	func(el *etree.Element, item *csl.Item) { textChild(el, "publisher-loc", item.PublisherPlace) },
	func(el *etree.Element, item *csl.Item) { textChild(el, "publisher-name", item.Publisher) },
	func(el *etree.Element, item *csl.Item) { textChild(el, "edition", item.Edition) },
	func(el *etree.Element, item *csl.Item) { textChild(el, "series", item.CollectionTitle) },
	func(el *etree.Element, item *csl.Item) { textChild(el, "size", item.NumberOfPages, "units", "pages") },
	func(el *etree.Element, item *csl.Item) { textChild(el, "isbn", item.ISBN) },
	func(el *etree.Element, item *csl.Item) { textChild(el, "issn", item.ISSN) },
	func(el *etree.Element, item *csl.Item) { textChild(el, "pub-id", item.DOI, "pub-id-type", "doi") },
	func(el *etree.Element, item *csl.Item) { textChild(el, "pub-id", item.PMID, "pub-id-type", "pmid") },
	func(el *etree.Element, item *csl.Item) { textChild(el, "pub-id", item.PMCID, "pub-id-type", "pmcid") },
	func(el *etree.Element, item *csl.Item) {
		textChild(el, "ext-link", item.URL, "ext-link-type", "uri", "xlink:href", item.URL)
	},
	func(el *etree.Element, item *csl.Item) {
		textChild(el, "date-in-citation", item.Accessed.ISO8601(),
			"content-type", "access-date", "iso-8601-date", item.Accessed.ISO8601())
	},
}

// structuredRef builds a ref for one bibliography item. Items carrying only
// literal text become unstructured mixed-citations.
func structuredRef(item *csl.Item) *etree.Element {
	ref := etree.NewElement("ref")
	setID(ref, item.ID)

	if item.Literal != "" {
		textChild(ref, "mixed-citation", item.Literal, "specific-use", "unstructured-citation")
		return ref
	}

	citation := child(ref, "element-citation", "publication-type", jatscite.PublicationType(item.Type))
	for _, field := range citationFields {
		field(citation, item)
	}
	return ref
}

// formattedRef parses a ref rendered by the citation processor.
func formattedRef(text string) (*etree.Element, error) {
	tokens, err := parseFragment(text)
	if err != nil {
		return nil, fmt.Errorf("parsing formatted reference: %w", err)
	}
	for _, t := range tokens {
		if el, ok := t.(*etree.Element); ok && el.Tag == "ref" {
			if a := el.SelectAttr("id"); a != nil {
				a.Value = normalizeID(a.Value)
			}
			return el, nil
		}
	}
	return nil, nil
}

func personGroup(parent *etree.Element, groupType string, names []csl.Name) {
	if len(names) == 0 {
		return
	}
	group := child(parent, "person-group", "person-group-type", groupType)
	for _, n := range names {
		if n.IsLiteral() {
			textChild(group, "collab", n.Literal)
			continue
		}
		name := child(group, "name")
		textChild(name, "surname", n.FamilyWithParticle())
		textChild(name, "given-names", n.Given)
		textChild(name, "suffix", n.Suffix)
	}
}

func issuedDate(el *etree.Element, item *csl.Item) {
	d := item.Issued
	if d.Year() == 0 {
		textChild(el, "year", d.Literal)
		return
	}
	textChild(el, "year", strconv.Itoa(d.Year()))
	if d.Month() > 0 {
		textChild(el, "month", fmt.Sprintf("%02d", d.Month()))
	}
	if d.Day() > 0 {
		textChild(el, "day", fmt.Sprintf("%02d", d.Day()))
	}
}

// pages emits fpage/lpage for a simple range, fpage for a single page and
// page-range for anything else.
func pages(el *etree.Element, item *csl.Item) {
	p := item.Page
	switch {
	case p == "":
	case pageRange.MatchString(p):
		m := pageRange.FindStringSubmatch(p)
		textChild(el, "fpage", m[1])
		textChild(el, "lpage", m[2])
	case singlePage.MatchString(p):
		textChild(el, "fpage", strings.TrimSpace(p))
	default:
		textChild(el, "page-range", p)
	}
}
