package jats

import (
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"github.com/matsen/jats/internal/doctree"
)

// pass is one corrective step over the assembled article. Each pass relies
// on the shape left by the ones before it.
type pass struct {
	name string
	run  func(s *exportState)
}

var passes = []pass{
	{"move-coi-statement", moveCoiStatement},
	{"move-awards", moveAwards},
	{"unwrap-body", unwrapBody},
	{"move-abstracts", moveAbstracts},
	{"remove-backmatter", removeBackmatter},
	{"update-footnote-types", updateFootnoteTypes},
	{"fill-empty-elements", fillEmptyElements},
	{"move-hero-image", moveHeroImage},
}

// Article-meta children that a new funding-group or abstract must precede.
var (
	fundingFollowers  = []string{"support-group", "conference", "counts", "custom-meta-group"}
	abstractFollowers = []string{"kwd-group", "funding-group", "support-group", "conference", "counts", "custom-meta-group"}
)

var defaultAbstractTypes = []string{"abstract", "abstract-graphical", "abstract-teaser", "abstract-key-image"}

// moveCoiStatement moves the competing-interests footnote into author-notes.
func moveCoiStatement(s *exportState) {
	fns := findAll(s.back, func(el *etree.Element) bool {
		return el.Tag == "fn" && attr(el, "fn-type") == "coi-statement"
	})
	if len(fns) == 0 {
		return
	}

	notes := s.meta.SelectElement("author-notes")
	if notes == nil {
		notes = etree.NewElement("author-notes")
		insertAfter(lastChild(s.meta, "title-group", "contrib-group", "aff"), notes)
	}
	for _, fn := range fns {
		group := fn.Parent()
		notes.AddChild(fn)
		if group.Tag == "fn-group" && len(group.ChildElements()) == 0 {
			detach(group)
		}
	}
}

// moveAwards moves award groups rendered in the body into a front-matter
// funding-group.
func moveAwards(s *exportState) {
	groups := findAll(s.body, tagIs("funding-group"))
	var awards []*etree.Element
	for _, g := range groups {
		awards = append(awards, g.SelectElements("award-group")...)
	}
	for _, g := range groups {
		detach(g)
	}
	if len(awards) == 0 {
		return
	}

	funding := etree.NewElement("funding-group")
	for _, a := range awards {
		funding.AddChild(a)
	}
	insertBefore(s.meta, funding, fundingFollowers...)
}

// unwrapBody hoists the children of the body container into body.
func unwrapBody(s *exportState) {
	for _, sec := range s.body.SelectElements("sec") {
		if attr(sec, "sec-type") != "body" {
			continue
		}
		at := sec.Index()
		children := append([]etree.Token(nil), sec.Child...)
		detach(sec)
		for i, t := range children {
			s.body.InsertChildAt(at+i, t)
		}
	}
}

// moveAbstracts turns abstract sections into front-matter abstracts. Sections
// are taken from the abstracts container, or from body sections whose
// sec-type is an abstract category.
func moveAbstracts(s *exportState) {
	categories := abstractCategories(s.index)

	var secs []*etree.Element
	for _, sec := range s.body.SelectElements("sec") {
		switch t := attr(sec, "sec-type"); {
		case t == "abstracts":
			secs = append(secs, sec.SelectElements("sec")...)
			detach(sec)
		case categories[t]:
			secs = append(secs, sec)
		}
	}

	for _, sec := range secs {
		abstract := etree.NewElement("abstract")
		copyID(sec, abstract)
		if t := attr(sec, "sec-type"); t != "" && t != "abstract" {
			abstract.CreateAttr("abstract-type", strings.TrimPrefix(t, "abstract-"))
		}
		moveChildren(sec, abstract)
		detach(sec)
		insertBefore(s.meta, abstract, abstractFollowers...)
	}
}

func abstractCategories(idx *nodeIndex) map[string]bool {
	categories := make(map[string]bool)
	for _, t := range defaultAbstractTypes {
		categories[t] = true
	}
	if abstracts := idx.first(doctree.Abstracts); abstracts != nil {
		for _, c := range abstracts.Attrs.Strings("categories") {
			categories[secType(c)] = true
		}
		for _, sec := range abstracts.Content {
			switch sec.Type {
			case doctree.Section:
				if c := sec.Attrs.String("category"); c != "" {
					categories[secType(c)] = true
				}
			case doctree.GraphicalAbstractSection:
				categories["abstract-graphical"] = true
			}
		}
	}
	return categories
}

// removeBackmatter drops the backmatter container. Anything still inside it
// was not claimed by the back-matter builder.
func removeBackmatter(s *exportState) {
	for _, sec := range s.body.SelectElements("sec") {
		if attr(sec, "sec-type") != "backmatter" {
			continue
		}
		if n := len(sec.ChildElements()); n > 0 {
			s.log.Warn("backmatter container not empty", zap.Int("children", n))
		}
		detach(sec)
	}
}

// updateFootnoteTypes normalizes fn-type values. All current values are
// already valid.
func updateFootnoteTypes(*exportState) {}

// fillEmptyElements gives empty fn and table-wrap-foot elements an empty
// paragraph.
func fillEmptyElements(s *exportState) {
	for _, el := range findAll(s.article, tagIs("fn", "table-wrap-foot")) {
		if isEmpty(el, "label") {
			el.CreateElement("p")
		}
	}
}

// moveHeroImage promotes the hero image figure into a floats-group.
func moveHeroImage(s *exportState) {
	figs := findAll(s.body, func(el *etree.Element) bool {
		return el.Tag == "fig" && attr(el, "fig-type") == "hero-image"
	})
	if len(figs) == 0 {
		return
	}

	floats := child(s.article, "floats-group")
	for _, old := range figs {
		fig := floats.CreateElement("fig")
		for _, a := range old.Attr {
			fig.CreateAttr(a.FullKey(), a.Value)
		}
		moveChildren(old, fig)
		detach(old)
	}
}
