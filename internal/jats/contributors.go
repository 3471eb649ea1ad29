package jats

import (
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/beevik/etree"
	sanitized "github.com/shurcooL/sanitized_anchor_name"
	"go.uber.org/zap"

	"github.com/matsen/jats/internal/doctree"
)

const (
	creditVocab      = "CRediT"
	creditIdentifier = "https://credit.niso.org/"
)

type creditRole struct {
	term string
	url  string
}

// creditRoles holds the CRediT taxonomy keyed by slugified term.
var creditRoles = func() map[string]creditRole {
	terms := []struct{ term, slug string }{
		{"Conceptualization", "conceptualization"},
		{"Data curation", "data-curation"},
		{"Formal analysis", "formal-analysis"},
		{"Funding acquisition", "funding-acquisition"},
		{"Investigation", "investigation"},
		{"Methodology", "methodology"},
		{"Project administration", "project-administration"},
		{"Resources", "resources"},
		{"Software", "software"},
		{"Supervision", "supervision"},
		{"Validation", "validation"},
		{"Visualization", "visualization"},
		{"Writing – original draft", "writing-original-draft"},
		{"Writing – review & editing", "writing-review-editing"},
	}
	m := make(map[string]creditRole, len(terms))
	for _, t := range terms {
		m[t.slug] = creditRole{term: t.term, url: creditIdentifier + "contributor-roles/" + t.slug + "/"}
	}
	return m
}()

// contributors emits the author contrib-group followed by the affiliations
// its members reference, numbered in first-reference order.
func (s *exportState) contributors() error {
	nodes := slices.Clone(s.index.all(doctree.Contributor))
	slices.SortStableFunc(nodes, func(a, b *doctree.Node) int {
		return a.Attrs.Int("priority") - b.Attrs.Int("priority")
	})

	group := etree.NewElement("contrib-group")
	group.CreateAttr("content-type", "authors")

	affLabels := make(map[string]int)
	var affOrder []string

	for _, n := range nodes {
		contrib, err := s.contributor(n, affLabels, &affOrder)
		if errors.Is(err, ErrInvalidContributor) {
			s.log.Warn("skipping contributor", zap.String("id", n.ID()), zap.Error(err))
			continue
		}
		if err != nil {
			return err
		}
		group.AddChild(contrib)
	}
	if len(group.ChildElements()) == 0 {
		return nil
	}
	s.meta.AddChild(group)

	for _, id := range affOrder {
		aff, ok := s.index.byID[id]
		if !ok || aff.Type != doctree.Affiliation {
			s.log.Warn("affiliation not found", zap.String("rid", id))
			continue
		}
		s.meta.AddChild(affiliation(aff, affLabels[id]))
	}
	return nil
}

func (s *exportState) contributor(n *doctree.Node, affLabels map[string]int, affOrder *[]string) (*etree.Element, error) {
	name := n.Attrs.Map("bibliographicName")
	if name == nil {
		return nil, fmt.Errorf("%w: no bibliographic name", ErrInvalidContributor)
	}
	family, given := name.String("family"), name.String("given")
	if family == "" && given == "" {
		return nil, fmt.Errorf("%w: neither given nor family name", ErrInvalidContributor)
	}

	role := n.Attrs.String("role")
	if role == "" {
		role = "author"
	}
	el := newElement("contrib", "contrib-type", role)
	setID(el, n.ID())
	if n.Attrs.Bool("isCorresponding") {
		el.CreateAttr("corresp", "yes")
	}

	for _, r := range n.Attrs.Maps("CRediTRoles") {
		credit, ok := creditRoles[sanitized.Create(r.String("vocabTerm"))]
		if !ok {
			continue
		}
		textChild(el, "role", credit.term,
			"vocab", creditVocab,
			"vocab-identifier", creditIdentifier,
			"vocab-term", credit.term,
			"vocab-term-identifier", credit.url)
	}

	textChild(el, "contrib-id", n.Attrs.String("ORCIDIdentifier"), "contrib-id-type", "orcid")

	nameEl := child(el, "name")
	textChild(nameEl, "surname", family)
	textChild(nameEl, "given-names", given)

	textChild(el, "email", n.Attrs.String("email"))

	for _, id := range n.Attrs.Strings("affiliations") {
		label, seen := affLabels[id]
		if !seen {
			*affOrder = append(*affOrder, id)
			label = len(*affOrder)
			affLabels[id] = label
		}
		xref := child(el, "xref", "ref-type", "aff", "rid", normalizeID(id))
		textChild(xref, "sup", strconv.Itoa(label))
	}
	for _, fn := range n.Attrs.Maps("footnote") {
		textChild(el, "xref", fn.String("noteLabel"), "ref-type", "fn", "rid", normalizeID(fn.String("noteID")))
	}
	for _, c := range n.Attrs.Maps("corresp") {
		textChild(el, "xref", c.String("correspLabel"), "ref-type", "corresp", "rid", normalizeID(c.String("correspID")))
	}
	return el, nil
}

func affiliation(n *doctree.Node, label int) *etree.Element {
	el := etree.NewElement("aff")
	setID(el, n.ID())
	textChild(el, "label", strconv.Itoa(label))
	textChild(el, "institution", n.Attrs.String("department"), "content-type", "dept")
	textChild(el, "institution", n.Attrs.String("institution"))
	for _, key := range []string{"addressLine1", "addressLine2", "addressLine3"} {
		textChild(el, "addr-line", n.Attrs.String(key))
	}
	textChild(el, "city", n.Attrs.String("city"))
	textChild(el, "state", n.Attrs.String("county"))
	textChild(el, "postal-code", n.Attrs.String("postCode"))
	textChild(el, "country", n.Attrs.String("country"))
	return el
}
