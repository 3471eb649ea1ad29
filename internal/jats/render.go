package jats

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
	sanitized "github.com/shurcooL/sanitized_anchor_name"
	"go.uber.org/zap"

	"github.com/matsen/jats/internal/doctree"
)

// refTypes maps cross-reference target node types to xref ref-type values.
var refTypes = map[doctree.NodeType]string{
	doctree.Figure:          "fig",
	doctree.FigureElement:   "fig",
	doctree.ImageElement:    "fig",
	doctree.ListingElement:  "fig",
	doctree.BoxElement:      "boxed-text",
	doctree.Embed:           "media",
	doctree.Table:           "table",
	doctree.TableElement:    "table",
	doctree.Equation:        "disp-formula",
	doctree.EquationElement: "disp-formula",
	doctree.Section:         "sec",
	doctree.Footnote:        "fn",
}

// render converts one node into output tokens. Nodes that only feed front
// matter render nothing.
func (s *exportState) render(n *doctree.Node) ([]etree.Token, error) {
	switch n.Type {
	case doctree.Manuscript, doctree.Title, doctree.AltTitles, doctree.AltTitle,
		doctree.Contributors, doctree.Contributor, doctree.Affiliations, doctree.Affiliation,
		doctree.AuthorNotes, doctree.Corresp, doctree.Keywords, doctree.KeywordGroup, doctree.Keyword,
		doctree.Supplements, doctree.Supplement, doctree.Attachments, doctree.Attachment,
		doctree.Comments, doctree.Comment, doctree.HighlightMarker,
		doctree.BibliographyElement, doctree.BibliographyItem:
		return nil, nil

	case doctree.Abstracts:
		return s.element("sec", n, "sec-type", "abstracts")
	case doctree.Body:
		return s.element("sec", n, "sec-type", "body")
	case doctree.Backmatter:
		return s.element("sec", n, "sec-type", "backmatter")

	case doctree.Section:
		return s.element("sec", n, "sec-type", secType(n.Attrs.String("category")))
	case doctree.GraphicalAbstractSection:
		return s.element("sec", n, "sec-type", "abstract-graphical")
	case doctree.FootnotesSection:
		return s.element("sec", n, "sec-type", "endnotes")
	case doctree.SectionTitle:
		return s.wrapper("title", n)
	case doctree.SectionLabel:
		return s.wrapper("label", n)

	case doctree.Paragraph:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return s.element("p", n, "content-type", n.Attrs.String("contentType"))
	case doctree.Text:
		if tok := renderText(n); tok != nil {
			return []etree.Token{tok}, nil
		}
		return nil, nil
	case doctree.HardBreak:
		return []etree.Token{etree.NewText("\n")}, nil

	case doctree.Citation:
		return s.citation(n)
	case doctree.CrossReference:
		return s.crossReference(n)
	case doctree.Link:
		return s.element("ext-link", n,
			"ext-link-type", "uri",
			"xlink:href", n.Attrs.String("href"),
			"xlink:title", n.Attrs.String("title"))
	case doctree.InlineFootnote:
		return s.inlineFootnote(n)

	case doctree.BibliographySection:
		el := newElement("ref-list")
		setID(el, n.ID())
		if t := n.ChildOfType(doctree.SectionTitle); t != nil {
			if err := s.renderInto(el, t); err != nil {
				return nil, err
			}
		}
		return one(el)

	case doctree.FigureElement, doctree.ImageElement:
		return s.float("fig", n)
	case doctree.ListingElement:
		return s.float("fig", n, "fig-type", "listing")
	case doctree.BoxElement:
		return s.float("boxed-text", n)
	case doctree.HeroImage:
		return s.float("fig", n, "fig-type", "hero-image")
	case doctree.Embed:
		return s.float("media", n,
			"xlink:href", n.Attrs.String("href"),
			"xlink:show", "embed",
			"mimetype", n.Attrs.String("mimeType"),
			"mime-subtype", n.Attrs.String("mimeSubType"))
	case doctree.Figure:
		return s.element("graphic", n, "xlink:href", n.Attrs.String("src"))
	case doctree.MissingFigure:
		return s.element("graphic", n, "specific-use", "MISSING")
	case doctree.Figcaption:
		if strings.TrimSpace(n.TextContent()) == "" {
			return nil, nil
		}
		return s.wrapper("caption", n)
	case doctree.CaptionTitle:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return s.wrapper("title", n)
	case doctree.Caption:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return s.wrapper("p", n)

	case doctree.TableElement:
		return s.tableElement(n)
	case doctree.Table:
		return s.table(n)
	case doctree.TableColGroup:
		return s.wrapper("colgroup", n)
	case doctree.TableCol:
		return s.wrapper("col", n, "width", n.Attrs.String("width"))
	case doctree.TableRow:
		return s.wrapper("tr", n)
	case doctree.TableCell:
		return s.wrapper("td", n, cellAttrs(n)...)
	case doctree.TableHeader:
		return s.wrapper("th", n, cellAttrs(n)...)
	case doctree.TableElementFooter:
		return s.element("table-wrap-foot", n)
	case doctree.GeneralTableFootnote:
		return s.wrapper(generalTableFootnote, n)

	case doctree.FootnotesElement:
		return s.element("fn-group", n)
	case doctree.Footnote:
		return s.footnote(n)

	case doctree.EquationElement:
		el := newElement("disp-formula")
		setID(el, n.ID())
		s.label(el, n)
		if err := s.renderChildren(el, n); err != nil {
			return nil, err
		}
		return one(el)
	case doctree.Equation:
		return s.math(n, true)
	case doctree.InlineEquation:
		el := newElement("inline-formula")
		setID(el, n.ID())
		tokens, err := s.math(n, false)
		if err != nil {
			return nil, err
		}
		appendTokens(el, tokens)
		return one(el)

	case doctree.Listing:
		el := newElement("code")
		setID(el, n.ID())
		setAttrs(el, "language", n.Attrs.String("languageKey"))
		el.SetText(n.Attrs.String("contents"))
		return one(el)

	case doctree.BulletList:
		return s.element("list", n, "list-type", "bullet")
	case doctree.OrderedList:
		return s.element("list", n, "list-type", "order")
	case doctree.ListItem:
		return s.element("list-item", n)
	case doctree.BlockquoteElement:
		return s.element("disp-quote", n, "content-type", "quote")
	case doctree.PullquoteElement:
		return s.element("disp-quote", n, "content-type", "pullquote")

	case doctree.Awards:
		return s.wrapper("funding-group", n)
	case doctree.Award:
		return award(n)
	}
	return nil, fmt.Errorf("no rendering rule for node type %q", n.Type)
}

func one(el *etree.Element) ([]etree.Token, error) {
	return []etree.Token{el}, nil
}

// renderChildren renders each child of n into el.
func (s *exportState) renderChildren(el *etree.Element, n *doctree.Node) error {
	for _, c := range n.Content {
		if err := s.renderInto(el, c); err != nil {
			return err
		}
	}
	return nil
}

func (s *exportState) renderInto(el *etree.Element, n *doctree.Node) error {
	tokens, err := s.render(n)
	if err != nil {
		return err
	}
	appendTokens(el, tokens)
	return nil
}

// element renders n as tag carrying the node id.
func (s *exportState) element(tag string, n *doctree.Node, attrs ...string) ([]etree.Token, error) {
	el := etree.NewElement(tag)
	setID(el, n.ID())
	setAttrs(el, attrs...)
	if err := s.renderChildren(el, n); err != nil {
		return nil, err
	}
	return one(el)
}

// wrapper renders n as tag without an id.
func (s *exportState) wrapper(tag string, n *doctree.Node, attrs ...string) ([]etree.Token, error) {
	el := newElement(tag, attrs...)
	if err := s.renderChildren(el, n); err != nil {
		return nil, err
	}
	return one(el)
}

// label adds the element's computed label, if it has one.
func (s *exportState) label(el *etree.Element, n *doctree.Node) {
	if t, ok := s.targets.Get(n.ID()); ok {
		textChild(el, "label", t.Label)
	}
}

// float renders a labelled element: label, caption, then the remaining
// children in order.
func (s *exportState) float(tag string, n *doctree.Node, attrs ...string) ([]etree.Token, error) {
	el := etree.NewElement(tag)
	setID(el, n.ID())
	setAttrs(el, attrs...)
	s.label(el, n)

	if fc := n.ChildOfType(doctree.Figcaption); fc != nil {
		if err := s.renderInto(el, fc); err != nil {
			return nil, err
		}
	}
	for _, c := range n.Content {
		if c.Type == doctree.Figcaption {
			continue
		}
		if err := s.renderInto(el, c); err != nil {
			return nil, err
		}
	}
	return one(el)
}

func (s *exportState) citation(n *doctree.Node) ([]etree.Token, error) {
	text, ok := s.citations[n.ID()]
	if !ok {
		return nil, fmt.Errorf("%w: citation %q", ErrMissingCitationText, n.ID())
	}
	el := newElement("xref", "ref-type", "bibr", "rid", normalizeRIDs(n.Attrs.Strings("rids")))
	tokens, err := parseFragment(text)
	if err != nil {
		return nil, fmt.Errorf("citation %q: %w", n.ID(), err)
	}
	appendTokens(el, tokens)
	return one(el)
}

func (s *exportState) crossReference(n *doctree.Node) ([]etree.Token, error) {
	rids := n.Attrs.Strings("rids")
	label := n.Attrs.String("customLabel")

	var target *doctree.Node
	if len(rids) > 0 {
		target = s.index.byID[rids[0]]
	}
	if target == nil {
		s.log.Warn("cross-reference target not found",
			zap.String("id", n.ID()), zap.Strings("rid", rids))
		if label == "" {
			label = n.Attrs.String("label")
		}
		if label == "" {
			return nil, nil
		}
		return []etree.Token{etree.NewText(label)}, nil
	}

	if label == "" {
		if t, ok := s.targets.Get(target.ID()); ok {
			label = t.Label
		}
	}
	if label == "" {
		label = n.Attrs.String("label")
	}
	el := newElement("xref", "ref-type", refTypes[target.Type], "rid", normalizeRIDs(rids))
	if label != "" {
		el.SetText(label)
	}
	return one(el)
}

func (s *exportState) inlineFootnote(n *doctree.Node) ([]etree.Token, error) {
	rids := n.Attrs.Strings("rids")
	var text []string
	for _, rid := range rids {
		if l, ok := s.footnoteLabels[rid]; ok {
			text = append(text, l)
		}
	}
	el := newElement("xref", "ref-type", "fn", "rid", normalizeRIDs(rids))
	if len(text) > 0 {
		el.SetText(strings.Join(text, ","))
	} else if c := n.Attrs.String("contents"); c != "" {
		el.SetText(c)
	}
	return one(el)
}

func (s *exportState) footnote(n *doctree.Node) ([]etree.Token, error) {
	el := etree.NewElement("fn")
	setID(el, n.ID())
	switch kind := n.Attrs.String("kind"); kind {
	case "", "footnote", "endnote":
	default:
		el.CreateAttr("fn-type", kind)
	}
	if l, ok := s.footnoteLabels[n.ID()]; ok {
		textChild(el, "label", l)
	}
	if err := s.renderChildren(el, n); err != nil {
		return nil, err
	}
	return one(el)
}

func (s *exportState) tableElement(n *doctree.Node) ([]etree.Token, error) {
	el := etree.NewElement("table-wrap")
	setID(el, n.ID())
	el.CreateAttr("position", "anchor")
	s.label(el, n)
	if err := s.renderChildren(el, n); err != nil {
		return nil, err
	}
	s.tableFlags[el] = tableFlags{
		suppressHeader: n.Attrs.Bool("suppressHeader"),
		suppressFooter: n.Attrs.Bool("suppressFooter"),
	}
	return one(el)
}

// table renders rows into a single tbody; fixTable later splits out the
// header and footer rows.
func (s *exportState) table(n *doctree.Node) ([]etree.Token, error) {
	el := etree.NewElement("table")
	setID(el, n.ID())
	tbody := etree.NewElement("tbody")
	for _, c := range n.Content {
		tokens, err := s.render(c)
		if err != nil {
			return nil, err
		}
		if c.Type == doctree.TableRow {
			appendTokens(tbody, tokens)
		} else {
			appendTokens(el, tokens)
		}
	}
	el.AddChild(tbody)
	return one(el)
}

func cellAttrs(n *doctree.Node) []string {
	attrs := []string{
		"valign", n.Attrs.String("valign"),
		"align", n.Attrs.String("align"),
		"scope", n.Attrs.String("scope"),
		"style", n.Attrs.String("style"),
	}
	if rs := n.Attrs.Int("rowspan"); rs > 1 {
		attrs = append(attrs, "rowspan", n.Attrs.String("rowspan"))
	}
	if cs := n.Attrs.Int("colspan"); cs > 1 {
		attrs = append(attrs, "colspan", n.Attrs.String("colspan"))
	}
	return attrs
}

// math renders an equation. MathML is inserted as parsed markup; block
// equations carry the node id on the math element. Anything else is TeX.
func (s *exportState) math(n *doctree.Node, block bool) ([]etree.Token, error) {
	contents := n.Attrs.String("contents")
	if strings.EqualFold(n.Attrs.String("format"), "mathml") {
		tokens, err := parseFragment(contents)
		if err != nil {
			return nil, fmt.Errorf("equation %q: %w", n.ID(), err)
		}
		if block {
			for _, t := range tokens {
				if el, ok := t.(*etree.Element); ok {
					setID(el, n.ID())
					break
				}
			}
		}
		return tokens, nil
	}

	tex := newElement("tex-math", "notation", "LaTeX", "version", "MathJax")
	tex.CreateCData(stripCDATA(contents))
	return one(tex)
}

func stripCDATA(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "<![CDATA[") && strings.HasSuffix(s, "]]>") {
		s = strings.TrimSuffix(strings.TrimPrefix(s, "<![CDATA["), "]]>")
	}
	return s
}

func award(n *doctree.Node) ([]etree.Token, error) {
	el := etree.NewElement("award-group")
	setID(el, n.ID())
	textChild(el, "funding-source", n.Attrs.String("source"))
	for _, code := range strings.Split(n.Attrs.String("code"), ";") {
		textChild(el, "award-id", strings.TrimSpace(code))
	}
	textChild(el, "principal-award-recipient", n.Attrs.String("recipient"))
	return one(el)
}

// renderText renders a text node with its marks, the first mark outermost.
// Text inside a tracked deletion is dropped.
func renderText(n *doctree.Node) etree.Token {
	var tok etree.Token = etree.NewText(n.Text)
	for i := len(n.Marks) - 1; i >= 0; i-- {
		m := n.Marks[i]
		var el *etree.Element
		switch m.Type {
		case doctree.Bold:
			el = newElement("bold")
		case doctree.Italic:
			el = newElement("italic")
		case doctree.SmallCaps:
			el = newElement("sc")
		case doctree.Strikethrough:
			el = newElement("strike")
		case doctree.Superscript:
			el = newElement("sup")
		case doctree.Subscript:
			el = newElement("sub")
		case doctree.Underline:
			el = newElement("underline")
		case doctree.Code:
			el = newElement("monospace")
		case doctree.Styled:
			el = newElement("styled-content", "style-type", sanitized.Create(m.Attrs.String("style")))
		case doctree.TrackedInsert:
			continue
		case doctree.TrackedDelete:
			return nil
		}
		if el == nil {
			continue
		}
		el.AddChild(tok)
		tok = el
	}
	return tok
}

func secType(category string) string {
	return strings.TrimPrefix(category, "MPSectionCategory:")
}
