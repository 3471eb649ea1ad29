// Package doctree defines the manuscript document tree: typed nodes with
// attributes, ordered children and inline marks.
package doctree

import (
	"strings"
)

// NodeType identifies the kind of a node. The vocabulary is closed; see Known.
type NodeType string

const (
	Manuscript NodeType = "manuscript"

	Title        NodeType = "title"
	AltTitles    NodeType = "alt_titles"
	AltTitle     NodeType = "alt_title"
	Contributors NodeType = "contributors"
	Contributor  NodeType = "contributor"
	Affiliations NodeType = "affiliations"
	Affiliation  NodeType = "affiliation"
	AuthorNotes  NodeType = "author_notes"
	Corresp      NodeType = "corresp"
	Keywords     NodeType = "keywords"
	KeywordGroup NodeType = "keyword_group"
	Keyword      NodeType = "keyword"
	Supplements  NodeType = "supplements"
	Supplement   NodeType = "supplement"
	Attachments  NodeType = "attachments"
	Attachment   NodeType = "attachment"
	Awards       NodeType = "awards"
	Award        NodeType = "award"
	HeroImage    NodeType = "hero_image"
	Comments     NodeType = "comments"
	Comment      NodeType = "comment"

	Abstracts  NodeType = "abstracts"
	Body       NodeType = "body"
	Backmatter NodeType = "backmatter"

	Section                  NodeType = "section"
	SectionTitle             NodeType = "section_title"
	SectionLabel             NodeType = "section_label"
	GraphicalAbstractSection NodeType = "graphical_abstract_section"
	Paragraph                NodeType = "paragraph"
	Text                     NodeType = "text"
	HardBreak                NodeType = "hard_break"
	HighlightMarker          NodeType = "highlight_marker"

	Citation       NodeType = "citation"
	CrossReference NodeType = "cross_reference"
	Link           NodeType = "link"
	InlineFootnote NodeType = "inline_footnote"

	BibliographySection NodeType = "bibliography_section"
	BibliographyElement NodeType = "bibliography_element"
	BibliographyItem    NodeType = "bibliography_item"

	FigureElement NodeType = "figure_element"
	Figure        NodeType = "figure"
	MissingFigure NodeType = "missing_figure"
	Figcaption    NodeType = "figcaption"
	CaptionTitle  NodeType = "caption_title"
	Caption       NodeType = "caption"

	TableElement         NodeType = "table_element"
	Table                NodeType = "table"
	TableColGroup        NodeType = "table_colgroup"
	TableCol             NodeType = "table_col"
	TableRow             NodeType = "table_row"
	TableCell            NodeType = "table_cell"
	TableHeader          NodeType = "table_header"
	TableElementFooter   NodeType = "table_element_footer"
	GeneralTableFootnote NodeType = "general_table_footnote"

	FootnotesElement NodeType = "footnotes_element"
	Footnote         NodeType = "footnote"
	FootnotesSection NodeType = "footnotes_section"

	EquationElement NodeType = "equation_element"
	Equation        NodeType = "equation"
	InlineEquation  NodeType = "inline_equation"

	ListingElement NodeType = "listing_element"
	Listing        NodeType = "listing"

	BulletList  NodeType = "bullet_list"
	OrderedList NodeType = "ordered_list"
	ListItem    NodeType = "list_item"

	BlockquoteElement NodeType = "blockquote_element"
	PullquoteElement  NodeType = "pullquote_element"
	BoxElement        NodeType = "box_element"
	Embed             NodeType = "embed"
	ImageElement      NodeType = "image_element"
)

var knownTypes = map[NodeType]bool{
	Manuscript: true, Title: true, AltTitles: true, AltTitle: true,
	Contributors: true, Contributor: true, Affiliations: true, Affiliation: true,
	AuthorNotes: true, Corresp: true, Keywords: true, KeywordGroup: true, Keyword: true,
	Supplements: true, Supplement: true, Attachments: true, Attachment: true,
	Awards: true, Award: true, HeroImage: true, Comments: true, Comment: true,
	Abstracts: true, Body: true, Backmatter: true,
	Section: true, SectionTitle: true, SectionLabel: true, GraphicalAbstractSection: true,
	Paragraph: true, Text: true, HardBreak: true, HighlightMarker: true,
	Citation: true, CrossReference: true, Link: true, InlineFootnote: true,
	BibliographySection: true, BibliographyElement: true, BibliographyItem: true,
	FigureElement: true, Figure: true, MissingFigure: true, Figcaption: true, CaptionTitle: true, Caption: true,
	TableElement: true, Table: true, TableColGroup: true, TableCol: true, TableRow: true,
	TableCell: true, TableHeader: true, TableElementFooter: true, GeneralTableFootnote: true,
	FootnotesElement: true, Footnote: true, FootnotesSection: true,
	EquationElement: true, Equation: true, InlineEquation: true,
	ListingElement: true, Listing: true,
	BulletList: true, OrderedList: true, ListItem: true,
	BlockquoteElement: true, PullquoteElement: true, BoxElement: true, Embed: true, ImageElement: true,
}

// Known reports whether t belongs to the node vocabulary.
func Known(t NodeType) bool {
	return knownTypes[t]
}

// MarkType identifies an inline mark.
type MarkType string

const (
	Bold          MarkType = "bold"
	Italic        MarkType = "italic"
	SmallCaps     MarkType = "smallcaps"
	Strikethrough MarkType = "strikethrough"
	Styled        MarkType = "styled"
	Subscript     MarkType = "subscript"
	Superscript   MarkType = "superscript"
	Underline     MarkType = "underline"
	Code          MarkType = "code"
	TrackedInsert MarkType = "tracked_insert"
	TrackedDelete MarkType = "tracked_delete"
)

// Mark is an inline annotation applied to a text node.
type Mark struct {
	Type  MarkType `json:"type"`
	Attrs Attrs    `json:"attrs,omitempty"`
}

// Node is a single element of the document tree.
type Node struct {
	Type    NodeType `json:"type"`
	Attrs   Attrs    `json:"attrs,omitempty"`
	Content []*Node  `json:"content,omitempty"`
	Text    string   `json:"text,omitempty"`
	Marks   []Mark   `json:"marks,omitempty"`
}

// ID returns the node's id attribute.
func (n *Node) ID() string {
	return n.Attrs.String("id")
}

// FirstChild returns the first child or nil.
func (n *Node) FirstChild() *Node {
	if len(n.Content) == 0 {
		return nil
	}
	return n.Content[0]
}

// ChildOfType returns the first direct child of the given type.
func (n *Node) ChildOfType(t NodeType) *Node {
	for _, c := range n.Content {
		if c.Type == t {
			return c
		}
	}
	return nil
}

// ChildrenOfType returns the direct children of the given type, in order.
func (n *Node) ChildrenOfType(t NodeType) []*Node {
	var out []*Node
	for _, c := range n.Content {
		if c.Type == t {
			out = append(out, c)
		}
	}
	return out
}

// ChildByAttr returns the first direct child whose attribute key equals value.
func (n *Node) ChildByAttr(key, value string) *Node {
	for _, c := range n.Content {
		if c.Attrs.String(key) == value {
			return c
		}
	}
	return nil
}

// TextContent concatenates the text of all descendant text nodes.
func (n *Node) TextContent() string {
	if n.Type == Text {
		return n.Text
	}
	var b strings.Builder
	n.Descendants(func(d, _ *Node) bool {
		if d.Type == Text {
			b.WriteString(d.Text)
		}
		return true
	})
	return b.String()
}

// Descendants calls fn for every node below n in pre-order, passing the
// node's parent. Returning false skips the node's children.
func (n *Node) Descendants(fn func(node, parent *Node) bool) {
	for _, c := range n.Content {
		if fn(c, n) {
			c.Descendants(fn)
		}
	}
}

// FindAll returns all descendants of the given type in document order.
func (n *Node) FindAll(t NodeType) []*Node {
	var out []*Node
	n.Descendants(func(d, _ *Node) bool {
		if d.Type == t {
			out = append(out, d)
		}
		return true
	})
	return out
}

// FindFirst returns the first descendant of the given type, or nil.
func (n *Node) FindFirst(t NodeType) *Node {
	var found *Node
	n.Descendants(func(d, _ *Node) bool {
		if found != nil {
			return false
		}
		if d.Type == t {
			found = d
			return false
		}
		return true
	})
	return found
}
