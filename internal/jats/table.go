package jats

import (
	"github.com/beevik/etree"
)

// generalTableFootnote is a placeholder element whose children are spliced
// into its parent by fixBody.
const generalTableFootnote = "general-table-footnote"

type tableFlags struct {
	suppressHeader bool
	suppressFooter bool
}

// fixBody splices general table footnotes into place and restructures every
// table-wrap.
func (s *exportState) fixBody() {
	for _, el := range findAll(s.body, tagIs(generalTableFootnote)) {
		parent := el.Parent()
		at := el.Index()
		children := append([]etree.Token(nil), el.Child...)
		parent.RemoveChild(el)
		for i, t := range children {
			el.RemoveChild(t)
			parent.InsertChildAt(at+i, t)
		}
	}

	for _, wrap := range findAll(s.body, tagIs("table-wrap")) {
		s.fixTable(wrap)
	}
}

// fixTable moves the caption after the label and splits table rows into
// thead, tbody and tfoot.
//
// A row is a header if it is the first row or contains a th with a col or
// colgroup scope; header cells are all converted to th. The last row becomes
// the footer unless it is a header.
func (s *exportState) fixTable(wrap *etree.Element) {
	flags := s.tableFlags[wrap]

	if caption := wrap.SelectElement("caption"); caption != nil {
		detach(caption)
		if label := wrap.SelectElement("label"); label != nil {
			insertAfter(label, caption)
		} else {
			wrap.InsertChildAt(0, caption)
		}
	}

	for _, table := range wrap.SelectElements("table") {
		tbody := table.SelectElement("tbody")
		if tbody == nil {
			continue
		}
		rows := tbody.SelectElements("tr")
		if len(rows) == 0 {
			continue
		}

		thead := etree.NewElement("thead")
		header := make(map[*etree.Element]bool)
		for i, row := range rows {
			if (i == 0 && !flags.suppressHeader) || hasColumnHeader(row) {
				header[row] = true
				for _, cell := range row.SelectElements("td") {
					cell.Tag = "th"
				}
				thead.AddChild(row)
			}
		}

		tfoot := etree.NewElement("tfoot")
		if last := rows[len(rows)-1]; !header[last] && !flags.suppressFooter {
			tfoot.AddChild(last)
		}

		if len(thead.ChildElements()) > 0 {
			table.InsertChildAt(tbody.Index(), thead)
		}
		if len(tfoot.ChildElements()) > 0 {
			table.InsertChildAt(tbody.Index(), tfoot)
		}
	}
}

func hasColumnHeader(row *etree.Element) bool {
	for _, th := range row.SelectElements("th") {
		if scope := attr(th, "scope"); scope == "col" || scope == "colgroup" {
			return true
		}
	}
	return false
}
