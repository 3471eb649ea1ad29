package jats

import (
	"github.com/beevik/etree"
	"go.uber.org/zap"
)

// footnoteCategories are section categories exported as back-matter
// footnotes, in output order.
var footnoteCategories = []string{
	"con",
	"conflict",
	"deceased",
	"equal",
	"present-address",
	"presented-at",
	"previously-at",
	"supplementary-material",
	"supported-by",
	"financial-disclosure",
	"coi-statement",
}

// buildBack moves back-matter sections out of the body and adds the
// reference list.
func (s *exportState) buildBack() error {
	s.back = etree.NewElement("back")

	for _, secType := range []string{"availability", "ethics-statement"} {
		for _, sec := range findSecs(s.body, secType) {
			s.back.AddChild(sec)
		}
	}

	for _, sec := range findSecs(s.body, "acknowledgements") {
		ack := etree.NewElement("ack")
		copyID(sec, ack)
		moveChildren(sec, ack)
		detach(sec)
		s.back.AddChild(ack)
	}

	if apps := findSecs(s.body, "appendices"); len(apps) > 0 {
		group := child(s.back, "app-group")
		for _, sec := range apps {
			app := child(group, "app")
			copyID(sec, app)
			moveChildren(sec, app)
			detach(sec)
		}
	}

	s.footnoteSections()

	for _, sec := range findSecs(s.body, "endnotes") {
		for _, group := range sec.SelectElements("fn-group") {
			s.back.AddChild(group)
		}
		detach(sec)
	}

	return s.refList()
}

// footnoteSections converts footnote-like sections into fn elements of a
// single fn-group. A section title becomes a fn-title paragraph.
func (s *exportState) footnoteSections() {
	var group *etree.Element
	for _, category := range footnoteCategories {
		for _, sec := range findSecs(s.body, category) {
			if group == nil {
				group = child(s.back, "fn-group")
			}
			fn := child(group, "fn", "fn-type", category)
			copyID(sec, fn)
			if title := sec.SelectElement("title"); title != nil {
				p := child(fn, "p", "content-type", "fn-title")
				moveChildren(title, p)
				detach(title)
			}
			moveChildren(sec, fn)
			detach(sec)
		}
	}
}

func (s *exportState) refList() error {
	refList := findAll(s.body, tagIs("ref-list"))
	var list *etree.Element
	if len(refList) > 0 {
		list = refList[0]
		detach(list)
	} else {
		s.log.Warn("no bibliography section; emitting empty ref-list")
		list = etree.NewElement("ref-list")
	}
	s.back.AddChild(list)

	for _, entry := range s.bibliography {
		var (
			ref *etree.Element
			err error
		)
		if s.opts.References == FormattedReferences {
			ref, err = formattedRef(entry.Text)
		} else {
			ref = structuredRef(entry.Item)
		}
		if err != nil {
			return err
		}
		if ref == nil {
			s.log.Warn("empty reference entry", zap.String("id", entry.ID))
			continue
		}
		list.AddChild(ref)
	}
	return nil
}

func copyID(from, to *etree.Element) {
	if id := attr(from, "id"); id != "" {
		to.CreateAttr("id", id)
	}
}
