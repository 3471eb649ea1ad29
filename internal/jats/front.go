package jats

import (
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"

	"github.com/matsen/jats/internal/doctree"
)

// historyDates maps manuscript date attributes (unix seconds) to history
// date-type values, in output order.
var historyDates = []struct {
	attr     string
	dateType string
}{
	{"acceptanceDate", "accepted"},
	{"correctionDate", "corrected"},
	{"retractionDate", "retracted"},
	{"receiveDate", "received"},
	{"revisionReceiveDate", "rev-recd"},
	{"revisionRequestDate", "rev-request"},
}

// selfURIFollowers are article-meta children that self-uri must precede.
var selfURIFollowers = []string{
	"related-article", "related-object", "abstract", "trans-abstract", "kwd-group",
	"funding-group", "support-group", "conference", "counts", "custom-meta-group",
}

func (s *exportState) buildFront() error {
	s.front = etree.NewElement("front")
	if jm := s.journalMeta(); jm != nil {
		s.front.AddChild(jm)
	}

	s.meta = child(s.front, "article-meta")
	if doi := strings.TrimPrefix(s.root.Attrs.String("DOI"), "doi:"); doi != "" {
		textChild(s.meta, "article-id", doi, "pub-id-type", "doi")
	}
	if err := s.titleGroup(); err != nil {
		return err
	}
	if err := s.contributors(); err != nil {
		return err
	}
	if err := s.authorNotes(); err != nil {
		return err
	}
	s.supplements()
	s.history()
	if err := s.keywords(); err != nil {
		return err
	}
	s.counts()
	s.selfURIs()
	return nil
}

func (s *exportState) journalMeta() *etree.Element {
	j := s.opts.Journal
	if j == nil {
		return nil
	}
	jm := etree.NewElement("journal-meta")
	for _, id := range j.Identifiers {
		textChild(jm, "journal-id", id.ID, "journal-id-type", id.Type)
	}

	group := etree.NewElement("journal-title-group")
	textChild(group, "journal-title", j.Title)
	for _, abbrev := range j.AbbreviatedTitles {
		textChild(group, "abbrev-journal-title", abbrev.Title, "abbrev-type", abbrev.Type)
	}
	if len(group.ChildElements()) > 0 {
		jm.AddChild(group)
	}

	for _, issn := range j.ISSNs {
		textChild(jm, "issn", issn.ISSN, "pub-type", issn.PublicationType)
	}
	if j.PublisherName != "" {
		textChild(child(jm, "publisher"), "publisher-name", j.PublisherName)
	}

	if len(jm.ChildElements()) == 0 {
		return nil
	}
	return jm
}

func (s *exportState) titleGroup() error {
	group := child(s.meta, "title-group")
	el := child(group, "article-title")
	if title := s.index.first(doctree.Title); title != nil {
		if err := s.renderChildren(el, title); err != nil {
			return err
		}
	}
	for _, alt := range s.index.all(doctree.AltTitle) {
		el := child(group, "alt-title", "alt-title-type", alt.Attrs.String("type"))
		if err := s.renderChildren(el, alt); err != nil {
			return err
		}
	}
	return nil
}

func (s *exportState) authorNotes() error {
	notes := s.index.first(doctree.AuthorNotes)
	if notes == nil || len(notes.Content) == 0 {
		return nil
	}
	el := etree.NewElement("author-notes")
	for _, c := range notes.Content {
		if c.Type != doctree.Corresp {
			if err := s.renderInto(el, c); err != nil {
				return err
			}
			continue
		}
		corresp := child(el, "corresp")
		setID(corresp, c.ID())
		textChild(corresp, "label", c.Attrs.String("label"))
		if err := s.renderChildren(corresp, c); err != nil {
			return err
		}
	}
	if len(el.ChildElements()) == 0 {
		return nil
	}
	insertAfter(lastChild(s.meta, "title-group", "contrib-group", "aff"), el)
	return nil
}

func (s *exportState) supplements() {
	for _, n := range s.index.all(doctree.Supplement) {
		el := child(s.meta, "supplementary-material")
		setID(el, n.ID())
		setAttrs(el,
			"xlink:href", n.Attrs.String("href"),
			"mimetype", n.Attrs.String("mimeType"),
			"mime-subtype", n.Attrs.String("mimeSubType"))
		if title := n.Attrs.String("title"); title != "" {
			textChild(child(el, "caption"), "title", title)
		}
	}
}

// history emits one date per present manuscript date, with day, month and
// year children in that order.
func (s *exportState) history() {
	history := etree.NewElement("history")
	for _, d := range historyDates {
		if !s.root.Attrs.Has(d.attr) {
			continue
		}
		t := time.Unix(s.root.Attrs.Int64(d.attr), 0).UTC()
		date := child(history, "date", "date-type", d.dateType)
		textChild(date, "day", strconv.Itoa(t.Day()))
		textChild(date, "month", strconv.Itoa(int(t.Month())))
		textChild(date, "year", strconv.Itoa(t.Year()))
	}
	if len(history.ChildElements()) > 0 {
		s.meta.AddChild(history)
	}
}

func (s *exportState) keywords() error {
	for _, group := range s.index.all(doctree.KeywordGroup) {
		keywords := group.ChildrenOfType(doctree.Keyword)
		if len(keywords) == 0 {
			continue
		}
		el := child(s.meta, "kwd-group", "kwd-group-type", group.Attrs.String("type"))
		for _, kw := range keywords {
			if err := s.renderChildren(child(el, "kwd"), kw); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *exportState) counts() {
	words := 0
	if body := s.index.first(doctree.Body); body != nil {
		for _, p := range body.FindAll(doctree.Paragraph) {
			words += len(strings.Fields(p.TextContent()))
		}
	}

	counts := etree.NewElement("counts")
	for _, c := range []struct {
		tag string
		n   int
	}{
		{"fig-count", s.targets.Count("figure")},
		{"table-count", s.targets.Count("table")},
		{"equation-count", s.targets.Count("equation")},
		{"ref-count", len(s.bibliography)},
		{"word-count", words},
	} {
		if c.n > 0 {
			child(counts, c.tag, "count", strconv.Itoa(c.n))
		}
	}
	if len(counts.ChildElements()) > 0 {
		s.meta.AddChild(counts)
	}
}

func (s *exportState) selfURIs() {
	for _, n := range s.index.all(doctree.Attachment) {
		el := newElement("self-uri",
			"content-type", n.Attrs.String("type"),
			"xlink:href", n.Attrs.String("href"))
		insertBefore(s.meta, el, selfURIFollowers...)
	}
}
