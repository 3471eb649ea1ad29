package jatscite

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/matsen/jats/internal/citeproc"
	"github.com/matsen/jats/internal/csl"
)

var pageSeparator = regexp.MustCompile(`[-–]`)

type element struct {
	name  string
	attrs string
}

func (e element) wrap(s string) string {
	open := "<" + e.name
	if e.attrs != "" {
		open += " " + e.attrs
	}
	return open + ">" + s + "</" + e.name + ">"
}

// simpleVariables wrap their formatted text in one fixed element.
var simpleVariables = map[string]element{
	"container-title":  {name: "source"},
	"collection-title": {name: "series"},
	"volume":           {name: "volume"},
	"issue":            {name: "issue"},
	"supplement":       {name: "supplement"},
	"edition":          {name: "edition"},
	"version":          {name: "version"},
	"publisher":        {name: "publisher-name"},
	"publisher-place":  {name: "publisher-loc"},
	"event":            {name: "conf-name"},
	"ISBN":             {name: "isbn"},
	"ISSN":             {name: "issn"},
	"number-of-pages":  {name: "size", attrs: `units="pages"`},
	"DOI":              {name: "pub-id", attrs: `pub-id-type="doi"`},
	"PMID":             {name: "pub-id", attrs: `pub-id-type="pmid"`},
	"PMCID":            {name: "pub-id", attrs: `pub-id-type="pmcid"`},
}

// WrapVariable wraps a formatted CSL variable in its JATS element. Only
// bibliography output is wrapped; unknown variables pass through.
func WrapVariable(area citeproc.Area, variable, text string, item *csl.Item) string {
	if area != citeproc.AreaBibliography || text == "" {
		return text
	}

	switch variable {
	case "author", "editor":
		return element{name: "person-group", attrs: `person-group-type="` + variable + `"`}.wrap(text)
	case "issued":
		return wrapYear(text, item.Issued)
	case "page":
		return wrapPages(text)
	case "title":
		return element{name: titleElement(item.Type)}.wrap(text)
	case "accessed":
		return dateElement("date-in-citation", `content-type="access-date"`, item.Accessed).wrap(text)
	case "event-date":
		return dateElement("conf-date", "", item.EventDate).wrap(text)
	case "URL":
		return element{name: "ext-link", attrs: `ext-link-type="uri" xlink:href="` + EscapeAttr(item.URL) + `"`}.wrap(text)
	}

	if el, ok := simpleVariables[variable]; ok {
		return el.wrap(text)
	}
	return text
}

// wrapYear tags only the year inside a formatted date.
func wrapYear(text string, d csl.Date) string {
	if d.Year() == 0 {
		return text
	}
	y := strconv.Itoa(d.Year())
	return strings.Replace(text, y, "<year>"+y+"</year>", 1)
}

func wrapPages(text string) string {
	parts := pageSeparator.Split(text, -1)
	if len(parts) != 2 {
		return "<fpage>" + text + "</fpage>"
	}
	sep := pageSeparator.FindString(text)
	return "<fpage>" + parts[0] + "</fpage>" + sep + "<lpage>" + parts[1] + "</lpage>"
}

func titleElement(t csl.Type) string {
	switch t {
	case csl.Dataset:
		return "data-title"
	case csl.ArticleJournal, csl.Preprint:
		return "article-title"
	default:
		return "part-title"
	}
}

func dateElement(name, attrs string, d csl.Date) element {
	if iso := d.ISO8601(); iso != "" {
		if attrs != "" {
			attrs += " "
		}
		attrs += `iso-8601-date="` + iso + `"`
	}
	return element{name: name, attrs: attrs}
}
