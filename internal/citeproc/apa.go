package citeproc

import (
	"strconv"
	"strings"

	"github.com/matsen/jats/internal/csl"
)

func apaNames(r *renderer) nameStyle {
	return nameStyle{
		Given:         GivenForm{Initialize: true, InitializeWith: ". "},
		Inverted:      true,
		SortSeparator: ", ",
		Delimiter:     ", ",
		LastDelimiter: r.esc(", & "),
	}
}

func apaEditors(r *renderer) nameStyle {
	return nameStyle{
		Given:         GivenForm{Initialize: true, InitializeWith: ". "},
		Delimiter:     ", ",
		LastDelimiter: r.esc(", & "),
	}
}

func apaCitation(r *renderer, cites []cited) string {
	short := nameStyle{
		Short:         true,
		Delimiter:     ", ",
		LastDelimiter: r.esc(" & "),
		EtAlMin:       3,
		EtAlUseFirst:  1,
		EtAl:          " et al.",
	}

	parts := make([]string, 0, len(cites))
	for _, c := range cites {
		it := c.Item
		lead := r.nameList("author", it.Author, it, short)
		if lead == "" {
			lead = r.variable("title", it.Title, it)
		}
		parts = append(parts, joinNonEmpty(", ", lead, r.variable("issued", apaYear(it.Issued), it)))
	}
	return "(" + strings.Join(parts, "; ") + ")"
}

func apaEntry(r *renderer, c cited) string {
	it := c.Item
	if it.Literal != "" && it.Title == "" && len(it.Author) == 0 {
		return r.esc(it.Literal)
	}

	var titleDecorations []Decoration
	switch it.Type {
	case csl.ArticleJournal, csl.ArticleMagazine, csl.ArticleNewspaper, csl.Chapter, csl.PaperConference:
	default:
		titleDecorations = []Decoration{Italic}
	}
	title := r.variable("title", it.Title, it, titleDecorations...)
	if it.Edition != "" {
		title += " (" + r.variable("edition", it.Edition, it) + " ed.)"
	}

	date := "(" + r.variable("issued", apaDate(it), it) + ")"
	lead := r.nameList("author", it.Author, it, apaNames(r))
	if lead == "" {
		lead, title = title, ""
	}

	parts := []string{lead + " " + date, title}
	switch it.Type {
	case csl.ArticleJournal, csl.ArticleMagazine, csl.ArticleNewspaper, csl.Preprint:
		vol := r.variable("volume", it.Volume, it, Italic)
		if issue := r.variable("issue", it.Issue, it); issue != "" {
			vol += "(" + issue + ")"
		}
		parts = append(parts, joinNonEmpty(", ",
			r.variable("container-title", it.ContainerTitle, it, Italic),
			vol,
			r.variable("page", it.Page, it)))
	case csl.Chapter, csl.PaperConference:
		in := ""
		if eds := r.nameList("editor", it.Editor, it, apaEditors(r)); eds != "" {
			suffix := " (Ed.)"
			if len(it.Editor) > 1 {
				suffix = " (Eds.)"
			}
			in = eds + suffix
		}
		in = joinNonEmpty(", ", in, r.variable("container-title", it.ContainerTitle, it, Italic))
		if page := r.variable("page", it.Page, it); page != "" {
			in += " (pp. " + page + ")"
		}
		if in != "" {
			parts = append(parts, "In "+in)
		}
		if ev := r.variable("event", it.Event, it); ev != "" {
			parts = append(parts, joinNonEmpty(", ", "Paper presented at "+ev,
				r.variable("event-date", apaLongDate(it.EventDate), it)))
		}
		parts = append(parts, r.variable("publisher", it.Publisher, it))
	case csl.Webpage:
		parts = append(parts, r.variable("container-title", it.ContainerTitle, it))
	default:
		parts = append(parts, r.variable("publisher", it.Publisher, it))
	}

	text := sentences(parts...)
	switch {
	case it.DOI != "":
		text += " https://doi.org/" + r.variable("DOI", it.DOI, it)
	case it.URL != "":
		if acc := apaLongDate(it.Accessed); acc != "" {
			text += " Retrieved " + r.variable("accessed", acc, it) + ", from"
		}
		text += " " + r.variable("URL", it.URL, it)
	}
	return text
}

func apaYear(d csl.Date) string {
	if d.Year() == 0 {
		if d.Literal != "" {
			return d.Literal
		}
		return "n.d."
	}
	return strconv.Itoa(d.Year())
}

// apaDate renders the issued date; periodicals and web pages carry month and
// day ("2020, March 5").
func apaDate(it *csl.Item) string {
	year := apaYear(it.Issued)
	switch it.Type {
	case csl.ArticleMagazine, csl.ArticleNewspaper, csl.Webpage:
		if m := monthName(it.Issued.Month(), false); m != "" {
			return year + ", " + joinNonEmpty(" ", m, dayString(it.Issued.Day()))
		}
	}
	return year
}

// apaLongDate renders "March 5, 2021".
func apaLongDate(d csl.Date) string {
	if d.Year() == 0 {
		return d.Literal
	}
	year := strconv.Itoa(d.Year())
	m := monthName(d.Month(), false)
	if m == "" {
		return year
	}
	if day := dayString(d.Day()); day != "" {
		return m + " " + day + ", " + year
	}
	return m + " " + year
}
