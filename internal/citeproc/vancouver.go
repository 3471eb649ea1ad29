package citeproc

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/matsen/jats/internal/csl"
)

var vancouverNames = nameStyle{
	Given:         GivenForm{Initialize: true},
	Inverted:      true,
	SortSeparator: " ",
	Delimiter:     ", ",
	LastDelimiter: ", ",
	EtAlMin:       7,
	EtAlUseFirst:  6,
	EtAl:          ", et al",
}

func vancouverCitation(r *renderer, cites []cited) string {
	nums := make([]int, len(cites))
	for i, c := range cites {
		nums[i] = c.Number
	}
	slices.Sort(nums)
	nums = slices.Compact(nums)
	return "[" + r.esc(collapseRanges(nums)) + "]"
}

// collapseRanges joins sorted numbers with commas, collapsing runs of three
// or more into an en-dash range.
func collapseRanges(nums []int) string {
	var parts []string
	for i := 0; i < len(nums); {
		j := i
		for j+1 < len(nums) && nums[j+1] == nums[j]+1 {
			j++
		}
		if j-i >= 2 {
			parts = append(parts, fmt.Sprintf("%d–%d", nums[i], nums[j]))
		} else {
			for k := i; k <= j; k++ {
				parts = append(parts, strconv.Itoa(nums[k]))
			}
		}
		i = j + 1
	}
	return strings.Join(parts, ",")
}

func vancouverEntry(r *renderer, c cited) string {
	label := r.format.leftMargin(strconv.Itoa(c.Number))
	body := vancouverBody(r, c.Item)
	if body == "" {
		return label
	}
	return label + r.format.rightInline(body)
}

// vancouverBody renders nothing for literal-only items.
func vancouverBody(r *renderer, it *csl.Item) string {
	if it.Literal != "" && it.Title == "" && len(it.Author) == 0 {
		return ""
	}

	authors := r.nameList("author", it.Author, it, vancouverNames)
	title := r.variable("title", it.Title, it)

	var parts []string
	switch it.Type {
	case csl.Chapter:
		in := "In: "
		if eds := r.nameList("editor", it.Editor, it, vancouverNames); eds != "" {
			in += eds + ", editors. "
		}
		parts = append(parts, authors, title,
			in+r.variable("container-title", it.ContainerTitle, it),
			vancouverEdition(r, it),
			vancouverPublication(r, it))
		if it.Page != "" {
			parts = append(parts, "p. "+r.variable("page", it.Page, it))
		}
	case csl.Book, csl.Report, csl.Thesis, csl.Software, csl.Dataset:
		parts = append(parts, authors, title, vancouverEdition(r, it), vancouverPublication(r, it))
	case csl.Webpage:
		site := r.variable("container-title", it.ContainerTitle, it)
		if site != "" {
			site += " [Internet]"
		}
		parts = append(parts, authors, title, site,
			joinNonEmpty("; ", r.variable("publisher", it.Publisher, it), vancouverIssued(r, it)))
		if acc := vancouverDate(it.Accessed); acc != "" {
			parts[len(parts)-1] += " [cited " + r.variable("accessed", acc, it) + "]"
		}
	case csl.PaperConference:
		parts = append(parts, authors, title)
		if ev := r.variable("event", it.Event, it); ev != "" {
			parts = append(parts, "Paper presented at: "+joinNonEmpty("; ", ev,
				r.variable("event-date", vancouverDate(it.EventDate), it)))
		}
		parts = append(parts, vancouverPublication(r, it))
	default:
		src := it.ContainerTitleShort
		if src == "" {
			src = it.ContainerTitle
		}
		parts = append(parts, authors, title,
			r.variable("container-title", src, it),
			vancouverLocator(r, it))
	}

	switch {
	case it.DOI != "":
		parts = append(parts, "doi:"+r.variable("DOI", it.DOI, it))
	case it.URL != "":
		parts = append(parts, "Available from: "+r.variable("URL", it.URL, it))
	}
	return sentences(parts...)
}

// vancouverLocator renders "2020 Mar;12(3):100-10".
func vancouverLocator(r *renderer, it *csl.Item) string {
	loc := r.variable("volume", it.Volume, it)
	if issue := r.variable("issue", it.Issue, it); issue != "" {
		loc += "(" + issue + ")"
	}
	if page := r.variable("page", it.Page, it); page != "" {
		if loc == "" {
			loc = page
		} else {
			loc += ":" + page
		}
	}
	return joinNonEmpty(";", vancouverIssued(r, it), loc)
}

func vancouverPublication(r *renderer, it *csl.Item) string {
	pub := joinNonEmpty(": ",
		r.variable("publisher-place", it.PublisherPlace, it),
		r.variable("publisher", it.Publisher, it))
	return joinNonEmpty("; ", pub, vancouverIssued(r, it))
}

func vancouverEdition(r *renderer, it *csl.Item) string {
	if it.Edition == "" {
		return ""
	}
	return r.variable("edition", it.Edition, it) + " ed"
}

func vancouverIssued(r *renderer, it *csl.Item) string {
	return r.variable("issued", vancouverDate(it.Issued), it)
}

// vancouverDate formats "2020 Mar 5".
func vancouverDate(d csl.Date) string {
	if d.Year() == 0 {
		return d.Literal
	}
	return joinNonEmpty(" ", strconv.Itoa(d.Year()), monthName(d.Month(), true), dayString(d.Day()))
}

func dayString(day int) string {
	if day <= 0 {
		return ""
	}
	return strconv.Itoa(day)
}
