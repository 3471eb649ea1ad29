package jatscite

import (
	"regexp"
	"strings"

	"github.com/matsen/jats/internal/csl"
)

// labelOnly matches an entry that rendered nothing but its margin label.
var labelOnly = regexp.MustCompile(`^<label>[^<]*</label>$`)

// RenderEntry wraps one formatted bibliography entry in a <ref>.
//
// Label-only output gets an unstructured mixed-citation holding the item's
// literal text. Output that already carries a mixed-citation has its type
// placeholder filled in. Anything else is wrapped in a new mixed-citation.
func RenderEntry(item *csl.Item, text string) string {
	pubType := EscapeAttr(PublicationType(item.Type))
	trimmed := strings.TrimSpace(text)

	var body string
	switch {
	case labelOnly.MatchString(trimmed):
		body = trimmed + `<mixed-citation specific-use="unstructured-citation">` +
			Escape(item.Literal) + "</mixed-citation>"
	case strings.Contains(text, "<mixed-citation"):
		body = strings.ReplaceAll(text, TypePlaceholder, pubType)
	default:
		body = `<mixed-citation publication-type="` + pubType + `">` + text + "</mixed-citation>"
	}
	return `<ref id="` + EscapeAttr(item.ID) + `">` + body + "</ref>"
}

// PublicationType maps a CSL item type to a JATS publication-type value.
func PublicationType(t csl.Type) string {
	switch t {
	case csl.ArticleJournal:
		return "journal"
	case csl.Webpage:
		return "page"
	case csl.Dataset:
		return "data"
	default:
		return string(t)
	}
}
