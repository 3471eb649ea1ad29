package citeproc

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/matsen/jats/internal/csl"
)

// GivenForm controls how given names are rendered.
type GivenForm struct {
	Initialize     bool
	InitializeWith string
}

// NameParts are the already-rendered pieces of one personal name.
type NameParts struct {
	Family        string
	Given         string
	Inverted      bool
	SortSeparator string
}

// NameRenderer renders personal names at three granularities. Formats that
// need to annotate names decorate the processor's default renderer.
type NameRenderer interface {
	FamilyName(area Area, n csl.Name) string
	GivenName(area Area, n csl.Name, form GivenForm) string
	FullName(area Area, n csl.Name, parts NameParts) string
}

// PlainNames is the default NameRenderer.
type PlainNames struct {
	Escape func(string) string
}

func (p PlainNames) esc(s string) string {
	if p.Escape == nil {
		return s
	}
	return p.Escape(s)
}

func (p PlainNames) FamilyName(_ Area, n csl.Name) string {
	if n.IsLiteral() {
		return p.esc(n.Literal)
	}
	return p.esc(n.FamilyWithParticle())
}

func (p PlainNames) GivenName(_ Area, n csl.Name, form GivenForm) string {
	if n.IsLiteral() || n.Given == "" {
		return ""
	}
	if !form.Initialize {
		return p.esc(n.Given)
	}
	return p.esc(Initials(n.Given, form.InitializeWith))
}

func (p PlainNames) FullName(_ Area, _ csl.Name, parts NameParts) string {
	switch {
	case parts.Given == "":
		return parts.Family
	case parts.Family == "":
		return parts.Given
	case parts.Inverted:
		return parts.Family + parts.SortSeparator + parts.Given
	default:
		return parts.Given + " " + parts.Family
	}
}

// Initials reduces a given name to initials, each followed by with.
// Hyphenated and space-separated parts each contribute one initial.
func Initials(given, with string) string {
	words := strings.FieldsFunc(given, func(r rune) bool {
		return r == ' ' || r == '-' || r == '.'
	})
	var b strings.Builder
	for _, w := range words {
		r, _ := utf8.DecodeRuneInString(w)
		b.WriteRune(unicode.ToUpper(r))
		b.WriteString(with)
	}
	return strings.TrimSpace(b.String())
}
