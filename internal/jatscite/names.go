package jatscite

import (
	"github.com/matsen/jats/internal/citeproc"
	"github.com/matsen/jats/internal/csl"
)

// Names decorates a NameRenderer with JATS name elements. In-text citations
// are left untouched.
type Names struct {
	Base citeproc.NameRenderer
}

func (n Names) FamilyName(area citeproc.Area, name csl.Name) string {
	s := n.Base.FamilyName(area, name)
	if area != citeproc.AreaBibliography || s == "" || name.IsLiteral() {
		return s
	}
	return "<surname>" + s + "</surname>"
}

func (n Names) GivenName(area citeproc.Area, name csl.Name, form citeproc.GivenForm) string {
	s := n.Base.GivenName(area, name, form)
	if area != citeproc.AreaBibliography || s == "" {
		return s
	}
	return "<given-names>" + s + "</given-names>"
}

func (n Names) FullName(area citeproc.Area, name csl.Name, parts citeproc.NameParts) string {
	s := n.Base.FullName(area, name, parts)
	if area != citeproc.AreaBibliography || s == "" {
		return s
	}
	return "<string-name>" + s + "</string-name>"
}
