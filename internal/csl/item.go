// Package csl defines bibliography items in the Citation Style Language
// data model (csl-data.json).
package csl

// Type is the CSL item type.
type Type string

const (
	ArticleJournal   Type = "article-journal"
	ArticleMagazine  Type = "article-magazine"
	ArticleNewspaper Type = "article-newspaper"
	Book             Type = "book"
	Chapter          Type = "chapter"
	Dataset          Type = "dataset"
	PaperConference  Type = "paper-conference"
	Preprint         Type = "preprint"
	Report           Type = "report"
	Thesis           Type = "thesis"
	Webpage          Type = "webpage"
	Software         Type = "software"
)

// Item represents one bibliography item.
type Item struct {
	// Identity
	ID   string `json:"id"`
	Type Type   `json:"type"`

	// Names
	Author []Name `json:"author,omitempty"`
	Editor []Name `json:"editor,omitempty"`

	// Dates
	Issued    Date `json:"issued,omitempty"`
	Accessed  Date `json:"accessed,omitempty"`
	EventDate Date `json:"event-date,omitempty"`

	// Titles
	Title               string `json:"title,omitempty"`
	ContainerTitle      string `json:"container-title,omitempty"`
	ContainerTitleShort string `json:"container-title-short,omitempty"`
	CollectionTitle     string `json:"collection-title,omitempty"`

	// Locators
	Volume        string `json:"volume,omitempty"`
	Issue         string `json:"issue,omitempty"`
	Page          string `json:"page,omitempty"`
	Supplement    string `json:"supplement,omitempty"`
	Edition       string `json:"edition,omitempty"`
	NumberOfPages string `json:"number-of-pages,omitempty"`
	Version       string `json:"version,omitempty"`

	// Publication
	Publisher      string `json:"publisher,omitempty"`
	PublisherPlace string `json:"publisher-place,omitempty"`
	Event          string `json:"event,omitempty"`

	// Identifiers
	DOI   string `json:"DOI,omitempty"`
	URL   string `json:"URL,omitempty"`
	ISBN  string `json:"ISBN,omitempty"`
	ISSN  string `json:"ISSN,omitempty"`
	PMID  string `json:"PMID,omitempty"`
	PMCID string `json:"PMCID,omitempty"`

	// Literal holds an unstructured citation string used when the item has
	// no structured fields.
	Literal string `json:"literal,omitempty"`
}

// Name is a personal or institutional name.
type Name struct {
	Family              string `json:"family,omitempty"`
	Given               string `json:"given,omitempty"`
	NonDroppingParticle string `json:"non-dropping-particle,omitempty"`
	Suffix              string `json:"suffix,omitempty"`
	Literal             string `json:"literal,omitempty"`
}

// IsLiteral reports whether the name is an institutional (literal) name.
func (n Name) IsLiteral() bool {
	return n.Literal != "" && n.Family == "" && n.Given == ""
}

// FamilyWithParticle returns the family name prefixed by its particle.
func (n Name) FamilyWithParticle() string {
	if n.NonDroppingParticle == "" {
		return n.Family
	}
	return n.NonDroppingParticle + " " + n.Family
}
