package jats

import "fmt"

// Version identifies a JATS DTD release.
type Version struct {
	DTDVersion string
	PublicID   string
	SystemID   string
}

var versions = map[string]Version{
	"1.1": {
		DTDVersion: "1.1",
		PublicID:   "-//NLM//DTD JATS (Z39.96) Journal Archiving and Interchange DTD with MathML3 v1.1 20151215//EN",
		SystemID:   "http://jats.nlm.nih.gov/archiving/1.1/JATS-archivearticle1-mathml3.dtd",
	},
	"1.2": {
		DTDVersion: "1.2",
		PublicID:   "-//NLM//DTD JATS (Z39.96) Journal Archiving and Interchange DTD with MathML3 v1.2 20190208//EN",
		SystemID:   "http://jats.nlm.nih.gov/archiving/1.2/JATS-archivearticle1-mathml3.dtd",
	},
}

// defaultVersion is used when no version is requested.
var defaultVersion = Version{
	DTDVersion: "1.3",
	PublicID:   "-//NLM//DTD JATS (Z39.96) Journal Archiving and Interchange DTD with MathML3 v1.3 20210610//EN",
	SystemID:   "http://jats.nlm.nih.gov/archiving/1.3/JATS-archivearticle1-3-mathml3.dtd",
}

// SelectVersion maps a requested version to its DTD identifiers. An empty
// string selects the default.
func SelectVersion(v string) (Version, error) {
	if v == "" {
		return defaultVersion, nil
	}
	version, ok := versions[v]
	if !ok {
		return Version{}, fmt.Errorf("%w: %q", ErrUnsupportedVersion, v)
	}
	return version, nil
}
