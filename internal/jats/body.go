package jats

import (
	"github.com/beevik/etree"
)

// buildBody renders the manuscript's top-level containers into body. The
// abstracts, body and backmatter containers become typed secs that later
// passes unwrap or move.
func (s *exportState) buildBody() error {
	s.body = etree.NewElement("body")
	if err := s.renderChildren(s.body, s.root); err != nil {
		return err
	}
	s.fixBody()
	return nil
}
