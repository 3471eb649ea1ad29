package jats

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/matsen/jats/internal/citeproc"
	"github.com/matsen/jats/internal/doctree"
	"github.com/matsen/jats/internal/labels"
)

// nodeIndex gives constant-time access to document nodes by type and id.
type nodeIndex struct {
	byType map[doctree.NodeType][]*doctree.Node
	byID   map[string]*doctree.Node
	parent map[*doctree.Node]*doctree.Node
}

func indexNodes(root *doctree.Node) *nodeIndex {
	idx := &nodeIndex{
		byType: make(map[doctree.NodeType][]*doctree.Node),
		byID:   make(map[string]*doctree.Node),
		parent: make(map[*doctree.Node]*doctree.Node),
	}
	root.Descendants(func(n, parent *doctree.Node) bool {
		idx.byType[n.Type] = append(idx.byType[n.Type], n)
		idx.parent[n] = parent
		if id := n.ID(); id != "" {
			if _, dup := idx.byID[id]; !dup {
				idx.byID[id] = n
			}
		}
		return true
	})
	return idx
}

func (idx *nodeIndex) all(t doctree.NodeType) []*doctree.Node {
	return idx.byType[t]
}

func (idx *nodeIndex) first(t doctree.NodeType) *doctree.Node {
	if nodes := idx.byType[t]; len(nodes) > 0 {
		return nodes[0]
	}
	return nil
}

// collect indexes the tree, computes labels and runs the citation engine.
func (s *exportState) collect() error {
	s.index = indexNodes(s.root)
	s.targets = labels.BuildTargets(s.root)
	s.footnoteLabels = labels.FootnoteLabels(s.root)

	var clusters []citeproc.Citation
	for _, n := range s.index.all(doctree.Citation) {
		clusters = append(clusters, citeproc.Citation{ID: n.ID(), ItemIDs: n.Attrs.Strings("rids")})
	}
	rendered, err := s.engine.Cite(clusters)
	if err != nil {
		return fmt.Errorf("rendering citations: %w", err)
	}
	s.citations = make(map[string]string, len(rendered))
	for _, r := range rendered {
		s.citations[r.ID] = r.Text
	}

	var itemIDs []string
	for _, n := range s.index.all(doctree.BibliographyItem) {
		itemIDs = append(itemIDs, n.ID())
	}
	for _, id := range s.engine.Register(itemIDs...) {
		s.log.Warn("bibliography item not found; omitting reference", zap.String("id", id))
	}

	s.bibliography, err = s.engine.Bibliography()
	if err != nil {
		return fmt.Errorf("rendering bibliography: %w", err)
	}
	return nil
}
