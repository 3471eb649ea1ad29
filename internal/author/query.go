// Package author provides author name parsing and matching for bibliography
// queries.
package author

import (
	"strings"

	"github.com/matsen/jats/internal/csl"
)

// Query represents a parsed author search query.
type Query struct {
	First string // Given name prefix (may be empty for family-name-only queries)
	Last  string // Family name (required)
}

// ParseQuery parses an author search string into a structured Query.
//
// Supported formats:
//   - "Yu"           → last="Yu"
//   - "Timothy Yu"   → first="Timothy", last="Yu"
//   - "Yu, Timothy"  → first="Timothy", last="Yu"
//
// Names are trimmed but case is preserved (matching is case-insensitive).
func ParseQuery(input string) Query {
	input = strings.TrimSpace(input)
	if input == "" {
		return Query{}
	}

	if idx := strings.Index(input, ","); idx > 0 {
		return Query{
			First: strings.TrimSpace(input[idx+1:]),
			Last:  strings.TrimSpace(input[:idx]),
		}
	}

	parts := strings.Fields(input)
	if len(parts) == 1 {
		return Query{Last: parts[0]}
	}

	// "Timothy C Yu" → first="Timothy C", last="Yu"
	return Query{
		First: strings.Join(parts[:len(parts)-1], " "),
		Last:  parts[len(parts)-1],
	}
}

// String returns the query as "First Last".
func (q Query) String() string {
	return strings.TrimSpace(q.First + " " + q.Last)
}

// Matches checks if the query matches a given name.
//
// Personal names need a case-insensitive exact family name match (with or
// without the non-dropping particle) and, when the query has a first name, a
// case-insensitive prefix match on the given name. Institutional names match
// when they contain the whole query.
func (q Query) Matches(n csl.Name) bool {
	if q.Last == "" {
		return false
	}
	if n.IsLiteral() {
		return strings.Contains(strings.ToLower(n.Literal), strings.ToLower(q.String()))
	}

	if !strings.EqualFold(q.Last, n.Family) && !strings.EqualFold(q.Last, n.FamilyWithParticle()) {
		return false
	}
	if q.First == "" {
		return true
	}
	return strings.HasPrefix(strings.ToLower(n.Given), strings.ToLower(q.First))
}

// MatchesAny checks if the query matches any name in the list.
func (q Query) MatchesAny(names []csl.Name) bool {
	for _, n := range names {
		if q.Matches(n) {
			return true
		}
	}
	return false
}

// AllMatch checks if all queries match at least one name each.
func AllMatch(queries []Query, names []csl.Name) bool {
	for _, q := range queries {
		if !q.MatchesAny(names) {
			return false
		}
	}
	return true
}

// FilterItems returns the items whose authors satisfy every query, keeping
// their order.
func FilterItems(items []csl.Item, queries []Query) []csl.Item {
	if len(queries) == 0 {
		return items
	}
	var out []csl.Item
	for _, item := range items {
		if AllMatch(queries, item.Author) {
			out = append(out, item)
		}
	}
	return out
}
