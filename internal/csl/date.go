package csl

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Date is a CSL date: up to two date-parts arrays (a range) of
// [year, month, day], or a literal.
type Date struct {
	DateParts [][]int `json:"date-parts,omitempty"`
	Literal   string  `json:"literal,omitempty"`
}

// UnmarshalJSON accepts date-parts given as numbers or numeric strings.
func (d *Date) UnmarshalJSON(data []byte) error {
	var raw struct {
		DateParts [][]json.RawMessage `json:"date-parts"`
		Literal   string              `json:"literal"`
		Raw       string              `json:"raw"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decoding date: %w", err)
	}

	d.Literal = raw.Literal
	if d.Literal == "" {
		d.Literal = raw.Raw
	}
	d.DateParts = nil
	for _, parts := range raw.DateParts {
		var ints []int
		for _, p := range parts {
			n, err := datePart(p)
			if err != nil {
				return err
			}
			ints = append(ints, n)
		}
		d.DateParts = append(d.DateParts, ints)
	}
	return nil
}

func datePart(p json.RawMessage) (int, error) {
	var n int
	if err := json.Unmarshal(p, &n); err == nil {
		return n, nil
	}
	var s string
	if err := json.Unmarshal(p, &s); err != nil {
		return 0, fmt.Errorf("invalid date part %s", string(p))
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid date part %q", s)
	}
	return n, nil
}

// IsZero reports whether the date carries no information.
func (d Date) IsZero() bool {
	return len(d.DateParts) == 0 && d.Literal == ""
}

func (d Date) part(i int) int {
	if len(d.DateParts) == 0 || len(d.DateParts[0]) <= i {
		return 0
	}
	return d.DateParts[0][i]
}

// Year returns the first year, or 0.
func (d Date) Year() int { return d.part(0) }

// Month returns the first month (1-12), or 0.
func (d Date) Month() int { return d.part(1) }

// Day returns the first day, or 0.
func (d Date) Day() int { return d.part(2) }

// ISO8601 formats the raw date-parts as YYYY, YYYY-MM or YYYY-MM-DD.
func (d Date) ISO8601() string {
	if d.Year() == 0 {
		return ""
	}
	s := fmt.Sprintf("%04d", d.Year())
	if d.Month() > 0 {
		s += fmt.Sprintf("-%02d", d.Month())
		if d.Day() > 0 {
			s += fmt.Sprintf("-%02d", d.Day())
		}
	}
	return s
}
