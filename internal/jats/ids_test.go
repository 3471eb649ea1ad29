package jats

import (
	"testing"

	"github.com/beevik/etree"
	"github.com/pmezard/go-difflib/difflib"
)

func diff(want, got string) string {
	d, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(want),
		B:        difflib.SplitLines(got),
		FromFile: "want",
		ToFile:   "got",
		Context:  2,
	})
	return d
}

func TestRewriteIDs(t *testing.T) {
	src := `<article>
<sec id="MPSection_1"><title>Intro</title>
<xref ref-type="fig" rid="MPFigure_1 missing"/>
<fig id="MPFigure_1"/>
<fig id="MPFigure_1"/>
</sec>
<xref ref-type="bibr" rid="missing"/>
<p id="MPParagraph_1"/>
</article>`

	want := `<article>
<sec id="sec-1"><title>Intro</title>
<xref ref-type="fig" rid="fig-1"/>
<fig id="fig-1"/>
<fig id="fig-2"/>
</sec>
<xref ref-type="bibr"/>
<p/>
</article>`

	doc := etree.NewDocument()
	if err := doc.ReadFromString(src); err != nil {
		t.Fatalf("ReadFromString() error = %v", err)
	}

	seq := SequentialIDs()
	rewriteIDs(doc.Root(), func(tag string) string {
		if tag == "p" {
			return ""
		}
		return seq(tag)
	})

	got, err := doc.WriteToString()
	if err != nil {
		t.Fatalf("WriteToString() error = %v", err)
	}
	if got != want {
		t.Errorf("rewriteIDs() mismatch:\n%s", diff(want, got))
	}
}

func TestRewriteIDs_PrefixedTagsUseLocalName(t *testing.T) {
	src := `<article xmlns:mml="http://www.w3.org/1998/Math/MathML">
<disp-formula id="eq"><mml:math id="MPEquation_1"/></disp-formula>
<xref ref-type="disp-formula" rid="MPEquation_1"/>
</article>`

	want := `<article xmlns:mml="http://www.w3.org/1998/Math/MathML">
<disp-formula id="disp-formula-1"><mml:math id="math-1"/></disp-formula>
<xref ref-type="disp-formula" rid="math-1"/>
</article>`

	doc := etree.NewDocument()
	if err := doc.ReadFromString(src); err != nil {
		t.Fatalf("ReadFromString() error = %v", err)
	}
	rewriteIDs(doc.Root(), SequentialIDs())

	got, err := doc.WriteToString()
	if err != nil {
		t.Fatalf("WriteToString() error = %v", err)
	}
	if got != want {
		t.Errorf("rewriteIDs() mismatch:\n%s", diff(want, got))
	}
}

func TestSequentialIDs(t *testing.T) {
	gen := SequentialIDs()
	got := []string{gen("fig"), gen("sec"), gen("fig")}
	want := []string{"fig-1", "sec-1", "fig-2"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("id %d = %q, want %q", i, got[i], want[i])
		}
	}

	if other := SequentialIDs()("fig"); other != "fig-1" {
		t.Errorf("new generator should restart numbering, got %q", other)
	}
}

func TestUUIDIDs_Unique(t *testing.T) {
	gen := UUIDIDs()
	a, b := gen("ref"), gen("ref")
	if a == b {
		t.Errorf("UUIDIDs() returned %q twice", a)
	}
}

func TestNormalizeRIDs(t *testing.T) {
	tests := []struct {
		in   []string
		want string
	}{
		{nil, ""},
		{[]string{"MPFigure:1"}, "MPFigure_1"},
		{[]string{"a:1", "", "b:2"}, "a_1 b_2"},
	}
	for _, tt := range tests {
		if got := normalizeRIDs(tt.in); got != tt.want {
			t.Errorf("normalizeRIDs(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseFragment(t *testing.T) {
	tokens, err := parseFragment(`[<italic>1</italic>] <xref ref-type="bibr" rid="r1">x</xref>`)
	if err != nil {
		t.Fatalf("parseFragment() error = %v", err)
	}
	if len(tokens) != 4 {
		t.Fatalf("got %d tokens, want 4", len(tokens))
	}
	for _, tok := range tokens {
		if tok.Parent() != nil {
			t.Error("tokens should be detached")
		}
	}

	if _, err := parseFragment(`<unclosed>`); err == nil {
		t.Error("parseFragment() should fail on malformed markup")
	}
}
