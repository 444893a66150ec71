package match

import "testing"

var entries = []Entry{
	{Name: "example.com/acme/widgets", TargetPath: "vendor/widgets"},
	{Name: "example.com/acme/gadgets", TargetPath: "vendor/gadgets"},
	{Name: "github.com/other/widgets", TargetPath: "libs/widgets"},
	{Name: "github.com/acme/tools"},
}

func TestMatchFullName(t *testing.T) {
	r := Match(entries, "example.com/acme/widgets")
	e, ok := r.Unique()
	if !ok {
		t.Fatalf("matches = %v, want unique", r.Matches)
	}
	if e.Name != "example.com/acme/widgets" {
		t.Errorf("matched %s", e.Name)
	}
}

func TestMatchTargetPath(t *testing.T) {
	r := Match(entries, "libs/widgets")
	e, ok := r.Unique()
	if !ok {
		t.Fatalf("matches = %v, want unique", r.Matches)
	}
	if e.Name != "github.com/other/widgets" {
		t.Errorf("matched %s", e.Name)
	}
}

func TestMatchBareNameAmbiguous(t *testing.T) {
	r := Match(entries, "widgets")
	if !r.Ambiguous() {
		t.Fatalf("matches = %v, want ambiguous", r.Matches)
	}
	if len(r.Matches) != 2 {
		t.Errorf("len = %d, want 2", len(r.Matches))
	}
}

func TestMatchSuffixSegments(t *testing.T) {
	r := Match(entries, "acme/widgets")
	e, ok := r.Unique()
	if !ok {
		t.Fatalf("matches = %v, want unique", r.Matches)
	}
	if e.Name != "example.com/acme/widgets" {
		t.Errorf("matched %s", e.Name)
	}
}

func TestMatchPathSuffix(t *testing.T) {
	r := Match([]Entry{
		{Name: "example.com/acme/widgets", TargetPath: "third_party/vendor/widgets"},
	}, "vendor/widgets")
	if _, ok := r.Unique(); !ok {
		t.Fatalf("matches = %v, want unique", r.Matches)
	}
}

func TestMatchNone(t *testing.T) {
	r := Match(entries, "nothing")
	if !r.None() {
		t.Errorf("matches = %v, want none", r.Matches)
	}
}

func TestMatchNormalizesSeparators(t *testing.T) {
	r := Match(entries, `vendor\widgets`)
	e, ok := r.Unique()
	if !ok {
		t.Fatalf("matches = %v, want unique", r.Matches)
	}
	if e.Name != "example.com/acme/widgets" {
		t.Errorf("matched %s", e.Name)
	}
}

func TestMatchEmptyQuery(t *testing.T) {
	if r := Match(entries, "  "); !r.None() {
		t.Errorf("empty query matched %v", r.Matches)
	}
}

func TestMatchNoDuplicateWhenSeveralRulesHit(t *testing.T) {
	// "tools" matches rule 3 and rule 4 for the same entry; it must appear once.
	r := Match(entries, "tools")
	if len(r.Matches) != 1 {
		t.Errorf("matches = %v, want exactly one", r.Matches)
	}
}
