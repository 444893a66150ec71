package repourl

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		url   string
		want  string
		valid bool
	}{
		{"https", "https://example.com/acme/widgets.git", "example.com/acme/widgets", true},
		{"https no .git", "https://example.com/acme/widgets", "example.com/acme/widgets", true},
		{"https trailing slash", "https://github.com/acme/widgets/", "github.com/acme/widgets", true},
		{"scp", "git@example.com:acme/widgets.git", "example.com/acme/widgets", true},
		{"scp no .git", "git@gitlab.com:acme/widgets", "gitlab.com/acme/widgets", true},
		{"nested group", "https://gitlab.com/acme/tools/widgets.git", "gitlab.com/acme/tools/widgets", true},
		{"ssh scheme", "ssh://git@example.com/acme/widgets.git", "example.com/acme/widgets", true},
		{"no owner", "https://example.com/widgets", "", false},
		{"empty", "", "", false},
		{"garbage", "not a url", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Parse(tt.url)
			if tt.valid != (err == nil) {
				t.Fatalf("Parse(%q) error = %v, want valid=%v", tt.url, err, tt.valid)
			}
			if err != nil {
				return
			}
			if p.Name() != tt.want {
				t.Errorf("Name() = %q, want %q", p.Name(), tt.want)
			}
		})
	}
}

func TestParseStable(t *testing.T) {
	// Re-parsing a URL built from the derived parts reconstructs the same name.
	p, err := Parse("https://example.com/acme/widgets.git")
	if err != nil {
		t.Fatal(err)
	}

	again, err := Parse("https://" + p.Host + "/" + p.Owner + "/" + p.Repo)
	if err != nil {
		t.Fatal(err)
	}
	if again.Name() != p.Name() {
		t.Errorf("round trip name = %q, want %q", again.Name(), p.Name())
	}
}

func TestParseSCPKeepsUserOut(t *testing.T) {
	p, err := Parse("deploy@host.internal:team/service.git")
	if err != nil {
		t.Fatal(err)
	}
	if p.Host != "host.internal" {
		t.Errorf("Host = %q, want host.internal", p.Host)
	}
	if p.URL != "deploy@host.internal:team/service.git" {
		t.Errorf("URL not preserved: %q", p.URL)
	}
}
