// Package repourl parses remote source URLs and derives canonical
// cache entry names of the form host/owner/repo.
package repourl

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// Parsed holds the components of a source URL.
type Parsed struct {
	Host  string
	Owner string
	Repo  string
	URL   string // original URL as given
}

// Name returns the canonical entry name host/owner/repo.
func (p Parsed) Name() string {
	return p.Host + "/" + p.Owner + "/" + p.Repo
}

// ParseError reports a source URL that matches neither accepted form.
type ParseError struct {
	URL string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid source URL '%s': expected https://host/owner/repo[.git] or user@host:owner/repo[.git]", e.URL)
}

// Parse accepts two URL forms: scheme-based (https://host/owner/repo[.git])
// and SCP-like (user@host:owner/repo[.git]).
func Parse(raw string) (Parsed, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Parsed{}, &ParseError{URL: raw}
	}

	if strings.Contains(raw, "://") {
		return parseScheme(raw)
	}
	if at := strings.Index(raw, "@"); at > 0 && strings.Contains(raw[at:], ":") {
		return parseSCP(raw)
	}
	return Parsed{}, &ParseError{URL: raw}
}

func parseScheme(raw string) (Parsed, error) {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return Parsed{}, &ParseError{URL: raw}
	}

	owner, repo, ok := splitOwnerRepo(u.Path)
	if !ok {
		return Parsed{}, &ParseError{URL: raw}
	}

	return Parsed{Host: u.Hostname(), Owner: owner, Repo: repo, URL: raw}, nil
}

// parseSCP handles git@host:owner/repo.git style addresses.
func parseSCP(raw string) (Parsed, error) {
	at := strings.Index(raw, "@")
	rest := raw[at+1:]

	colon := strings.Index(rest, ":")
	if colon <= 0 {
		return Parsed{}, &ParseError{URL: raw}
	}

	host := rest[:colon]
	owner, repo, ok := splitOwnerRepo(rest[colon+1:])
	if !ok || host == "" {
		return Parsed{}, &ParseError{URL: raw}
	}

	return Parsed{Host: host, Owner: owner, Repo: repo, URL: raw}, nil
}

func splitOwnerRepo(p string) (owner, repo string, ok bool) {
	p = strings.Trim(p, "/")
	p = strings.TrimSuffix(p, ".git")

	segs := strings.Split(p, "/")
	if len(segs) < 2 {
		return "", "", false
	}

	// Hosts like GitLab allow nested groups; everything before the final
	// segment is the owner.
	repo = segs[len(segs)-1]
	owner = path.Join(segs[:len(segs)-1]...)
	if owner == "" || repo == "" {
		return "", "", false
	}
	return owner, repo, true
}
