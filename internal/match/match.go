// Package match resolves user-supplied short names against known cache
// entries and loading records. A query can name an entry by its full
// host/owner/repo name, its bare repo name, a trailing run of name
// segments, or the path it was loaded to.
package match

import (
	"fmt"
	"strings"
)

// Entry is one matchable item: a canonical full name plus, when the entry
// is loaded somewhere, the recorded target path.
type Entry struct {
	Name       string
	TargetPath string
}

// Result is the outcome of a match: zero, one, or several candidates.
// Callers must not pick arbitrarily from an ambiguous result.
type Result struct {
	Query   string
	Matches []Entry
}

// Unique returns the single match, if there is exactly one.
func (r Result) Unique() (Entry, bool) {
	if len(r.Matches) == 1 {
		return r.Matches[0], true
	}
	return Entry{}, false
}

// None reports that nothing matched.
func (r Result) None() bool {
	return len(r.Matches) == 0
}

// Ambiguous reports that more than one entry matched.
func (r Result) Ambiguous() bool {
	return len(r.Matches) > 1
}

// AmbiguousError is returned by callers that cannot disambiguate
// interactively. A force flag never silences it.
type AmbiguousError struct {
	Query   string
	Matches []Entry
}

func (e *AmbiguousError) Error() string {
	names := make([]string, len(e.Matches))
	for i, m := range e.Matches {
		names[i] = m.Name
	}
	return fmt.Sprintf("'%s' matches %d entries (%s), use the full name to disambiguate",
		e.Query, len(e.Matches), strings.Join(names, ", "))
}

// Match returns every entry the query could mean. A candidate qualifies if
// any of the following holds:
//
//  1. the query equals the canonical full name
//  2. the query equals the recorded target path
//  3. the query equals the final name segment (bare repo name)
//  4. the full name ends with "/" + query
//  5. the target path ends with "/" + query
func Match(entries []Entry, query string) Result {
	query = Normalize(query)
	result := Result{Query: query}

	for _, e := range entries {
		if matches(e, query) {
			result.Matches = append(result.Matches, e)
		}
	}
	return result
}

// Normalize canonicalizes path separators and trims surrounding space and
// slashes from a user query.
func Normalize(query string) string {
	query = strings.TrimSpace(query)
	query = strings.ReplaceAll(query, "\\", "/")
	return strings.Trim(query, "/")
}

func matches(e Entry, query string) bool {
	if query == "" {
		return false
	}
	if e.Name == query {
		return true
	}
	if e.TargetPath != "" && Normalize(e.TargetPath) == query {
		return true
	}
	if lastSegment(e.Name) == query {
		return true
	}
	if strings.HasSuffix(e.Name, "/"+query) {
		return true
	}
	if e.TargetPath != "" && strings.HasSuffix(Normalize(e.TargetPath), "/"+query) {
		return true
	}
	return false
}

func lastSegment(name string) string {
	if i := strings.LastIndex(name, "/"); i >= 0 {
		return name[i+1:]
	}
	return name
}
