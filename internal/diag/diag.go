// Package diag implements the closed error-domain taxonomy of spec.md §7:
// every pass appends to an ordered Bag instead of failing outright, and the
// driver (internal/compiler) decides whether to run the next pass.
package diag

import (
	"fmt"
	"sort"
	"strings"
)

// Domain is one of the closed set of error categories spec.md §7 names.
type Domain string

const (
	Preprocessing Domain = "preprocessing"
	Lex           Domain = "lex"
	Parse         Domain = "parse"
	Resolution    Domain = "resolution"
	Type          Domain = "type"
	General       Domain = "general rejection"
	Warning       Domain = "warning"
)

// Region is the text span a Diagnostic points at.
type Region struct {
	File      string
	Start     int
	Length    int
	StartLine int
	EndLine   int
}

func (r Region) String() string {
	if r.File == "" {
		return "<unknown>"
	}
	if r.StartLine == r.EndLine {
		return fmt.Sprintf("%s:%d", r.File, r.StartLine)
	}
	return fmt.Sprintf("%s:%d-%d", r.File, r.StartLine, r.EndLine)
}

// Diagnostic is one error or warning, carrying everything needed to print a
// useful message and nothing more.
type Diagnostic struct {
	Domain         Domain
	Message        string
	Region         Region
	Pos            int
	Length         int
	FixHint        string
	OverriddenPath string
	IsWarning      bool
}

func (d Diagnostic) String() string {
	kind := "error"
	if d.IsWarning {
		kind = "warning"
	}
	path := d.Region.File
	if d.OverriddenPath != "" {
		path = d.OverriddenPath
	}
	msg := fmt.Sprintf("%s:%d: %s [%s]: %s", path, d.Region.StartLine, kind, d.Domain, d.Message)
	if d.FixHint != "" {
		msg += " (" + d.FixHint + ")"
	}
	return msg
}

// Bag accumulates diagnostics across a pass. It never panics on Add; it is
// the caller's responsibility to stop extending output once HasErrors is
// true, per the propagation policy in spec.md §7.
type Bag struct {
	items []Diagnostic
}

// NewBag returns an empty Bag.
func NewBag() *Bag { return &Bag{} }

// Add appends a diagnostic (error or warning).
func (b *Bag) Add(d Diagnostic) { b.items = append(b.items, d) }

// Errorf appends an error-domain diagnostic built from a format string.
func (b *Bag) Errorf(domain Domain, region Region, format string, args ...any) {
	b.Add(Diagnostic{Domain: domain, Message: fmt.Sprintf(format, args...), Region: region})
}

// Warnf appends a warning.
func (b *Bag) Warnf(region Region, format string, args ...any) {
	b.Add(Diagnostic{Domain: Warning, Message: fmt.Sprintf(format, args...), Region: region, IsWarning: true})
}

// Merge appends every diagnostic from other into b, preserving order.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	b.items = append(b.items, other.items...)
}

// HasErrors reports whether any non-warning diagnostic was recorded.
func (b *Bag) HasErrors() bool {
	for _, d := range b.items {
		if !d.IsWarning {
			return true
		}
	}
	return false
}

// Items returns every diagnostic in insertion order.
func (b *Bag) Items() []Diagnostic { return b.items }

// Errors returns only the non-warning diagnostics.
func (b *Bag) Errors() []Diagnostic {
	var out []Diagnostic
	for _, d := range b.items {
		if !d.IsWarning {
			out = append(out, d)
		}
	}
	return out
}

// Warnings returns only the warning diagnostics.
func (b *Bag) Warnings() []Diagnostic {
	var out []Diagnostic
	for _, d := range b.items {
		if d.IsWarning {
			out = append(out, d)
		}
	}
	return out
}

// Suggest returns the candidate closest to name by Damerau-Levenshtein edit
// distance, for "did you mean" parse-error hints (spec.md §7), or "" if no
// candidate is within a reasonable distance (len(name)/2, minimum 2).
func Suggest(name string, candidates []string) string {
	best := ""
	bestDist := -1
	limit := len(name) / 2
	if limit < 2 {
		limit = 2
	}
	for _, c := range candidates {
		d := damerauLevenshtein(name, c)
		if bestDist == -1 || d < bestDist {
			bestDist = d
			best = c
		}
	}
	if bestDist >= 0 && bestDist <= limit {
		return best
	}
	return ""
}

// damerauLevenshtein computes the optimal-string-alignment edit distance
// (insertion, deletion, substitution, adjacent transposition).
func damerauLevenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	la, lb := len(ra), len(rb)
	d := make([][]int, la+1)
	for i := range d {
		d[i] = make([]int, lb+1)
		d[i][0] = i
	}
	for j := 0; j <= lb; j++ {
		d[0][j] = j
	}
	for i := 1; i <= la; i++ {
		for j := 1; j <= lb; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			del := d[i-1][j] + 1
			ins := d[i][j-1] + 1
			sub := d[i-1][j-1] + cost
			best := min3(del, ins, sub)
			if i > 1 && j > 1 && ra[i-1] == rb[j-2] && ra[i-2] == rb[j-1] {
				if t := d[i-2][j-2] + cost; t < best {
					best = t
				}
			}
			d[i][j] = best
		}
	}
	return d[la][lb]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

// Format renders every diagnostic, errors first, sorted by file then line,
// one per line.
func Format(b *Bag) string {
	items := append([]Diagnostic(nil), b.Items()...)
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].IsWarning != items[j].IsWarning {
			return !items[i].IsWarning
		}
		if items[i].Region.File != items[j].Region.File {
			return items[i].Region.File < items[j].Region.File
		}
		return items[i].Region.StartLine < items[j].Region.StartLine
	})
	var sb strings.Builder
	for _, d := range items {
		sb.WriteString(d.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
