// Package fileset maps byte offsets in expanded source back to the file
// that originally contributed them, so every later pass can report a
// user-visible path instead of an offset into the macro-expanded buffer.
package fileset

import "strings"

// Range is one contiguous span of the expanded source contributed by a
// single originating file.
type Range struct {
	Start int
	End   int
	File  string
}

// Map is an ordered sequence of Ranges covering [0, total expanded length).
type Map struct {
	ranges []Range
}

// New returns an empty Map.
func New() *Map {
	return &Map{}
}

// Open appends a new range starting at start for file, leaving End unset
// until the matching Close call. Open/Close pairs nest with #include.
func (m *Map) Open(start int, file string) {
	m.ranges = append(m.ranges, Range{Start: start, End: -1, File: file})
}

// Close sets the End of the most recently opened range that has no End yet.
func (m *Map) Close(end int) {
	for i := len(m.ranges) - 1; i >= 0; i-- {
		if m.ranges[i].End == -1 {
			m.ranges[i].End = end
			return
		}
	}
}

// Add records a fully-formed range directly (used when splicing an
// included file's already-resolved map into the caller's).
func (m *Map) Add(start, end int, file string) {
	m.ranges = append(m.ranges, Range{Start: start, End: end, File: file})
}

// File returns the originating filename for a byte offset, or "" if the
// offset falls outside every recorded range.
func (m *Map) File(offset int) string {
	for i := len(m.ranges) - 1; i >= 0; i-- {
		r := m.ranges[i]
		end := r.End
		if end == -1 {
			end = offset + 1
		}
		if offset >= r.Start && offset < end {
			return r.File
		}
	}
	return ""
}

// Ranges exposes the recorded ranges in insertion order.
func (m *Map) Ranges() []Range {
	return m.ranges
}

// LineCol computes a 1-based line and column for an offset into source.
// Column counts bytes since the preceding newline (or start of source).
func LineCol(source string, offset int) (line, col int) {
	if offset > len(source) {
		offset = len(source)
	}
	prefix := source[:offset]
	line = strings.Count(prefix, "\n") + 1
	if idx := strings.LastIndexByte(prefix, '\n'); idx >= 0 {
		col = offset - idx
	} else {
		col = offset + 1
	}
	return line, col
}
