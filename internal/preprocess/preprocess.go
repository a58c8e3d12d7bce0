// Package preprocess implements Floral's macro language: #define/#undef,
// #ifdef/#ifndef/#endif, #include, and the inline #str/#line/#column/#file
// expansions, per spec.md §4.1. It never touches a filesystem directly -
// file I/O is an external collaborator supplied through the Includer
// interface, keeping the pass a pure function of (text, name, env).
package preprocess

import (
	"strings"

	"github.com/euppal/floralc/internal/diag"
	"github.com/euppal/floralc/internal/fileset"
)

// Macro is one #define'd entity: an optional single parameter name and its
// replacement body.
type Macro struct {
	HasParam bool
	Param    string
	Body     string
}

// Macros is the macro environment threaded through nested #include calls;
// definitions made inside an include persist in the caller (spec.md §4.1
// "Macros defined in includes persist").
type Macros map[string]Macro

// Clone returns an independent copy, so a nested #include's local additions
// to temporary parameter bindings never leak back into the caller except
// through real #define/#undef.
func (m Macros) Clone() Macros {
	out := make(Macros, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Includer resolves a #include path to source text and a canonical name.
// angled is true for `#include <path>` (resolved against a library root by
// the implementation), false for `#include "path"` (resolved verbatim).
type Includer interface {
	Resolve(path string, angled bool) (text string, name string, err error)
}

// NopIncluder rejects every #include with "unknown include path", for
// callers (tests, the REPL-less single-file case) that supply no library
// root.
type NopIncluder struct{}

func (NopIncluder) Resolve(path string, angled bool) (string, string, error) {
	return "", "", errUnknownInclude{path}
}

type errUnknownInclude struct{ path string }

func (e errUnknownInclude) Error() string { return "unknown include path: " + e.path }

type expander struct {
	out     strings.Builder
	fmap    *fileset.Map
	bag     *diag.Bag
	env     Macros
	inc     Includer
	accept  []bool // conditional-compilation stack; all must be true to emit
	curFile string
}

func (e *expander) accepting() bool {
	for _, a := range e.accept {
		if !a {
			return false
		}
	}
	return true
}

// Expand runs the full preprocessing pass over source (already read from
// filename by the caller) and returns the expanded text, the file
// resolution map over that expanded text, the updated macro environment,
// and any diagnostics.
func Expand(source, filename string, env Macros, inc Includer) (string, *fileset.Map, Macros, *diag.Bag) {
	if env == nil {
		env = Macros{}
	}
	if inc == nil {
		inc = NopIncluder{}
	}
	e := &expander{
		fmap:    fileset.New(),
		bag:     diag.NewBag(),
		env:     env.Clone(),
		inc:     inc,
		curFile: filename,
	}
	e.fmap.Open(0, filename)
	e.run(source, filename)
	e.fmap.Close(e.out.Len())
	return e.out.String(), e.fmap, e.env, e.bag
}

// run processes source line by line, handling directives and splicing
// #include output; non-directive lines go through inline macro expansion.
func (e *expander) run(source, filename string) {
	lines := splitKeepEnds(source)
	for li := 0; li < len(lines); li++ {
		line := lines[li]
		trimmed := strings.TrimLeft(strings.TrimRight(line, "\r\n"), " \t")
		if strings.HasPrefix(trimmed, "#") {
			e.directive(trimmed, filename)
			continue
		}
		if !e.accepting() {
			continue
		}
		expanded := e.expandInline(stripTrailingNewline(line))
		e.out.WriteString(expanded)
		if strings.HasSuffix(line, "\n") {
			e.out.WriteByte('\n')
		}
	}
	if len(e.accept) != 0 {
		e.bag.Errorf(diag.Preprocessing, diag.Region{File: filename}, "unterminated conditional")
	}
}

func splitKeepEnds(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			out = append(out, s[start:i+1])
			start = i + 1
		}
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}

func stripTrailingNewline(s string) string {
	return strings.TrimRight(s, "\r\n")
}

// directive dispatches one '#'-prefixed line.
func (e *expander) directive(line, filename string) {
	body := strings.TrimPrefix(line, "#")
	name, rest := splitIdent(body)
	switch name {
	case "define":
		e.doDefine(rest, filename)
	case "undef":
		id := strings.TrimSpace(rest)
		if id == "" {
			e.bag.Errorf(diag.Preprocessing, diag.Region{File: filename}, "expected identifier after directive")
			return
		}
		delete(e.env, id)
	case "ifdef":
		id := strings.TrimSpace(rest)
		_, ok := e.env[id]
		e.accept = append(e.accept, ok)
	case "ifndef":
		id := strings.TrimSpace(rest)
		_, ok := e.env[id]
		e.accept = append(e.accept, !ok)
	case "endif":
		if len(e.accept) == 0 {
			e.bag.Errorf(diag.Preprocessing, diag.Region{File: filename}, "unterminated conditional")
			return
		}
		e.accept = e.accept[:len(e.accept)-1]
	case "include":
		if !e.accepting() {
			return
		}
		e.doInclude(rest, filename)
	default:
		e.bag.Errorf(diag.Preprocessing, diag.Region{File: filename}, "unexpected character after include")
	}
}

func splitIdent(s string) (ident, rest string) {
	i := 0
	for i < len(s) && isIdentChar(s[i], i == 0) {
		i++
	}
	return s[:i], s[i:]
}

func isIdentChar(c byte, first bool) bool {
	if c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
		return true
	}
	if !first && c >= '0' && c <= '9' {
		return true
	}
	return false
}

// doDefine parses `NAME[(ARG)] VALUE`.
func (e *expander) doDefine(rest, filename string) {
	rest = strings.TrimLeft(rest, " \t")
	name, after := splitIdent(rest)
	if name == "" {
		e.bag.Errorf(diag.Preprocessing, diag.Region{File: filename}, "expected identifier after directive")
		return
	}
	m := Macro{}
	if strings.HasPrefix(after, "(") {
		end := strings.IndexByte(after, ')')
		if end < 0 {
			e.bag.Errorf(diag.Preprocessing, diag.Region{File: filename}, "expected newline after directive")
			return
		}
		m.HasParam = true
		m.Param = strings.TrimSpace(after[1:end])
		after = after[end+1:]
	}
	m.Body = strings.TrimSpace(after)
	if !e.accepting() {
		return
	}
	e.env[name] = m
}

func (e *expander) doInclude(rest, filename string) {
	rest = strings.TrimSpace(rest)
	if len(rest) < 2 {
		e.bag.Errorf(diag.Preprocessing, diag.Region{File: filename}, "unexpected character after include")
		return
	}
	var angled bool
	var path string
	if rest[0] == '<' {
		end := strings.IndexByte(rest, '>')
		if end < 0 {
			e.bag.Errorf(diag.Preprocessing, diag.Region{File: filename}, "unexpected character after include")
			return
		}
		angled = true
		path = rest[1:end]
	} else if rest[0] == '"' {
		end := strings.IndexByte(rest[1:], '"')
		if end < 0 {
			e.bag.Errorf(diag.Preprocessing, diag.Region{File: filename}, "unexpected character after include")
			return
		}
		angled = false
		path = rest[1 : end+1]
	} else {
		e.bag.Errorf(diag.Preprocessing, diag.Region{File: filename}, "unexpected character after include")
		return
	}
	text, resolved, err := e.inc.Resolve(path, angled)
	if err != nil {
		e.bag.Errorf(diag.Preprocessing, diag.Region{File: filename}, "unknown include path: %s", path)
		return
	}
	start := e.out.Len()
	e.fmap.Close(start)
	prevFile := e.curFile
	e.curFile = resolved
	e.fmap.Open(start, resolved)
	e.run(text, resolved)
	e.fmap.Close(e.out.Len())
	e.curFile = prevFile
	e.fmap.Open(e.out.Len(), filename)
}

// expandInline macro-expands one already-dequeued source line, including
// the #str/#line/#column/#file pseudo-macros, splicing and re-scanning as
// it goes (single-pass, identifier-triggered).
func (e *expander) expandInline(line string) string {
	var sb strings.Builder
	i := 0
	hashed := false
	for i < len(line) {
		c := line[i]
		if c == '#' && i+1 < len(line) && isIdentChar(line[i+1], true) {
			hashed = true
			i++
			continue
		}
		if isIdentChar(c, true) {
			j := i
			for j < len(line) && isIdentChar(line[j], false) {
				j++
			}
			name := line[i:j]
			rest := line[j:]
			key := ""
			if hashed {
				key = name
			}
			hashed = false
			switch key {
			case "str":
				if strings.HasPrefix(rest, "(") {
					end := matchParen(rest)
					if end > 0 {
						text := rest[1:end]
						sb.WriteString("\"")
						sb.WriteString(e.expandInline(text))
						sb.WriteString("\"")
						i = j + end + 1
						continue
					}
				}
			case "line":
				ln, _ := fileset.LineCol(e.out.String()+sb.String(), e.out.Len()+sb.Len())
				sb.WriteString(itoa(ln))
				i = j
				continue
			case "column":
				_, col := fileset.LineCol(e.out.String()+sb.String(), e.out.Len()+sb.Len())
				sb.WriteString(itoa(col))
				i = j
				continue
			case "file":
				sb.WriteString("\"" + e.curFile + "\"")
				i = j
				continue
			}
			if key != "" {
				sb.WriteByte('#')
			}
			if mac, ok := e.env[name]; ok {
				if mac.HasParam && strings.HasPrefix(rest, "(") {
					end := matchParen(rest)
					if end > 0 {
						arg := e.expandInline(rest[1:end])
						tmpEnv := e.env
						e.env = e.env.Clone()
						e.env[mac.Param] = Macro{Body: arg}
						spliced := e.expandInline(mac.Body)
						e.env = tmpEnv
						sb.WriteString(spliced)
						i = j + end + 1
						continue
					}
				}
				if !mac.HasParam {
					sb.WriteString(e.expandInline(mac.Body))
					i = j
					continue
				}
			}
			sb.WriteString(name)
			i = j
			continue
		}
		sb.WriteByte(c)
		i++
	}
	return sb.String()
}

// matchParen returns the index (relative to s) of the ')' matching the '('
// at s[0], honoring nested parens, or -1.
func matchParen(s string) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
