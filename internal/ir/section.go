package ir

import "strings"

// SectionKind is one of the four standard sections spec.md §1/§6 name.
type SectionKind int

const (
	Text SectionKind = iota
	BSS
	Rodata
	Data
)

func (k SectionKind) directive() string {
	switch k {
	case Text:
		return "section .text"
	case BSS:
		return "section .bss"
	case Rodata:
		return "section .rodata"
	default:
		return "section .data"
	}
}

// Section holds one section's ordered instruction stream (spec.md §3).
type Section struct {
	Kind  SectionKind
	Instr []Instruction
}

// Add appends an instruction.
func (s *Section) Add(i Instruction) { s.Instr = append(s.Instr, i) }

// Render concatenates the section's directive header and every
// instruction's rendered line, one per line.
func (s *Section) Render() string {
	if len(s.Instr) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(s.Kind.directive())
	sb.WriteByte('\n')
	for _, in := range s.Instr {
		sb.WriteString(in.Render())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// NewSections returns the four standard sections in the fixed order
// text/bss/rodata/data (spec.md §6).
func NewSections() []Section {
	return []Section{{Kind: Text}, {Kind: BSS}, {Kind: Rodata}, {Kind: Data}}
}
