// Package asmprint renders the four-section instruction IR internal/ir
// defines into the NASM-syntax assembly text spec.md §6 describes.
package asmprint

import "github.com/euppal/floralc/internal/ir"

// Print concatenates sections in their fixed text/bss/rodata/data order,
// one blank line apart, skipping any section with nothing in it.
func Print(sections []ir.Section) string {
	out := ""
	wroteAny := false
	for _, s := range sections {
		rendered := s.Render()
		if rendered == "" {
			continue
		}
		if wroteAny {
			out += "\n"
		}
		out += rendered
		wroteAny = true
	}
	return out
}
