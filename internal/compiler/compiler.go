// Package compiler wires the full floralc pipeline: preprocess, lex,
// parse, analyze, generate, optimize, and print (spec.md §5 "Pipeline
// stages"). Each stage's diagnostics are merged into one Bag, and the
// pipeline stops before running a later stage once an earlier one has
// reported an error: a stage never receives input a prior stage already
// flagged as invalid (spec.md §7 "Error handling discipline").
package compiler

import (
	"github.com/euppal/floralc/internal/ast"
	"github.com/euppal/floralc/internal/asmprint"
	"github.com/euppal/floralc/internal/codegen"
	"github.com/euppal/floralc/internal/diag"
	"github.com/euppal/floralc/internal/ice"
	"github.com/euppal/floralc/internal/lexer"
	"github.com/euppal/floralc/internal/parser"
	"github.com/euppal/floralc/internal/peephole"
	"github.com/euppal/floralc/internal/preprocess"
	"github.com/euppal/floralc/internal/sema"
	"github.com/euppal/floralc/internal/types"
)

// Options configures one Compile call: every field a cmd/floralc flag
// reaches down into below the CLI layer (spec.md §6).
type Options struct {
	OptLevel      int
	StackGuard    bool
	DumpTypeTrace bool
	Macros        preprocess.Macros
	Includer      preprocess.Includer
}

// Result is everything a caller might want back from one compilation.
type Result struct {
	Assembly string
	Bag      *diag.Bag
	Trace    []sema.TraceEntry
	// AST is the parsed tree, set as soon as parsing succeeds regardless
	// of later-stage errors, for the `--emit-ast` flag (spec.md §6).
	AST *ast.File
}

// Compile runs every pipeline stage over source in order, stopping as
// soon as a stage's diagnostics include an error. A panic from any stage
// (internal compiler error, spec.md §9) is recovered here and surfaced as
// err rather than crashing the process.
func Compile(source, filename string, opts Options) (res Result, err error) {
	defer ice.Recover(&err)

	bag := diag.NewBag()
	env := opts.Macros
	if env == nil {
		env = preprocess.Macros{}
	}
	inc := opts.Includer
	if inc == nil {
		inc = preprocess.NopIncluder{}
	}

	expanded, fmap, _, ppBag := preprocess.Expand(source, filename, env, inc)
	bag.Merge(ppBag)
	if bag.HasErrors() {
		return Result{Bag: bag}, nil
	}

	lx := lexer.New(expanded, fmap)
	toks := lx.Tokenize()
	bag.Merge(lx.Diagnostics())
	if bag.HasErrors() {
		return Result{Bag: bag}, nil
	}

	file, parseBag := parser.Parse(toks)
	bag.Merge(parseBag)
	if bag.HasErrors() {
		return Result{Bag: bag, AST: file}, nil
	}

	reg := types.NewRegistry()
	semaOpts := sema.Options{DumpTypeTrace: opts.DumpTypeTrace}
	semaBag, trace := sema.Analyze(file, reg, semaOpts)
	bag.Merge(semaBag)
	if bag.HasErrors() {
		return Result{Bag: bag, Trace: trace, AST: file}, nil
	}

	gen := codegen.New(reg, codegen.Options{OptLevel: opts.OptLevel, StackGuard: opts.StackGuard})
	sections, genBag := gen.Generate(file)
	bag.Merge(genBag)
	if bag.HasErrors() {
		return Result{Bag: bag, Trace: trace, AST: file}, nil
	}

	sections = peephole.Optimize(sections, opts.OptLevel)
	return Result{Assembly: asmprint.Print(sections), Bag: bag, Trace: trace, AST: file}, nil
}
