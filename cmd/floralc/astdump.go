package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/euppal/floralc/internal/ast"
)

// dumpAST writes an indented outline of file's top-level declarations, for
// the `--emit-ast` flag (spec.md §6 "emit AST info"). It names each
// declaration and its kind rather than attempting a full pretty-printer -
// enough to confirm parsing shape without reproducing the source.
func dumpAST(w io.Writer, file *ast.File) {
	fmt.Fprintf(w, "file %s (%d decls)\n", file.Path, len(file.Decls))
	for _, d := range file.Decls {
		dumpDecl(w, d, 1)
	}
}

func dumpDecl(w io.Writer, d ast.Decl, depth int) {
	ind := strings.Repeat("  ", depth)
	switch n := d.(type) {
	case *ast.FuncDecl:
		kind := "func"
		if n.IsCtor {
			kind = "ctor"
		}
		fmt.Fprintf(w, "%s%s %s (%d params, forward=%v)\n", ind, kind, n.Name, len(n.Params), n.Forward)
	case *ast.GlobalDecl:
		fmt.Fprintf(w, "%sglobal %s (forward=%v)\n", ind, n.Name, n.Forward)
	case *ast.StructDecl:
		fmt.Fprintf(w, "%sstruct %s (%d members, %d funcs, %d ctors)\n", ind, n.Name, len(n.Members), len(n.Funcs), len(n.Ctors))
		for _, f := range n.Funcs {
			dumpDecl(w, f, depth+1)
		}
		for _, c := range n.Ctors {
			dumpDecl(w, c, depth+1)
		}
	case *ast.TypeAliasDecl:
		fmt.Fprintf(w, "%stype %s\n", ind, n.Name)
	case *ast.NamespaceDecl:
		fmt.Fprintf(w, "%snamespace %s (%d decls)\n", ind, n.Name, len(n.Decls))
		for _, inner := range n.Decls {
			dumpDecl(w, inner, depth+1)
		}
	default:
		fmt.Fprintf(w, "%s%T\n", ind, n)
	}
}
