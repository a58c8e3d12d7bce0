package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/euppal/floralc/internal/compiler"
	"github.com/euppal/floralc/internal/diag"
	"github.com/euppal/floralc/internal/preprocess"
)

// buildFlags collects every `floralc build` flag, matching the
// command-line surface of spec.md §6 one field at a time.
type buildFlags struct {
	output        string
	optLevel      int
	stl           bool
	emitAST       bool
	echoSource    bool
	dumpTypeTrace bool
	stopAfterAsm  bool
	open          bool
	verbose       bool
	printNotRun   bool
	stackGuard    bool
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "floralc",
		Short:         "floralc compiles Floral source to x86-64 NASM assembly",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newBuildCmd())
	return root
}

func newBuildCmd() *cobra.Command {
	f := &buildFlags{}
	cmd := &cobra.Command{
		Use:   "build <files...>",
		Short: "compile one or more Floral source files to assembly",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, args, f)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&f.output, "output", "o", "", "output file path (single-input only; default derives from the source name)")
	flags.IntVarP(&f.optLevel, "opt", "O", 0, "optimization level (0-3)")
	flags.BoolVar(&f.stl, "stl", false, "link the Floral standard library")
	flags.BoolVar(&f.emitAST, "emit-ast", false, "print a parsed-AST outline to stderr")
	flags.BoolVar(&f.echoSource, "echo-source", false, "print the source file's text, before macro expansion, to stderr")
	flags.BoolVar(&f.dumpTypeTrace, "dump-type-trace", false, "print every expression's resolved type to stderr")
	flags.BoolVar(&f.stopAfterAsm, "stop-after-assembly", false, "write .nasm output and stop before invoking nasm/ld")
	flags.BoolVar(&f.open, "open", false, "open the generated .nasm file in $EDITOR when done")
	flags.BoolVarP(&f.verbose, "verbose", "v", false, "print each pipeline stage as it runs")
	flags.BoolVar(&f.printNotRun, "print-not-run", false, "print the assembler/linker commands instead of running them")
	flags.BoolVar(&f.stackGuard, "stack-guard", false, "emit stack-canary prologue/epilogue guards")
	return cmd
}

func runBuild(cmd *cobra.Command, args []string, f *buildFlags) error {
	if f.output != "" && len(args) > 1 {
		return fmt.Errorf("-o/--output may only be given with a single input file")
	}

	macros := preprocess.Macros{}
	if f.stl {
		macros["STL"] = preprocess.Macro{Body: "1"}
	}

	for _, path := range args {
		if err := buildOne(cmd, path, f, macros); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

func buildOne(cmd *cobra.Command, path string, f *buildFlags, macros preprocess.Macros) error {
	if f.verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "floralc: compiling %s\n", path)
	}

	source, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if f.echoSource {
		fmt.Fprintln(cmd.ErrOrStderr(), string(source))
	}

	opts := compiler.Options{
		OptLevel:      f.optLevel,
		StackGuard:    f.stackGuard,
		DumpTypeTrace: f.dumpTypeTrace,
		Macros:        macros,
		Includer:      fileIncluder{Dir: filepath.Dir(path), Root: stlRoot(f.stl)},
	}

	res, err := compiler.Compile(string(source), path, opts)
	if err != nil {
		return fmt.Errorf("internal compiler error: %w", err)
	}

	if f.emitAST && res.AST != nil {
		dumpAST(cmd.ErrOrStderr(), res.AST)
	}
	if f.dumpTypeTrace {
		for _, t := range res.Trace {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s : %s\n", t.Region.String(), t.Expr, t.Type)
		}
	}

	if res.Bag != nil && len(res.Bag.Items()) > 0 {
		fmt.Fprint(cmd.ErrOrStderr(), diag.Format(res.Bag))
	}
	if res.Bag != nil && res.Bag.HasErrors() {
		return fmt.Errorf("compilation failed")
	}

	outPath := f.output
	if outPath == "" {
		outPath = strings.TrimSuffix(path, filepath.Ext(path)) + ".nasm"
	}
	if err := os.WriteFile(outPath, []byte(res.Assembly), 0o644); err != nil {
		return err
	}
	if f.verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "floralc: wrote %s\n", outPath)
	}

	if f.open {
		if err := openInEditor(cmd, outPath, f.printNotRun); err != nil {
			return err
		}
	}
	if f.stopAfterAsm {
		return nil
	}
	return assembleAndLink(cmd, outPath, f)
}

// stlRoot resolves the Floral standard library's include root. Floral
// ships no bundled stl headers in this tree, so enabling --stl only
// defines the STL macro; a real install would point this at its library
// directory.
func stlRoot(enabled bool) string {
	if !enabled {
		return ""
	}
	return os.Getenv("FLORAL_STL_ROOT")
}

func openInEditor(cmd *cobra.Command, path string, printOnly bool) error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}
	return runOrPrint(cmd, printOnly, editor, path)
}

// assembleAndLink shells out to nasm and the system linker the way the
// external driver spec.md §6 describes delegates to them: floralc itself
// only ever produces assembly text.
func assembleAndLink(cmd *cobra.Command, nasmPath string, f *buildFlags) error {
	objPath := strings.TrimSuffix(nasmPath, filepath.Ext(nasmPath)) + ".o"
	binPath := strings.TrimSuffix(nasmPath, filepath.Ext(nasmPath))

	if err := runOrPrint(cmd, f.printNotRun, "nasm", "-f", "macho64", "-o", objPath, nasmPath); err != nil {
		return err
	}
	linkArgs := []string{"-o", binPath, objPath}
	if f.stl {
		linkArgs = append(linkArgs, "-lc")
	}
	return runOrPrint(cmd, f.printNotRun, "ld", linkArgs...)
}

func runOrPrint(cmd *cobra.Command, printOnly bool, name string, args ...string) error {
	if printOnly {
		fmt.Fprintln(cmd.OutOrStdout(), name, strings.Join(args, " "))
		return nil
	}
	c := exec.Command(name, args...)
	c.Stdout = cmd.OutOrStdout()
	c.Stderr = cmd.ErrOrStderr()
	return c.Run()
}
