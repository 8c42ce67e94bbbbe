package main

import (
	"fmt"
	"io"
	"os"

	"github.com/outshift-lang/splc/pkg/asm"
	"github.com/outshift-lang/splc/pkg/ast"
	"github.com/outshift-lang/splc/pkg/diag"
	"github.com/outshift-lang/splc/pkg/lexer"
	"github.com/outshift-lang/splc/pkg/mach"
	"github.com/outshift-lang/splc/pkg/opt"
	"github.com/outshift-lang/splc/pkg/parser"
	"github.com/outshift-lang/splc/pkg/preproc"
	"github.com/outshift-lang/splc/pkg/regalloc"
	"github.com/outshift-lang/splc/pkg/semant"
	"github.com/outshift-lang/splc/pkg/ssa"
	"github.com/outshift-lang/splc/pkg/tac"
	"github.com/outshift-lang/splc/pkg/tacgen"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

// Debug flags for dumping intermediate representations, one per pipeline
// stage, named after the stage abbreviations in the data-flow line:
// typed AST -> TAC -> SSA -> optimized TAC -> machine IR -> assembly.
var (
	dAst  bool
	dSem  bool
	dTac  bool
	dSsa  bool
	dOpt  bool
	dMach bool
	dAsm  bool

	noPrelude  bool
	preludePath string
)

func main() {
	os.Exit(run())
}

func run() int {
	rootCmd := newRootCmd(os.Stdout, os.Stderr)
	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "splc [file]",
		Short:         "splc compiles a source file to x86-64 NASM assembly",
		Long: `splc is an ahead-of-time compiler for a small statically-typed
language with Hindley-Minor type inference, algebraic data types, pattern
matching, closures, and a GC'd tagged-pointer heap. It writes NASM text for
the input file to standard output.`,
		Version:       version,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return compile(args[0], out, errOut)
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	rootCmd.Flags().BoolVar(&dAst, "dast", false, "dump the parsed (untyped) AST and exit")
	rootCmd.Flags().BoolVar(&dSem, "dsem", false, "run semantic analysis, dump the annotated AST, and exit")
	rootCmd.Flags().BoolVar(&dTac, "dtac", false, "dump the TAC IR before SSA construction and exit")
	rootCmd.Flags().BoolVar(&dSsa, "dssa", false, "dump the TAC IR with phi nodes after SSA construction and exit")
	rootCmd.Flags().BoolVar(&dOpt, "dopt", false, "dump the optimized, destructed TAC IR and exit")
	rootCmd.Flags().BoolVar(&dMach, "dmach", false, "dump the selected, register-allocated machine IR and exit")
	rootCmd.Flags().BoolVar(&dAsm, "dasm", false, "dump the final NASM text (the default output) explicitly")

	rootCmd.Flags().BoolVar(&noPrelude, "noPrelude", false, "do not prepend the prelude source")
	rootCmd.Flags().StringVar(&preludePath, "prelude", "", "path to the prelude source file (overrides SPLC_PRELUDE)")

	return rootCmd
}

// compile runs the full pipeline over filename, writing whichever stage's
// dump flag is set, or the final NASM text by default, to out. Every
// invariant violation below the lexer/parser/semantic boundary is a
// programming error asserted via panic, recovered here at the pipeline
// boundary (spec.md §7's "invariants are asserted").
func compile(filename string, out, errOut io.Writer) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("splc: internal error: %v", r)
			fmt.Fprintln(errOut, err)
		}
	}()

	src, err := os.ReadFile(filename)
	if err != nil {
		return errors.Wrapf(err, "splc: reading %s", filename)
	}

	prelude, err := preproc.Load(&preproc.Options{NoPrelude: noPrelude, Path: preludePath})
	if err != nil {
		return err
	}
	source := preproc.Prepend(prelude, string(src))

	l := lexer.New(source)
	p := parser.New(l)
	prog := p.ParseProgram()

	if l.Errors.HasErrors() {
		return reportDiagnostics(errOut, filename, l.Errors.Items())
	}
	if p.Errors.HasErrors() {
		return reportDiagnostics(errOut, filename, p.Errors.Items())
	}

	if dAst {
		ast.Dump(out, prog)
		return nil
	}

	analyzer := semant.New()
	if semErr := analyzer.Run(prog); semErr != nil {
		fmt.Fprintf(errOut, "%s:%v\n", filename, semErr)
		return semErr
	}

	if dSem {
		ast.Dump(out, prog)
		return nil
	}

	ctx := tacgen.Generate(prog)

	if dTac {
		tac.Dump(out, ctx)
		return nil
	}

	ssa.TransformProgram(ctx)

	if dSsa {
		tac.Dump(out, ctx)
		return nil
	}

	opt.RunProgram(ctx)
	ssa.DestructProgram(ctx)

	if dOpt {
		tac.Dump(out, ctx)
		return nil
	}

	mc := mach.Select(ctx)
	regalloc.RunProgram(mc)

	if dMach {
		mach.Dump(out, mc)
		return nil
	}

	printer := asm.NewPrinter(out)
	printer.PrintProgram(mc)
	return nil
}

func reportDiagnostics(errOut io.Writer, filename string, items []*diag.Diagnostic) error {
	for _, d := range items {
		fmt.Fprintf(errOut, "%s:%s\n", filename, d.Error())
	}
	return fmt.Errorf("splc: compilation failed with %d error(s)", len(items))
}
