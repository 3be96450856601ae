package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harashimahashi/ilc/internal/compiler"
)

var outPath string

// errDiagnosed is returned by runCompile once diagnostics have already
// been written to stderr: its empty message keeps main from printing
// anything a second time, while the non-nil error still drives the exit
// code to 1.
var errDiagnosed = errors.New("")

var rootCmd = &cobra.Command{
	Use:           "ilc [file]",
	Short:         "ilc compiles an IL source file to textual LLVM IR",
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runCompile,
}

func init() {
	rootCmd.Flags().StringVarP(&outPath, "output", "o", "", "output path (default: input name with .ll suffix)")
	rootCmd.SetVersionTemplate("ilc {{.Version}}\n")
}

// Execute runs the root command and returns its error, if any, for main
// to report and translate into an exit code.
func Execute() error {
	return rootCmd.Execute()
}

func runCompile(cmd *cobra.Command, args []string) error {
	path := args[0]
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("ilc: %w", err)
	}

	output, dg, err := compiler.Compile(string(src), filepath.Base(path))
	if err != nil {
		return fmt.Errorf("ilc: %w", err)
	}

	if dg.Count() > 0 {
		// compiler.Compile itself reports no error for a run that only
		// produced diagnostics, but the CLI still wrote no output file, so
		// it must signal failure to the shell regardless.
		for _, line := range compiler.Diagnostics(dg) {
			fmt.Fprintln(os.Stderr, line)
		}
		return errDiagnosed
	}

	dest := outPath
	if dest == "" {
		dest = defaultOutputPath(path)
	}
	if err := os.WriteFile(dest, []byte(output), 0o644); err != nil {
		return fmt.Errorf("ilc: %w", err)
	}
	return nil
}

// defaultOutputPath derives the .ll sibling of path: a trailing .txt is
// stripped before the .ll suffix is appended, any other extension is
// kept as part of the base name.
func defaultOutputPath(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, ".txt")
	return base + ".ll"
}
