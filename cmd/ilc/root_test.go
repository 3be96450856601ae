package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultOutputPathStripsTrailingTxtOnly(t *testing.T) {
	cases := map[string]string{
		"program.il.txt": "program.il.ll",
		"program.il":      "program.il.ll",
		"dir/program.txt": "program.ll",
	}
	for in, want := range cases {
		got := defaultOutputPath(in)
		if got != want {
			t.Errorf("defaultOutputPath(%q) = %q, want %q", in, got, want)
		}
	}
}

// TestDiagnosticsExitNonZero confirms a source file that produces compile
// diagnostics still fails the CLI: runCompile reports them to stderr,
// writes no output file, and returns a non-nil error so the process
// exits 1, even though the underlying compile itself reported none.
func TestDiagnosticsExitNonZero(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "bad.il")
	if err := os.WriteFile(src, []byte("let a = b+1\n"), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	cmd := rootCmd
	cmd.SetArgs([]string{src})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected a non-nil error for a diagnostics-only run")
	}

	if _, err := os.Stat(defaultOutputPath(src)); !os.IsNotExist(err) {
		t.Fatalf("expected no output file to be written, stat err = %v", err)
	}
}
