package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestVersion(t *testing.T) {
	if version == "" {
		t.Error("version should not be empty")
	}
}

func TestDebugFlagsExist(t *testing.T) {
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)

	expectedFlags := []string{"dast", "dsem", "dtac", "dssa", "dopt", "dmach", "dasm", "noPrelude", "prelude"}
	for _, flagName := range expectedFlags {
		if cmd.Flags().Lookup(flagName) == nil {
			t.Errorf("expected flag --%s to exist", flagName)
		}
	}
}

func writeSource(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.splc")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

func TestDAstFlagDumpsFunctionSignature(t *testing.T) {
	path := writeSource(t, `fn main() { print(1) }`)

	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs([]string{"--dast", "--noPrelude", path})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("expected no error for --dast, got %v (stderr: %s)", err, errOut.String())
	}

	output := out.String()
	if !strings.Contains(output, "func main()") {
		t.Errorf("expected output to contain %q, got %q", "func main()", output)
	}
}

func TestNoDebugFlagsProducesAssembly(t *testing.T) {
	path := writeSource(t, `fn main() { print(1) }`)

	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs([]string{"--noPrelude", path})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("expected no error, got %v (stderr: %s)", err, errOut.String())
	}

	output := out.String()
	if !strings.Contains(output, "bits 64") {
		t.Errorf("expected NASM output to contain %q, got %q", "bits 64", output)
	}
	if !strings.Contains(output, "global splmain") {
		t.Errorf("expected NASM output to declare splmain, got %q", output)
	}
}

func TestSyntaxErrorExitsNonZero(t *testing.T) {
	path := writeSource(t, `fn main() { print(1 + }`)

	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs([]string{"--noPrelude", path})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected an error for a syntax error, got nil")
	}

	if !strings.Contains(errOut.String(), "syntax error") {
		t.Errorf("expected stderr to mention a syntax error, got %q", errOut.String())
	}
}

func TestSemanticErrorExitsNonZero(t *testing.T) {
	path := writeSource(t, `fn main() { print(undefinedVariable) }`)

	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs([]string{"--noPrelude", path})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected an error for an undefined variable, got nil")
	}
}

func TestMissingFileExitsNonZero(t *testing.T) {
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs([]string{"--noPrelude", filepath.Join(t.TempDir(), "missing.splc")})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected an error for a missing source file, got nil")
	}
}

func TestNoPreludeSuppressesLookup(t *testing.T) {
	path := writeSource(t, `fn main() { print(1) }`)
	t.Setenv("SPLC_PRELUDE", filepath.Join(t.TempDir(), "does-not-exist.splc"))

	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs([]string{"--noPrelude", "--dast", path})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("expected --noPrelude to skip SPLC_PRELUDE, got %v (stderr: %s)", err, errOut.String())
	}
}

func TestRunReturnsExitCode(t *testing.T) {
	path := writeSource(t, `fn main() { print(1) }`)
	os.Args = []string{"splc", "--noPrelude", path}
	if code := run(); code != 0 {
		t.Errorf("expected exit code 0, got %d", code)
	}

	os.Args = []string{"splc", "--noPrelude", filepath.Join(t.TempDir(), "missing.splc")}
	if code := run(); code != 1 {
		t.Errorf("expected exit code 1 for a missing file, got %d", code)
	}
}
