package preproc

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadNoPreludeOption(t *testing.T) {
	text, err := Load(&Options{NoPrelude: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "" {
		t.Errorf("expected empty prelude, got %q", text)
	}
}

func TestLoadExplicitPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prelude.splc")
	if err := os.WriteFile(path, []byte("fn id(x) { x }"), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	text, err := Load(&Options{Path: path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "fn id(x) { x }" {
		t.Errorf("got %q", text)
	}
}

func TestLoadExplicitPathMissingFails(t *testing.T) {
	_, err := Load(&Options{Path: "/no/such/prelude.splc"})
	if err == nil {
		t.Fatal("expected an error for a missing explicit prelude path")
	}
}

func TestLoadEnvVar(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "env-prelude.splc")
	if err := os.WriteFile(path, []byte("data Unit { Unit() }"), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	t.Setenv(PreludeEnvVar, path)
	text, err := Load(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "data Unit { Unit() }" {
		t.Errorf("got %q", text)
	}
}

func TestPrependJoinsWithNewline(t *testing.T) {
	got := Prepend("data Unit { Unit() }", "fn main() { 0 }")
	want := "data Unit { Unit() }\nfn main() { 0 }"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestPrependEmptyPreludeIsIdentity(t *testing.T) {
	got := Prepend("", "fn main() { 0 }")
	if got != "fn main() { 0 }" {
		t.Errorf("got %q", got)
	}
}
