package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

// E2EAsmTestSpec mirrors an end-to-end scenario from spec.md §8: a source
// program compiled with the default NASM output, asserting the emitted
// text contains every string in Expect.
type E2EAsmTestSpec struct {
	Name   string   `yaml:"name"`
	Input  string   `yaml:"input"`
	Expect []string `yaml:"expect"`
	Skip   bool     `yaml:"skip"`
}

func loadE2EAsmSpecs(t *testing.T, path string) []E2EAsmTestSpec {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	var specs []E2EAsmTestSpec
	if err := yaml.Unmarshal(data, &specs); err != nil {
		t.Fatalf("unmarshaling %s: %v", path, err)
	}
	return specs
}

func TestE2EAsmYAML(t *testing.T) {
	specs := loadE2EAsmSpecs(t, filepath.Join("testdata", "e2e.yaml"))
	for _, spec := range specs {
		spec := spec
		t.Run(spec.Name, func(t *testing.T) {
			if spec.Skip {
				t.Skip("marked skip in testdata/e2e.yaml")
			}

			dir := t.TempDir()
			path := filepath.Join(dir, "input.splc")
			if err := os.WriteFile(path, []byte(spec.Input), 0644); err != nil {
				t.Fatalf("writing input: %v", err)
			}

			var out, errOut bytes.Buffer
			cmd := newRootCmd(&out, &errOut)
			cmd.SetArgs([]string{"--noPrelude", path})
			if err := cmd.Execute(); err != nil {
				t.Fatalf("compiling %s: %v (stderr: %s)", spec.Name, err, errOut.String())
			}

			output := out.String()
			for _, want := range spec.Expect {
				if !strings.Contains(output, want) {
					t.Errorf("%s: expected NASM output to contain %q, got:\n%s", spec.Name, want, output)
				}
			}
		})
	}
}
