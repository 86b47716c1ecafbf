package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeSource(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestVersion(t *testing.T) {
	if version == "" {
		t.Error("version should not be empty")
	}
	out, _, err := execute(t, "--version")
	if err != nil {
		t.Fatalf("--version returned %v", err)
	}
	if !strings.Contains(out, version) {
		t.Errorf("expected version in output, got %q", out)
	}
}

func TestFlagsExist(t *testing.T) {
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)

	expected := map[string]string{
		"out": "o", "verbose": "V", "prettify": "p", "prettify-only": "P",
		"replace": "r", "space": "S", "add-function": "f", "identifiers": "i",
		"locals": "l", "docs": "d", "structure": "s", "strict-labels": "", "config": "",
	}
	for name, short := range expected {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			t.Errorf("expected flag --%s to exist", name)
			continue
		}
		if flag.Shorthand != short {
			t.Errorf("--%s shorthand = %q, want %q", name, flag.Shorthand, short)
		}
	}
}

func TestNoInputFile(t *testing.T) {
	_, errOut, err := execute(t)
	if !errors.Is(err, ErrNoInput) {
		t.Errorf("expected ErrNoInput, got %v", err)
	}
	if !strings.Contains(errOut, "no input file specified") {
		t.Errorf("expected error message, got %q", errOut)
	}
	if !strings.Contains(errOut, "Usage:") {
		t.Errorf("expected usage on stderr, got %q", errOut)
	}
}

func TestMissingInputFile(t *testing.T) {
	_, errOut, err := execute(t, filepath.Join(t.TempDir(), "missing.s"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !strings.Contains(errOut, "mppd: error:") {
		t.Errorf("expected error message, got %q", errOut)
	}
}

func TestTooManyArgs(t *testing.T) {
	if _, _, err := execute(t, "a.s", "b.s"); err == nil {
		t.Error("expected error for two input files")
	}
}

const countSource = `
count:
    li      %max.s, 10                  # int max = 10;
count_i_init:
    li      %i, 0                       # int i = 0;
count_i_cond:
    bge     %i, %max, count_i_break     # for (i < max)
    # ...
count_i_step:
    addi    %i, %i, 1                   # i++;
count_i_break:
    jr      $ra                         # return;
`

func TestDefaultOutputPath(t *testing.T) {
	in := writeSource(t, "count.s", countSource)
	out, _, err := execute(t, in, "-f", "count")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	outPath := strings.TrimSuffix(in, ".s") + ".out.s"
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("expected output at %s: %v", outPath, err)
	}
	if !strings.Contains(string(data), "li      $s0, 10") {
		t.Errorf("unexpected output:\n%s", data)
	}
	if !strings.Contains(out, "Output written to '"+outPath+"'") {
		t.Errorf("stdout = %q", out)
	}
}

func TestSingleArgFunctionFlag(t *testing.T) {
	// "-f count" passed as one argument yields the name " count".
	in := writeSource(t, "count.s", countSource)
	outPath := filepath.Join(filepath.Dir(in), "o.s")
	if _, _, err := execute(t, in, "-f count", "-o", outPath); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, _ := os.ReadFile(outPath)
	if strings.Contains(string(data), "%i") {
		t.Errorf("count was not processed:\n%s", data)
	}
}

func TestUnderscoreFlagNames(t *testing.T) {
	in := writeSource(t, "count.s", countSource)
	outPath := filepath.Join(filepath.Dir(in), "o.s")
	if _, _, err := execute(t, in, "--add_function", "count", "--out", outPath); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, _ := os.ReadFile(outPath)
	if strings.Contains(string(data), "%max") {
		t.Errorf("count was not processed:\n%s", data)
	}
}

func TestIdentifiersReport(t *testing.T) {
	in := writeSource(t, "count.s", countSource)
	out, _, err := execute(t, in, "-f", "count", "-i", "-l")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{
		"Identifiers %max %i",
		"Registers   $s0 $t0",
		"Sorted      $s0 $t0",
		"Clobbers:   $t0",
		"'i' in $t0",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output, got:\n%s", want, out)
		}
	}
}

func TestDiagnosticsOnStderr(t *testing.T) {
	in := writeSource(t, "conflict.s", "main:\n    li %max, 1\n    li %max.s, 10\n")
	_, errOut, err := execute(t, in)
	if err != nil {
		t.Fatalf("diagnostics must not fail the run: %v", err)
	}
	if !strings.Contains(errOut, "mppd: warning: main:") || !strings.Contains(errOut, "declared before flag s") {
		t.Errorf("stderr = %q", errOut)
	}
}

func TestPrettifyOnly(t *testing.T) {
	in := writeSource(t, "p.s", "main:\n    li $t0,1\n")
	out, _, err := execute(t, in, "-P")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pretty := filepath.Join(filepath.Dir(in), "p.pretty.s")
	if _, err := os.Stat(pretty); err != nil {
		t.Errorf("expected %s: %v", pretty, err)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(in), "p.out.s")); !os.IsNotExist(err) {
		t.Error("prettify-only must not run the preprocessor")
	}
	if !strings.Contains(out, "1 lines were reformatted.") {
		t.Errorf("stdout = %q", out)
	}
}

func TestPrettifyReplace(t *testing.T) {
	src := "main:\n    li %x,1\n"
	in := writeSource(t, "r.s", src)
	out, _, err := execute(t, in, "-p", "-r")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bak, _ := os.ReadFile(in + ".bak"); string(bak) != src {
		t.Errorf("backup = %q", bak)
	}
	data, _ := os.ReadFile(filepath.Join(filepath.Dir(in), "r.out.s"))
	if !strings.Contains(string(data), "$t0, 1") {
		t.Errorf("output = %q", data)
	}
	if !strings.Contains(out, "Backup written to") {
		t.Errorf("stdout = %q", out)
	}
}

func TestConfigFile(t *testing.T) {
	in := writeSource(t, "count.s", countSource)
	dir := filepath.Dir(in)
	cfg := "functions: [count]\ndocs: true\n"
	if err := os.WriteFile(filepath.Join(dir, ".mppd.yaml"), []byte(cfg), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MPPD_CONFIG", "")

	if _, _, err := execute(t, in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, _ := os.ReadFile(filepath.Join(dir, "count.out.s"))
	if !strings.Contains(string(data), "# Frame:      $ra, $s0") {
		t.Errorf("config file not applied:\n%s", data)
	}
}

func TestFlagOverridesConfig(t *testing.T) {
	in := writeSource(t, "count.s", countSource)
	dir := filepath.Dir(in)
	cfgPath := filepath.Join(dir, "custom.yaml")
	if err := os.WriteFile(cfgPath, []byte("functions: [count]\ndocs: true\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := execute(t, in, "--config", cfgPath, "--docs=false"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, _ := os.ReadFile(filepath.Join(dir, "count.out.s"))
	if strings.Contains(string(data), "Frame:") {
		t.Errorf("--docs=false did not override config:\n%s", data)
	}
	if strings.Contains(string(data), "%i") {
		t.Errorf("config functions not applied:\n%s", data)
	}
}

func TestBadConfigFile(t *testing.T) {
	in := writeSource(t, "count.s", countSource)
	cfgPath := filepath.Join(filepath.Dir(in), "bad.yaml")
	if err := os.WriteFile(cfgPath, []byte("nonsense: 1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := execute(t, in, "--config", cfgPath); err == nil {
		t.Error("expected error for unknown config key")
	}
}

func TestBanner(t *testing.T) {
	in := writeSource(t, "count.s", countSource)
	out, _, err := execute(t, in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(out, description+"\n"+copyright+"\n\n") {
		t.Errorf("banner missing, got:\n%s", out)
	}
}

func TestVerboseSpaceSeparatedLevel(t *testing.T) {
	in := writeSource(t, "count.s", countSource)

	out, _, err := execute(t, normalizeArgs([]string{in, "-f", "count", "-V", "2"})...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "%max -> $s0 (saved)") {
		t.Errorf("verbose 2 output missing, got:\n%s", out)
	}

	out, _, err = execute(t, normalizeArgs([]string{"--verbose", in})...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "verbose: 1") {
		t.Errorf("bare --verbose before the file should mean level 1, got:\n%s", out)
	}
}

func TestNormalizeArgs(t *testing.T) {
	tests := []struct {
		args []string
		want []string
	}{
		{[]string{"a.s", "-V", "2"}, []string{"a.s", "-V=2"}},
		{[]string{"--verbose", "1", "a.s"}, []string{"--verbose=1", "a.s"}},
		{[]string{"-V", "a.s"}, []string{"-V", "a.s"}},
		{[]string{"-V=2", "a.s"}, []string{"-V=2", "a.s"}},
		{[]string{"a.s", "-V"}, []string{"a.s", "-V"}},
		{[]string{"--", "-V", "2"}, []string{"--", "-V", "2"}},
	}
	for _, tt := range tests {
		if got := normalizeArgs(tt.args); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("normalizeArgs(%v) = %v, want %v", tt.args, got, tt.want)
		}
	}
}

func TestVerboseOptionalValue(t *testing.T) {
	in := writeSource(t, "count.s", countSource)

	out, _, err := execute(t, in, "-f", "count", "-V")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "labels count count_i_init") || !strings.Contains(out, "verbose: 1") {
		t.Errorf("verbose 1 output missing, got:\n%s", out)
	}
	if strings.Contains(out, "-> $s0 (saved)") {
		t.Errorf("level 2 detail printed at level 1:\n%s", out)
	}

	out, _, err = execute(t, in, "-f", "count", "-V=2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "%max -> $s0 (saved)") {
		t.Errorf("verbose 2 output missing, got:\n%s", out)
	}
}
