// Package preproc runs the MIPS preprocessor over a source file.
// It splits the file into functions, allocates registers for symbolic
// identifiers, rewrites them, and optionally prepends documentation.
package preproc

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/raymyers/mppd/pkg/config"
	"github.com/raymyers/mppd/pkg/docs"
	"github.com/raymyers/mppd/pkg/ident"
	"github.com/raymyers/mppd/pkg/labels"
	"github.com/raymyers/mppd/pkg/prettify"
	"github.com/raymyers/mppd/pkg/rewrite"
	"github.com/raymyers/mppd/pkg/segment"
)

// FunctionReport describes the processing of one function.
type FunctionReport struct {
	Name        string
	Mapping     *ident.Mapping
	Diagnostics []ident.Diagnostic
	Docs        *docs.Block // nil when no section is selected
	Comment     string      // rendered documentation body
	Scanned     []string    // distinct identifiers outside comments, sorted
}

// Result is the output of Process.
type Result struct {
	Output     string
	Labels     []string
	Order      []string
	Unresolved []string
	Functions  []FunctionReport
	Lints      []prettify.Lint
}

// Process preprocesses text. The preamble before the first function is
// copied through; each function is rewritten and, when opts.Docs is set,
// preceded by its documentation block. The combined text is passed through
// prettify.FixCommentSpacing.
func Process(text string, opts *config.Options) *Result {
	if opts == nil {
		opts = &config.Options{}
	}
	res := &Result{Labels: labels.Extract(text)}
	prog := segment.Segment(text, res.Labels, segment.Names(opts.Functions),
		segment.Options{Strict: opts.StrictLabels})
	res.Order = prog.Order
	res.Unresolved = prog.Unresolved

	sections := opts.Sections()
	var out strings.Builder
	out.WriteString(prog.Preamble)

	for _, fn := range prog.Functions {
		m, diags := ident.Allocate(fn.Body)
		report := FunctionReport{
			Name:        fn.Name,
			Mapping:     m,
			Diagnostics: diags,
			Scanned:     scanned(fn.Body),
		}

		if sections.Any() {
			report.Docs = docs.Synthesize(docs.Input{
				Name:      fn.Name,
				Text:      fn.Body,
				Mapping:   m,
				Labels:    res.Labels,
				Functions: prog.Order,
			}, sections)
			report.Comment = report.Docs.Body()
			if opts.Docs {
				out.WriteString(docs.Render(fn.Name, report.Comment))
			}
		}

		out.WriteString(rewrite.Apply(fn.Body, m))
		res.Functions = append(res.Functions, report)
	}

	res.Output, res.Lints = prettify.FixCommentSpacing(out.String())
	return res
}

// ProcessFile reads filename and preprocesses its contents.
func ProcessFile(filename string, opts *config.Options) (*Result, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filename, err)
	}
	return Process(string(content), opts), nil
}

// PrettifyFile prettifies opts.Input and returns the path it was written to.
// With opts.Replace the input is copied to a .bak file and overwritten;
// otherwise the output goes to PrettyFilename(opts.Input).
func PrettifyFile(opts *config.Options) (string, *prettify.Result, error) {
	content, err := os.ReadFile(opts.Input)
	if err != nil {
		return "", nil, fmt.Errorf("reading %s: %w", opts.Input, err)
	}

	outPath := PrettyFilename(opts.Input)
	if opts.Replace {
		if err := os.WriteFile(BackupFilename(opts.Input), content, filePerm(opts.Input)); err != nil {
			return "", nil, fmt.Errorf("writing backup: %w", err)
		}
		outPath = opts.Input
	}

	res := prettify.Prettify(string(content), prettify.Options{Space: opts.Space})
	if err := os.WriteFile(outPath, []byte(res.Text), filePerm(opts.Input)); err != nil {
		return "", nil, fmt.Errorf("writing %s: %w", outPath, err)
	}
	return outPath, res, nil
}

// OutputFilename returns the default output path: code.s -> code.out.s
func OutputFilename(filename string) string {
	return insertSuffix(filename, ".out")
}

// PrettyFilename returns the prettifier output path: code.s -> code.pretty.s
func PrettyFilename(filename string) string {
	return insertSuffix(filename, ".pretty")
}

// BackupFilename returns the backup path used by in-place prettifying.
func BackupFilename(filename string) string {
	return filename + ".bak"
}

// insertSuffix places suffix before the extension of filename.
func insertSuffix(filename, suffix string) string {
	ext := filepath.Ext(filename)
	return strings.TrimSuffix(filename, ext) + suffix + ext
}

func filePerm(filename string) os.FileMode {
	if info, err := os.Stat(filename); err == nil {
		return info.Mode().Perm()
	}
	return 0644
}

func scanned(text string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, occ := range ident.Scan(text) {
		if occ.InComment || seen[occ.Base] {
			continue
		}
		seen[occ.Base] = true
		out = append(out, occ.Base)
	}
	sort.Strings(out)
	return out
}
