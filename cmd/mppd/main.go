package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/raymyers/mppd/pkg/config"
	"github.com/raymyers/mppd/pkg/preproc"
)

var version = "1.1.0"

const (
	description = "A formatter and preprocessor for MIPS assembly."
	copyright   = "Copyright (c) 2020 David Wu and Eric Holmstrom"
)

// ErrNoInput is returned when no input file is given
var ErrNoInput = errors.New("no input file specified")

func main() {
	os.Exit(run())
}

func run() int {
	rootCmd := newRootCmd(os.Stdout, os.Stderr)
	rootCmd.SetArgs(normalizeArgs(os.Args[1:]))
	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return 0
}

// normalizeArgs joins a level given after -V or --verbose into the flag
// (-V 2 becomes -V=2), since pflag only reads an optional value after '='.
func normalizeArgs(args []string) []string {
	result := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			return append(result, args[i:]...)
		}
		if (arg == "-V" || arg == "--verbose") && i+1 < len(args) && isLevel(args[i+1]) {
			result = append(result, arg+"="+args[i+1])
			i++
			continue
		}
		result = append(result, arg)
	}
	return result
}

func isLevel(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// normalizeFlagName lets --add_function stand for --add-function
func normalizeFlagName(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	flags := &config.Options{}
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "mppd [file]",
		Short: description,
		Long: description + `

Symbolic identifiers (%name, or %name.flag for values that must survive
calls) in the selected functions are replaced with $t and $s registers.`,
		Example: `  mppd code.s
  mppd code.s -l
  mppd code.s --prettify --replace
  mppd code.s --add-function min --add-function max
  mppd code.s -p -r -l -d -s`,
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(out, "%s\n%s\n\n", description, copyright)

			if len(args) == 0 {
				fmt.Fprint(errOut, cmd.UsageString())
				fmt.Fprintf(errOut, "mppd: error: %v\n", ErrNoInput)
				return ErrNoInput
			}

			opts, err := buildOptions(cmd.Flags(), flags, configPath, args[0])
			if err != nil {
				fmt.Fprintf(errOut, "mppd: error: %v\n", err)
				return err
			}
			return doRun(opts, out, errOut)
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	rootCmd.SetGlobalNormalizationFunc(normalizeFlagName)

	fs := rootCmd.Flags()
	fs.StringVarP(&flags.Output, "out", "o", "", "Output filename")
	fs.IntVarP(&flags.Verbose, "verbose", "V", 0, "Logging level 1-2 (-V, or -V=2)")
	fs.Lookup("verbose").NoOptDefVal = "1"

	fs.BoolVarP(&flags.Prettify, "prettify", "p", false, "Reformat assembly code")
	fs.BoolVarP(&flags.PrettifyOnly, "prettify-only", "P", false, "Skip pre-processing")
	fs.BoolVarP(&flags.Replace, "replace", "r", false, "In-place prettify, replace input file")
	fs.BoolVarP(&flags.Space, "space", "S", false, "Uses spaces instead of tabs for prettifying")

	fs.StringArrayVarP(&flags.Functions, "add-function", "f", nil, "Append function to list of functions to process")
	fs.BoolVar(&flags.StrictLabels, "strict-labels", false, "Start a function only at a line beginning with its full label")

	fs.BoolVarP(&flags.Identifiers, "identifiers", "i", false, "Show identifiers and registers lists")
	fs.BoolVarP(&flags.Locals, "locals", "l", false, "Show identifiers and associated registers")
	fs.BoolVarP(&flags.Docs, "docs", "d", false, "Write generated documentation to output")
	fs.BoolVarP(&flags.Structure, "structure", "s", false, "Include label structures in documentation")

	fs.StringVar(&configPath, "config", "", "Read options from a YAML file (default: "+config.FileName+" next to the input)")

	return rootCmd
}

// buildOptions layers the config file, the environment, and the flags that
// were set on the command line
func buildOptions(fs *pflag.FlagSet, flags *config.Options, configPath, input string) (*config.Options, error) {
	opts := &config.Options{}
	if path := config.Find(configPath, input); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		opts = loaded
	}
	config.FromEnv(opts)

	set := func(name string, dst *bool, src bool) {
		if fs.Changed(name) {
			*dst = src
		}
	}
	set("prettify", &opts.Prettify, flags.Prettify)
	set("prettify-only", &opts.PrettifyOnly, flags.PrettifyOnly)
	set("replace", &opts.Replace, flags.Replace)
	set("space", &opts.Space, flags.Space)
	set("strict-labels", &opts.StrictLabels, flags.StrictLabels)
	set("identifiers", &opts.Identifiers, flags.Identifiers)
	set("locals", &opts.Locals, flags.Locals)
	set("docs", &opts.Docs, flags.Docs)
	set("structure", &opts.Structure, flags.Structure)
	if fs.Changed("out") {
		opts.Output = flags.Output
	}
	if fs.Changed("verbose") {
		opts.Verbose = flags.Verbose
	}
	opts.Functions = append(opts.Functions, flags.Functions...)

	opts.Input = input
	if opts.Output == "" {
		opts.Output = preproc.OutputFilename(input)
	}
	return opts, nil
}

// doRun prettifies and/or preprocesses opts.Input
func doRun(opts *config.Options, out, errOut io.Writer) error {
	if opts.Verbose > 0 {
		if data, err := opts.Marshal(); err == nil {
			fmt.Fprintf(out, "options:\n%s\n", data)
		}
	}

	if opts.Prettify || opts.PrettifyOnly {
		path, err := doPrettify(opts, out, errOut)
		if err != nil {
			return err
		}
		if opts.PrettifyOnly {
			return nil
		}
		opts.Input = path
	}

	res, err := preproc.ProcessFile(opts.Input, opts)
	if err != nil {
		fmt.Fprintf(errOut, "mppd: error: %v\n", err)
		return err
	}
	printReport(res, opts, out, errOut)

	if err := os.WriteFile(opts.Output, []byte(res.Output), 0644); err != nil {
		fmt.Fprintf(errOut, "mppd: error creating %s: %v\n", opts.Output, err)
		return err
	}
	fmt.Fprintf(out, "\nOutput written to '%s'\n", opts.Output)
	return nil
}

// doPrettify runs the prettifier and reports the changed lines
func doPrettify(opts *config.Options, out, errOut io.Writer) (string, error) {
	fmt.Fprintln(out, "[PRETTIFY]")

	path, res, err := preproc.PrettifyFile(opts)
	if err != nil {
		fmt.Fprintf(errOut, "mppd: error: %v\n", err)
		return "", err
	}

	for _, c := range res.Changes {
		fmt.Fprintf(out, "Line %d: %s\n", c.Line, c.Before)
		fmt.Fprintf(out, "Line %d: %s\n", c.Line, c.After)
	}
	for _, l := range res.Lints {
		fmt.Fprintf(errOut, "mppd: warning: %s\n", l)
	}
	fmt.Fprintf(out, "%d lines were reformatted.\n", len(res.Changes))
	fmt.Fprintf(out, "Prettified output written to '%s'\n", path)
	if opts.Replace {
		fmt.Fprintf(out, "Backup written to '%s'\n", preproc.BackupFilename(opts.Input))
	}
	fmt.Fprintln(out)
	return path, nil
}
