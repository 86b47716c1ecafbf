package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/raymyers/mppd/pkg/config"
	"github.com/raymyers/mppd/pkg/preproc"
)

// printReport writes the per-function console report
func printReport(res *preproc.Result, opts *config.Options, out, errOut io.Writer) {
	if opts.Verbose > 0 {
		fmt.Fprintf(out, "labels %s\n", strings.Join(res.Labels, " "))
		fmt.Fprintf(out, "functions %s\n", strings.Join(res.Order, " "))
		if len(res.Unresolved) > 0 {
			fmt.Fprintf(out, "not found %s\n", strings.Join(res.Unresolved, " "))
		}
	}

	for _, fn := range res.Functions {
		fmt.Fprintln(out, fn.Name)

		for _, d := range fn.Diagnostics {
			fmt.Fprintf(errOut, "mppd: warning: %s: %v\n", fn.Name, d)
		}
		if opts.Verbose > 0 {
			fmt.Fprintf(out, "%d %s\n", len(fn.Scanned), strings.Join(fn.Scanned, " "))
		}
		if opts.Verbose > 1 {
			for _, base := range fn.Mapping.Order {
				class, _ := fn.Mapping.Class(base)
				fmt.Fprintf(out, "  %s -> %s (%s)\n", base, fn.Mapping.Registers[base], class)
			}
		}

		if opts.Identifiers {
			regs := fn.Mapping.Assigned()
			sortedRegs := append([]string(nil), regs...)
			sort.Strings(sortedRegs)
			fmt.Fprintf(out, "Identifiers %s\n", strings.Join(fn.Mapping.Order, " "))
			fmt.Fprintf(out, "Registers   %s\n", strings.Join(regs, " "))
			fmt.Fprintf(out, "Sorted      %s\n", strings.Join(sortedRegs, " "))
			fmt.Fprintln(out)
		}

		if fn.Comment != "" {
			fmt.Fprintln(out, fn.Comment)
		}
	}

	for _, l := range res.Lints {
		fmt.Fprintf(errOut, "mppd: warning: %s\n", l)
	}
}
