package main

import (
	"fmt"
	"os"
	"time"

	"github.com/muesli/termenv"

	"github.com/Faultbox/seedexport/internal/export"
)

// printSummary writes the end-of-run summary to stdout, colored when stdout
// is a terminal.
func printSummary(res *export.Result) {
	out := termenv.NewOutput(os.Stdout)

	status := out.String("OK").Foreground(termenv.ANSIGreen).Bold()
	if len(res.Failed) > 0 {
		status = out.String("FAILED").Foreground(termenv.ANSIRed).Bold()
	}

	fmt.Fprintf(out, "%s  %d written, %d failed in %s\n",
		status, len(res.Files), len(res.Failed), res.Elapsed.Round(time.Millisecond))
	for _, f := range res.Files {
		fmt.Fprintf(out, "  %s\n", f)
	}

	warnings, errs := res.Report.Warnings(), res.Report.Errors()
	if len(warnings) == 0 && len(errs) == 0 {
		return
	}
	fmt.Fprintf(out, "%s %d warnings, %d errors (%s)\n",
		out.String("!").Foreground(termenv.ANSIYellow),
		len(warnings), len(errs), res.Report.Summary())
	for _, e := range errs {
		fmt.Fprintf(out, "  %s\n", out.String(e.String()).Foreground(termenv.ANSIRed))
	}
	for _, w := range warnings {
		fmt.Fprintf(out, "  %s\n", out.String(w.String()).Faint())
	}
}
