package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/hazz-dev/kbprobe/internal/config"
	"github.com/hazz-dev/kbprobe/internal/probe"
)

func executeCheck(cmd *cobra.Command, cfg *config.Config) error {
	return runChecks(cmd.Context(), cmd.OutOrStdout(), cfg)
}

func runChecks(ctx context.Context, out io.Writer, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// The one-off run reports through the table only; keep slog quiet.
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	runner := probe.NewRunner(quiet, buildProbes(cfg)...)

	report := runner.Run(ctx)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PROBE\tSTATUS\tDURATION\tDETAIL\tERROR")
	for _, r := range report.Results() {
		status := "FAIL"
		if r.Status == probe.StatusPass {
			status = "PASS"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			r.ProbeName,
			status,
			r.Duration.Round(time.Millisecond),
			r.Detail,
			r.Error,
		)
	}
	w.Flush()

	if !report.OK() {
		return fmt.Errorf("one or more health checks failed")
	}
	return nil
}
