package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/hazz-dev/kbprobe/internal/storage"
)

type statusStore interface {
	AllLatest(ctx context.Context) ([]storage.Result, error)
}

func executeStatus(cmd *cobra.Command, db statusStore) error {
	out := cmd.OutOrStdout()
	results, err := db.AllLatest(context.Background())
	if err != nil {
		return fmt.Errorf("querying status: %w", err)
	}

	if len(results) == 0 {
		fmt.Fprintln(out, "No probe history. Run 'kbprobe serve' first.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PROBE\tSTATUS\tDURATION\tLAST CHECKED\tERROR")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			r.Probe,
			r.Status,
			time.Duration(r.DurationMs*int64(time.Millisecond)).Round(time.Millisecond).String(),
			r.CheckedAt.Local().Format("2006-01-02 15:04:05"),
			r.Error,
		)
	}
	w.Flush()
	return nil
}
