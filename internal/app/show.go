package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"
)

// Show prints stored wallet scores, best first by default.
func (a *App) Show(ctx context.Context, opts ShowOptions) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot show scores")
	}
	if closeStore != nil {
		defer closeStore()
	}

	rows, err := store.ListScores(ctx, opts.Limit, opts.Ascending)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Fprintln(os.Stdout, "no scores found")
		return nil
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Wallet\tScore\tTxs\tAssets\tVolume USD\tRisk\tRepayment\tScored At (UTC)")

	for _, row := range rows {
		fmt.Fprintf(
			writer,
			"%s\t%.2f\t%d\t%d\t%.2f\t%.3f\t%.3f\t%s\n",
			sanitizeInline(row.Wallet),
			row.Score,
			row.TotalTransactions,
			row.UniqueAssets,
			row.TotalUSDVolume,
			row.RiskIndicators,
			row.RepaymentBehavior,
			row.ScoredAt.UTC().Format(time.RFC3339),
		)
	}

	writer.Flush()
	return nil
}

func sanitizeInline(v string) string {
	cleaned := strings.ReplaceAll(v, "\n", " ")
	cleaned = strings.ReplaceAll(cleaned, "\r", " ")
	return cleaned
}
