package app

import (
	"context"
	"errors"
	"os"

	"walletscore/internal/domain"
	"walletscore/internal/report"
	"walletscore/internal/storage"
)

// Report renders distribution statistics over the stored scores.
func (a *App) Report(ctx context.Context, opts ReportOptions) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot report")
	}
	if closeStore != nil {
		defer closeStore()
	}

	rows, err := store.ListAllScores(ctx)
	if err != nil {
		return err
	}

	sum := report.Summarize(rowsToRecords(rows), a.reportOptions())
	if err := report.WriteText(os.Stdout, sum); err != nil {
		return err
	}

	if opts.PNGPath != "" {
		if err := writeHistogramPNG(opts.PNGPath, sum); err != nil {
			return err
		}
		a.Logger.Info().Str("path", opts.PNGPath).Msg("histogram exported")
	}

	return nil
}

// rowsToRecords rebuilds score records from stored rows. Only the persisted
// feature columns are populated.
func rowsToRecords(rows []storage.ScoreRow) []domain.ScoreRecord {
	records := make([]domain.ScoreRecord, len(rows))
	for i, row := range rows {
		records[i] = domain.ScoreRecord{
			Wallet: row.Wallet,
			Score:  row.Score,
			Features: domain.FeatureVector{
				TotalTransactions: row.TotalTransactions,
				UniqueAssets:      row.UniqueAssets,
				TotalUSDVolume:    row.TotalUSDVolume,
				ConsistentUsage:   row.ConsistentUsage,
				RiskIndicators:    row.RiskIndicators,
				RepaymentBehavior: row.RepaymentBehavior,
			},
		}
	}
	return records
}
