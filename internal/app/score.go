package app

import (
	"context"
	"errors"
	"os"

	"walletscore/internal/report"
)

// Score runs one batch scoring pass over the input file and emits the
// requested outputs. Without explicit outputs the summary is printed.
func (a *App) Score(ctx context.Context, opts ScoreOptions) error {
	if opts.InputPath == "" {
		return errors.New("--input is required")
	}

	records, malformed, err := a.newSource(opts.InputPath).Load(ctx)
	if err != nil {
		return err
	}

	res, err := a.newPipeline(opts.Workers).Run(ctx, records, malformed)
	if err != nil {
		return err
	}

	hasOutput := opts.CSVPath != "" || opts.XLSXPath != "" || opts.ParquetPath != "" ||
		opts.PNGPath != "" || opts.Store
	if !hasOutput {
		opts.Summary = true
	}

	if opts.CSVPath != "" {
		if err := writeScoresCSV(opts.CSVPath, res.Records); err != nil {
			return err
		}
		a.Logger.Info().Str("path", opts.CSVPath).Int("wallets", len(res.Records)).Msg("scores exported (csv)")
	}

	if opts.XLSXPath != "" {
		if err := writeScoresXLSX(opts.XLSXPath, res.Records); err != nil {
			return err
		}
		a.Logger.Info().Str("path", opts.XLSXPath).Int("wallets", len(res.Records)).Msg("scores exported (xlsx)")
	}

	if opts.ParquetPath != "" {
		if err := writeScoresParquet(opts.ParquetPath, res.Records); err != nil {
			return err
		}
		a.Logger.Info().Str("path", opts.ParquetPath).Int("wallets", len(res.Records)).Msg("scores exported (parquet)")
	}

	if opts.PNGPath != "" {
		sum := report.Summarize(res.Records, a.reportOptions())
		if err := writeHistogramPNG(opts.PNGPath, sum); err != nil {
			return err
		}
		a.Logger.Info().Str("path", opts.PNGPath).Msg("histogram exported")
	}

	if opts.Store {
		store, closeStore, err := a.openStore(ctx)
		if err != nil {
			return err
		}
		if store == nil {
			return errors.New("database not configured; cannot store scores")
		}
		defer closeStore()

		if err := store.UpsertScores(ctx, res.RunID, res.Records); err != nil {
			return err
		}
		a.Logger.Info().Str("run_id", res.RunID).Int("wallets", len(res.Records)).Msg("scores stored")
	}

	if opts.Summary {
		sum := report.Summarize(res.Records, a.reportOptions())
		if err := report.WriteText(os.Stdout, sum); err != nil {
			return err
		}
	}

	return nil
}
