package cli

import (
	"github.com/spf13/cobra"

	"walletscore/internal/app"
)

var (
	scoreInput   string
	scoreCSV     string
	scoreXLSX    string
	scoreParquet string
	scorePNG     string
	scoreSummary bool
	scoreStore   bool
	scoreWorkers int
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score wallets from a transaction log file",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.ScoreOptions{
			InputPath:   scoreInput,
			CSVPath:     scoreCSV,
			XLSXPath:    scoreXLSX,
			ParquetPath: scoreParquet,
			PNGPath:     scorePNG,
			Summary:     scoreSummary,
			Store:       scoreStore,
			Workers:     scoreWorkers,
		}

		return getApp().Score(cmd.Context(), opts)
	},
}

func init() {
	scoreCmd.Flags().StringVar(&scoreInput, "input", "", "Path to the JSON transaction log (required)")
	scoreCmd.Flags().StringVar(&scoreCSV, "csv", "", "Path to write scores as CSV")
	scoreCmd.Flags().StringVar(&scoreXLSX, "xlsx", "", "Path to write scores as XLSX")
	scoreCmd.Flags().StringVar(&scoreParquet, "parquet", "", "Path to write scores as Parquet")
	scoreCmd.Flags().StringVar(&scorePNG, "png", "", "Path to write the score histogram PNG")
	scoreCmd.Flags().BoolVar(&scoreSummary, "summary", false, "Print the statistics report to stdout")
	scoreCmd.Flags().BoolVar(&scoreStore, "store", false, "Persist scores to the configured database")
	scoreCmd.Flags().IntVar(&scoreWorkers, "workers", 0, "Scoring worker count (defaults to config, then CPU count)")
	_ = scoreCmd.MarkFlagRequired("input")
}
