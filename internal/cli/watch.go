package cli

import (
	"github.com/spf13/cobra"

	"walletscore/internal/app"
)

var (
	watchInput   string
	watchStore   bool
	watchPNG     string
	watchWorkers int
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rescore the transaction log on a fixed interval",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.WatchOptions{
			InputPath: watchInput,
			Store:     watchStore,
			PNGPath:   watchPNG,
			Workers:   watchWorkers,
		}

		return getApp().Watch(cmd.Context(), opts)
	},
}

func init() {
	watchCmd.Flags().StringVar(&watchInput, "input", "", "Path to the JSON transaction log (required)")
	watchCmd.Flags().BoolVar(&watchStore, "store", false, "Persist scores to the configured database after every run")
	watchCmd.Flags().StringVar(&watchPNG, "png", "", "Path to rewrite the score histogram PNG after every run")
	watchCmd.Flags().IntVar(&watchWorkers, "workers", 0, "Scoring worker count (defaults to config, then CPU count)")
	_ = watchCmd.MarkFlagRequired("input")
}
