package cli

import (
	"github.com/spf13/cobra"

	"walletscore/internal/app"
)

var (
	reportPNGPath string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print distribution statistics over stored scores",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.ReportOptions{
			PNGPath: reportPNGPath,
		}

		return getApp().Report(cmd.Context(), opts)
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportPNGPath, "png", "", "Path to write the score histogram PNG")
}
