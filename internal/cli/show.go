package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"walletscore/internal/app"
)

var (
	showLimit int
	showAsc   bool
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Display stored wallet scores",
	RunE: func(cmd *cobra.Command, args []string) error {
		if showLimit <= 0 {
			return fmt.Errorf("--limit must be greater than zero")
		}

		opts := app.ShowOptions{
			Limit:     showLimit,
			Ascending: showAsc,
		}

		return getApp().Show(cmd.Context(), opts)
	},
}

func init() {
	showCmd.Flags().IntVar(&showLimit, "limit", 20, "Number of wallets to display")
	showCmd.Flags().BoolVar(&showAsc, "asc", false, "List worst scores first")
}
