package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/openledger-dev/bank-reconcile/internal/app"
	"github.com/openledger-dev/bank-reconcile/pkg/config"
)

// statsCmd represents the stats command.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Display reconciliation statistics",
	Long: `Display per-journal reconciliation statistics.

Shows, for every journal with statement lines:
- Number of reconciled statement lines
- Number of still unreconciled statement lines

Example:
  reconcile stats`,
	Run: runStats,
}

func runStats(cmd *cobra.Command, args []string) {
	slog.Info("Loading configuration")

	cfg, err := config.Load(getConfigFile())
	exitOnError(err, "failed to load configuration")
	exitOnError(cfg.Validate(), "invalid configuration")

	application, err := app.Open(cfg)
	exitOnError(err, "failed to initialize application")
	defer application.Close()

	stats, err := application.Store.Stats()
	exitOnError(err, "failed to get statistics")

	fmt.Println("\n=== Reconciliation Statistics ===")
	for _, s := range stats {
		fmt.Printf("%-24s reconciled: %4d  unreconciled: %4d\n",
			s.JournalName, s.Reconciled, s.Unreconciled)
	}
	if len(stats) == 0 {
		fmt.Println("No statement lines found")
	}
	fmt.Println()
}
