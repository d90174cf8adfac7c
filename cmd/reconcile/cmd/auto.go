package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/openledger-dev/bank-reconcile/internal/app"
	"github.com/openledger-dev/bank-reconcile/pkg/config"
)

var journalID int64

// autoCmd represents the auto command.
var autoCmd = &cobra.Command{
	Use:   "auto",
	Short: "Auto-reconcile unreconciled statement lines",
	Long: `Run the configured matching models over every unreconciled
statement line and commit each proposal whose model requests automatic
reconciliation.

Example:
  reconcile auto
  reconcile auto --journal 1`,
	Run: runAuto,
}

func init() {
	autoCmd.Flags().Int64Var(&journalID, "journal", 0, "Journal ID to restrict the run to (default all journals)")
}

func runAuto(cmd *cobra.Command, args []string) {
	slog.Info("Loading configuration")

	cfg, err := config.Load(getConfigFile())
	exitOnError(err, "failed to load configuration")
	exitOnError(cfg.Validate(), "invalid configuration")

	application, err := app.Open(cfg)
	exitOnError(err, "failed to initialize application")
	defer application.Close()

	slog.Info("Starting auto-reconciliation", "journal_id", journalID)
	count, err := application.Engine.AutoReconcileAll(cmd.Context(), journalID)
	exitOnError(err, "auto-reconciliation failed")

	fmt.Printf("Reconciled %d statement line(s)\n", count)
	slog.Info("Auto-reconciliation finished", "reconciled", count)
}
