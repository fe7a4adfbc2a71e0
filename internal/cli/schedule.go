package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/igorsilvi73/SMART-REPAIR/internal/tui"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Recompute the schedule and print the board",
	Long: `Run a full scheduling pass over the persisted orders and tasks, save
the result, and print the board: every order with its tasks, assigned
operator, scheduled window, status and progress.`,
	RunE: runSchedule,
}

func runSchedule(cmd *cobra.Command, args []string) error {
	eng, snap, cfg, err := openShop()
	if err != nil {
		return err
	}
	next, err := eng.Recompute(snap)
	if err != nil {
		return fmt.Errorf("scheduling pass failed, previous schedule kept: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), tui.RenderBoard(cfg.Catalog, next, time.Now()))
	return nil
}
