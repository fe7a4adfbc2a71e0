package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/igorsilvi73/SMART-REPAIR/internal/tui"
)

var experienceCmd = &cobra.Command{
	Use:   "experience",
	Short: "Show the operator proficiency table",
	Long: `Print the operator-by-task-type proficiency matrix. Scores start at 50
and drift with completion feedback: finishing under the estimate raises
the score, overrunning lowers it.`,
	RunE: runExperience,
}

var experienceSetCmd = &cobra.Command{
	Use:   "set <operator> <task-type> <score>",
	Short: "Override an operator's score for a task type",
	Args:  cobra.ExactArgs(3),
	RunE:  runExperienceSet,
}

func init() {
	experienceCmd.AddCommand(experienceSetCmd)
}

func runExperience(cmd *cobra.Command, args []string) error {
	eng, _, cfg, err := openShop()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), tui.RenderExperience(cfg.Catalog, eng))
	return nil
}

func runExperienceSet(cmd *cobra.Command, args []string) error {
	eng, snap, cfg, err := openShop()
	if err != nil {
		return err
	}
	worker, taskType := args[0], args[1]
	value, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return fmt.Errorf("score must be a number: %w", err)
	}
	known := false
	for _, w := range cfg.Catalog.Workers {
		if w == worker {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("unknown operator %q", worker)
	}
	if err := eng.SetScore(snap, worker, taskType, value); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s · %s → %.1f\n", worker, taskType, eng.Score(worker, taskType))
	return nil
}
