package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/igorsilvi73/SMART-REPAIR/internal/tui"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Seed a few sample orders and print the schedule",
	Long: `Seed the shop with a handful of sample vehicles, run a scheduling
pass and print the resulting board. Useful for trying the scheduler
without typing orders in by hand. Runs against the project state, so
repeat invocations keep adding vehicles.`,
	RunE: runDemo,
}

type demoOrder struct {
	name     string
	priority int
	tasks    []string
}

var demoOrders = []demoOrder{
	{"Fiat Panda", 2, []string{
		"Smontaggio e rimontaggio parti",
		"Raddrizzatura lamierati",
		"Verniciatura",
		"Collaudo e finitura",
	}},
	{"VW Golf", 1, []string{
		"Diagnostica",
		"Preparazione e stuccatura",
		"Verniciatura",
	}},
	{"Alfa Giulietta", 4, []string{
		"Lucidatura e rifiniture",
	}},
}

func runDemo(cmd *cobra.Command, args []string) error {
	eng, snap, cfg, err := openShop()
	if err != nil {
		return err
	}
	for _, d := range demoOrders {
		next, err := eng.SubmitOrder(snap, d.name, d.priority, d.tasks)
		if err != nil {
			return fmt.Errorf("seed %s: %w", d.name, err)
		}
		snap = next
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d orders.\n\n", len(demoOrders))
	fmt.Fprintln(cmd.OutOrStdout(), tui.RenderBoard(cfg.Catalog, snap, time.Now()))
	return nil
}
