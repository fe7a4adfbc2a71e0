// Package cli is the non-interactive surface of SMART-REPAIR: the same
// engine the TUI drives, exposed as cobra subcommands for scripting and
// quick inspection.
package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/igorsilvi73/SMART-REPAIR/internal/config"
	"github.com/igorsilvi73/SMART-REPAIR/internal/engine"
	"github.com/igorsilvi73/SMART-REPAIR/internal/logbook"
	"github.com/igorsilvi73/SMART-REPAIR/internal/proficiency"
	"github.com/igorsilvi73/SMART-REPAIR/internal/store"
)

var projectDir string

var rootCmd = &cobra.Command{
	Use:     "smartrepair",
	Short:   "Body-shop scheduling engine",
	Long:    `SMART-REPAIR schedules body-shop repair tasks across operators within business hours. Run without arguments for the interactive console.`,
	Version: "0.1.0",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&projectDir, "project", ".",
		"Project directory holding the .smartrepair folder")
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(experienceCmd)
	rootCmd.AddCommand(demoCmd)
	rootCmd.AddCommand(ordersCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// openShop wires an engine against the project's .smartrepair folder
// and loads the persisted snapshot.
func openShop() (*engine.Engine, engine.Snapshot, *config.Config, error) {
	if err := config.InitSmartRepairDir(projectDir); err != nil {
		return nil, engine.Snapshot{}, nil, err
	}
	cfg, err := config.NewConfig(projectDir)
	if err != nil {
		return nil, engine.Snapshot{}, nil, err
	}
	lb, err := logbook.New(filepath.Join(cfg.LogsDir(), "shop.log"))
	if err != nil {
		lb = nil
	}
	eng, err := engine.New(cfg.Catalog, proficiency.NewModel(),
		engine.WithLogbook(lb),
		engine.WithStateStore(store.NewRepository(cfg.StateDir())))
	if err != nil {
		return nil, engine.Snapshot{}, nil, err
	}
	snap, err := eng.Load()
	if err != nil {
		return nil, engine.Snapshot{}, nil, fmt.Errorf("cli: %w", err)
	}
	return eng, snap, cfg, nil
}
