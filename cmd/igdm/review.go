package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"igdm/pkg/config"
	"igdm/pkg/storage"
	"igdm/pkg/table"
	"igdm/pkg/ui"
	"igdm/pkg/ui/tui"
)

// reviewCmd opens a previous export for editing
var reviewCmd = &cobra.Command{
	Use:   "review [file.csv]",
	Short: "Review and edit an exported CSV",
	Long: `Open a CSV written by 'igdm generate' in the interactive review table.

Edits are written back to the same file when you press s. Without an
argument the configured export file is opened.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReview,
}

func init() {
	rootCmd.AddCommand(reviewCmd)
}

func runReview(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		return err
	}

	path := filepath.Join(cfg.Output.Directory, cfg.Output.FileName)
	if len(args) == 1 {
		path = args[0]
	}

	manager, err := storage.NewManager(filepath.Dir(path), true)
	if err != nil {
		return err
	}
	name := filepath.Base(path)

	results, err := manager.LoadTable(name)
	if err != nil {
		ui.PrintError("Failed to open export", err.Error())
		return err
	}

	terminal := tui.NewReviewTUI(results, func(t *table.Table) (string, error) {
		return manager.SaveTable(t, name)
	})

	final, err := terminal.Run()
	if err != nil {
		return fmt.Errorf("review screen failed: %w", err)
	}

	if final.SavedPath() != "" {
		ui.PrintSuccess("Saved " + final.SavedPath())
	}
	return nil
}
