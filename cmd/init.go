package cmd

import (
	"github.com/spf13/cobra"

	"prdpilot/pkg/config"
	"prdpilot/pkg/ui"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadOrInit()
		if err != nil {
			return err
		}
		ui.Print("Config at %s\n", config.Path())
		ui.Print("  server_url:    %s\n", cfg.ServerURL)
		ui.Print("  project_id:    %s\n", cfg.ProjectID)
		ui.Print("  max_questions: %d\n", cfg.MaxQuestions)
		return nil
	},
}
