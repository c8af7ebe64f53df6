package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"prdpilot/pkg/pipeline"
	"prdpilot/pkg/ui"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show pipeline stages and action availability",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		projectID, err := resolveProject(cfg)
		if err != nil {
			return err
		}

		store := pipeline.NewStore(newClient(cfg))
		state, err := store.Refresh(cmd.Context(), projectID)
		if err != nil {
			return err
		}

		ui.Print("Project %s\n\n", projectID)
		for _, action := range pipeline.Actions {
			status := pipeline.StatusFor(state, action)
			mark := ui.StageMark(status == pipeline.StatusCompleted)
			line := mark + " " + action.Title

			switch status {
			case pipeline.StatusCompleted:
				ui.Print("%s\n", line)
			case pipeline.StatusAvailable:
				// Actions stay visible even with unmet declared
				// prerequisites; the run command checks them reactively.
				if missing := pipeline.MissingPrerequisites(state, action); len(missing) > 0 {
					ui.Print("%s (run %s; needs %s)\n", line, cliActionName(action.ID), strings.Join(missing, ", "))
				} else {
					ui.Print("%s (run %s)\n", line, cliActionName(action.ID))
				}
			case pipeline.StatusBlocked:
				missing := pipeline.MissingPrerequisites(state, action)
				ui.Print("%s (blocked: needs %s)\n", line, strings.Join(missing, ", "))
			}
		}
		return nil
	},
}

// cliActionName maps a table id to its kebab-case CLI spelling.
func cliActionName(id string) string {
	return strings.ReplaceAll(id, "_", "-")
}

// tableActionID maps a CLI argument back to the table id.
func tableActionID(arg string) string {
	return strings.ReplaceAll(arg, "-", "_")
}
