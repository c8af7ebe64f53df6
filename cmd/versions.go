package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"prdpilot/pkg/ui"
	"prdpilot/pkg/versions"
)

var versionsCmd = &cobra.Command{
	Use:   "versions",
	Short: "List document versions",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		projectID, err := resolveProject(cfg)
		if err != nil {
			return err
		}

		registry := versions.NewRegistry(newClient(cfg), projectID)
		if err := registry.Load(cmd.Context()); err != nil {
			return err
		}

		list := registry.Versions()
		if len(list) == 0 {
			ui.Print("No versions yet. Run build-document first.\n")
			return nil
		}

		for _, v := range list {
			marker := " "
			if v.Version == registry.Current() {
				marker = "*"
			}
			ui.Print("%s v%d  %s  %s\n", marker, v.Version, v.CreatedAt, v.Status)
			if v.Notes != "" {
				ui.Print("    %s\n", v.Notes)
			}
			if len(v.FilesAdded) > 0 {
				ui.Print("    files: %s\n", strings.Join(v.FilesAdded, ", "))
			}
		}
		return nil
	},
}
