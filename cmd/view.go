package cmd

import (
	"github.com/spf13/cobra"

	"prdpilot/pkg/segment"
	"prdpilot/pkg/ui"
	"prdpilot/pkg/versions"
)

var viewVersionFlag int

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Display a document version",
	Long: `Fetches a version's document body and renders it block by block.
Mermaid diagrams are shown as placeholders with their source indented,
since the terminal cannot draw them.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		projectID, err := resolveProject(cfg)
		if err != nil {
			return err
		}

		client := newClient(cfg)

		// History must be loaded before a specific version is requested.
		registry := versions.NewRegistry(client, projectID)
		if err := registry.Load(cmd.Context()); err != nil {
			return err
		}
		if viewVersionFlag != 0 {
			if err := registry.Select(viewVersionFlag); err != nil {
				return err
			}
		}

		content, err := client.GetVersionContent(cmd.Context(), projectID, registry.Selected())
		if err != nil {
			return err
		}

		ui.Print("v%d  %s\n\n", content.Version, content.CreatedAt)
		for _, seg := range segment.Split(content.Content) {
			switch seg.Kind {
			case segment.KindDiagram:
				ui.Print("[diagram]\n")
				for _, line := range splitLines(seg.Content) {
					ui.Print("    %s\n", line)
				}
			default:
				ui.Print("%s", seg.Content)
			}
		}
		return nil
	},
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	return append(lines, s[start:])
}

func init() {
	viewCmd.Flags().IntVarP(&viewVersionFlag, "version", "v", 0, "version to display (defaults to current)")
}
