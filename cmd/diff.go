package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"prdpilot/pkg/diffview"
	"prdpilot/pkg/ui"
	"prdpilot/pkg/versions"
)

var diffLocalFlag bool

var diffCmd = &cobra.Command{
	Use:   "diff <version1> <version2>",
	Short: "Compare two document versions",
	Long: `Requests a section-granular comparison of two versions and renders
added, removed, and modified sections with line-level markers. With
--local the raw bodies are fetched and diffed client-side instead.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		v1, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid version %q", args[0])
		}
		v2, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid version %q", args[1])
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		projectID, err := resolveProject(cfg)
		if err != nil {
			return err
		}

		client := newClient(cfg)

		registry := versions.NewRegistry(client, projectID)
		if err := registry.Load(cmd.Context()); err != nil {
			return err
		}
		if err := registry.ValidatePair(v1, v2); err != nil {
			ui.Errorf("%v", err)
			return nil
		}

		view := diffview.NewView(client, projectID)

		if diffLocalFlag {
			out, err := view.LocalCompare(cmd.Context(), v1, v2)
			if err != nil {
				return err
			}
			ui.Print("%s", out)
			return nil
		}

		diff, err := view.Compare(cmd.Context(), v1, v2)
		if err != nil {
			return err
		}
		ui.Print("%s", diffview.Render(diff))
		return nil
	},
}

func init() {
	diffCmd.Flags().BoolVar(&diffLocalFlag, "local", false, "compute a client-side line diff of the raw bodies")
}
