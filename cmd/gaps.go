package cmd

import (
	"github.com/spf13/cobra"

	"prdpilot/pkg/types"
	"prdpilot/pkg/ui"
)

var gapsCmd = &cobra.Command{
	Use:   "gaps",
	Short: "List analyzed gaps grouped by priority",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		projectID, err := resolveProject(cfg)
		if err != nil {
			return err
		}

		report, err := newClient(cfg).GetGaps(cmd.Context(), projectID)
		if err != nil {
			return err
		}

		if report.GapsCount == 0 {
			ui.Print("No gaps found. Run analyze-gaps first, or the document is complete.\n")
			return nil
		}

		ui.Print("%d gap(s)\n", report.GapsCount)
		for _, tier := range types.Priorities {
			for _, gap := range report.Gaps {
				if gap.Priority != tier {
					continue
				}
				ui.Print("\n%s %s (%s)\n", ui.PriorityBadge(gap.Priority), ui.TitleCase(gap.SectionTitle), gap.SectionKey)
				if gap.Description != "" {
					ui.Print("  %s\n", gap.Description)
				}
				for _, q := range gap.GuidingQuestions {
					ui.Print("  - %s\n", q)
				}
			}
		}
		return nil
	},
}
