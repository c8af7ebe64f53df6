package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"prdpilot/pkg/events"
	"prdpilot/pkg/ui"
	"prdpilot/pkg/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream pipeline progress events",
	Long: `Subscribes to the backend's event stream for the project and prints
events as they arrive. Useful in a second terminal while a long stage
(input processing, document build) runs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		projectID, err := resolveProject(cfg)
		if err != nil {
			return err
		}

		client, err := watch.NewClient(cfg.ServerURL, projectID, printEvent)
		if err != nil {
			return err
		}
		if err := client.Connect(); err != nil {
			return err
		}
		defer client.Close()

		ui.Print("Watching project %s (Ctrl+C to stop)\n", projectID)
		client.Wait()
		return nil
	},
}

func printEvent(ev events.Event) {
	line := ev.Timestamp.Format("15:04:05") + "  " + ev.Type
	if ev.Data != nil {
		if data, err := json.Marshal(ev.Data); err == nil && string(data) != "null" {
			line += "  " + string(data)
		}
	}
	ui.Print("%s\n", line)
}
