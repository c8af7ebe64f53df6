package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"prdpilot/pkg/logging"
	"prdpilot/pkg/ui"
)

var logTailFlag int

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show the log file location or its recent lines",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := logging.LogPath()
		if logTailFlag <= 0 {
			ui.Print("%s\n", path)
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				ui.Print("No log file yet at %s\n", path)
				return nil
			}
			return err
		}

		lines := splitLines(string(data))
		if len(lines) > 0 && lines[len(lines)-1] == "" {
			lines = lines[:len(lines)-1]
		}
		if len(lines) > logTailFlag {
			lines = lines[len(lines)-logTailFlag:]
		}
		for _, line := range lines {
			ui.Print("%s\n", line)
		}
		return nil
	},
}

func init() {
	logCmd.Flags().IntVarP(&logTailFlag, "tail", "n", 0, "print the last N log lines")
}
