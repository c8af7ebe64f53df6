package main

import (
	"os"

	"prdpilot/cmd"
	"prdpilot/pkg/logging"
)

func main() {
	logger := logging.GetLogger()
	defer func() {
		if err := logger.Close(); err != nil {
			os.Stderr.WriteString("Error closing logger: " + err.Error() + "\n")
		}
	}()

	if err := cmd.Execute(); err != nil {
		logger.LogError(err)
		os.Exit(1)
	}
}
