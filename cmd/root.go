package cmd

import (
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "prdpilot",
	Short: "Client for the AI-assisted PRD construction pipeline",
	Long: `Prdpilot is a command-line client that guides you from raw source
documents to a structured requirements document (PRD). The backend runs a
multi-stage pipeline: process inputs, analyze gaps, generate clarification
questions, build the document, and generate a backlog.

Typical flow:
  prdpilot status               - see which pipeline stages are done
  prdpilot run process-inputs   - advance a stage
  prdpilot questions            - answer or skip clarification questions
  prdpilot versions             - list document snapshots
  prdpilot diff 1 2             - compare two snapshots section by section`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() error {
	return rootCmd.Execute()
}

var (
	projectFlag string
	serverFlag  string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&projectFlag, "project", "p", "", "project id (defaults to the configured project)")
	rootCmd.PersistentFlags().StringVar(&serverFlag, "server", "", "backend server URL override")

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(gapsCmd)
	rootCmd.AddCommand(questionsCmd)
	rootCmd.AddCommand(versionsCmd)
	rootCmd.AddCommand(viewCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(inputsCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(logCmd)
}
