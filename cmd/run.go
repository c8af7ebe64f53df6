package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"prdpilot/pkg/events"
	"prdpilot/pkg/logging"
	"prdpilot/pkg/pipeline"
	"prdpilot/pkg/types"
	"prdpilot/pkg/ui"
)

var runCmd = &cobra.Command{
	Use:   "run <action>",
	Short: "Invoke a pipeline action",
	Long: `Invokes one pipeline action: process-inputs, analyze-gaps,
generate-questions, build-document, or generate-backlog. Prerequisites are
checked before the request; if any are missing they are named and no
request is sent.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		projectID, err := resolveProject(cfg)
		if err != nil {
			return err
		}

		action, ok := pipeline.ActionByID(tableActionID(args[0]))
		if !ok {
			var names []string
			for _, a := range pipeline.Actions {
				names = append(names, cliActionName(a.ID))
			}
			return fmt.Errorf("unknown action %q (one of: %s)", args[0], strings.Join(names, ", "))
		}

		client := newClient(cfg)
		store := pipeline.NewStore(client)
		logger := logging.GetLogger()

		// Reactive prerequisite check: a local failure names the missing
		// stages and never reaches the network.
		if err := store.CheckRunnable(cmd.Context(), projectID, action); err != nil {
			var prereq *pipeline.PrerequisiteError
			if errors.As(err, &prereq) {
				ui.Errorf("Cannot run %s yet: complete %s first.", cliActionName(action.ID), strings.Join(prereq.Missing, ", "))
				return nil
			}
			return err
		}

		ui.Print("Running %s...\n", cliActionName(action.ID))
		eventBus().Publish(events.TypeActionInvoked, projectID, action.ID)
		result, err := client.InvokeAction(cmd.Context(), projectID, action.ID)
		if err != nil {
			eventBus().Publish(events.TypeError, projectID, err.Error())
			return err
		}
		eventBus().Publish(events.TypeActionCompleted, projectID, action.ID)
		logger.Logf("action %s completed for project %s", action.ID, projectID)

		if result.Message != "" {
			ui.Print("%s\n", result.Message)
		}

		if action.ID == "build_document" {
			var build types.BuildResult
			if err := json.Unmarshal(result.Raw, &build); err == nil && build.UserAnswersCount > 0 {
				ui.Print("Folded in %d clarification answer(s): %s\n",
					build.UserAnswersCount, strings.Join(build.UserAnswersUsed, ", "))
			}
		}

		// Completion is only learned from the backend; re-fetch rather
		// than flipping any stage locally.
		state, err := store.Refresh(cmd.Context(), projectID)
		if err != nil {
			return err
		}
		if state.Stage(action.CompletedWhen) {
			ui.Print("%s %s complete\n", ui.StageMark(true), action.Title)
		}
		return nil
	},
}
