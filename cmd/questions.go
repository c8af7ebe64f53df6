package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"prdpilot/pkg/api"
	"prdpilot/pkg/events"
	"prdpilot/pkg/pipeline"
	"prdpilot/pkg/session"
	"prdpilot/pkg/types"
	"prdpilot/pkg/ui"
)

var questionsCmd = &cobra.Command{
	Use:     "questions",
	Aliases: []string{"q"},
	Short:   "Answer clarification questions in an interactive session",
	Long: `Opens the clarification session for the project and walks through the
generated questions bucket by bucket, critical first. For each question you
can type an answer, or use:
  /skip    skip this question
  /next    leave it pending and move on
  /regen   regenerate the question set
  /done    finalize the session
  /quit    leave the session open and exit`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !ui.IsTerminal() {
			return fmt.Errorf("questions requires an interactive terminal")
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
		sess, err := session.Open(cmd.Context(), client, projectID, cfg.MaxQuestions)
		if err != nil {
			return err
		}
		defer sess.Close()

		reader := bufio.NewReader(os.Stdin)
		return questionLoop(cmd, sess, client, projectID, reader)
	},
}

func questionLoop(cmd *cobra.Command, sess *session.Session, client *api.Client, projectID string, reader *bufio.Reader) error {
	for {
		state := sess.Snapshot()
		printProgress(state)

		if state.Terminal() {
			ui.Print("No pending questions.\n")
			if ui.AskForConfirmation(reader, "Finalize the session?", true) {
				return finalizeSession(cmd, sess, client, projectID)
			}
			return nil
		}

		quit, regenerated, err := walkBuckets(sess, projectID, reader)
		if errors.Is(err, errFinalizeRequested) {
			return finalizeSession(cmd, sess, client, projectID)
		}
		if err != nil {
			return err
		}
		if quit {
			ui.Print("Session left open; your answers are saved.\n")
			return nil
		}
		if regenerated {
			continue
		}

		state = sess.Snapshot()
		if state.PendingCount() == 0 {
			ui.Print("\nAll questions handled: %d answered, %d skipped.\n", state.AnsweredCount, state.SkippedCount)
		}
		if ui.AskForConfirmation(reader, "Finalize the session?", state.PendingCount() == 0) {
			return finalizeSession(cmd, sess, client, projectID)
		}
		if state.PendingCount() == 0 {
			return nil
		}
	}
}

// walkBuckets presents each bucket's questions in severity-first order,
// starting from the auto-selected one.
func walkBuckets(sess *session.Session, projectID string, reader *bufio.Reader) (quit, regenerated bool, err error) {
	state := sess.Snapshot()

	started := state.ActiveBucket == ""
	for _, tier := range types.Priorities {
		if !started {
			if tier != state.ActiveBucket {
				continue
			}
			started = true
		}
		for _, gap := range state.Buckets.Bucket(tier) {
			// Already handled questions are not re-asked in this pass.
			if entry, ok := sess.Snapshot().AnswerFor(gap.SectionKey); ok && (entry.Skipped || entry.Answer != "") {
				continue
			}
			quit, regenerated, err = askQuestion(sess, projectID, gap, reader)
			if err != nil || quit || regenerated {
				return quit, regenerated, err
			}
		}
	}
	return false, false, nil
}

func askQuestion(sess *session.Session, projectID string, gap types.Gap, reader *bufio.Reader) (quit, regenerated bool, err error) {
	ui.Print("\n%s %s\n", ui.PriorityBadge(gap.Priority), ui.TitleCase(gap.SectionTitle))
	if gap.Question != "" {
		ui.Print("%s\n", gap.Question)
	}
	for _, q := range gap.GuidingQuestions {
		ui.Print("  - %s\n", q)
	}
	for i, opt := range gap.Options {
		ui.Print("  %d) %s\n", i+1, opt)
	}
	if draft := sess.Snapshot().Drafts[gap.SectionKey]; draft != "" {
		ui.Print("(previous answer: %s)\n", draft)
	}

	for {
		ui.Print("> ")
		line, readErr := ui.ReadLine(reader)
		if readErr == io.EOF {
			return true, false, nil
		}
		if readErr != nil {
			return false, false, readErr
		}

		switch line {
		case "/quit":
			return true, false, nil
		case "/next":
			return false, false, nil
		case "/skip":
			if err := sess.Skip(gap.SectionKey); err != nil {
				reportSessionError(err)
				continue
			}
			eventBus().Publish(events.TypeQuestionSkipped, projectID, gap.SectionKey)
			ui.Print("Skipped.\n")
			return false, false, nil
		case "/regen":
			if err := sess.Regenerate(); err != nil {
				reportSessionError(err)
				continue
			}
			eventBus().Publish(events.TypeSessionRegenerated, projectID, nil)
			ui.Print("Questions regenerated.\n")
			return false, true, nil
		case "/done":
			return false, false, errFinalizeRequested
		default:
			if err := sess.Save(gap.SectionKey, line); err != nil {
				reportSessionError(err)
				continue
			}
			eventBus().Publish(events.TypeQuestionAnswered, projectID, gap.SectionKey)
			ui.Print("Saved.\n")
			return false, false, nil
		}
	}
}

// errFinalizeRequested bubbles a /done out of the asking loop.
var errFinalizeRequested = errors.New("finalize requested")

func reportSessionError(err error) {
	switch {
	case errors.Is(err, session.ErrEmptyAnswer):
		ui.Errorf("Answer cannot be empty; use /skip to skip.")
	case errors.Is(err, session.ErrInFlight):
		ui.Errorf("Still saving this question; try again in a moment.")
	default:
		ui.Errorf("%v", err)
	}
}

func printProgress(state session.State) {
	ui.Print("\n%d question(s): %d answered, %d skipped, %d pending (regenerated %dx)\n",
		state.TotalQuestions(), state.AnsweredCount, state.SkippedCount,
		state.PendingCount(), state.RegenerationCount)
}

func finalizeSession(cmd *cobra.Command, sess *session.Session, client *api.Client, projectID string) error {
	if err := sess.Finalize(); err != nil {
		// The session stays open; the user may retry.
		return err
	}
	eventBus().Publish(events.TypeSessionFinalized, projectID, nil)
	ui.Print("Session finalized.\n")

	// Finalize implies a stage transition; learn it from the backend.
	store := pipeline.NewStore(client)
	if state, err := store.Refresh(cmd.Context(), projectID); err == nil && state.QuestionsGenerated {
		ui.Print("%s Questions stage complete. Next: prdpilot run build-document\n", ui.StageMark(true))
	}
	return nil
}
