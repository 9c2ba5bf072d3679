package cli

import (
	"fmt"

	"github.com/alexanderramin/ganttly/internal/cli/formatter"
	"github.com/alexanderramin/ganttly/internal/store"
	"github.com/spf13/cobra"
)

func newUndoCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "undo",
		Short: "Revert the most recent task or resource edit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return stepHistory(cmd, app, true)
		},
	}
}

func newRedoCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "redo",
		Short: "Re-apply the most recently undone edit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return stepHistory(cmd, app, false)
		},
	}
}

func stepHistory(cmd *cobra.Command, app *App, undo bool) error {
	s, err := app.store()
	if err != nil {
		return err
	}

	stack, verb, step := s.RedoStack(), "Redid", s.Redo
	if undo {
		stack, verb, step = s.UndoStack(), "Undid", s.Undo
	}
	if len(stack) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim(fmt.Sprintf("Nothing to %s.", cmd.Name())))
		return nil
	}

	item := stack[len(stack)-1]
	if err := step(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", verb, describeUndo(item), formatter.Dim(historyDepth(s)))
	return nil
}

func describeUndo(it store.UndoItem) string {
	return fmt.Sprintf("%s %s", it.Kind, formatter.Bold(it.TargetID))
}

func historyDepth(s *store.Store) string {
	return fmt.Sprintf("(%d undo · %d redo)", len(s.UndoStack()), len(s.RedoStack()))
}
