package cli

import (
	"fmt"

	"github.com/alexanderramin/ganttly/internal/cli/formatter"
	"github.com/alexanderramin/ganttly/internal/store"
	"github.com/spf13/cobra"
)

func newStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the active project and its save state",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.store()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatStatus(statusData(app, s)))
			return nil
		},
	}
}

func statusData(app *App, s *store.Store) formatter.StatusData {
	st := s.ProjectState()
	return formatter.StatusData{
		Project:      s.CurrentProject(),
		State:        st.CurrentState,
		Unsaved:      st.HasUnsavedChanges,
		Untitled:     st.IsUntitled,
		OpenedFrom:   st.OpenedFrom,
		LastModified: st.LastModified,
		Autosave:     st.AutosaveTimer,
		LastAutosave: s.LastAutosave(),
		UndoDepth:    len(s.UndoStack()),
		RedoDepth:    len(s.RedoStack()),
		Now:          app.now(),
	}
}
