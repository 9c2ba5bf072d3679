package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/ganttly/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newProjectCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage open projects",
	}

	cmd.AddCommand(
		newProjectNewCmd(app),
		newProjectListCmd(app),
		newProjectUseCmd(app),
		newProjectRenameCmd(app),
		newProjectCloseCmd(app),
	)

	return cmd
}

func newProjectNewCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "new [NAME]",
		Short: "Create an empty project and make it active",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.store()
			if err != nil {
				return err
			}
			id := s.NewProject(strings.Join(args, " "))
			p := s.CurrentProject()
			fmt.Fprintf(cmd.OutOrStdout(), "Created project %s %s\n", formatter.Bold(p.Name), formatter.TruncID(id))
			return nil
		},
	}
}

func newProjectListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List open projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.store()
			if err != nil {
				return err
			}
			var currentID string
			if cur := s.CurrentProject(); cur != nil {
				currentID = cur.ID
			}
			projects := s.Projects()
			rows := make([]formatter.ProjectRow, 0, len(projects))
			for _, p := range projects {
				st, _ := s.StateOf(p.ID)
				rows = append(rows, formatter.ProjectRow{Project: p, State: st.CurrentState, Current: p.ID == currentID})
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatProjectList(rows))
			return nil
		},
	}
}

func newProjectUseCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "use ID|NAME",
		Short: "Switch the active project",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.store()
			if err != nil {
				return err
			}
			id, err := resolveProjectID(s, strings.Join(args, " "))
			if err != nil {
				return err
			}
			if err := s.SetCurrentProject(id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Active project: %s\n", formatter.Bold(s.CurrentProject().Name))
			return nil
		},
	}
}

func newProjectRenameCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rename NAME",
		Short: "Rename the active project",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.store()
			if err != nil {
				return err
			}
			if _, err := activeProject(s); err != nil {
				return err
			}
			if err := s.RenameProject(strings.Join(args, " ")); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed project to %s\n", formatter.Bold(s.CurrentProject().Name))
			return nil
		},
	}
}

func newProjectCloseCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "close ID|NAME",
		Short: "Close an open project that is not active",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.store()
			if err != nil {
				return err
			}
			id, err := resolveProjectID(s, strings.Join(args, " "))
			if err != nil {
				return err
			}
			if st, ok := s.StateOf(id); ok && st.HasUnsavedChanges && !yes {
				return fmt.Errorf("project has unsaved changes; save it first or pass --yes")
			}
			if err := s.CloseProject(id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Closed project %s\n", formatter.TruncID(id))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Close even with unsaved changes")
	return cmd
}
