package cli

import (
	"fmt"
	"slices"

	"github.com/alexanderramin/ganttly/internal/cli/formatter"
	"github.com/alexanderramin/ganttly/internal/domain"
	"github.com/alexanderramin/ganttly/internal/pkgfile"
	"github.com/spf13/cobra"
)

func newSaveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "save",
		Short: "Save a manual snapshot of the active project",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.store()
			if err != nil {
				return err
			}
			p, err := activeProject(s)
			if err != nil {
				return err
			}
			if err := s.SaveProject(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s %s\n", formatter.Bold(p.Name), formatter.SaveStateBadge(s.ProjectState().CurrentState))
			return nil
		},
	}
}

func newExportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "export PATH",
		Short: "Write the active project to a .json or .yaml file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.store()
			if err != nil {
				return err
			}
			if _, err := activeProject(s); err != nil {
				return err
			}
			if _, err := pkgfile.FormatForPath(args[0]); err != nil {
				return err
			}
			if err := s.ExportProjectFile(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", args[0])
			return nil
		},
	}
}

func newOpenCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "open PATH",
		Short: "Open a project file and make it active",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.store()
			if err != nil {
				return err
			}
			if err := s.OpenProjectFile(cmd.Context(), args[0]); err != nil {
				return err
			}
			p := s.CurrentProject()
			fmt.Fprintf(cmd.OutOrStdout(), "Opened %s %s\n", formatter.Bold(p.Name),
				formatter.Dim(formatter.FormatCount(len(p.Tasks), "task", "tasks")))
			return nil
		},
	}
}

func newSnapshotCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "List, restore or delete durable snapshots",
	}

	listCmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List snapshots, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.store()
			if err != nil {
				return err
			}
			list, err := s.ListSnapshots(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatSnapshotList(list, app.now()))
			return nil
		},
	}

	restoreCmd := &cobra.Command{
		Use:   "restore NAME",
		Short: "Restore a snapshot as the active project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.store()
			if err != nil {
				return err
			}
			list, err := s.ListSnapshots(cmd.Context())
			if err != nil {
				return err
			}
			if !slices.ContainsFunc(list, func(info domain.SnapshotInfo) bool { return info.Name == args[0] }) {
				return fmt.Errorf("snapshot not found: %q", args[0])
			}
			if err := s.RestoreSnapshot(cmd.Context(), args[0]); err != nil {
				return err
			}
			after := s.CurrentProject()
			fmt.Fprintf(cmd.OutOrStdout(), "Restored %s from %s\n", formatter.Bold(after.Name), args[0])
			return nil
		},
	}

	var yes bool
	restoreCmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation in the shell")

	deleteCmd := &cobra.Command{
		Use:     "delete NAME",
		Aliases: []string{"rm"},
		Short:   "Delete a snapshot",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.store()
			if err != nil {
				return err
			}
			if err := s.DeleteSnapshot(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted snapshot %s\n", args[0])
			return nil
		},
	}
	deleteCmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation in the shell")

	cmd.AddCommand(listCmd, restoreCmd, deleteCmd)
	return cmd
}

func newRecentCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List recently saved or opened projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.store()
			if err != nil {
				return err
			}
			list, err := s.RecentProjects(cmd.Context(), limit)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatRecentList(list, app.now()))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum entries (default 10)")
	return cmd
}

func newAutosaveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:       "autosave on|off|now",
		Short:     "Control the autosave timer",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"on", "off", "now"},
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.store()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch args[0] {
			case "on":
				s.SetAutosaveActive(true)
				fmt.Fprintln(out, "Autosave "+formatter.StyleGreen.Render("on"))
			case "off":
				s.SetAutosaveActive(false)
				fmt.Fprintln(out, "Autosave "+formatter.StyleYellow.Render("paused"))
			case "now":
				wrote, err := s.AutosaveNow(cmd.Context())
				if err != nil {
					return err
				}
				if !wrote {
					fmt.Fprintln(out, formatter.Dim("Nothing to autosave."))
					return nil
				}
				fmt.Fprintf(out, "Autosaved %s\n", s.LastAutosave().Name)
			default:
				return fmt.Errorf("unknown autosave mode %q: use on, off or now", args[0])
			}
			return nil
		},
	}
}
