package cli

import (
	"fmt"
	"slices"

	"github.com/alexanderramin/ganttly/internal/cli/formatter"
	"github.com/alexanderramin/ganttly/internal/domain"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newTaskCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Edit tasks of the active project (undoable)",
	}

	cmd.AddCommand(
		newTaskAddCmd(app),
		newTaskUpdateCmd(app),
		newTaskDeleteCmd(app),
		newTaskListCmd(app),
	)

	return cmd
}

// taskFlags binds the editable task fields to a command's flags.
type taskFlags struct {
	id, name, start, end, status, deps, resources, notes string
	progress                                             float64
}

func (f *taskFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.name, "name", "", "Task name")
	fs.StringVar(&f.start, "start", "", "Start date (YYYY-MM-DD)")
	fs.StringVar(&f.end, "end", "", "End date (YYYY-MM-DD)")
	fs.Float64Var(&f.progress, "progress", 0, "Completion percentage (0-100)")
	fs.StringVar(&f.status, "status", "", "Status: todo, in_progress, done")
	fs.StringVar(&f.deps, "deps", "", "Comma-separated ids of tasks this one depends on")
	fs.StringVar(&f.resources, "resources", "", "Comma-separated ids of assigned resources")
	fs.StringVar(&f.notes, "notes", "", "Free-form notes")
}

// apply copies every flag the user set onto t.
func (f *taskFlags) apply(fs *pflag.FlagSet, t *domain.Task) error {
	if fs.Changed("name") {
		t.Name = f.name
	}
	if fs.Changed("start") {
		d, err := parseOptionalDate("start", f.start)
		if err != nil {
			return err
		}
		t.Start = d
	}
	if fs.Changed("end") {
		d, err := parseOptionalDate("end", f.end)
		if err != nil {
			return err
		}
		t.End = d
	}
	if fs.Changed("progress") {
		t.Progress = f.progress
	}
	if fs.Changed("status") {
		t.Status = domain.TaskStatus(f.status)
	}
	if fs.Changed("deps") {
		t.Dependencies = splitList(f.deps)
	}
	if fs.Changed("resources") {
		t.ResourceIDs = splitList(f.resources)
	}
	if fs.Changed("notes") {
		t.Notes = f.notes
	}
	return nil
}

// checkTask validates t against the project it is about to join.
func checkTask(p *domain.Project, t domain.Task) error {
	if t.Name == "" {
		return fmt.Errorf("task name is required (--name)")
	}
	if !domain.ValidTaskStatuses[string(t.Status)] {
		return fmt.Errorf("invalid status %q: use todo, in_progress or done", t.Status)
	}
	if t.Progress < 0 || t.Progress > 100 {
		return fmt.Errorf("progress must be between 0 and 100")
	}
	if t.Start != nil && t.End != nil && t.End.Before(*t.Start) {
		return fmt.Errorf("end date is before start date")
	}
	for _, dep := range t.Dependencies {
		if dep == t.ID {
			return fmt.Errorf("task %s cannot depend on itself", t.ID)
		}
		if p.TaskIndex(dep) < 0 {
			return fmt.Errorf("unknown dependency %q", dep)
		}
	}
	for _, rid := range t.ResourceIDs {
		if p.ResourceIndex(rid) < 0 {
			return fmt.Errorf("unknown resource %q", rid)
		}
	}
	return nil
}

func newTaskAddCmd(app *App) *cobra.Command {
	var f taskFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.store()
			if err != nil {
				return err
			}
			p, err := activeProject(s)
			if err != nil {
				return err
			}

			t := domain.Task{ID: f.id, Status: domain.TaskTodo}
			if t.ID == "" {
				t.ID = nextEntityID("T", taskIDs(p))
			} else if p.TaskIndex(t.ID) >= 0 {
				return fmt.Errorf("task %s already exists", t.ID)
			}
			if err := f.apply(cmd.Flags(), &t); err != nil {
				return err
			}
			if t.Progress >= 100 && !cmd.Flags().Changed("status") {
				t.Status = domain.TaskDone
			}
			if err := checkTask(p, t); err != nil {
				return err
			}

			s.AddTask(t)
			fmt.Fprintf(cmd.OutOrStdout(), "Added task %s %s\n", formatter.Bold(t.ID), t.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&f.id, "id", "", "Task id (default: next T<n>)")
	f.register(cmd.Flags())
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newTaskUpdateCmd(app *App) *cobra.Command {
	var f taskFlags

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Change fields of a task; only the flags given are applied",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.store()
			if err != nil {
				return err
			}
			p, err := activeProject(s)
			if err != nil {
				return err
			}
			i := p.TaskIndex(args[0])
			if i < 0 {
				return fmt.Errorf("task not found: %q", args[0])
			}
			if cmd.Flags().NFlag() == 0 {
				return fmt.Errorf("nothing to update; pass at least one flag")
			}

			t := p.Tasks[i].Clone()
			if err := f.apply(cmd.Flags(), &t); err != nil {
				return err
			}
			if err := checkTask(p, t); err != nil {
				return err
			}

			s.UpdateTask(t.ID, t)
			fmt.Fprintf(cmd.OutOrStdout(), "Updated task %s\n", formatter.Bold(t.ID))
			return nil
		},
	}

	f.register(cmd.Flags())
	return cmd
}

func newTaskDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "delete ID",
		Aliases: []string{"rm"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.store()
			if err != nil {
				return err
			}
			p, err := activeProject(s)
			if err != nil {
				return err
			}
			if p.TaskIndex(args[0]) < 0 {
				return fmt.Errorf("task not found: %q", args[0])
			}

			s.DeleteTask(args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %s\n", formatter.Bold(args[0]))
			if dependents := dependentsOf(p, args[0]); len(dependents) > 0 {
				fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim(fmt.Sprintf("Still referenced as a dependency by %v", dependents)))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation in the shell")
	return cmd
}

func dependentsOf(p *domain.Project, id string) []string {
	var out []string
	for _, t := range p.Tasks {
		if slices.Contains(t.Dependencies, id) {
			out = append(out, t.ID)
		}
	}
	return out
}

func newTaskListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.store()
			if err != nil {
				return err
			}
			p, err := activeProject(s)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatTaskList(p))
			return nil
		},
	}
}
