package cli

import (
	"fmt"
	"slices"

	"github.com/alexanderramin/ganttly/internal/cli/formatter"
	"github.com/alexanderramin/ganttly/internal/domain"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newResourceCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resource",
		Short: "Edit resources of the active project (undoable)",
	}

	cmd.AddCommand(
		newResourceAddCmd(app),
		newResourceUpdateCmd(app),
		newResourceDeleteCmd(app),
		newResourceListCmd(app),
	)

	return cmd
}

type resourceFlags struct {
	id, name, role, email string
	rate, capacity        float64
}

func (f *resourceFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.name, "name", "", "Resource name")
	fs.StringVar(&f.role, "role", "", "Role, such as Engineer")
	fs.StringVar(&f.email, "email", "", "Contact email")
	fs.Float64Var(&f.rate, "rate", 0, "Hourly rate")
	fs.Float64Var(&f.capacity, "capacity", 100, "Capacity as a percentage of full time")
}

func (f *resourceFlags) apply(fs *pflag.FlagSet, r *domain.Resource) {
	if fs.Changed("name") {
		r.Name = f.name
	}
	if fs.Changed("role") {
		r.Role = f.role
	}
	if fs.Changed("email") {
		r.Email = f.email
	}
	if fs.Changed("rate") {
		r.HourlyRate = f.rate
	}
	if fs.Changed("capacity") {
		r.Capacity = f.capacity
	}
}

func checkResource(r domain.Resource) error {
	if r.Name == "" {
		return fmt.Errorf("resource name is required (--name)")
	}
	if r.HourlyRate < 0 {
		return fmt.Errorf("rate must not be negative")
	}
	if r.Capacity < 0 {
		return fmt.Errorf("capacity must not be negative")
	}
	return nil
}

func newResourceAddCmd(app *App) *cobra.Command {
	var f resourceFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a resource",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.store()
			if err != nil {
				return err
			}
			p, err := activeProject(s)
			if err != nil {
				return err
			}

			r := domain.Resource{ID: f.id, Capacity: f.capacity}
			if r.ID == "" {
				r.ID = nextEntityID("R", resourceIDs(p))
			} else if p.ResourceIndex(r.ID) >= 0 {
				return fmt.Errorf("resource %s already exists", r.ID)
			}
			f.apply(cmd.Flags(), &r)
			if err := checkResource(r); err != nil {
				return err
			}

			s.AddResource(r)
			fmt.Fprintf(cmd.OutOrStdout(), "Added resource %s %s\n", formatter.Bold(r.ID), r.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&f.id, "id", "", "Resource id (default: next R<n>)")
	f.register(cmd.Flags())
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newResourceUpdateCmd(app *App) *cobra.Command {
	var f resourceFlags

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Change fields of a resource; only the flags given are applied",
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
			i := p.ResourceIndex(args[0])
			if i < 0 {
				return fmt.Errorf("resource not found: %q", args[0])
			}
			if cmd.Flags().NFlag() == 0 {
				return fmt.Errorf("nothing to update; pass at least one flag")
			}

			r := p.Resources[i]
			f.apply(cmd.Flags(), &r)
			if err := checkResource(r); err != nil {
				return err
			}

			s.UpdateResource(r.ID, r)
			fmt.Fprintf(cmd.OutOrStdout(), "Updated resource %s\n", formatter.Bold(r.ID))
			return nil
		},
	}

	f.register(cmd.Flags())
	return cmd
}

func newResourceDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "delete ID",
		Aliases: []string{"rm"},
		Short:   "Delete a resource",
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
			if p.ResourceIndex(args[0]) < 0 {
				return fmt.Errorf("resource not found: %q", args[0])
			}

			s.DeleteResource(args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted resource %s\n", formatter.Bold(args[0]))
			var assigned []string
			for _, t := range p.Tasks {
				if slices.Contains(t.ResourceIDs, args[0]) {
					assigned = append(assigned, t.ID)
				}
			}
			if len(assigned) > 0 {
				fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim(fmt.Sprintf("Still assigned to tasks %v", assigned)))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation in the shell")
	return cmd
}

func newResourceListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List resources",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.store()
			if err != nil {
				return err
			}
			p, err := activeProject(s)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatResourceList(p))
			return nil
		},
	}
}
