package cli

import (
	"fmt"

	"github.com/alexanderramin/ganttly/internal/cli/formatter"
	"github.com/alexanderramin/ganttly/internal/domain"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Costs, risks, milestones and the budget are project ledger data. Their
// edits dirty the project but are not recorded in the undo history.

func ledgerIDs[T any](items []T, id func(T) string) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = id(it)
	}
	return out
}

// withActiveProject wraps a RunE body that needs the store and the active
// project.
func withActiveProject(app *App, fn func(cmd *cobra.Command, args []string, p *domain.Project) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, err := app.store()
		if err != nil {
			return err
		}
		p, err := activeProject(s)
		if err != nil {
			return err
		}
		return fn(cmd, args, p)
	}
}

// ── costs ───────────────────────────────────────────────────────────────────

type costFlags struct {
	description, category, currency, date, task string
	amount                                      float64
}

func (f *costFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.description, "desc", "", "What the money was spent on")
	fs.StringVar(&f.category, "category", "", "Cost category, such as labour or materials")
	fs.Float64Var(&f.amount, "amount", 0, "Amount spent")
	fs.StringVar(&f.currency, "currency", "", "Currency (default: budget currency)")
	fs.StringVar(&f.date, "date", "", "Date incurred (YYYY-MM-DD)")
	fs.StringVar(&f.task, "task", "", "Task the cost is booked against")
}

func (f *costFlags) apply(fs *pflag.FlagSet, p *domain.Project, c *domain.CostRecord) error {
	if fs.Changed("desc") {
		c.Description = f.description
	}
	if fs.Changed("category") {
		c.Category = f.category
	}
	if fs.Changed("amount") {
		c.Amount = f.amount
	}
	if fs.Changed("currency") {
		c.Currency = f.currency
	}
	if fs.Changed("date") {
		d, err := parseOptionalDate("date", f.date)
		if err != nil {
			return err
		}
		c.IncurredOn = d
	}
	if fs.Changed("task") {
		if f.task != "" && p.TaskIndex(f.task) < 0 {
			return fmt.Errorf("unknown task %q", f.task)
		}
		c.TaskID = f.task
	}
	if c.Description == "" {
		return fmt.Errorf("cost description is required (--desc)")
	}
	if c.Amount < 0 {
		return fmt.Errorf("amount must not be negative")
	}
	return nil
}

func newCostCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cost",
		Short: "Record project costs",
	}

	var add, upd costFlags
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Record a cost",
		RunE: withActiveProject(app, func(cmd *cobra.Command, args []string, p *domain.Project) error {
			c := domain.CostRecord{ID: nextEntityID("C", ledgerIDs(p.Costs, func(c domain.CostRecord) string { return c.ID }))}
			if err := add.apply(cmd.Flags(), p, &c); err != nil {
				return err
			}
			app.Store.AddCost(c)
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded cost %s %s\n", formatter.Bold(c.ID),
				formatter.FormatMoney(c.Amount, domain.CoalesceStr(c.Currency, p.Budget.Currency)))
			return nil
		}),
	}
	add.register(addCmd.Flags())
	_ = addCmd.MarkFlagRequired("desc")
	_ = addCmd.MarkFlagRequired("amount")

	updCmd := &cobra.Command{
		Use:   "update ID",
		Short: "Change a cost record",
		Args:  cobra.ExactArgs(1),
		RunE: withActiveProject(app, func(cmd *cobra.Command, args []string, p *domain.Project) error {
			i := p.CostIndex(args[0])
			if i < 0 {
				return fmt.Errorf("cost not found: %q", args[0])
			}
			c := p.Costs[i].Clone()
			if err := upd.apply(cmd.Flags(), p, &c); err != nil {
				return err
			}
			app.Store.UpdateCost(c.ID, c)
			fmt.Fprintf(cmd.OutOrStdout(), "Updated cost %s\n", formatter.Bold(c.ID))
			return nil
		}),
	}
	upd.register(updCmd.Flags())

	cmd.AddCommand(
		addCmd,
		updCmd,
		newLedgerDeleteCmd(app, "cost", func(p *domain.Project, id string) bool { return p.CostIndex(id) >= 0 }, app.deleteCost),
		&cobra.Command{
			Use:     "list",
			Aliases: []string{"ls"},
			Short:   "List costs against the budget",
			RunE: withActiveProject(app, func(cmd *cobra.Command, args []string, p *domain.Project) error {
				fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatCostList(p))
				return nil
			}),
		},
	)
	return cmd
}

func (a *App) deleteCost(id string)      { a.Store.DeleteCost(id) }
func (a *App) deleteRisk(id string)      { a.Store.DeleteRisk(id) }
func (a *App) deleteMilestone(id string) { a.Store.DeleteMilestone(id) }

func newLedgerDeleteCmd(app *App, noun string, exists func(*domain.Project, string) bool, del func(string)) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:     "delete ID",
		Aliases: []string{"rm"},
		Short:   fmt.Sprintf("Delete a %s", noun),
		Args:    cobra.ExactArgs(1),
		RunE: withActiveProject(app, func(cmd *cobra.Command, args []string, p *domain.Project) error {
			if !exists(p, args[0]) {
				return fmt.Errorf("%s not found: %q", noun, args[0])
			}
			del(args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s %s\n", noun, formatter.Bold(args[0]))
			return nil
		}),
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation in the shell")
	return cmd
}

// ── risks ───────────────────────────────────────────────────────────────────

type riskFlags struct {
	title, mitigation, owner, status string
	probability                      float64
	impact                           int
}

func (f *riskFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.title, "title", "", "Risk title")
	fs.Float64Var(&f.probability, "probability", 0, "Likelihood between 0 and 1")
	fs.IntVar(&f.impact, "impact", 0, "Impact from 1 (minor) to 5 (severe)")
	fs.StringVar(&f.mitigation, "mitigation", "", "Mitigation plan")
	fs.StringVar(&f.owner, "owner", "", "Who watches this risk")
	fs.StringVar(&f.status, "status", "", "Status: open, mitigated, closed")
}

func (f *riskFlags) apply(fs *pflag.FlagSet, r *domain.Risk) error {
	if fs.Changed("title") {
		r.Title = f.title
	}
	if fs.Changed("probability") {
		r.Probability = f.probability
	}
	if fs.Changed("impact") {
		r.Impact = f.impact
	}
	if fs.Changed("mitigation") {
		r.Mitigation = f.mitigation
	}
	if fs.Changed("owner") {
		r.Owner = f.owner
	}
	if fs.Changed("status") {
		r.Status = domain.RiskStatus(f.status)
	}
	switch {
	case r.Title == "":
		return fmt.Errorf("risk title is required (--title)")
	case r.Probability < 0 || r.Probability > 1:
		return fmt.Errorf("probability must be between 0 and 1")
	case fs.Changed("impact") && (r.Impact < 1 || r.Impact > 5):
		return fmt.Errorf("impact must be between 1 and 5")
	}
	switch r.Status {
	case domain.RiskOpen, domain.RiskMitigated, domain.RiskClosed:
		return nil
	default:
		return fmt.Errorf("invalid status %q: use open, mitigated or closed", r.Status)
	}
}

func newRiskCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "risk",
		Short: "Maintain the risk register",
	}

	var add, upd riskFlags
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Register a risk",
		RunE: withActiveProject(app, func(cmd *cobra.Command, args []string, p *domain.Project) error {
			r := domain.Risk{
				ID:     nextEntityID("RK", ledgerIDs(p.Risks, func(r domain.Risk) string { return r.ID })),
				Status: domain.RiskOpen,
			}
			if err := add.apply(cmd.Flags(), &r); err != nil {
				return err
			}
			app.Store.AddRisk(r)
			fmt.Fprintf(cmd.OutOrStdout(), "Registered risk %s (exposure %.1f)\n", formatter.Bold(r.ID), r.Exposure())
			return nil
		}),
	}
	add.register(addCmd.Flags())
	_ = addCmd.MarkFlagRequired("title")
	_ = addCmd.MarkFlagRequired("impact")

	updCmd := &cobra.Command{
		Use:   "update ID",
		Short: "Change a risk",
		Args:  cobra.ExactArgs(1),
		RunE: withActiveProject(app, func(cmd *cobra.Command, args []string, p *domain.Project) error {
			i := p.RiskIndex(args[0])
			if i < 0 {
				return fmt.Errorf("risk not found: %q", args[0])
			}
			r := p.Risks[i]
			if err := upd.apply(cmd.Flags(), &r); err != nil {
				return err
			}
			app.Store.UpdateRisk(r.ID, r)
			fmt.Fprintf(cmd.OutOrStdout(), "Updated risk %s\n", formatter.Bold(r.ID))
			return nil
		}),
	}
	upd.register(updCmd.Flags())

	cmd.AddCommand(
		addCmd,
		updCmd,
		newLedgerDeleteCmd(app, "risk", func(p *domain.Project, id string) bool { return p.RiskIndex(id) >= 0 }, app.deleteRisk),
		&cobra.Command{
			Use:     "list",
			Aliases: []string{"ls"},
			Short:   "List risks by exposure",
			RunE: withActiveProject(app, func(cmd *cobra.Command, args []string, p *domain.Project) error {
				fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatRiskList(p))
				return nil
			}),
		},
	)
	return cmd
}

// ── milestones ──────────────────────────────────────────────────────────────

type milestoneFlags struct {
	name, due string
	done      bool
}

func (f *milestoneFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.name, "name", "", "Milestone name")
	fs.StringVar(&f.due, "due", "", "Due date (YYYY-MM-DD)")
	fs.BoolVar(&f.done, "done", false, "Mark the milestone reached")
}

func (f *milestoneFlags) apply(fs *pflag.FlagSet, m *domain.Milestone) error {
	if fs.Changed("name") {
		m.Name = f.name
	}
	if fs.Changed("due") {
		d, err := parseOptionalDate("due", f.due)
		if err != nil {
			return err
		}
		m.Due = d
	}
	if fs.Changed("done") {
		m.Done = f.done
	}
	if m.Name == "" {
		return fmt.Errorf("milestone name is required (--name)")
	}
	return nil
}

func newMilestoneCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "milestone",
		Short: "Track project milestones",
	}

	var add, upd milestoneFlags
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a milestone",
		RunE: withActiveProject(app, func(cmd *cobra.Command, args []string, p *domain.Project) error {
			m := domain.Milestone{ID: nextEntityID("M", ledgerIDs(p.Milestones, func(m domain.Milestone) string { return m.ID }))}
			if err := add.apply(cmd.Flags(), &m); err != nil {
				return err
			}
			app.Store.AddMilestone(m)
			fmt.Fprintf(cmd.OutOrStdout(), "Added milestone %s %s\n", formatter.Bold(m.ID), m.Name)
			return nil
		}),
	}
	add.register(addCmd.Flags())
	_ = addCmd.MarkFlagRequired("name")

	updCmd := &cobra.Command{
		Use:   "update ID",
		Short: "Change a milestone",
		Args:  cobra.ExactArgs(1),
		RunE: withActiveProject(app, func(cmd *cobra.Command, args []string, p *domain.Project) error {
			i := p.MilestoneIndex(args[0])
			if i < 0 {
				return fmt.Errorf("milestone not found: %q", args[0])
			}
			m := p.Milestones[i].Clone()
			if err := upd.apply(cmd.Flags(), &m); err != nil {
				return err
			}
			app.Store.UpdateMilestone(m.ID, m)
			fmt.Fprintf(cmd.OutOrStdout(), "Updated milestone %s\n", formatter.Bold(m.ID))
			return nil
		}),
	}
	upd.register(updCmd.Flags())

	cmd.AddCommand(
		addCmd,
		updCmd,
		newLedgerDeleteCmd(app, "milestone", func(p *domain.Project, id string) bool { return p.MilestoneIndex(id) >= 0 }, app.deleteMilestone),
		&cobra.Command{
			Use:     "list",
			Aliases: []string{"ls"},
			Short:   "List milestones",
			RunE: withActiveProject(app, func(cmd *cobra.Command, args []string, p *domain.Project) error {
				fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatMilestoneList(p))
				return nil
			}),
		},
	)
	return cmd
}

// ── budget ──────────────────────────────────────────────────────────────────

func newBudgetCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Show or set the project budget",
		RunE: withActiveProject(app, func(cmd *cobra.Command, args []string, p *domain.Project) error {
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatBudgetLine(p))
			return nil
		}),
	}

	var total, contingency float64
	var currency string
	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Set the budget; only the flags given are applied",
		RunE: withActiveProject(app, func(cmd *cobra.Command, args []string, p *domain.Project) error {
			b := p.Budget
			fs := cmd.Flags()
			if fs.Changed("total") {
				b.Total = total
			}
			if fs.Changed("currency") {
				b.Currency = currency
			}
			if fs.Changed("contingency") {
				b.Contingency = contingency
			}
			if b.Total < 0 || b.Contingency < 0 {
				return fmt.Errorf("budget amounts must not be negative")
			}
			app.Store.SetBudget(b)
			fmt.Fprintf(cmd.OutOrStdout(), "Budget set to %s\n", formatter.FormatMoney(b.Total, b.Currency))
			return nil
		}),
	}
	setCmd.Flags().Float64Var(&total, "total", 0, "Total budget")
	setCmd.Flags().StringVar(&currency, "currency", "", "Currency code, such as EUR")
	setCmd.Flags().Float64Var(&contingency, "contingency", 0, "Contingency reserve")

	cmd.AddCommand(setCmd)
	return cmd
}
