package formatter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/alexanderramin/ganttly/internal/domain"
)

// ProjectRow pairs an open project with its save-state for listing.
type ProjectRow struct {
	Project *domain.Project
	State   domain.SaveState
	Current bool
}

// FormatProjectList renders the open projects inside a bordered box. The
// active project is marked with an arrow.
func FormatProjectList(rows []ProjectRow) string {
	if len(rows) == 0 {
		return Dim("No open projects.")
	}
	headers := []string{"", "ID", "NAME", "PROGRESS", "TASKS", "STATE"}
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		marker := " "
		name := r.Project.Name
		if r.Current {
			marker = StylePurple.Render("▸")
			name = Bold(name)
		}
		out = append(out, []string{
			marker,
			TruncID(r.Project.ID),
			name,
			RenderPercent(r.Project.Progress, 10),
			fmt.Sprintf("%d", len(r.Project.Tasks)),
			SaveStateBadge(r.State),
		})
	}
	return RenderBox("Projects", RenderTable(headers, out))
}

// maxNameWidth caps free-text columns so tables stay within a terminal.
const maxNameWidth = 36

// FormatTaskList renders a project's tasks. Resource ids are resolved to
// names where the project knows them.
func FormatTaskList(p *domain.Project) string {
	if len(p.Tasks) == 0 {
		return Dim("No tasks yet. Add one with 'task add --name <name>'.")
	}
	names := make(map[string]string, len(p.Resources))
	for _, r := range p.Resources {
		names[r.ID] = r.Name
	}

	headers := []string{"ID", "NAME", "STATUS", "PROGRESS", "START", "END", "DEPS", "ASSIGNED"}
	rows := make([][]string, 0, len(p.Tasks))
	for _, t := range p.Tasks {
		assigned := make([]string, 0, len(t.ResourceIDs))
		for _, id := range t.ResourceIDs {
			assigned = append(assigned, domain.CoalesceStr(names[id], id))
		}
		deps := Dim("--")
		if len(t.Dependencies) > 0 {
			deps = strings.Join(t.Dependencies, ",")
		}
		rows = append(rows, []string{
			t.ID,
			TruncateText(t.Name, maxNameWidth),
			TaskStatusPill(t.Status),
			RenderCompactBar(t.Progress/100, 8, t.Status == domain.TaskDone) + fmt.Sprintf(" %3.0f%%", t.Progress),
			HumanDate(t.Start),
			HumanDate(t.End),
			deps,
			domain.CoalesceStr(strings.Join(assigned, ", "), Dim("--")),
		})
	}
	title := fmt.Sprintf("Tasks · %s", p.Name)
	footer := "\n" + Dim("Project progress ") + RenderPercent(p.Progress, 20)
	return RenderBox(title, RenderTable(headers, rows)+footer)
}

// FormatResourceList renders a project's resources.
func FormatResourceList(p *domain.Project) string {
	if len(p.Resources) == 0 {
		return Dim("No resources yet. Add one with 'resource add --name <name>'.")
	}
	headers := []string{"ID", "NAME", "ROLE", "EMAIL", "RATE", "CAPACITY"}
	rows := make([][]string, 0, len(p.Resources))
	for _, r := range p.Resources {
		rows = append(rows, []string{
			r.ID,
			r.Name,
			domain.CoalesceStr(r.Role, Dim("--")),
			domain.CoalesceStr(r.Email, Dim("--")),
			FormatMoney(r.HourlyRate, p.Budget.Currency),
			fmt.Sprintf("%.0f%%", r.Capacity),
		})
	}
	return RenderBox("Resources", RenderTableAligned(headers, rows, map[int]bool{4: true, 5: true}))
}

// FormatCostList renders cost records with the total spent against budget.
func FormatCostList(p *domain.Project) string {
	headers := []string{"ID", "DESCRIPTION", "CATEGORY", "AMOUNT", "DATE", "TASK"}
	rows := make([][]string, 0, len(p.Costs))
	for _, c := range p.Costs {
		rows = append(rows, []string{
			c.ID,
			TruncateText(c.Description, maxNameWidth),
			domain.CoalesceStr(c.Category, Dim("--")),
			FormatMoney(c.Amount, domain.CoalesceStr(c.Currency, p.Budget.Currency)),
			HumanDate(c.IncurredOn),
			domain.CoalesceStr(c.TaskID, Dim("--")),
		})
	}

	var b strings.Builder
	if len(rows) == 0 {
		b.WriteString(Dim("No costs recorded.") + "\n")
	} else {
		b.WriteString(RenderTableAligned(headers, rows, map[int]bool{3: true}))
	}
	b.WriteString("\n" + FormatBudgetLine(p))
	return RenderBox("Costs", b.String())
}

// FormatBudgetLine summarises spend against budget, for example
// "Spent 1,200.00 of 5,000.00 EUR".
func FormatBudgetLine(p *domain.Project) string {
	spent := p.TotalCost()
	if p.Budget.Total <= 0 {
		return Dim("Spent ") + FormatMoney(spent, p.Budget.Currency) + Dim(" (no budget set)")
	}
	pct := spent / p.Budget.Total
	line := Dim("Spent ") + FormatMoney(spent, "") + Dim(" of ") + FormatMoney(p.Budget.Total, p.Budget.Currency)
	if pct > 1 {
		return line + " " + StyleRed.Render("over budget")
	}
	return line + " " + RenderCompactBar(1-pct, 10, false)
}

// FormatRiskList renders the risk register, highest exposure first.
func FormatRiskList(p *domain.Project) string {
	if len(p.Risks) == 0 {
		return Dim("No risks registered.")
	}
	risks := make([]domain.Risk, len(p.Risks))
	copy(risks, p.Risks)
	sortRisksByExposure(risks)

	headers := []string{"ID", "TITLE", "PROB", "IMPACT", "EXPOSURE", "STATUS", "OWNER"}
	rows := make([][]string, 0, len(risks))
	for _, r := range risks {
		style := RiskColor(r)
		rows = append(rows, []string{
			r.ID,
			TruncateText(r.Title, maxNameWidth),
			fmt.Sprintf("%.0f%%", r.Probability*100),
			fmt.Sprintf("%d", r.Impact),
			style.Render(fmt.Sprintf("%.1f", r.Exposure())),
			string(r.Status),
			domain.CoalesceStr(r.Owner, Dim("--")),
		})
	}
	return RenderBox("Risks", RenderTableAligned(headers, rows, map[int]bool{2: true, 3: true, 4: true}))
}

func sortRisksByExposure(risks []domain.Risk) {
	sort.SliceStable(risks, func(i, j int) bool {
		return risks[i].Exposure() > risks[j].Exposure()
	})
}

// FormatMilestoneList renders milestones with their due dates.
func FormatMilestoneList(p *domain.Project) string {
	if len(p.Milestones) == 0 {
		return Dim("No milestones.")
	}
	headers := []string{"ID", "NAME", "DUE", "DONE"}
	rows := make([][]string, 0, len(p.Milestones))
	for _, m := range p.Milestones {
		done := StyleDim.Render("○")
		if m.Done {
			done = StyleGreen.Render("✔")
		}
		rows = append(rows, []string{m.ID, m.Name, HumanDate(m.Due), done})
	}
	return RenderBox("Milestones", RenderTable(headers, rows))
}
