package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/ganttly/internal/domain"
)

// StatusData holds everything the status view renders.
type StatusData struct {
	Project      *domain.Project
	State        domain.SaveState
	Unsaved      bool
	Untitled     bool
	OpenedFrom   domain.Provenance
	LastModified time.Time
	Autosave     domain.AutosaveTimer
	LastAutosave *domain.SnapshotInfo
	UndoDepth    int
	RedoDepth    int
	Now          time.Time
}

// FormatStatus renders the active project's overview card.
func FormatStatus(d StatusData) string {
	if d.Project == nil {
		return Dim("No active project. Create one with 'project new'.")
	}
	p := d.Project

	var b strings.Builder
	b.WriteString(Bold(p.Name) + "  " + TruncID(p.ID) + "\n\n")
	b.WriteString(fmt.Sprintf("  %-14s %s\n", Dim("Progress"), RenderPercent(p.Progress, 24)))
	b.WriteString(fmt.Sprintf("  %-14s %s\n", Dim("State"), SaveStateBadge(d.State)))
	if d.OpenedFrom != domain.OpenedNone {
		b.WriteString(fmt.Sprintf("  %-14s %s\n", Dim("Opened from"), string(d.OpenedFrom)))
	}
	b.WriteString(fmt.Sprintf("  %-14s %s\n", Dim("Modified"), HumanTimestamp(d.LastModified, d.Now)))

	autosave := StyleGreen.Render("on")
	if d.Autosave == domain.AutosavePaused {
		autosave = StyleYellow.Render("paused")
	}
	if d.LastAutosave != nil {
		autosave += Dim(" · last " + HumanTimestamp(d.LastAutosave.CreatedAt, d.Now))
	}
	b.WriteString(fmt.Sprintf("  %-14s %s\n", Dim("Autosave"), autosave))
	b.WriteString(fmt.Sprintf("  %-14s %d undo · %d redo\n", Dim("History"), d.UndoDepth, d.RedoDepth))

	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %-14s %s\n", Dim("Tasks"), taskBreakdown(p.Tasks)))
	b.WriteString(fmt.Sprintf("  %-14s %s\n", Dim("Resources"), FormatCount(len(p.Resources), "resource", "resources")))
	b.WriteString(fmt.Sprintf("  %-14s %s\n", Dim("Milestones"), milestoneBreakdown(p.Milestones)))
	b.WriteString(fmt.Sprintf("  %-14s %s\n", Dim("Risks"), openRisks(p.Risks)))
	b.WriteString(fmt.Sprintf("  %-14s %s\n", Dim("Budget"), FormatBudgetLine(p)))

	return RenderBox("Status", b.String())
}

func taskBreakdown(tasks []domain.Task) string {
	if len(tasks) == 0 {
		return Dim("none")
	}
	var todo, active, done int
	for _, t := range tasks {
		switch {
		case t.IsComplete():
			done++
		case t.Status == domain.TaskInProgress:
			active++
		default:
			todo++
		}
	}
	return fmt.Sprintf("%s  %s  %s",
		StyleBlue.Render(fmt.Sprintf("%d todo", todo)),
		StyleGreen.Render(fmt.Sprintf("%d active", active)),
		StyleDim.Render(fmt.Sprintf("%d done", done)))
}

func milestoneBreakdown(ms []domain.Milestone) string {
	if len(ms) == 0 {
		return Dim("none")
	}
	done := 0
	for _, m := range ms {
		if m.Done {
			done++
		}
	}
	return fmt.Sprintf("%d/%d reached", done, len(ms))
}

func openRisks(risks []domain.Risk) string {
	open := 0
	for _, r := range risks {
		if r.Status != domain.RiskClosed {
			open++
		}
	}
	if open == 0 {
		return Dim("none open")
	}
	return StyleYellow.Render(fmt.Sprintf("%d open", open))
}
