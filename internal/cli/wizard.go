package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/ganttly/internal/cli/formatter"
	"github.com/alexanderramin/ganttly/internal/domain"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// ganttlyHuhTheme returns a huh theme using the Gruvbox palette.
func ganttlyHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.ErrorMessage = lipgloss.NewStyle().Foreground(formatter.ColorRed)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// wizardNewProject asks for the name of a new project.
func wizardNewProject(name *string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Project name").
				Placeholder("Untitled Project").
				Value(name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("a name is required")
					}
					return nil
				}),
		),
	).WithTheme(ganttlyHuhTheme()).WithShowHelp(false)
}

// taskWizardValues collects the fields of the add-task wizard.
type taskWizardValues struct {
	Name     string
	Start    string
	End      string
	Status   string
	Progress string
}

// args renders the collected values as a "task add" command line.
func (v taskWizardValues) args() []string {
	out := []string{"task", "add", "--name", strings.TrimSpace(v.Name)}
	if v.Start != "" {
		out = append(out, "--start", v.Start)
	}
	if v.End != "" {
		out = append(out, "--end", v.End)
	}
	if v.Status != "" {
		out = append(out, "--status", v.Status)
	}
	if v.Progress != "" {
		out = append(out, "--progress", v.Progress)
	}
	return out
}

// wizardAddTask creates the add-task form.
func wizardAddTask(v *taskWizardValues) *huh.Form {
	if v.Status == "" {
		v.Status = string(domain.TaskTodo)
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Task name").
				Value(&v.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("a name is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Start date").
				Description("YYYY-MM-DD, optional").
				Value(&v.Start).
				Validate(validateOptionalDate),
			huh.NewInput().
				Title("End date").
				Description("YYYY-MM-DD, optional").
				Value(&v.End).
				Validate(validateOptionalDate),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Status").
				Options(
					huh.NewOption("Todo", string(domain.TaskTodo)),
					huh.NewOption("In Progress", string(domain.TaskInProgress)),
					huh.NewOption("Done", string(domain.TaskDone)),
				).
				Value(&v.Status),
			huh.NewInput().
				Title("Progress %").
				Description("0-100, optional").
				Value(&v.Progress).
				Validate(validateOptionalPercent),
		),
	).WithTheme(ganttlyHuhTheme()).WithShowHelp(false)
}

// validateOptionalDate accepts empty or a YYYY-MM-DD date string.
func validateOptionalDate(s string) error {
	if s == "" {
		return nil
	}
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return fmt.Errorf("use YYYY-MM-DD format")
	}
	return nil
}

func validateOptionalPercent(s string) error {
	if s == "" {
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || n < 0 || n > 100 {
		return fmt.Errorf("enter a number from 0 to 100")
	}
	return nil
}
