package formatter

import (
	"fmt"
	"strings"
)

// FormatShellWelcome renders the welcome banner shown on shell startup.
func FormatShellWelcome() string {
	var b strings.Builder

	logo := StylePurple.Render("  ganttly")
	b.WriteString("\n")
	b.WriteString(logo + "\n")
	b.WriteString(StyleDim.Render("  ─────────────────────────────") + "\n")
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("  Edits apply to the active project. Autosave keeps a snapshot of unsaved work.") + "\n")
	b.WriteString("\n")
	b.WriteString("  " + StyleGreen.Render("status") + StyleDim.Render("         Show the active project") + "\n")
	b.WriteString("  " + StyleGreen.Render("task add") + StyleDim.Render("       Add a task") + "\n")
	b.WriteString("  " + StyleGreen.Render("undo") + StyleDim.Render("           Revert the last task or resource edit") + "\n")
	b.WriteString("  " + StyleGreen.Render("save") + StyleDim.Render("           Save a snapshot of the project") + "\n")
	b.WriteString("  " + StyleGreen.Render("help") + StyleDim.Render("           Show all commands") + "\n")
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("  Tab for autocomplete. Type 'help' for all commands.") + "\n")
	b.WriteString("\n")

	return b.String()
}

// helpCategory groups commands under a section header for the help display.
type helpCategory struct {
	title    string
	commands [][]string
}

func renderHelpCategory(cat helpCategory) string {
	var b strings.Builder
	b.WriteString("\n " + StyleHeader.Render(strings.ToUpper(cat.title)) + "\n")
	for _, c := range cat.commands {
		b.WriteString(fmt.Sprintf("  %-30s %s\n",
			StyleGreen.Render(c[0]),
			StyleDim.Render(c[1])))
	}
	return b.String()
}

// FormatShellHelp renders the categorized command reference.
func FormatShellHelp() string {
	categories := []helpCategory{
		{
			title: "Projects",
			commands: [][]string{
				{"project list", "List open projects"},
				{"project new [name]", "Create and activate a project"},
				{"project use <id|name>", "Switch the active project"},
				{"project rename <name>", "Rename the active project"},
				{"project close [id]", "Close a project"},
				{"status", "Show the active project"},
			},
		},
		{
			title: "Editing",
			commands: [][]string{
				{"task add|update|delete|list", "Edit tasks (undoable)"},
				{"resource add|update|delete|list", "Edit resources (undoable)"},
				{"cost|risk|milestone ...", "Edit the project ledger"},
				{"budget set", "Set the project budget"},
				{"undo / redo", "Step through edit history"},
			},
		},
		{
			title: "Persistence",
			commands: [][]string{
				{"save", "Save a manual snapshot"},
				{"export <path>", "Write a .json or .yaml project file"},
				{"open <path>", "Open a project file"},
				{"snapshot list|restore|delete", "Manage snapshots"},
				{"recent", "Recently saved or opened projects"},
				{"autosave on|off|now", "Control autosave"},
			},
		},
		{
			title: "Shell",
			commands: [][]string{
				{"help", "Show this help"},
				{"clear", "Clear the screen"},
				{"exit / quit", "Leave the shell"},
			},
		},
	}

	var b strings.Builder
	for _, cat := range categories {
		b.WriteString(renderHelpCategory(cat))
	}
	return RenderBox("Commands", b.String())
}
