package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/ganttly/internal/cli/formatter"
	"github.com/alexanderramin/ganttly/internal/store"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

// shellMode tracks which interaction mode the shell is in.
type shellMode int

const (
	modePrompt  shellMode = iota // Normal command input.
	modeWizard                   // huh form is active.
	modeConfirm                  // Awaiting y/n for destructive command.
)

// shellModel is the bubbletea Model for the interactive shell REPL. All
// project state lives in the store; the model only holds input state.
type shellModel struct {
	input textinput.Model
	form  *huh.Form
	width int

	app *App

	mode       shellMode
	wizardDone func(m *shellModel) tea.Cmd

	pendingConfirm *pendingConfirmation

	history *shellHistory

	quitting bool
}

func newShellModel(app *App) shellModel {
	ti := textinput.New()
	ti.Focus()
	ti.Prompt = ""
	ti.ShowSuggestions = true
	ti.CharLimit = 500
	// Tab accepts a suggestion; Up/Down are reserved for history.
	ti.KeyMap.NextSuggestion = key.NewBinding(key.WithKeys("ctrl+n"))
	ti.KeyMap.PrevSuggestion = key.NewBinding(key.WithKeys("ctrl+p"))

	return shellModel{
		input:   ti,
		app:     app,
		history: newShellHistory(app.Config.HistoryPath),
	}
}

// ── bubbletea interface ──────────────────────────────────────────────────────

func (m shellModel) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		tea.Println(formatter.FormatShellWelcome()),
	)
}

func (m shellModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - len(m.promptPrefix()) - 1
		if m.form != nil {
			m.form = m.form.WithWidth(msg.Width)
		}
		return m, nil

	case autosavedMsg:
		return m, tea.Println(formatter.Dim("autosaved " + msg.name))

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.quitting = true
			return m, tea.Quit
		}

		switch m.mode {
		case modeWizard:
			return m.updateWizard(msg)
		case modeConfirm:
			return m.updateConfirm(msg)
		default:
			return m.updatePrompt(msg)
		}
	}

	// The huh form needs its own init and focus messages.
	if m.mode == modeWizard && m.form != nil {
		return m.updateWizard(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m shellModel) View() string {
	if m.quitting {
		return formatter.Dim("Goodbye.") + "\n"
	}
	if m.mode == modeWizard && m.form != nil {
		return m.form.View()
	}
	return m.promptPrefix() + m.input.View()
}

// ── prompt prefix ────────────────────────────────────────────────────────────

// promptPrefix shows the active project and a dot when it has unsaved
// changes, for example "ganttly (Bridge●) ❯ ".
func (m *shellModel) promptPrefix() string {
	if m.mode == modeConfirm {
		return formatter.StyleYellow.Render("confirm (y/n)") + " " + formatter.Dim("❯") + " "
	}
	base := formatter.StylePurple.Render("ganttly")
	s, err := m.app.store()
	if err != nil {
		return base + " " + formatter.Dim("❯") + " "
	}
	p := s.CurrentProject()
	if p == nil {
		return base + " " + formatter.Dim("❯") + " "
	}
	label := formatter.StyleGreen.Render(p.Name)
	if s.ProjectState().HasUnsavedChanges {
		label += formatter.StyleYellow.Render("●")
	}
	return base + " " + formatter.Dim("(") + label + formatter.Dim(")") + " " + formatter.Dim("❯") + " "
}

// ── prompt mode ──────────────────────────────────────────────────────────────

func (m shellModel) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		input := strings.TrimSpace(m.input.Value())
		m.input.Reset()
		m.input.SetSuggestions(nil)
		if input == "" {
			return m, nil
		}
		m.history.add(input)
		output, cmd := m.executeCommand(input)
		var cmds []tea.Cmd
		if output != "" {
			cmds = append(cmds, tea.Println(output))
		}
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		return m, tea.Sequence(cmds...)

	case tea.KeyUp:
		if line, ok := m.history.up(); ok {
			m.input.SetValue(line)
			m.input.CursorEnd()
		}
		return m, nil

	case tea.KeyDown:
		m.input.SetValue(m.history.down())
		m.input.CursorEnd()
		return m, nil

	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		m.updateSuggestions()
		return m, cmd
	}
}

// ── wizard mode ──────────────────────────────────────────────────────────────

// startWizard switches to wizard mode with the given form and completion callback.
func (m *shellModel) startWizard(form *huh.Form, done func(m *shellModel) tea.Cmd) tea.Cmd {
	m.mode = modeWizard
	m.form = form
	m.wizardDone = done
	if m.width > 0 {
		m.form = m.form.WithWidth(m.width)
	}
	return m.form.Init()
}

func (m shellModel) updateWizard(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.mode = modePrompt
		m.form = nil
		m.wizardDone = nil
		return m, tea.Println(formatter.Dim("Cancelled."))
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.mode = modePrompt
		done := m.wizardDone
		m.form = nil
		m.wizardDone = nil
		if done != nil {
			return m, tea.Batch(cmd, done(&m))
		}
		return m, cmd
	case huh.StateAborted:
		m.mode = modePrompt
		m.form = nil
		m.wizardDone = nil
		return m, tea.Println(formatter.Dim("Cancelled."))
	}

	return m, cmd
}

// ── confirm mode ─────────────────────────────────────────────────────────────

func (m shellModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		input := strings.TrimSpace(m.input.Value())
		m.input.Reset()
		pending := m.pendingConfirm
		m.pendingConfirm = nil
		m.mode = modePrompt

		switch strings.ToLower(input) {
		case "y", "yes":
			return m, tea.Println(m.execCobraCapture(append(pending.args, "--yes")))
		default:
			return m, tea.Println(formatter.Dim("Cancelled."))
		}
	case tea.KeyEsc:
		m.input.Reset()
		m.pendingConfirm = nil
		m.mode = modePrompt
		return m, tea.Println(formatter.Dim("Cancelled."))
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

// ── suggestions ──────────────────────────────────────────────────────────────

func (m *shellModel) updateSuggestions() {
	text := m.input.Value()
	if text == "" {
		m.input.SetSuggestions(nil)
		return
	}

	parts := strings.Fields(text)
	trailingSpace := strings.HasSuffix(text, " ")

	if len(parts) <= 1 && !trailingSpace {
		m.input.SetSuggestions(filterSuggestions(allCommandNames(), parts[0]))
		return
	}

	cmd := strings.ToLower(parts[0])
	if len(parts) <= 2 && (!trailingSpace || len(parts) == 1) {
		prefix := ""
		if len(parts) == 2 {
			prefix = parts[1]
		}
		if subs, ok := subcommandNames()[cmd]; ok {
			m.input.SetSuggestions(prefixAll(cmd, filterSuggestions(subs, prefix)))
			return
		}
	}

	if len(parts) <= 3 && cmd == "project" && len(parts) >= 2 && (parts[1] == "use" || parts[1] == "close") {
		prefix := ""
		if len(parts) == 3 {
			prefix = parts[2]
		}
		m.input.SetSuggestions(prefixAll(cmd+" "+parts[1], m.projectSuggestions(prefix)))
		return
	}

	m.input.SetSuggestions(nil)
}

// projectSuggestions returns short ids of open projects matching prefix.
func (m *shellModel) projectSuggestions(prefix string) []string {
	s, err := m.app.store()
	if err != nil {
		return nil
	}
	var ids []string
	for _, p := range s.Projects() {
		ids = append(ids, p.DisplayID())
	}
	return filterSuggestions(ids, prefix)
}

// allCommandNames returns all top-level shell command names.
func allCommandNames() []string {
	return []string{
		"status", "project", "task", "resource",
		"cost", "risk", "milestone", "budget",
		"undo", "redo",
		"save", "export", "open", "snapshot", "recent", "autosave",
		"clear", "help", "exit", "quit",
	}
}

// subcommandNames returns subcommand lists by parent command.
func subcommandNames() map[string][]string {
	return map[string][]string{
		"project":   {"new", "list", "use", "rename", "close"},
		"task":      {"add", "update", "delete", "list"},
		"resource":  {"add", "update", "delete", "list"},
		"cost":      {"add", "update", "delete", "list"},
		"risk":      {"add", "update", "delete", "list"},
		"milestone": {"add", "update", "delete", "list"},
		"budget":    {"set"},
		"snapshot":  {"list", "restore", "delete"},
		"autosave":  {"on", "off", "now"},
	}
}

// filterSuggestions returns items from pool that start with prefix (case-insensitive).
func filterSuggestions(pool []string, prefix string) []string {
	if prefix == "" {
		return pool
	}
	lp := strings.ToLower(prefix)
	var result []string
	for _, s := range pool {
		if strings.HasPrefix(strings.ToLower(s), lp) {
			result = append(result, s)
		}
	}
	return result
}

// prefixAll turns word suggestions into full-line suggestions, since the
// text input completes the whole value.
func prefixAll(head string, words []string) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = head + " " + w
	}
	return out
}

// ── command dispatch ─────────────────────────────────────────────────────────

func (m *shellModel) executeCommand(input string) (string, tea.Cmd) {
	parts, err := splitShellArgs(input)
	if err != nil {
		return shellError(err), nil
	}
	if len(parts) == 0 {
		return "", nil
	}
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "clear":
		return "\033[H\033[2J", nil
	case "help":
		return formatter.FormatShellHelp(), nil
	case "exit", "quit":
		m.quitting = true
		return "", tea.Quit
	case "shell":
		return formatter.StyleYellow.Render("Already in shell mode."), nil
	case "project":
		if len(args) == 1 && args[0] == "new" {
			return m.startNewProjectWizard()
		}
		return m.execMaybeDestructive(parts), nil
	case "task":
		if len(args) == 1 && args[0] == "add" {
			return m.startAddTaskWizard()
		}
		return m.execMaybeDestructive(parts), nil
	default:
		return m.execMaybeDestructive(parts), nil
	}
}

func (m *shellModel) startNewProjectWizard() (string, tea.Cmd) {
	var name string
	return "", m.startWizard(wizardNewProject(&name), func(m *shellModel) tea.Cmd {
		return tea.Println(m.execCobraCapture([]string{"project", "new", strings.TrimSpace(name)}))
	})
}

func (m *shellModel) startAddTaskWizard() (string, tea.Cmd) {
	if s, err := m.app.store(); err == nil && s.CurrentProject() == nil {
		return shellError(errors.New("no active project; create one with 'project new'")), nil
	}
	values := &taskWizardValues{}
	return "", m.startWizard(wizardAddTask(values), func(m *shellModel) tea.Cmd {
		return tea.Println(m.execCobraCapture(values.args()))
	})
}

// ── cobra pass-through ───────────────────────────────────────────────────────

// execCobraCapture runs a command through the Cobra tree and captures output.
func (m *shellModel) execCobraCapture(args []string) string {
	var buf strings.Builder
	root := NewRootCmd(m.app)
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		buf.WriteString(shellError(err))
		if errors.Is(err, store.ErrNoStore) || errors.Is(err, store.ErrClosed) {
			buf.WriteString("\n" + formatter.Dim("The project store is unavailable; restart ganttly."))
		}
	}
	return strings.TrimRight(buf.String(), "\n")
}

// ── destructive commands ─────────────────────────────────────────────────────

func (m *shellModel) execMaybeDestructive(parts []string) string {
	if len(parts) < 2 {
		return m.execCobraCapture(parts)
	}

	group := strings.ToLower(parts[0])
	sub := strings.ToLower(parts[1])

	subs, ok := destructiveCommands[group]
	if !ok || !subs[sub] || hasAnyArg(parts[2:], "--yes", "-y") {
		return m.execCobraCapture(parts)
	}

	desc := strings.Join(parts, " ")
	m.mode = modeConfirm
	m.pendingConfirm = &pendingConfirmation{description: desc, args: parts}

	return fmt.Sprintf("%s %s\n%s",
		formatter.StyleYellow.Render("Confirm:"),
		desc+"?",
		formatter.Dim("Enter y to confirm, anything else to cancel."))
}
