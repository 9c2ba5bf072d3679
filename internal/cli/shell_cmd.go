package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/ganttly/internal/cli/formatter"
	"github.com/alexanderramin/ganttly/internal/store"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newShellCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive shell with history, autocomplete and autosave notices",
		Long: `Start an interactive shell on the project store. Edits apply to the
active project; undo/redo history and autosave run for the whole session.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(app)
		},
	}
}

// autosavedMsg tells the shell that the store wrote an autosave snapshot.
type autosavedMsg struct {
	name string
}

func runShell(app *App) error {
	s, err := app.store()
	if err != nil {
		return err
	}

	p := tea.NewProgram(newShellModel(app))

	// Autosave events may fire from inside Update (autosave now), while
	// the program loop is busy, so the send must not block.
	unsubscribe := s.Subscribe(func(ev store.Event) {
		if ev.Kind != store.EventAutosaved {
			return
		}
		msg := autosavedMsg{}
		if info := s.LastAutosave(); info != nil {
			msg.name = info.Name
		}
		go p.Send(msg)
	})
	defer unsubscribe()

	_, err = p.Run()
	return err
}

// pendingConfirmation is a destructive command waiting for y/n.
type pendingConfirmation struct {
	description string
	args        []string
}

// destructiveCommands lists group/subcommand pairs that ask before running
// in the shell. Passing --yes skips the prompt.
var destructiveCommands = map[string]map[string]bool{
	"task":      {"delete": true, "rm": true},
	"resource":  {"delete": true, "rm": true},
	"cost":      {"delete": true, "rm": true},
	"risk":      {"delete": true, "rm": true},
	"milestone": {"delete": true, "rm": true},
	"snapshot":  {"delete": true, "rm": true, "restore": true},
	"project":   {"close": true},
}

func shellError(err error) string {
	return formatter.StyleRed.Render(fmt.Sprintf("Error: %v", err))
}

func splitShellArgs(input string) ([]string, error) {
	var parts []string
	var cur strings.Builder

	inSingle := false
	inDouble := false
	escaped := false
	tokenStarted := false

	flush := func() {
		parts = append(parts, cur.String())
		cur.Reset()
		tokenStarted = false
	}

	for _, r := range input {
		if escaped {
			cur.WriteRune(r)
			tokenStarted = true
			escaped = false
			continue
		}

		if inSingle {
			if r == '\'' {
				inSingle = false
			} else {
				cur.WriteRune(r)
			}
			tokenStarted = true
			continue
		}

		if inDouble {
			switch r {
			case '"':
				inDouble = false
			case '\\':
				escaped = true
			default:
				cur.WriteRune(r)
			}
			tokenStarted = true
			continue
		}

		switch r {
		case '\\':
			escaped = true
			tokenStarted = true
		case '\'':
			inSingle = true
			tokenStarted = true
		case '"':
			inDouble = true
			tokenStarted = true
		case ' ', '\t', '\n', '\r':
			if tokenStarted {
				flush()
			}
		default:
			cur.WriteRune(r)
			tokenStarted = true
		}
	}

	if escaped {
		return nil, fmt.Errorf("unterminated escape sequence")
	}
	if inSingle || inDouble {
		return nil, fmt.Errorf("unterminated quoted string")
	}
	if tokenStarted {
		flush()
	}

	return parts, nil
}

func hasAnyArg(args []string, wanted ...string) bool {
	for _, arg := range args {
		for _, w := range wanted {
			if arg == w {
				return true
			}
		}
	}
	return false
}
