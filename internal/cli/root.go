package cli

import (
	"time"

	"github.com/alexanderramin/ganttly/internal/config"
	"github.com/alexanderramin/ganttly/internal/store"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

// App holds what CLI commands need: the project store and the loaded
// configuration.
type App struct {
	Store  *store.Store
	Config config.Config

	// Now is overridable in tests; nil means time.Now.
	Now func() time.Time
}

// store returns the project store, or store.ErrNoStore when the command
// runs without one.
func (a *App) store() (*store.Store, error) {
	if a == nil {
		return nil, store.ErrNoStore
	}
	if err := a.Store.Ready(); err != nil {
		return nil, err
	}
	return a.Store, nil
}

func (a *App) now() time.Time {
	if a != nil && a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// NewRootCmd creates the top-level "ganttly" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	var noColor bool

	root := &cobra.Command{
		Use:           "ganttly",
		Short:         "Project plans with undo, autosave and snapshots",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor {
				lipgloss.SetColorProfile(termenv.Ascii)
			}
		},
	}
	root.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	root.AddCommand(
		newShellCmd(app),
		newStatusCmd(app),
		newProjectCmd(app),
		newTaskCmd(app),
		newResourceCmd(app),
		newCostCmd(app),
		newRiskCmd(app),
		newMilestoneCmd(app),
		newBudgetCmd(app),
		newUndoCmd(app),
		newRedoCmd(app),
		newSaveCmd(app),
		newExportCmd(app),
		newOpenCmd(app),
		newSnapshotCmd(app),
		newRecentCmd(app),
		newAutosaveCmd(app),
	)

	return root
}
