package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var errConfirmReset = errors.New("refusing to reset without --yes")

// One-shot variants of the shell commands, for scripting. Mutations made
// here still persist, but undo history does not outlive the process.

func init() {
	rootCmd.AddCommand(
		newListCmd(),
		newAlertsCmd(),
		newDashboardCmd(),
		newExportCmd(),
		newImportCmd(),
		newResetCmd(),
		newSetCmd(),
	)
}

// withApp builds the app, runs fn, and tears everything down.
func withApp(fn func(app *App, handler *Handler, args []string) error) func(*cobra.Command, []string) error {
	return func(_ *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()
		return fn(app, NewHandler(app.Store), args)
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [query] [status=..] [transport=..] [month=YYYY-MM]",
		Short: "List orders, filtered and most recent first",
		RunE: withApp(func(_ *App, handler *Handler, args []string) error {
			handler.HandleList(args)
			return nil
		}),
	}
}

func newAlertsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "alerts",
		Short: "Orders stuck in transit past the reminder threshold",
		Args:  cobra.NoArgs,
		RunE: withApp(func(_ *App, handler *Handler, _ []string) error {
			handler.HandleAlerts()
			return nil
		}),
	}
}

func newDashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Profit totals, monthly series and recent orders",
		Args:  cobra.NoArgs,
		RunE: withApp(func(_ *App, handler *Handler, _ []string) error {
			handler.HandleDashboard()
			return nil
		}),
	}
}

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [path]",
		Short: "Write a full backup bundle (user, orders, settings)",
		Args:  cobra.MaximumNArgs(1),
		RunE: withApp(func(app *App, _ *Handler, args []string) error {
			handleExport(app, args)
			return nil
		}),
	}
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <path>",
		Short: "Import a backup file (bare order list or bundle)",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(_ *App, handler *Handler, args []string) error {
			handler.HandleImport(args)
			return nil
		}),
	}
}

func newResetCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Erase all data, settings and identity (irreversible)",
		Args:  cobra.NoArgs,
		RunE: withApp(func(_ *App, handler *Handler, _ []string) error {
			if !yes {
				return errConfirmReset
			}
			handler.HandleReset()
			return nil
		}),
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the wipe")
	return cmd
}

func newSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <lang|theme|reminder|autosave> <value>",
		Short: "Change a setting",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(func(_ *App, handler *Handler, args []string) error {
			handler.HandleSet(args)
			return nil
		}),
	}
}
