package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const pinAttempts = 3

func runShell(cmd *cobra.Command, _ []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	group, ctx := errgroup.WithContext(ctx)
	if app.Cfg.MetricsAddr != "" {
		group.Go(func() error {
			return serveMetrics(ctx, app.Cfg.MetricsAddr, app.Log)
		})
	}

	reader := bufio.NewScanner(os.Stdin)
	reader.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	if !app.Store.Onboarded() {
		if err := onboard(app, reader); err != nil {
			return err
		}
	} else if !unlock(app, reader) {
		cancel()
		_ = group.Wait()
		return errors.New("too many wrong PIN attempts")
	}

	fmt.Printf("Welcome back, %s. Type 'help' for commands.\n", app.Store.User())

	handler := NewHandler(app.Store)
	loop(app, handler, reader)

	cancel()
	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func loop(app *App, handler *Handler, reader *bufio.Scanner) {
	for {
		fmt.Print("> ")
		if !reader.Scan() {
			return
		}
		fields := strings.Fields(reader.Text())
		if len(fields) == 0 {
			continue
		}
		command, args := fields[0], fields[1:]

		switch command {
		case "save":
			handler.HandleSave(args)
		case "delete":
			handler.HandleDelete(args)
		case "list":
			handler.HandleList(args)
		case "show":
			handler.HandleShow(args)
		case "alerts":
			handler.HandleAlerts()
		case "dashboard":
			handler.HandleDashboard()
		case "undo":
			handler.HandleUndo()
		case "redo":
			handler.HandleRedo()
		case "export":
			handleExport(app, args)
		case "import":
			handler.HandleImport(args)
		case "reset":
			handler.HandleReset()
		case "set":
			handler.HandleSet(args)
		case "pin":
			handler.HandlePin(args)
		case "help":
			handler.HandleHelp()
		case "exit", "quit":
			return
		default:
			fmt.Printf("Unknown command %q, try 'help'\n", command)
		}
	}
}

func handleExport(app *App, args []string) {
	raw, err := app.Store.Export()
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	if len(args) == 1 {
		if err := os.WriteFile(args[0], raw, 0o644); err != nil {
			fmt.Println("Error:", err)
			return
		}
		fmt.Println("Exported to", args[0])
		return
	}

	path, err := app.Backup.WriteBundle(raw)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Println("Exported to", path)
}

func onboard(app *App, reader *bufio.Scanner) error {
	fmt.Println("First run. Let's set you up.")

	name := prompt(reader, "Your name: ")
	if name == "" {
		return errors.New("a name is required")
	}

	pin := prompt(reader, "Choose a 4-digit PIN: ")
	confirm := prompt(reader, "Confirm PIN: ")
	if pin == "" || pin != confirm {
		return errors.New("PINs did not match")
	}

	days := 3
	if raw := prompt(reader, "Reminder threshold in days [3]: "); raw != "" {
		if _, err := fmt.Sscanf(raw, "%d", &days); err != nil || days < 1 {
			return fmt.Errorf("invalid day count %q", raw)
		}
	}

	if err := app.Store.CompleteOnboarding(name, pin, days); err != nil {
		return err
	}
	fmt.Println("All set.")
	return nil
}

func unlock(app *App, reader *bufio.Scanner) bool {
	for attempt := 0; attempt < pinAttempts; attempt++ {
		pin := prompt(reader, "PIN: ")
		if app.Store.ValidatePIN(pin) {
			return true
		}
		fmt.Println("Wrong PIN")
	}
	return false
}

func prompt(reader *bufio.Scanner, label string) string {
	fmt.Print(label)
	if !reader.Scan() {
		return ""
	}
	return strings.TrimSpace(reader.Text())
}

func serveMetrics(ctx context.Context, addr string, log *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Info("metrics listening", zap.String("addr", addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
