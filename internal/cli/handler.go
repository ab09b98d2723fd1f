package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ksagna/import-tracker/internal/model"
	"github.com/ksagna/import-tracker/internal/store"
	"github.com/ksagna/import-tracker/internal/views"
)

// Handler executes shell commands against the store. Output goes straight
// to stdout; the store reports failures as errors or booleans and the
// handler turns them into messages.
type Handler struct {
	store   *store.Store
	timeNow func() time.Time
}

func NewHandler(st *store.Store) *Handler {
	return &Handler{store: st, timeNow: time.Now}
}

func (h *Handler) HandleHelp() {
	fmt.Println(`Available commands:
	save key=value ...        - Create or update an order (keys: id, client,
	                            transport, real, price, dateOrder, dateArrival,
	                            datePickup, dateDelivery, status, rating,
	                            review, suggestions)
	delete <orderID>          - Delete an order
	list [query] [status=..] [transport=..] [month=YYYY-MM] - List orders
	show <orderID>            - Show one order
	alerts                    - Orders stuck in transit past the reminder threshold
	dashboard                 - Profit totals and monthly series
	undo / redo               - Step through mutation history
	export [path]             - Export full backup bundle
	import <path>             - Import a backup file
	reset                     - Erase everything (irreversible)
	set <lang|theme|reminder|autosave> <value> - Change a setting
	pin <old> <new>           - Change the PIN
	help                      - This text
	exit                      - Leave the shell`)
}

// HandleSave builds an order from key=value arguments. An unknown id (or no
// id) creates; a known id replaces, starting from the stored order so a
// partial edit keeps untouched fields.
func (h *Handler) HandleSave(args []string) {
	if len(args) == 0 {
		fmt.Println("Usage: save key=value ...")
		return
	}

	fields := make(map[string]string, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			fmt.Printf("Invalid argument %q, want key=value\n", arg)
			return
		}
		fields[key] = value
	}

	order := model.Order{
		ID:        fields["id"],
		Transport: model.TransportAir,
		Status:    model.StatusOrdered,
		DateOrder: h.timeNow().Format("2006-01-02"),
		CreatedAt: h.timeNow().UnixMilli(),
	}
	if order.ID == "" {
		order.ID = uuid.NewString()
	} else if existing, err := h.store.Order(order.ID); err == nil {
		order = existing
	}

	if err := applyFields(&order, fields); err != nil {
		fmt.Println("Error:", err)
		return
	}

	if err := h.store.SaveOrder(order); err != nil {
		fmt.Println("Warning: saved in memory, but not persisted:", err)
	}
	fmt.Println("Order saved:", order.ID)
}

func applyFields(o *model.Order, fields map[string]string) error {
	for key, value := range fields {
		switch key {
		case "id":
			// already handled
		case "client":
			o.Client = value
		case "transport":
			o.Transport = model.Transport(value)
		case "real":
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid real price %q", value)
			}
			o.RealPrice = n
		case "price":
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid client price %q", value)
			}
			o.ClientPrice = n
		case "dateOrder":
			o.DateOrder = value
		case "dateArrival":
			o.DateArrival = value
		case "datePickup":
			o.DatePickup = value
		case "dateDelivery":
			o.DateDelivery = value
		case "status":
			o.Status = model.Status(value)
		case "rating":
			n, err := strconv.Atoi(value)
			if err != nil || n < 0 || n > 5 {
				return fmt.Errorf("invalid rating %q, want 0-5", value)
			}
			o.Rating = n
		case "review":
			o.Review = value
		case "suggestions":
			o.Suggestions = value
		default:
			return fmt.Errorf("unknown field %q", key)
		}
	}
	return nil
}

func (h *Handler) HandleDelete(args []string) {
	if len(args) != 1 {
		fmt.Println("Usage: delete <orderID>")
		return
	}

	if err := h.store.DeleteOrder(args[0]); err != nil {
		fmt.Println("Warning: deleted in memory, but not persisted:", err)
		return
	}
	fmt.Println("Order deleted")
}

func (h *Handler) HandleList(args []string) {
	filter := views.Filter{}
	for _, arg := range args {
		switch {
		case strings.HasPrefix(arg, "status="):
			filter.Status = model.Status(strings.TrimPrefix(arg, "status="))
		case strings.HasPrefix(arg, "transport="):
			filter.Transport = model.Transport(strings.TrimPrefix(arg, "transport="))
		case strings.HasPrefix(arg, "month="):
			filter.Month = strings.TrimPrefix(arg, "month=")
		default:
			filter.Query = arg
		}
	}

	orders := views.FilterAndSort(h.store.Orders(), filter)
	if len(orders) == 0 {
		fmt.Println("No orders")
		return
	}
	for _, o := range orders {
		printOrderLine(o)
	}
}

func (h *Handler) HandleShow(args []string) {
	if len(args) != 1 {
		fmt.Println("Usage: show <orderID>")
		return
	}

	o, err := h.store.Order(args[0])
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	fmt.Printf("%s\n  client: %s\n  transport: %s\n  real: %d  price: %d  profit: %d\n",
		o.ID, o.Client, o.Transport, o.RealPrice, o.ClientPrice, o.Profit)
	fmt.Printf("  ordered: %s  arrival: %s  pickup: %s  delivery: %s\n",
		orDash(o.DateOrder), orDash(o.DateArrival), orDash(o.DatePickup), orDash(o.DateDelivery))
	fmt.Printf("  status: %s  rating: %d  photos: %d\n", o.Status, o.Rating, len(o.Photos))
	if o.Review != "" {
		fmt.Println("  review:", o.Review)
	}
	if o.Suggestions != "" {
		fmt.Println("  suggestions:", o.Suggestions)
	}
}

func (h *Handler) HandleAlerts() {
	days := h.store.Settings().ReminderDays
	alerts := views.Alerts(h.store.Orders(), days, h.timeNow())
	if len(alerts) == 0 {
		fmt.Println("No orders waiting past the threshold")
		return
	}

	fmt.Printf("%d order(s) arrived more than %d day(s) ago:\n", len(alerts), days)
	for _, o := range alerts {
		fmt.Printf("  %s  %s  arrived %s\n", o.ID, o.Client, o.DateArrival)
	}
}

func (h *Handler) HandleDashboard() {
	orders := h.store.Orders()
	count, total := views.Totals(orders)

	now := h.timeNow()
	fmt.Printf("Orders: %d   Total profit: %d\n", count, total)

	series := views.MonthlyProfit(orders, 6, now)
	fmt.Println("Monthly profit:")
	for _, m := range series {
		fmt.Printf("  %s  %d\n", m.Month, m.Profit)
	}

	toPickup := 0
	for _, o := range orders {
		if o.Status == model.StatusArrived {
			toPickup++
		}
	}
	fmt.Printf("To pick up: %d\n", toPickup)

	recent := views.Recent(orders, 5)
	if len(recent) > 0 {
		fmt.Println("Recent orders:")
		for _, o := range recent {
			printOrderLine(o)
		}
	}
}

func (h *Handler) HandleUndo() {
	if !h.store.CanUndo() {
		fmt.Println("Nothing to undo")
		return
	}
	if err := h.store.Undo(); err != nil {
		fmt.Println("Warning: restored in memory, but not persisted:", err)
		return
	}
	fmt.Println("Undone")
}

func (h *Handler) HandleRedo() {
	if !h.store.CanRedo() {
		fmt.Println("Nothing to redo")
		return
	}
	if err := h.store.Redo(); err != nil {
		fmt.Println("Warning: restored in memory, but not persisted:", err)
		return
	}
	fmt.Println("Redone")
}

func (h *Handler) HandleImport(args []string) {
	if len(args) != 1 {
		fmt.Println("Usage: import <path>")
		return
	}

	raw, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	if !h.store.Import(raw) {
		fmt.Println("Import rejected: not a recognized backup shape")
		return
	}
	fmt.Printf("Imported %d order(s)\n", len(h.store.Orders()))
}

func (h *Handler) HandleReset() {
	if err := h.store.ResetAll(); err != nil {
		fmt.Println("Warning: reset in memory, but some keys were not erased:", err)
		return
	}
	fmt.Println("All data erased")
}

func (h *Handler) HandleSet(args []string) {
	if len(args) != 2 {
		fmt.Println("Usage: set <lang|theme|reminder|autosave> <value>")
		return
	}

	var err error
	switch args[0] {
	case "lang":
		err = h.store.SetLanguage(args[1])
	case "theme":
		err = h.store.SetTheme(args[1])
	case "reminder":
		days, convErr := strconv.Atoi(args[1])
		if convErr != nil || days < 1 {
			fmt.Println("Reminder threshold must be a positive day count")
			return
		}
		err = h.store.SetReminderDays(days)
	case "autosave":
		err = h.store.SetAutosave(args[1] == "true" || args[1] == "on")
	default:
		fmt.Println("Unknown setting:", args[0])
		return
	}

	if err != nil {
		fmt.Println("Warning: setting applied, but not persisted:", err)
		return
	}
	fmt.Println("Setting updated")
}

func (h *Handler) HandlePin(args []string) {
	if len(args) != 2 {
		fmt.Println("Usage: pin <old> <new>")
		return
	}

	if !h.store.UpdatePIN(args[0], args[1]) {
		fmt.Println("Wrong PIN")
		return
	}
	fmt.Println("PIN changed")
}

func printOrderLine(o model.Order) {
	fmt.Printf("  %s  %-20s %-6s %8d  %s\n", o.ID, o.Client, o.Transport, o.Profit, o.Status)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
