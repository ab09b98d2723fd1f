// Package views derives read-only projections from an order collection
// snapshot. Every function is pure: identical inputs yield identical
// outputs, with no hidden state and no mutation rights over the store.
package views

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/ksagna/import-tracker/internal/model"
)

const dateLayout = "2006-01-02"

// Alerts returns the orders stuck in transit: status arrived, arrival date
// set, and strictly more than reminderDays full days elapsed since arrival.
// Input order is preserved.
func Alerts(orders []model.Order, reminderDays int, now time.Time) []model.Order {
	var out []model.Order
	for _, o := range orders {
		if o.Status != model.StatusArrived || o.DateArrival == "" {
			continue
		}
		arrival, err := time.Parse(dateLayout, o.DateArrival)
		if err != nil {
			continue
		}
		days := int(math.Floor(now.Sub(arrival).Hours() / 24))
		if days > reminderDays {
			out = append(out, o)
		}
	}
	return out
}

// Totals sums profit over the whole collection.
func Totals(orders []model.Order) (count int, profit int64) {
	for _, o := range orders {
		profit += o.Profit
	}
	return len(orders), profit
}

// MonthProfit is one bucket of the monthly profit series.
type MonthProfit struct {
	Month  string // "YYYY-MM"
	Profit int64
}

// MonthlyProfit buckets profit by order month for the `months` most recent
// calendar months ending at ref's month, ascending. Months without orders
// yield zero.
func MonthlyProfit(orders []model.Order, months int, ref time.Time) []MonthProfit {
	out := make([]MonthProfit, 0, months)
	for i := months - 1; i >= 0; i-- {
		first := time.Date(ref.Year(), ref.Month()-time.Month(i), 1, 0, 0, 0, 0, time.UTC)
		key := fmt.Sprintf("%04d-%02d", first.Year(), int(first.Month()))

		var profit int64
		for _, o := range orders {
			if strings.HasPrefix(o.DateOrder, key) {
				profit += o.Profit
			}
		}
		out = append(out, MonthProfit{Month: key, Profit: profit})
	}
	return out
}

// Filter narrows and orders a collection. Zero-valued fields match all.
type Filter struct {
	Query     string          // client substring, case- and diacritic-insensitive
	Status    model.Status    // exact
	Transport model.Transport // exact
	Month     string          // "YYYY-MM" prefix of dateOrder
}

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// foldKey lowers a string and strips combining marks, so "José" and "jose"
// compare equal.
func foldKey(s string) string {
	folded, _, err := transform.String(foldTransformer, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

// FilterAndSort applies all non-empty filters and sorts by creation time,
// most recent first. The sort is stable: orders sharing a createdAt keep
// their insertion order.
func FilterAndSort(orders []model.Order, f Filter) []model.Order {
	query := foldKey(f.Query)

	var out []model.Order
	for _, o := range orders {
		if query != "" && !strings.Contains(foldKey(o.Client), query) {
			continue
		}
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		if f.Transport != "" && o.Transport != f.Transport {
			continue
		}
		if f.Month != "" && !strings.HasPrefix(o.DateOrder, f.Month) {
			continue
		}
		out = append(out, o)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt > out[j].CreatedAt
	})
	return out
}

// Recent returns the n most recently created orders.
func Recent(orders []model.Order, n int) []model.Order {
	out := FilterAndSort(orders, Filter{})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// Months lists the distinct order months present in the collection,
// ascending. Used to populate the month filter.
func Months(orders []model.Order) []string {
	seen := make(map[string]struct{})
	for _, o := range orders {
		if len(o.DateOrder) >= 7 {
			seen[o.DateOrder[:7]] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for m := range seen {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}
