// Package codec serializes the order collection and settings bundle to the
// JSON interchange format shared by local persistence, export and import.
package codec

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/ksagna/import-tracker/internal/model"
)

// ErrInvalidShape is returned when the input parses as JSON but is neither a
// bare order array nor an object carrying an "orders" field.
var ErrInvalidShape = errors.New("interchange data is neither an order list nor a backup bundle")

// Settings is the settings sub-object embedded in an export bundle.
type Settings struct {
	Lang         string `json:"lang"`
	Theme        string `json:"theme"`
	ReminderDays int    `json:"reminderDays"`
	Autosave     bool   `json:"autosave"`
}

// Bundle is the explicit-export shape. The autosave path emits the bare
// order list instead; Decode accepts both.
type Bundle struct {
	User     string        `json:"user"`
	Orders   []model.Order `json:"orders"`
	Settings Settings      `json:"settings"`
}

// Encode renders a bundle as indented JSON with a trailing newline.
func Encode(b Bundle) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(b); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeOrders renders the bare order list, the shape the autosave side
// channel emits.
func EncodeOrders(orders []model.Order) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(orders); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode parses interchange text into an order collection. It accepts the
// legacy bare-array shape and the bundle shape with an "orders" field; any
// other shape or malformed JSON is an error. Decode never touches store
// state; applying the result is the caller's call.
func Decode(raw []byte) ([]model.Order, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var orders []model.Order
		if err := json.Unmarshal(trimmed, &orders); err != nil {
			return nil, err
		}
		if orders == nil {
			orders = []model.Order{}
		}
		return orders, nil
	}

	// The "orders" field must be present, not merely zero-valued, so an
	// unrelated object does not import as an empty collection.
	var bundle struct {
		Orders *[]model.Order `json:"orders"`
	}
	if err := json.Unmarshal(trimmed, &bundle); err != nil {
		return nil, err
	}
	if bundle.Orders == nil {
		return nil, ErrInvalidShape
	}
	return *bundle.Orders, nil
}
