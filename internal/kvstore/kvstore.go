//go:generate mockgen -source ./kvstore.go -destination=./mocks/kvstore.go -package=mock_kvstore

// Package kvstore provides the durable string-keyed stores the order ledger
// persists into. Backends hold opaque values and no business logic.
package kvstore

// Keys of the single logical namespace used by the application.
const (
	KeyUser         = "it_user"
	KeyPIN          = "it_pin"
	KeyLang         = "it_lang"
	KeyTheme        = "it_theme"
	KeyReminderDays = "it_reminder_days"
	KeyAutosave     = "it_autosave"
	KeyOrders       = "it_orders"
)

// AllKeys lists every key the application may persist, in reset order.
var AllKeys = []string{
	KeyUser, KeyPIN, KeyLang, KeyTheme, KeyReminderDays, KeyAutosave, KeyOrders,
}

// KV is a durable key-value store. Get reports ok=false for absent keys;
// Delete of an absent key is not an error.
type KV interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Delete(key string) error
}
