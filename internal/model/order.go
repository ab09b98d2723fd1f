package model

// Transport is how an order travels from the supplier.
type Transport string

const (
	TransportAir   Transport = "air"
	TransportSea   Transport = "sea"
	TransportMixed Transport = "mixed"
)

// Status is the current stage of an order. The store never enforces a
// transition sequence; callers may set any status at any time.
type Status string

const (
	StatusOrdered   Status = "ordered"
	StatusArrived   Status = "arrived"
	StatusPickedUp  Status = "pickedUp"
	StatusDelivered Status = "delivered"
)

// PhotoSizeWarnThreshold is the aggregate photo payload size (characters of
// data-URI text) above which the store logs a warning. Oversized orders are
// still accepted.
const PhotoSizeWarnThreshold = 2_000_000

// Order is one tracked shipment. Monetary amounts are whole units of a single
// fixed currency (XOF). Dates are "YYYY-MM-DD" strings, empty when unset,
// except DateOrder which is always set. CreatedAt is epoch milliseconds and
// immutable after creation.
type Order struct {
	ID           string    `json:"id"`
	Client       string    `json:"client"`
	Transport    Transport `json:"transport"`
	RealPrice    int64     `json:"realPrice"`
	ClientPrice  int64     `json:"clientPrice"`
	Profit       int64     `json:"profit"`
	DateOrder    string    `json:"dateOrder"`
	DateArrival  string    `json:"dateArrival"`
	DatePickup   string    `json:"datePickup"`
	DateDelivery string    `json:"dateDelivery"`
	Status       Status    `json:"status"`
	Photos       []string  `json:"photos"`
	Rating       int       `json:"rating"`
	Review       string    `json:"review"`
	Suggestions  string    `json:"suggestions"`
	CreatedAt    int64     `json:"createdAt"`
}

// PhotoSize returns the aggregate length of all photo data references.
func (o Order) PhotoSize() int {
	total := 0
	for _, p := range o.Photos {
		total += len(p)
	}
	return total
}

// CloneOrders returns a deep enough copy of a collection for snapshotting:
// the slice and each order's photo slice are copied, everything else is
// value data.
func CloneOrders(orders []Order) []Order {
	if orders == nil {
		return nil
	}
	out := make([]Order, len(orders))
	copy(out, orders)
	for i := range out {
		if out[i].Photos != nil {
			photos := make([]string, len(out[i].Photos))
			copy(photos, out[i].Photos)
			out[i].Photos = photos
		}
	}
	return out
}
