// Package order persists customer orders. The store is append-only: an
// order is never updated or deleted once written.
package order

// TimestampLayout is the wire format for order timestamps (local time).
const TimestampLayout = "2006-01-02 15:04:05"

// Order is a finalized customer request for one product. The timestamp is
// assigned by the store at append time, never by the caller.
type Order struct {
	ProductID    int    `json:"product_id"`
	ProductName  string `json:"product_name"`
	Price        string `json:"price"`
	CustomerName string `json:"customer_name"`
	Phone        string `json:"phone"`
	Timestamp    string `json:"timestamp"`
}

// Store is the order repository contract. Append must be serialized:
// concurrent appends from different users must both survive.
type Store interface {
	// Append stamps the order and writes it to the durable store. It
	// returns the stored order (with timestamp set).
	Append(o Order) (Order, error)

	// LoadAll returns every persisted order, oldest first. A missing or
	// unreadable store reads as empty.
	LoadAll() ([]Order, error)
}
