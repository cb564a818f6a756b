package clerk

import (
	"fmt"
	"log"

	"github.com/zulandar/shopclerk/internal/catalog"
	"github.com/zulandar/shopclerk/internal/order"
)

// Machine advances a session through the order conversation. It is the
// only component that writes to the order store. Methods must be called
// with the session lock held (see SessionStore.With).
type Machine struct {
	catalog *catalog.Catalog
	orders  order.Store
}

// MachineOpts holds parameters for creating a Machine.
type MachineOpts struct {
	Catalog *catalog.Catalog
	Orders  order.Store
}

// NewMachine creates a Machine.
func NewMachine(opts MachineOpts) (*Machine, error) {
	if opts.Catalog == nil {
		return nil, fmt.Errorf("clerk: machine: catalog is required")
	}
	if opts.Orders == nil {
		return nil, fmt.Errorf("clerk: machine: order store is required")
	}
	return &Machine{catalog: opts.Catalog, orders: opts.Orders}, nil
}

// Select handles a product code sent while the session is Idle. On a
// catalog hit the session enters AwaitingName; on a miss it stays Idle.
func (m *Machine) Select(sess *Session, code int) string {
	p, ok := m.catalog.FindByCode(code)
	if !ok {
		return msgNotFound
	}
	sess.State = StateAwaitingName
	sess.Selected = &p
	return formatSelection(p)
}

// Advance handles free-text input for a session that is mid-flow. The
// text is stored verbatim — no trimming or format validation; a future
// policy can be added here without reshaping the transitions.
func (m *Machine) Advance(sess *Session, text string) string {
	switch sess.State {
	case StateAwaitingName:
		sess.CustomerName = text
		sess.State = StateAwaitingPhone
		return msgAskPhone

	case StateAwaitingPhone:
		o := order.Order{
			ProductID:    sess.Selected.Code,
			ProductName:  sess.Selected.Name,
			Price:        sess.Selected.Price,
			CustomerName: sess.CustomerName,
			Phone:        text,
		}
		stored, err := m.orders.Append(o)
		if err != nil {
			// Keep the session intact so the user can resend the phone
			// number and retry without re-entering everything.
			log.Printf("clerk: save order for %s: %v", sess.UserID, err)
			return msgSaveFailed
		}
		reply := formatConfirmation(stored)
		sess.Reset()
		return reply

	default:
		// Idle sessions never reach Advance; the router sends them to
		// Select or the not-found path instead.
		return msgNotFound
	}
}
