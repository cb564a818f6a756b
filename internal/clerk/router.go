package clerk

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
)

// Router classifies inbound chat messages and routes them: stateless menu
// actions are answered directly, everything else goes to the state
// machine under the user's session lock.
type Router struct {
	sessions *SessionStore
	machine  *Machine
	adapter  Adapter

	productsLabel string
	contactLabel  string
	contactCard   string
	catalogReply  string

	botUserID string // the bot's own user ID (to filter self-messages)
	out       io.Writer
}

// RouterOpts holds parameters for creating a Router.
type RouterOpts struct {
	Sessions *SessionStore
	Machine  *Machine
	Adapter  Adapter

	ProductsLabel string // menu keyword for the catalog listing
	ContactLabel  string // menu keyword for the contact card
	ContactPhone  string
	ContactEmail  string

	BotUserID string    // bot's user ID for self-message filtering
	Out       io.Writer // defaults to os.Stdout
}

// NewRouter creates a Router. The catalog listing is rendered once — the
// catalog never changes after startup.
func NewRouter(opts RouterOpts) (*Router, error) {
	if opts.Sessions == nil {
		return nil, fmt.Errorf("clerk: router: session store is required")
	}
	if opts.Machine == nil {
		return nil, fmt.Errorf("clerk: router: machine is required")
	}
	if opts.Adapter == nil {
		return nil, fmt.Errorf("clerk: router: adapter is required")
	}
	if opts.ProductsLabel == "" || opts.ContactLabel == "" {
		return nil, fmt.Errorf("clerk: router: menu labels are required")
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	return &Router{
		sessions:      opts.Sessions,
		machine:       opts.Machine,
		adapter:       opts.Adapter,
		productsLabel: opts.ProductsLabel,
		contactLabel:  opts.ContactLabel,
		contactCard:   formatContact(opts.ContactPhone, opts.ContactEmail),
		catalogReply:  formatCatalog(opts.Machine.catalog.Products()),
		botUserID:     opts.BotUserID,
		out:           out,
	}, nil
}

// menu returns the menu keyword suggestions in display order.
func (r *Router) menu() []string {
	return []string{r.productsLabel, r.contactLabel}
}

// Handle classifies and routes a single inbound message. Routing paths:
//  1. Bot self-message → ignore
//  2. Start command → welcome plus menu
//  3. Exact menu label → stateless reply; an in-progress order is
//     discarded and the session reset
//  4. Idle session, numeric text → product selection
//  5. Idle session, anything else → "not found"
//  6. Mid-flow session → forward text as the expected field
func (r *Router) Handle(ctx context.Context, msg InboundMessage) {
	if r.isSelfMessage(msg) {
		return
	}

	text := strings.TrimSpace(msg.Text)
	fmt.Fprintf(r.out, "clerk: router: recv [ch=%s user=%s] %q\n",
		msg.ChannelID, msg.UserID, truncate(text, 80))

	if isStart(text) {
		fmt.Fprintf(r.out, "clerk: router: → welcome\n")
		r.reply(ctx, msg, msgWelcome, r.menu())
		return
	}

	// Menu keywords short-circuit before the state machine: a recognized
	// label ends any conversation in progress without saving.
	switch text {
	case r.productsLabel:
		fmt.Fprintf(r.out, "clerk: router: → catalog\n")
		r.interrupt(msg.UserID)
		r.reply(ctx, msg, r.catalogReply, r.menu())
		return
	case r.contactLabel:
		fmt.Fprintf(r.out, "clerk: router: → contact\n")
		r.interrupt(msg.UserID)
		r.reply(ctx, msg, r.contactCard, r.menu())
		return
	}

	r.sessions.With(msg.UserID, func(sess *Session) {
		var replyText string
		var menu []string

		switch {
		case sess.State == StateIdle && isNumeric(text):
			code, err := strconv.Atoi(text)
			if err != nil {
				// Numeric but out of int range; no catalog code matches.
				replyText = msgNotFound
			} else {
				replyText = r.machine.Select(sess, code)
			}
		case sess.State == StateIdle:
			replyText = msgNotFound
		default:
			replyText = r.machine.Advance(sess, text)
			if sess.State == StateIdle {
				// Conversation finished (or failed terminally); offer the
				// menu again.
				menu = r.menu()
			}
		}

		fmt.Fprintf(r.out, "clerk: router: → state=%s [user=%s]\n", sess.State, msg.UserID)
		r.reply(ctx, msg, replyText, menu)
	})
}

// interrupt resets a user's session if one is in progress. Nothing is
// persisted; partial selections are discarded.
func (r *Router) interrupt(userID string) {
	r.sessions.With(userID, func(sess *Session) {
		if sess.State != StateIdle {
			fmt.Fprintf(r.out, "clerk: router: menu interrupt, discarding in-progress order [user=%s]\n", userID)
			sess.Reset()
		}
	})
}

// reply sends an outbound message back to the channel the message came
// from. Send failures are logged, never fatal.
func (r *Router) reply(ctx context.Context, msg InboundMessage, text string, menu []string) {
	if err := r.adapter.Send(ctx, OutboundMessage{
		ChannelID: msg.ChannelID,
		Text:      text,
		Menu:      menu,
	}); err != nil {
		log.Printf("clerk: router: send reply: %v", err)
	}
}

// isSelfMessage returns true if the message is from the bot itself.
func (r *Router) isSelfMessage(msg InboundMessage) bool {
	return r.botUserID != "" && msg.UserID == r.botUserID
}

// isStart returns true for the conversation-opening command.
func isStart(text string) bool {
	return text == "/start" || strings.EqualFold(text, "start")
}

// isNumeric returns true if text is non-empty and entirely ASCII digits.
func isNumeric(text string) bool {
	if text == "" {
		return false
	}
	for _, c := range text {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// truncate returns s truncated to maxLen with "..." appended if needed.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
