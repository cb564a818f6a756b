package clerk

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/zulandar/shopclerk/internal/catalog"
	"github.com/zulandar/shopclerk/internal/config"
	"github.com/zulandar/shopclerk/internal/order"
)

// Daemon is the main bot process. It connects to a chat platform via an
// Adapter, pumps inbound messages through the Router, and posts the
// daily order digest when configured.
type Daemon struct {
	cfg     *config.Config
	adapter Adapter
	catalog *catalog.Catalog
	orders  order.Store
	out     io.Writer
}

// DaemonOpts holds parameters for creating a new Daemon.
type DaemonOpts struct {
	Config  *config.Config
	Adapter Adapter
	Catalog *catalog.Catalog
	Orders  order.Store
	Out     io.Writer // defaults to os.Stdout
}

// NewDaemon creates a Daemon with the given options.
func NewDaemon(opts DaemonOpts) (*Daemon, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("clerk: config is required")
	}
	if opts.Adapter == nil {
		return nil, fmt.Errorf("clerk: adapter is required")
	}
	if opts.Catalog == nil {
		return nil, fmt.Errorf("clerk: catalog is required")
	}
	if opts.Orders == nil {
		return nil, fmt.Errorf("clerk: order store is required")
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	return &Daemon{
		cfg:     opts.Config,
		adapter: opts.Adapter,
		catalog: opts.Catalog,
		orders:  opts.Orders,
		out:     out,
	}, nil
}

// Run starts the bot. It connects the adapter, builds the router, and
// blocks until the context is cancelled. On shutdown it closes the
// adapter gracefully.
func (d *Daemon) Run(ctx context.Context) error {
	fmt.Fprintf(d.out, "Shopclerk connecting...\n")
	if err := d.adapter.Connect(ctx); err != nil {
		return fmt.Errorf("clerk: connect: %w", err)
	}

	// Extract bot user ID if the adapter supports it.
	var botUserID string
	if bui, ok := d.adapter.(BotUserIDer); ok {
		botUserID = bui.BotUserID()
	}

	machine, err := NewMachine(MachineOpts{
		Catalog: d.catalog,
		Orders:  d.orders,
	})
	if err != nil {
		d.adapter.Close()
		return fmt.Errorf("clerk: build machine: %w", err)
	}

	router, err := NewRouter(RouterOpts{
		Sessions:      NewSessionStore(),
		Machine:       machine,
		Adapter:       d.adapter,
		ProductsLabel: d.cfg.Menu.Products,
		ContactLabel:  d.cfg.Menu.Contact,
		ContactPhone:  d.cfg.Contact.Phone,
		ContactEmail:  d.cfg.Contact.Email,
		BotUserID:     botUserID,
		Out:           d.out,
	})
	if err != nil {
		d.adapter.Close()
		return fmt.Errorf("clerk: build router: %w", err)
	}

	inbound, err := d.adapter.Listen(ctx)
	if err != nil {
		d.adapter.Close()
		return fmt.Errorf("clerk: listen: %w", err)
	}

	if d.cfg.Digest.Enabled {
		go d.runDigestScheduler(ctx)
	}

	fmt.Fprintf(d.out, "Shopclerk online (%d products)\n", d.catalog.Len())

	// Main event loop: pump inbound messages until context is cancelled.
	for {
		select {
		case <-ctx.Done():
			fmt.Fprintf(d.out, "Shopclerk shutting down...\n")
			if err := d.adapter.Close(); err != nil {
				log.Printf("clerk: close adapter: %v", err)
			}
			fmt.Fprintf(d.out, "Shopclerk stopped\n")
			return nil

		case msg, ok := <-inbound:
			if !ok {
				// Adapter closed the channel.
				fmt.Fprintf(d.out, "Shopclerk inbound channel closed\n")
				return nil
			}
			router.Handle(ctx, msg)
		}
	}
}

// runDigestScheduler fires the daily order digest on the configured cron
// schedule.
func (d *Daemon) runDigestScheduler(ctx context.Context) {
	wait := nextCronDuration(d.cfg.Digest.Cron)
	if wait <= 0 {
		log.Printf("clerk: digest: invalid cron expression %q, digest disabled", d.cfg.Digest.Cron)
		return
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			d.fireDigest(ctx)
			if wait := nextCronDuration(d.cfg.Digest.Cron); wait > 0 {
				timer.Reset(wait)
			}
		}
	}
}

// fireDigest builds and sends a single daily digest.
func (d *Daemon) fireDigest(ctx context.Context) {
	text, err := BuildDailyDigest(d.orders, time.Now())
	if err != nil {
		log.Printf("clerk: daily digest: %v", err)
		return
	}
	if text == "" {
		// No orders — suppress digest.
		return
	}
	if err := d.adapter.Send(ctx, OutboundMessage{
		ChannelID: d.cfg.Channel,
		Text:      text,
	}); err != nil {
		log.Printf("clerk: send daily digest: %v", err)
	}
}
