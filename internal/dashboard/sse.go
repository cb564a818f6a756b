package dashboard

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/shopclerk/internal/order"
)

// orderEvent holds data for a new-order SSE event.
type orderEvent struct {
	ProductID    int    `json:"product_id"`
	ProductName  string `json:"product_name"`
	CustomerName string `json:"customer_name"`
	Timestamp    string `json:"timestamp"`
	Total        int    `json:"total"`
}

// handleSSE streams new-order events by polling the store for growth.
func handleSSE(store order.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
		c.Header("X-Accel-Buffering", "no")

		// Send connected event.
		writeSSE(c.Writer, "connected", map[string]string{"type": "connected"})
		c.Writer.Flush()

		// Only alert on orders placed after the stream opened.
		lastSeen := 0
		if orders, err := store.LoadAll(); err == nil {
			lastSeen = len(orders)
		}

		ctx := c.Request.Context()
		ticker := time.NewTicker(3 * time.Second)
		heartbeat := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		defer heartbeat.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-heartbeat.C:
				writeSSE(c.Writer, "heartbeat", map[string]string{
					"timestamp": time.Now().UTC().Format(time.RFC3339),
				})
				c.Writer.Flush()
			case <-ticker.C:
				orders, err := store.LoadAll()
				if err != nil || len(orders) <= lastSeen {
					continue
				}

				// Send an event for the latest order.
				latest := orders[len(orders)-1]
				lastSeen = len(orders)
				writeSSE(c.Writer, "order", orderEvent{
					ProductID:    latest.ProductID,
					ProductName:  latest.ProductName,
					CustomerName: latest.CustomerName,
					Timestamp:    latest.Timestamp,
					Total:        len(orders),
				})
				c.Writer.Flush()
			}
		}
	}
}

// writeSSE writes a single SSE event to the writer.
func writeSSE(w io.Writer, event string, data any) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, string(jsonData))
}
