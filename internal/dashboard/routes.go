package dashboard

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/shopclerk/internal/order"
)

// registerRoutes sets up all dashboard routes on the Gin router.
func registerRoutes(router *gin.Engine, store order.Store) {
	router.GET("/api/health", handleHealth())
	router.GET("/api/orders", handleOrderList(store))
	router.GET("/api/orders/summary", handleOrderSummary(store))
	router.GET("/api/events", handleSSE(store))
}

func handleHealth() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// handleOrderList returns all persisted orders, newest first.
func handleOrderList(store order.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		orders, err := store.LoadAll()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		// The store appends chronologically; reverse for newest-first display.
		reversed := make([]order.Order, len(orders))
		for i, o := range orders {
			reversed[len(orders)-1-i] = o
		}
		c.JSON(http.StatusOK, gin.H{
			"count":  len(reversed),
			"orders": reversed,
		})
	}
}

// handleOrderSummary returns aggregate counts grouped by product.
func handleOrderSummary(store order.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		orders, err := store.LoadAll()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		summary := summarizeOrders(orders)
		c.JSON(http.StatusOK, gin.H{
			"total":    len(orders),
			"products": summary,
		})
	}
}
