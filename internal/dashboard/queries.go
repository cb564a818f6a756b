package dashboard

import (
	"sort"

	"github.com/zulandar/shopclerk/internal/order"
)

// ProductSummary holds aggregate order counts for a single product.
type ProductSummary struct {
	ProductID   int    `json:"product_id"`
	ProductName string `json:"product_name"`
	Count       int    `json:"count"`
	LastOrderAt string `json:"last_order_at"`
}

// summarizeOrders groups orders by product, busiest first. Ties break on
// product name so the output is stable.
func summarizeOrders(orders []order.Order) []ProductSummary {
	byProduct := make(map[int]*ProductSummary)
	for _, o := range orders {
		ps, ok := byProduct[o.ProductID]
		if !ok {
			ps = &ProductSummary{ProductID: o.ProductID, ProductName: o.ProductName}
			byProduct[o.ProductID] = ps
		}
		ps.Count++
		// Timestamps are formatted lexicographically sortable.
		if o.Timestamp > ps.LastOrderAt {
			ps.LastOrderAt = o.Timestamp
		}
	}

	out := make([]ProductSummary, 0, len(byProduct))
	for _, ps := range byProduct {
		out = append(out, *ps)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].ProductName < out[j].ProductName
	})
	return out
}
