package clerk

import (
	"fmt"
	"strings"

	"github.com/zulandar/shopclerk/internal/catalog"
	"github.com/zulandar/shopclerk/internal/order"
)

// Fixed reply texts. Catalog and contact content come from config; these
// cover the conversation steps themselves.
const (
	msgWelcome    = "Welcome to our shop! Use the menu below, or send a product code to order."
	msgAskPhone   = "Thanks! Now please enter your phone number:"
	msgNotFound   = "No product with that code was found."
	msgSaveFailed = "Something went wrong while saving your order. Please send your phone number again to retry."
)

// formatCatalog renders the full product listing with ordering
// instructions.
func formatCatalog(products []catalog.Product) string {
	var b strings.Builder
	b.WriteString("Our products:\n\n")
	for _, p := range products {
		fmt.Fprintf(&b, "• %s\n", p.Name)
		fmt.Fprintf(&b, "  Price: %s\n", p.Price)
		if p.Description != "" {
			fmt.Fprintf(&b, "  %s\n", p.Description)
		}
		fmt.Fprintf(&b, "  Code: %d\n\n", p.Code)
	}
	b.WriteString("Send a product code to place an order.")
	return b.String()
}

// formatSelection confirms the chosen product and asks for the
// customer's name.
func formatSelection(p catalog.Product) string {
	return fmt.Sprintf("You selected:\n\n%s\n%s\n\nPlease enter your full name:", p.Name, p.Price)
}

// formatConfirmation acknowledges a persisted order.
func formatConfirmation(o order.Order) string {
	var b strings.Builder
	b.WriteString("Your order has been placed!\n\n")
	fmt.Fprintf(&b, "Product: %s\n", o.ProductName)
	fmt.Fprintf(&b, "Name: %s\n", o.CustomerName)
	fmt.Fprintf(&b, "Phone: %s\n", o.Phone)
	fmt.Fprintf(&b, "Price: %s\n\n", o.Price)
	b.WriteString("We will contact you soon. Thank you for your purchase!")
	return b.String()
}

// formatContact renders the contact card.
func formatContact(phone, email string) string {
	var lines []string
	if phone != "" {
		lines = append(lines, fmt.Sprintf("Phone: %s", phone))
	}
	if email != "" {
		lines = append(lines, fmt.Sprintf("Email: %s", email))
	}
	if len(lines) == 0 {
		return "Contact information is not configured."
	}
	return strings.Join(lines, "\n")
}
