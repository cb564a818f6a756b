// Package catalog holds the immutable set of products the shop sells.
package catalog

import (
	"fmt"
)

// Product is a single purchasable item. Products are defined in the config
// file, loaded once at startup, and never mutated afterwards.
type Product struct {
	Code        int    // positive, unique; customers send this to order
	Name        string
	Price       string // display string, e.g. "399,000"
	Description string
}

// Catalog is a read-only ordered collection of products. It is safe for
// concurrent use because it is never mutated after construction.
type Catalog struct {
	products []Product
	byCode   map[int]Product
}

// New builds a Catalog from a product list, preserving insertion order.
// It rejects non-positive and duplicate codes.
func New(products []Product) (*Catalog, error) {
	c := &Catalog{
		products: make([]Product, len(products)),
		byCode:   make(map[int]Product, len(products)),
	}
	copy(c.products, products)

	for i, p := range c.products {
		if p.Code <= 0 {
			return nil, fmt.Errorf("catalog: product %d: code must be positive, got %d", i, p.Code)
		}
		if p.Name == "" {
			return nil, fmt.Errorf("catalog: product %d: name is required", i)
		}
		if _, dup := c.byCode[p.Code]; dup {
			return nil, fmt.Errorf("catalog: duplicate product code %d", p.Code)
		}
		c.byCode[p.Code] = p
	}
	return c, nil
}

// Products returns all products in insertion order. The returned slice is
// a copy; callers may not mutate the catalog through it.
func (c *Catalog) Products() []Product {
	out := make([]Product, len(c.products))
	copy(out, c.products)
	return out
}

// FindByCode looks up a product by its code. The second return value is
// false when no product has that code.
func (c *Catalog) FindByCode(code int) (Product, bool) {
	p, ok := c.byCode[code]
	return p, ok
}

// Len returns the number of products in the catalog.
func (c *Catalog) Len() int {
	return len(c.products)
}
