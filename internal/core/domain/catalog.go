package domain

import "sync"

// Catalog is the shared in-memory product registry. Listing preserves
// insertion order. The catalog guards its own map; mutation of the
// products themselves is serialized by the checkout service.
type Catalog struct {
	mu       sync.RWMutex
	names    []string
	products map[string]*Product
}

func NewCatalog() *Catalog {
	return &Catalog{products: make(map[string]*Product)}
}

// Add registers a product under its name, replacing any previous entry
// with the same name in place.
func (c *Catalog) Add(product *Product) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.products[product.Name()]; !ok {
		c.names = append(c.names, product.Name())
	}
	c.products[product.Name()] = product
}

func (c *Catalog) Get(name string) (*Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p, ok := c.products[name]
	return p, ok
}

func (c *Catalog) List() []*Product {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*Product, 0, len(c.names))
	for _, name := range c.names {
		out = append(out, c.products[name])
	}
	return out
}
