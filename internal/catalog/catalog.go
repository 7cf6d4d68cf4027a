package catalog

// Product is one purchasable item. The feed is normalized at ingestion:
// ids become decimal strings whatever their JSON type, prices become
// integer cents. Lookups after that point are exact string equality.
type Product struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
	Image      string `json:"image"`
}

// Catalog is the immutable product list loaded once at startup. Feed order
// is preserved for rendering; lookups go through the id index. When the
// same id appears twice in the feed, the first occurrence wins.
type Catalog struct {
	products []Product
	byID     map[string]Product
}

func New(products []Product) *Catalog {
	c := &Catalog{
		products: make([]Product, 0, len(products)),
		byID:     make(map[string]Product, len(products)),
	}
	for _, p := range products {
		if _, dup := c.byID[p.ID]; dup {
			continue
		}
		c.products = append(c.products, p)
		c.byID[p.ID] = p
	}
	return c
}

// Products returns the catalog in feed order.
func (c *Catalog) Products() []Product {
	out := make([]Product, len(c.products))
	copy(out, c.products)
	return out
}

func (c *Catalog) Get(id string) (Product, bool) {
	p, ok := c.byID[id]
	return p, ok
}

func (c *Catalog) PriceCents(id string) (int64, bool) {
	p, ok := c.byID[id]
	return p.PriceCents, ok
}

func (c *Catalog) Len() int { return len(c.products) }
