package view

import (
	"fmt"

	"MegaStore/internal/cart"
	"MegaStore/internal/catalog"
)

// Renderer projects catalog and cart state into displayable fragments.
// Cart logic never imports this package; the shop app calls the renderer
// after every mutation and every region is rebuilt from scratch — there is
// no partial-update path.
//
// The favorited flag is view-local state: it is never part of the cart and
// never persisted, and it resets whenever a cart mutation triggers a
// refresh.
type Renderer interface {
	Catalog(products []catalog.Product) (string, error)
	Cart(items []cart.LineItem, lookup func(id string) (catalog.Product, bool)) (string, error)
	Badge(totalQuantity int) (string, error)
	TotalPrice(totalCents int64) (string, error)
	Page(catalogHTML, cartHTML, badgeHTML, totalHTML string) (string, error)

	ToggleFavorite(productID string) bool
	ResetFavorites()
}

// FormatCents renders integer cents as a $-prefixed, two-decimal amount.
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}
