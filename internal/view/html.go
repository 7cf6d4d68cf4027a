package view

import (
	"bytes"
	"embed"
	"html/template"
	"sync"

	"MegaStore/internal/cart"
	"MegaStore/internal/catalog"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// HTML renders the storefront regions with html/template. Safe for
// concurrent handlers; the only mutable state is the favorites set.
type HTML struct {
	t *template.Template

	mu   sync.Mutex
	favs map[string]bool
}

func NewHTML() (*HTML, error) {
	t, err := template.New("").Funcs(template.FuncMap{
		"money": FormatCents,
	}).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, err
	}

	return &HTML{t: t, favs: make(map[string]bool)}, nil
}

func (h *HTML) Catalog(products []catalog.Product) (string, error) {
	return h.execute("catalog.tmpl", products)
}

type cartRow struct {
	Product   catalog.Product
	Quantity  int
	Favorited bool
}

// Cart rebuilds the cart panel. Line items whose product id does not
// resolve in the catalog are skipped silently; the badge still counts them,
// this panel just has nothing to show for them.
func (h *HTML) Cart(items []cart.LineItem, lookup func(id string) (catalog.Product, bool)) (string, error) {
	rows := make([]cartRow, 0, len(items))

	h.mu.Lock()
	for _, it := range items {
		p, ok := lookup(it.ProductID)
		if !ok {
			continue
		}
		rows = append(rows, cartRow{
			Product:   p,
			Quantity:  it.Quantity,
			Favorited: h.favs[it.ProductID],
		})
	}
	h.mu.Unlock()

	return h.execute("cart.tmpl", rows)
}

func (h *HTML) Badge(totalQuantity int) (string, error) {
	return h.execute("badge.tmpl", totalQuantity)
}

func (h *HTML) TotalPrice(totalCents int64) (string, error) {
	return h.execute("total.tmpl", FormatCents(totalCents))
}

type pageData struct {
	Catalog    template.HTML
	Cart       template.HTML
	Badge      template.HTML
	TotalPrice template.HTML
}

// Page composes the four pre-rendered regions into the full document. The
// fragments were produced by this renderer, so they re-enter the template
// unescaped.
func (h *HTML) Page(catalogHTML, cartHTML, badgeHTML, totalHTML string) (string, error) {
	return h.execute("page.tmpl", pageData{
		Catalog:    template.HTML(catalogHTML),
		Cart:       template.HTML(cartHTML),
		Badge:      template.HTML(badgeHTML),
		TotalPrice: template.HTML(totalHTML),
	})
}

// ToggleFavorite flips a cart row's heart and reports the new state.
func (h *HTML) ToggleFavorite(productID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.favs[productID] = !h.favs[productID]
	return h.favs[productID]
}

// ResetFavorites clears all hearts. Called on every cart-mutation refresh,
// matching the rebuild-from-scratch contract.
func (h *HTML) ResetFavorites() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.favs = make(map[string]bool)
}

func (h *HTML) execute(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := h.t.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
