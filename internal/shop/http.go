package shop

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"MegaStore/internal/cart"
	"MegaStore/pkg/kit"
)

// Routes is the input dispatcher: one route per control instead of one
// listener per rendered element. The product id rides in the path the same
// way the original markup carried it in a data attribute.
func (a *App) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", a.handleReady)

	r.Get("/", a.handlePage)

	r.Route("/cart/items", func(rr chi.Router) {
		rr.Use(a.limiter.Middleware)
		rr.Post("/", a.handleAdd)
		rr.Post("/{id}/increase", a.handleIncrease)
		rr.Post("/{id}/decrease", a.handleDecrease)
		rr.Post("/{id}/remove", a.handleRemove)
		rr.Post("/{id}/favorite", a.handleFavorite)
	})

	r.Route("/fragments", func(rr chi.Router) {
		rr.Get("/catalog", a.handleCatalogFragment)
		rr.Get("/cart", a.handleCartFragment)
		rr.Get("/badge", a.handleBadgeFragment)
		rr.Get("/total", a.handleTotalFragment)
	})

	return r
}

func (a *App) handleReady(w http.ResponseWriter, r *http.Request) {
	if s := a.State(); s != StateReady {
		kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", map[string]any{"state": s.String()})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
	defer cancel()

	if err := a.archive.Ping(ctx); err != nil {
		a.Log.Warn("readyz failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", nil)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (a *App) handlePage(w http.ResponseWriter, r *http.Request) {
	page, err := a.renderPage()
	if err != nil {
		a.Log.Error("render page failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}
	kit.WriteHTML(w, http.StatusOK, page)
}

func (a *App) handleAdd(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad form", nil)
		return
	}

	id := strings.TrimSpace(r.PostFormValue("product_id"))
	if id == "" {
		kit.WriteError(w, r, http.StatusBadRequest, "product_id required", nil)
		return
	}

	a.cart.Add(id)
	a.finishMutation(w, r)
}

func (a *App) handleIncrease(w http.ResponseWriter, r *http.Request) {
	a.cart.Change(chi.URLParam(r, "id"), cart.Increment)
	a.finishMutation(w, r)
}

func (a *App) handleDecrease(w http.ResponseWriter, r *http.Request) {
	a.cart.Change(chi.URLParam(r, "id"), cart.Decrement)
	a.finishMutation(w, r)
}

func (a *App) handleRemove(w http.ResponseWriter, r *http.Request) {
	a.cart.Remove(chi.URLParam(r, "id"))
	a.finishMutation(w, r)
}

// handleFavorite flips view-only state: no cart mutation, no persist, no
// favorite reset.
func (a *App) handleFavorite(w http.ResponseWriter, r *http.Request) {
	a.render.ToggleFavorite(chi.URLParam(r, "id"))

	page, err := a.renderPage()
	if err != nil {
		a.Log.Error("render page failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}
	kit.WriteHTML(w, http.StatusOK, page)
}

// finishMutation completes every cart mutation in contract order: the cart
// has already changed, so rebuild all regions, persist, then respond. A
// failed save is logged and the response is still served — displayed state
// may run ahead of durable state, never behind.
func (a *App) finishMutation(w http.ResponseWriter, r *http.Request) {
	a.render.ResetFavorites()

	page, err := a.renderPage()
	if err != nil {
		a.Log.Error("render page failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	if err := a.archive.Save(r.Context(), a.cart.Items()); err != nil {
		a.Log.Error("cart save failed", zap.Error(err))
	}

	kit.WriteHTML(w, http.StatusOK, page)
}

func (a *App) renderPage() (string, error) {
	c := a.Catalog()
	items := a.cart.Items()

	catalogHTML, err := a.render.Catalog(c.Products())
	if err != nil {
		return "", err
	}
	cartHTML, err := a.render.Cart(items, c.Get)
	if err != nil {
		return "", err
	}
	badgeHTML, err := a.render.Badge(a.cart.TotalQuantity())
	if err != nil {
		return "", err
	}
	totalHTML, err := a.render.TotalPrice(cart.TotalCents(items, c.PriceCents))
	if err != nil {
		return "", err
	}

	return a.render.Page(catalogHTML, cartHTML, badgeHTML, totalHTML)
}

func (a *App) handleCatalogFragment(w http.ResponseWriter, r *http.Request) {
	a.writeFragment(w, r, func() (string, error) {
		return a.render.Catalog(a.Catalog().Products())
	})
}

func (a *App) handleCartFragment(w http.ResponseWriter, r *http.Request) {
	a.writeFragment(w, r, func() (string, error) {
		return a.render.Cart(a.cart.Items(), a.Catalog().Get)
	})
}

func (a *App) handleBadgeFragment(w http.ResponseWriter, r *http.Request) {
	a.writeFragment(w, r, func() (string, error) {
		return a.render.Badge(a.cart.TotalQuantity())
	})
}

func (a *App) handleTotalFragment(w http.ResponseWriter, r *http.Request) {
	a.writeFragment(w, r, func() (string, error) {
		return a.render.TotalPrice(cart.TotalCents(a.cart.Items(), a.Catalog().PriceCents))
	})
}

func (a *App) writeFragment(w http.ResponseWriter, r *http.Request, render func() (string, error)) {
	frag, err := render()
	if err != nil {
		a.Log.Error("render fragment failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}
	kit.WriteHTML(w, http.StatusOK, frag)
}
