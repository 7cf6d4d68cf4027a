package shop

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"MegaStore/internal/cart"
	"MegaStore/internal/catalog"
	"MegaStore/internal/view"
	"MegaStore/pkg/kit"
)

// State is the startup lifecycle. Loading transitions exactly once, to
// Ready or to Failed; Failed is terminal and the catalog is never retried.
type State int

const (
	StateLoading State = iota
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// App owns the storefront state: the immutable catalog once loaded, the
// cart store, the archive, and the renderer. Handlers follow the
// mutate -> render every region -> persist ordering on each cart mutation.
type App struct {
	Log *zap.Logger

	source  catalog.Source
	cart    *cart.Store
	archive *cart.Archive
	render  view.Renderer
	limiter *kit.IPRateLimiter

	mu      sync.RWMutex
	state   State
	catalog *catalog.Catalog
}

const (
	mutationLimitPerMin = 120
	mutationLimitWindow = time.Minute
)

func NewApp(source catalog.Source, archive *cart.Archive, render view.Renderer, log *zap.Logger) *App {
	if log == nil {
		log = zap.NewNop()
	}
	return &App{
		Log:     log,
		source:  source,
		cart:    cart.NewStore(),
		archive: archive,
		render:  render,
		limiter: kit.NewIPRateLimiter(mutationLimitPerMin, mutationLimitWindow),
		state:   StateLoading,
		catalog: catalog.New(nil),
	}
}

// Run executes the startup sequence: load the catalog, then adopt the
// persisted cart if one exists. A feed failure is logged and leaves the app
// in the Failed state; the server keeps serving an empty storefront.
func (a *App) Run(ctx context.Context) error {
	products, err := a.source.Load(ctx)
	if err != nil {
		a.Log.Error("catalog load failed", zap.Error(err))
		a.setState(StateFailed)
		return err
	}

	a.mu.Lock()
	a.catalog = catalog.New(products)
	a.mu.Unlock()

	a.cart.Replace(a.archive.Load(ctx))
	a.setState(StateReady)

	a.Log.Info("storefront ready",
		zap.Int("products", len(products)),
		zap.Int("cart_items", a.cart.Len()),
	)
	return nil
}

func (a *App) State() State {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state
}

func (a *App) setState(s State) {
	a.mu.Lock()
	a.state = s
	a.mu.Unlock()
}

// Catalog returns the loaded catalog, or an empty one before Run succeeds.
func (a *App) Catalog() *catalog.Catalog {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.catalog
}

type HTTPDeps struct {
	Log      *zap.Logger
	Service  string
	Registry *prometheus.Registry

	MetricsEnabled bool
	MetricsToken   string
}

func NewHandler(a *App, deps HTTPDeps) http.Handler {
	r := chi.NewRouter()

	setupMiddleware(r, deps)
	setupMetrics(r, deps)

	r.Mount("/", a.Routes())
	return r
}

func setupMiddleware(r *chi.Mux, deps HTTPDeps) {
	r.Use(chimw.RequestID)
	r.Use(kit.Recoverer)
	r.Use(kit.Logging(deps.Log))
}

func setupMetrics(r *chi.Mux, deps HTTPDeps) {
	if deps.Registry == nil {
		return
	}

	metrics := kit.NewMetrics(deps.Registry)
	r.Use(metrics.Middleware(deps.Service, kit.RoutePattern))

	if !deps.MetricsEnabled {
		return
	}

	r.With(kit.BearerAuth(deps.MetricsToken)).
		Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
}
