package shop_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"go.uber.org/zap"

	"MegaStore/internal/cart"
	"MegaStore/internal/catalog"
	"MegaStore/internal/shop"
	"MegaStore/internal/view"
)

const testFeed = `[
	{"id": 1, "name": "A", "price": 10.00, "image": "images/a.png"},
	{"id": 2, "name": "B", "price": 5.50, "image": "images/b.png"}
]`

func newFeedTS(t *testing.T, body string, status int) *httptest.Server {
	t.Helper()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != catalog.FeedPath {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(ts.Close)
	return ts
}

func newShopTS(t *testing.T, feedURL string, kv cart.KV) (*httptest.Server, *shop.App, error) {
	t.Helper()

	render, err := view.NewHTML()
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}

	app := shop.NewApp(
		catalog.NewHTTPSource(feedURL),
		cart.NewArchive(kv, zap.NewNop()),
		render,
		zap.NewNop(),
	)
	runErr := app.Run(context.Background())

	h := shop.NewHandler(app, shop.HTTPDeps{
		Log:     zap.NewNop(),
		Service: "store",
	})

	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return ts, app, runErr
}

func fetch(t *testing.T, method, rawURL string, form url.Values) (int, string) {
	t.Helper()

	var req *http.Request
	var err error
	if form != nil {
		req, err = http.NewRequest(method, rawURL, strings.NewReader(form.Encode()))
		if err == nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	} else {
		req, err = http.NewRequest(method, rawURL, nil)
	}
	if err != nil {
		t.Fatalf("new request: %v", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, string(raw)
}

func mustFragment(t *testing.T, base, name, want string) {
	t.Helper()

	status, body := fetch(t, http.MethodGet, base+"/fragments/"+name, nil)
	if status != http.StatusOK {
		t.Fatalf("fragment %s status=%d", name, status)
	}
	if !strings.Contains(body, want) {
		t.Fatalf("fragment %s missing %q:\n%s", name, want, body)
	}
}

func TestShop_CartScenario(t *testing.T) {
	feedTS := newFeedTS(t, testFeed, http.StatusOK)
	ts, _, err := newShopTS(t, feedTS.URL, cart.NewMemKV())
	if err != nil {
		t.Fatalf("startup: %v", err)
	}

	if status, _ := fetch(t, http.MethodGet, ts.URL+"/readyz", nil); status != http.StatusOK {
		t.Fatalf("readyz status=%d", status)
	}

	add := func(id string) {
		t.Helper()
		status, _ := fetch(t, http.MethodPost, ts.URL+"/cart/items", url.Values{"product_id": {id}})
		if status != http.StatusOK {
			t.Fatalf("add %s status=%d", id, status)
		}
	}
	press := func(id, control string) {
		t.Helper()
		status, _ := fetch(t, http.MethodPost, ts.URL+"/cart/items/"+id+"/"+control, nil)
		if status != http.StatusOK {
			t.Fatalf("%s %s status=%d", control, id, status)
		}
	}

	add("1")
	mustFragment(t, ts.URL, "total", "$10.00")
	mustFragment(t, ts.URL, "badge", ">1<")

	add("1")
	mustFragment(t, ts.URL, "total", "$20.00")
	mustFragment(t, ts.URL, "badge", ">2<")

	add("2")
	mustFragment(t, ts.URL, "total", "$25.50")
	mustFragment(t, ts.URL, "badge", ">3<")

	press("1", "decrease")
	press("1", "decrease")
	mustFragment(t, ts.URL, "total", "$5.50")
	mustFragment(t, ts.URL, "badge", ">1<")

	_, cartBody := fetch(t, http.MethodGet, ts.URL+"/fragments/cart", nil)
	if strings.Contains(cartBody, `data-id="1"`) {
		t.Fatalf("decremented-to-zero item still rendered:\n%s", cartBody)
	}

	press("2", "remove")
	mustFragment(t, ts.URL, "total", "$0.00")
	mustFragment(t, ts.URL, "badge", ">0<")
}

func TestShop_MutationOnAbsentIDIsNoop(t *testing.T) {
	feedTS := newFeedTS(t, testFeed, http.StatusOK)
	ts, _, err := newShopTS(t, feedTS.URL, cart.NewMemKV())
	if err != nil {
		t.Fatalf("startup: %v", err)
	}

	if status, _ := fetch(t, http.MethodPost, ts.URL+"/cart/items/ghost/decrease", nil); status != http.StatusOK {
		t.Fatalf("decrease status=%d", status)
	}
	if status, _ := fetch(t, http.MethodPost, ts.URL+"/cart/items/ghost/remove", nil); status != http.StatusOK {
		t.Fatalf("remove status=%d", status)
	}
	mustFragment(t, ts.URL, "badge", ">0<")
}

func TestShop_AddRequiresProductID(t *testing.T) {
	feedTS := newFeedTS(t, testFeed, http.StatusOK)
	ts, _, err := newShopTS(t, feedTS.URL, cart.NewMemKV())
	if err != nil {
		t.Fatalf("startup: %v", err)
	}

	status, _ := fetch(t, http.MethodPost, ts.URL+"/cart/items", url.Values{})
	if status != http.StatusBadRequest {
		t.Fatalf("status=%d want=400", status)
	}
}

func TestShop_CartSurvivesRestart(t *testing.T) {
	feedTS := newFeedTS(t, testFeed, http.StatusOK)
	kv := cart.NewMemKV()

	ts1, _, err := newShopTS(t, feedTS.URL, kv)
	if err != nil {
		t.Fatalf("startup: %v", err)
	}

	for i := 0; i < 3; i++ {
		if status, _ := fetch(t, http.MethodPost, ts1.URL+"/cart/items", url.Values{"product_id": {"1"}}); status != http.StatusOK {
			t.Fatalf("add status=%d", status)
		}
	}
	if status, _ := fetch(t, http.MethodPost, ts1.URL+"/cart/items", url.Values{"product_id": {"2"}}); status != http.StatusOK {
		t.Fatalf("add status=%d", status)
	}

	// second app over the same durable store adopts the saved cart
	ts2, _, err := newShopTS(t, feedTS.URL, kv)
	if err != nil {
		t.Fatalf("restart: %v", err)
	}

	mustFragment(t, ts2.URL, "badge", ">4<")
	mustFragment(t, ts2.URL, "total", "$35.50")
}

func TestShop_FavoriteResetsOnCartMutation(t *testing.T) {
	feedTS := newFeedTS(t, testFeed, http.StatusOK)
	ts, _, err := newShopTS(t, feedTS.URL, cart.NewMemKV())
	if err != nil {
		t.Fatalf("startup: %v", err)
	}

	if status, _ := fetch(t, http.MethodPost, ts.URL+"/cart/items", url.Values{"product_id": {"1"}}); status != http.StatusOK {
		t.Fatalf("add status=%d", status)
	}

	status, body := fetch(t, http.MethodPost, ts.URL+"/cart/items/1/favorite", nil)
	if status != http.StatusOK {
		t.Fatalf("favorite status=%d", status)
	}
	if !strings.Contains(body, "heart-icon favorited") {
		t.Fatalf("favorite not reflected:\n%s", body)
	}

	// a cart mutation rebuilds the panel and drops the heart
	status, body = fetch(t, http.MethodPost, ts.URL+"/cart/items/1/increase", nil)
	if status != http.StatusOK {
		t.Fatalf("increase status=%d", status)
	}
	if strings.Contains(body, "heart-icon favorited") {
		t.Fatalf("favorite survived cart mutation:\n%s", body)
	}
}

func TestShop_FeedFailureIsTerminal(t *testing.T) {
	feedTS := newFeedTS(t, "boom", http.StatusInternalServerError)
	ts, app, err := newShopTS(t, feedTS.URL, cart.NewMemKV())
	if err == nil {
		t.Fatalf("expected startup error")
	}
	if app.State() != shop.StateFailed {
		t.Fatalf("state=%s want=failed", app.State())
	}

	if status, _ := fetch(t, http.MethodGet, ts.URL+"/readyz", nil); status != http.StatusServiceUnavailable {
		t.Fatalf("readyz status=%d want=503", status)
	}

	// the page still serves, with an empty catalog
	status, body := fetch(t, http.MethodGet, ts.URL+"/", nil)
	if status != http.StatusOK {
		t.Fatalf("page status=%d", status)
	}
	if strings.Contains(body, `class="addCart"`) {
		t.Fatalf("failed startup should render no products:\n%s", body)
	}
}
