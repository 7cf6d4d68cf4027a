package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"strings"
	"time"
)

// FeedPath is the fixed relative path the product feed is served from.
const FeedPath = "/products.json"

var ErrFeedBadStatus = errors.New("product feed bad status")

// Source loads the product feed. It is called exactly once, at startup.
type Source interface {
	Load(ctx context.Context) ([]Product, error)
}

type HTTPSource struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTPSource(baseURL string) *HTTPSource {
	return &HTTPSource{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: 3 * time.Second},
	}
}

func (s *HTTPSource) Load(ctx context.Context) ([]Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.BaseURL+FeedPath, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: status=%d", ErrFeedBadStatus, resp.StatusCode)
	}

	return DecodeFeed(resp.Body)
}

// FileSource reads the feed from a local JSON file. Used for dev runs where
// no feed server exists.
type FileSource struct {
	Path string
}

func (s *FileSource) Load(ctx context.Context) ([]Product, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return DecodeFeed(f)
}

// feedID accepts both JSON strings and JSON numbers; numeric ids are kept
// as their decimal literal so "1" and 1 name the same product.
type feedID string

func (f *feedID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = feedID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = feedID(n.String())
	return nil
}

type feedProduct struct {
	ID    feedID  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Image string  `json:"image"`
}

// DecodeFeed parses the wire-format feed (float dollar prices, loosely
// typed ids) into normalized products.
func DecodeFeed(r io.Reader) ([]Product, error) {
	var feed []feedProduct
	if err := json.NewDecoder(r).Decode(&feed); err != nil {
		return nil, fmt.Errorf("decode product feed: %w", err)
	}

	out := make([]Product, 0, len(feed))
	for _, fp := range feed {
		out = append(out, Product{
			ID:         string(fp.ID),
			Name:       fp.Name,
			PriceCents: dollarsToCents(fp.Price),
			Image:      fp.Image,
		})
	}
	return out, nil
}

func dollarsToCents(dollars float64) int64 {
	return int64(math.Round(dollars * 100))
}
