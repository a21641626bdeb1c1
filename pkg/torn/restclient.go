package torn

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const maxBodyBytes = 8 << 20

// Observer is called once per Fetch with the outcome; it is used for metrics.
type Observer func(ep Endpoint, err error)

type RESTClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *keyLimiter
	observe    Observer
}

type Option func(*RESTClient)

// WithRateLimit limits requests per API key. perMinute <= 0 disables limiting.
func WithRateLimit(perMinute, burst int) Option {
	return func(c *RESTClient) {
		if perMinute > 0 {
			c.limiter = newKeyLimiter(perMinute, burst)
		}
	}
}

func WithObserver(fn Observer) Option {
	return func(c *RESTClient) {
		c.observe = fn
	}
}

func NewRESTClient(baseURL string, timeout time.Duration, opts ...Option) *RESTClient {
	c := &RESTClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *RESTClient) HTTPClient() *http.Client {
	return c.httpClient
}

// Fetch issues one GET for ep with key and returns the raw JSON body.
// A body carrying an "error" object is returned as *APIError.
func (c *RESTClient) Fetch(ctx context.Context, ep Endpoint, key string) (body []byte, err error) {
	if c.observe != nil {
		defer func() { c.observe(ep, err) }()
	}

	if !ep.IsValid() {
		return nil, fmt.Errorf("invalid endpoint %q", ep)
	}
	if key == "" {
		return nil, errors.New("missing api key")
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, key); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	// Construct the GET request with context for timeout/cancel support
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpointURL(ep, key), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", redact(err, key))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("making request: %w", redact(err, key))
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("torn http status %d: %s", resp.StatusCode, truncate(body, 200))
	}

	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("decode response: invalid json from %s", ep)
	}

	if e := gjson.GetBytes(body, "error"); e.Exists() {
		return nil, &APIError{
			Code:    int(e.Get("code").Int()),
			Message: e.Get("error").String(),
		}
	}

	return body, nil
}

func (c *RESTClient) endpointURL(ep Endpoint, key string) string {
	q := url.Values{}
	q.Set("selections", ep.Selection)
	q.Set("key", key)
	return fmt.Sprintf("%s/%s/?%s", c.baseURL, url.PathEscape(ep.Category), q.Encode())
}

// Stocks fetches the full instrument snapshot.
func (c *RESTClient) Stocks(ctx context.Context, key string) ([]Stock, error) {
	body, err := c.Fetch(ctx, EndpointStocks, key)
	if err != nil {
		return nil, err
	}
	return ParseStocks(body)
}

// StockSource binds the client to the shared service key used by the stock loop.
type StockSource struct {
	client *RESTClient
	key    string
}

func (c *RESTClient) StockSource(key string) *StockSource {
	return &StockSource{client: c, key: key}
}

func (s *StockSource) Stocks(ctx context.Context) ([]Stock, error) {
	return s.client.Stocks(ctx, s.key)
}

// ParseProfile decodes the user/profile selection.
func ParseProfile(body []byte) (*Profile, error) {
	var p Profile
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return &p, nil
}

// ParseInventory accepts the inventory both as an object keyed by item id and as an array.
func ParseInventory(body []byte) ([]InventoryItem, error) {
	if !gjson.ValidBytes(body) {
		return nil, errors.New("decode inventory: invalid json")
	}

	inv := gjson.GetBytes(body, "inventory")
	if !inv.Exists() || inv.Type == gjson.Null {
		return nil, nil
	}

	var out []InventoryItem
	inv.ForEach(func(k, v gjson.Result) bool {
		id := k.String()
		if inv.IsArray() {
			id = firstNonEmpty(v.Get("ID").String(), v.Get("id").String())
		}
		out = append(out, InventoryItem{
			ID:       id,
			Name:     v.Get("name").String(),
			Quantity: v.Get("quantity").Int(),
		})
		return true
	})
	return out, nil
}

// ParseMarketItems decodes market/items. Entries are ordered by id.
func ParseMarketItems(body []byte) ([]MarketItem, error) {
	var raw marketItemsResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode market items: %w", err)
	}

	out := make([]MarketItem, 0, len(raw.Items))
	for id, it := range raw.Items {
		out = append(out, MarketItem{
			ID:          id,
			Name:        it.Item.Name,
			MarketPrice: it.MarketPrice,
			Value:       it.Item.Value,
		})
	}
	sort.Slice(out, func(i, j int) bool { return lessID(out[i].ID, out[j].ID) })
	return out, nil
}

// ParseStocks decodes torn/stocks. Instruments are ordered by numeric id.
func ParseStocks(body []byte) ([]Stock, error) {
	var raw stocksResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode stocks: %w", err)
	}

	out := make([]Stock, 0, len(raw.Stocks))
	for id, s := range raw.Stocks {
		out = append(out, Stock{
			ID:           id,
			Name:         s.Name,
			Acronym:      s.Acronym,
			CurrentPrice: s.CurrentPrice,
			HighestPrice: s.HighestPrice,
		})
	}
	sort.Slice(out, func(i, j int) bool { return lessID(out[i].ID, out[j].ID) })
	return out, nil
}

// ParseTravel decodes market/travel, ordered by country then item id.
func ParseTravel(body []byte) ([]TravelItem, error) {
	var raw travelResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode travel: %w", err)
	}

	var out []TravelItem
	for country, items := range raw.Travel {
		for id, it := range items {
			out = append(out, TravelItem{
				Country:     country,
				ID:          id,
				Name:        it.Name,
				Cost:        it.Cost,
				MarketPrice: it.MarketPrice,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Country != out[j].Country {
			return out[i].Country < out[j].Country
		}
		return lessID(out[i].ID, out[j].ID)
	})
	return out, nil
}

// lessID orders numeric ids numerically and anything else lexically after them.
func lessID(a, b string) bool {
	ai, aErr := strconv.Atoi(a)
	bi, bErr := strconv.Atoi(b)
	switch {
	case aErr == nil && bErr == nil:
		return ai < bi
	case aErr == nil:
		return true
	case bErr == nil:
		return false
	default:
		return a < b
	}
}

// redact strips the api key from *url.Error messages before they reach logs.
func redact(err error, key string) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		urlErr.URL = strings.ReplaceAll(urlErr.URL, url.QueryEscape(key), "REDACTED")
	}
	return err
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
