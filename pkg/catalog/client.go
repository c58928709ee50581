package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"net/http"
	"net/url"
	"time"

	"github.com/disintegration/imaging"
)

// defaultTimeout bounds every external catalog call. A timeout is treated by
// callers exactly like an empty result.
const defaultTimeout = 10 * time.Second

// Client queries the external catalog/pricing service. Card, price and chase
// lookups go through a shared time-bounded read-through cache.
type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
	cache   *ttlCache
}

// NewClient builds a catalog client for the given base URL. apiKey may be
// empty for unauthenticated deployments.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpc:   &http.Client{Timeout: defaultTimeout},
		cache:   newTTLCache(),
	}
}

// SearchByNumber queries the catalog for entries matching a collector number.
// total and setPrefix narrow the query when known; pass "" to leave them out.
func (c *Client) SearchByNumber(ctx context.Context, number, total, setPrefix string) ([]Entry, error) {
	q := url.Values{}
	q.Set("number", number)
	if total != "" {
		q.Set("total", total)
	}
	if setPrefix != "" {
		q.Set("setPrefix", setPrefix)
	}
	var resp struct {
		Data []Entry `json:"data"`
	}
	if err := c.getJSON(ctx, "/cards?"+q.Encode(), &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// GetPrice fetches the market price of one catalog entry variant, or nil when
// the service has no quote.
func (c *Client) GetPrice(ctx context.Context, catalogID, variant string) (*Price, error) {
	key := "price:" + catalogID + ":" + variant
	if v, ok := c.cache.get(key); ok {
		return v.(*Price), nil
	}
	q := url.Values{}
	if variant != "" {
		q.Set("variant", variant)
	}
	var resp struct {
		Data *Price `json:"data"`
	}
	path := "/cards/" + url.PathEscape(catalogID) + "/price"
	if enc := q.Encode(); enc != "" {
		path += "?" + enc
	}
	if err := c.getJSON(ctx, path, &resp); err != nil {
		return nil, err
	}
	c.cache.put(key, resp.Data)
	return resp.Data, nil
}

// GetSetChaseCard returns the highest-priced card of a set as ranked by the
// catalog (holofoil-style buckets over plain ones), or nil when unknown.
func (c *Client) GetSetChaseCard(ctx context.Context, setID string) (*Entry, error) {
	key := "chase:" + setID
	if v, ok := c.cache.get(key); ok {
		return v.(*Entry), nil
	}
	var resp struct {
		Data *Entry `json:"data"`
	}
	if err := c.getJSON(ctx, "/sets/"+url.PathEscape(setID)+"/chase", &resp); err != nil {
		return nil, err
	}
	c.cache.put(key, resp.Data)
	return resp.Data, nil
}

// FetchImage downloads and decodes a reference image by absolute URL.
func (c *Client) FetchImage(ctx context.Context, imageURL string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, err
	}
	res, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch image: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch image: status %d", res.StatusCode)
	}
	img, err := imaging.Decode(res.Body)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}
	res, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("catalog request: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("catalog request: status %d", res.StatusCode)
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("catalog decode: %w", err)
	}
	return nil
}
