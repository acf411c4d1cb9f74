package openfoodfacts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Nutriment keys read from the per-100g nutriments object.
const (
	KeyEnergyKcal = "energy-kcal_100g"
	KeyFat        = "fat_100g"
	KeyCarbs      = "carbohydrates_100g"
	KeyProteins   = "proteins_100g"
)

// DefaultBaseURL is the public world instance.
const DefaultBaseURL = "https://world.openfoodfacts.org"

// Product is the subset of an OpenFoodFacts product used by nutriscan.
// Nutriment values arrive as numbers or strings depending on the contributor.
type Product struct {
	Code        string                     `json:"code"`
	ProductName string                     `json:"product_name"`
	Brands      string                     `json:"brands"`
	Nutriments  map[string]json.RawMessage `json:"nutriments"`
}

// SearchResponse models the cgi/search.pl JSON payload.
type SearchResponse struct {
	Count    int       `json:"count"`
	Page     int       `json:"page"`
	PageSize int       `json:"page_size"`
	Products []Product `json:"products"`
}

// ProductResponse models the api/v0/product/{code}.json payload. Status is 1
// when the product exists.
type ProductResponse struct {
	Code          string   `json:"code"`
	Status        int      `json:"status"`
	StatusVerbose string   `json:"status_verbose"`
	Product       *Product `json:"product"`
}

// Found reports whether the barcode resolved to a product.
func (r *ProductResponse) Found() bool {
	return r != nil && r.Status == 1 && r.Product != nil
}

// Searcher defines the OpenFoodFacts operations nutriscan depends on.
type Searcher interface {
	Search(ctx context.Context, query string) (*SearchResponse, error)
	Product(ctx context.Context, code string) (*ProductResponse, error)
}

// Client provides access to the OpenFoodFacts API.
type Client struct {
	baseURL    string
	userAgent  string
	pageSize   int
	httpClient *http.Client
}

var _ Searcher = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithUserAgent sets the User-Agent header OpenFoodFacts asks integrators to send.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua = strings.TrimSpace(ua); ua != "" {
			c.userAgent = ua
		}
	}
}

// WithPageSize overrides the number of search results requested.
func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient = &http.Client{Timeout: d, Transport: c.httpClient.Transport}
		}
	}
}

// New creates an OpenFoodFacts client.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("parse openfoodfacts url: %w", err)
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  "nutriscan/1.0",
		pageSize:   5,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// BaseURL returns the normalized API root.
func (c *Client) BaseURL() string { return c.baseURL }

// Search performs a simple full-text product search.
func (c *Client) Search(ctx context.Context, query string) (*SearchResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	params := url.Values{}
	params.Set("search_terms", query)
	params.Set("search_simple", "1")
	params.Set("action", "process")
	params.Set("json", "1")
	params.Set("page_size", strconv.Itoa(c.pageSize))

	var payload SearchResponse
	if err := c.getJSON(ctx, "/cgi/search.pl", params, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Product looks up a single product by barcode. A missing product is not an
// error; callers check ProductResponse.Found.
func (c *Client) Product(ctx context.Context, code string) (*ProductResponse, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, errors.New("barcode must not be empty")
	}
	var payload ProductResponse
	err := c.getJSON(ctx, "/api/v0/product/"+url.PathEscape(code)+".json", nil, &payload, http.StatusNotFound)
	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.Code == http.StatusNotFound {
		// Unknown barcodes answer 404; an undecodable body still means missing.
		return &ProductResponse{}, nil
	}
	if err != nil {
		return nil, err
	}
	return &payload, nil
}

// Ping checks that the API root answers, for preflight diagnostics.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL+"/", nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("openfoodfacts returned %d", resp.StatusCode)
	}
	return nil
}

// StatusError reports an unexpected HTTP status from the API.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("openfoodfacts returned %d", e.Code)
}

// getJSON decodes the response body into out. Statuses other than 200 fail
// unless listed in accept, in which case the body is still decoded.
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any, accept ...int) error {
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("parse openfoodfacts url: %w", err)
	}
	if len(params) > 0 {
		endpoint.RawQuery = params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && !slices.Contains(accept, resp.StatusCode) {
		return &StatusError{Code: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if resp.StatusCode != http.StatusOK {
			return &StatusError{Code: resp.StatusCode}
		}
		return fmt.Errorf("decode openfoodfacts response: %w", err)
	}
	return nil
}
