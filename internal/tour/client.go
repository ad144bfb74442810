package tour

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/neexbeast/tourfront/internal/metrics"
)

const (
	// DefaultPageSize is the page size the storefront always requests.
	DefaultPageSize = 10
	// DefaultMaxPages bounds a run when upstream never stops reporting has_more.
	DefaultMaxPages = 1000

	defaultTimeout = 10 * time.Second

	endpointSearch = "search"
	endpointDetail = "detail"
)

// ErrNotFound is returned by Detail when upstream answers 404.
var ErrNotFound = errors.New("tour not found")

// StatusError is returned for any non-2xx upstream response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s returned status %d", e.URL, e.StatusCode)
}

// TokenProvider supplies the bearer token for upstream calls.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenProvider that always returns the same token.
type StaticToken string

// Token implements TokenProvider.
func (t StaticToken) Token(context.Context) (string, error) { return string(t), nil }

// Options configures a Client.
type Options struct {
	BaseURL  string
	Tokens   TokenProvider
	PageSize int
	MaxPages int
	Timeout  time.Duration
	Logger   *zap.Logger
}

// Client talks to the remote tour API.
type Client struct {
	baseURL  string
	tokens   TokenProvider
	pageSize int
	maxPages int
	client   *http.Client
	log      *zap.Logger
}

// NewClient constructs a Client. Zero-valued options fall back to defaults.
func NewClient(opts Options) *Client {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = DefaultMaxPages
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Client{
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		tokens:   opts.Tokens,
		pageSize: opts.PageSize,
		maxPages: opts.MaxPages,
		client:   &http.Client{Timeout: opts.Timeout},
		log:      opts.Logger,
	}
}

// doGet performs an authenticated GET and decodes the JSON response into dst.
func (c *Client) doGet(ctx context.Context, endpoint, rawURL string, dst any) (err error) {
	start := time.Now()
	defer func() {
		outcome := metrics.OutcomeOK
		if err != nil {
			outcome = metrics.OutcomeError
		}
		metrics.UpstreamRequests.WithLabelValues(endpoint, outcome).Inc()
		metrics.UpstreamDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("creating request for %s: %w", rawURL, err)
	}
	req.Header.Set("Accept", "application/json")

	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return fmt.Errorf("obtaining api token: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decoding response from %s: %w", rawURL, err)
	}

	return nil
}

// SearchPage fetches a single page of the search endpoint.
func (c *Client) SearchPage(ctx context.Context, scope Scope, limit, page int) (*SearchPage, error) {
	q := url.Values{}
	q.Set("location_id", scope.LocationID)
	q.Set("limit", strconv.Itoa(limit))
	q.Set("page", strconv.Itoa(page))
	endpoint := c.baseURL + "/tour/search?" + q.Encode()

	var out SearchPage
	if err := c.doGet(ctx, endpointSearch, endpoint, &out); err != nil {
		return nil, fmt.Errorf("tour search page %d for scope %s: %w", page, scope, err)
	}
	return &out, nil
}

// FetchAll accumulates every tour in scope by paging the search endpoint to exhaustion.
func (c *Client) FetchAll(ctx context.Context, scope Scope) ([]Tour, error) {
	fetch := func(ctx context.Context, page int) (Page[Tour], error) {
		sp, err := c.SearchPage(ctx, scope, c.pageSize, page)
		if err != nil {
			return Page[Tour]{}, err
		}
		p := Page[Tour]{Items: sp.Data}
		if sp.Meta != nil {
			p.HasMore = sp.Meta.HasMore
		}
		return p, nil
	}

	tours, err := Accumulate(ctx, fetch, AccumulateOptions{
		MaxPages: c.maxPages,
		Logger:   c.log.With(zap.String("scope", scope.String())),
	})
	if err != nil {
		return nil, fmt.Errorf("fetching tours for scope %s: %w", scope, err)
	}
	return tours, nil
}

// Detail fetches a single tour by id.
func (c *Client) Detail(ctx context.Context, id string) (*TourDetail, error) {
	endpoint := c.baseURL + "/tour/detail/" + url.PathEscape(id)

	var out detailResponse
	if err := c.doGet(ctx, endpointDetail, endpoint, &out); err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("tour detail %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("tour detail %s: %w", id, err)
	}
	return &out.Data, nil
}
