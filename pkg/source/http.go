package source

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/matzehuels/floorview/pkg/errors"
	"github.com/matzehuels/floorview/pkg/floorplan"
	"github.com/matzehuels/floorview/pkg/httputil"
)

// HTTP fetches GET <base>/floors/<id> and decodes the JSON floor document.
// Transient failures are retried with exponential backoff.
type HTTP struct {
	base     string
	client   *http.Client
	attempts int
	delay    time.Duration
}

// HTTPOption configures an [HTTP] source.
type HTTPOption func(*HTTP)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(h *HTTP) { h.client = c }
}

// WithRetry sets the attempt count and initial backoff delay.
func WithRetry(attempts int, delay time.Duration) HTTPOption {
	return func(h *HTTP) { h.attempts, h.delay = attempts, delay }
}

// NewHTTP returns a source for the API at baseURL.
func NewHTTP(baseURL string, opts ...HTTPOption) (*HTTP, error) {
	if err := errors.ValidateURL(baseURL, "http", "https"); err != nil {
		return nil, err
	}
	h := &HTTP{
		base:     strings.TrimRight(baseURL, "/"),
		client:   httputil.NewClient(),
		attempts: 3,
		delay:    500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

func (h *HTTP) Floor(ctx context.Context, id string) (*floorplan.Floor, error) {
	if err := errors.ValidateFloorID(id); err != nil {
		return nil, err
	}
	u := h.base + "/floors/" + url.PathEscape(id)

	var f floorplan.Floor
	err := httputil.Retry(ctx, h.attempts, h.delay, func() error {
		f = floorplan.Floor{}
		return httputil.GetJSON(ctx, h.client, u, &f)
	})
	if errors.IsNotFound(err) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, err
	}
	if f.ID == "" {
		f.ID = id
	}
	return &f, nil
}

// Floors fetches GET <base>/floors, expecting a JSON array of ids.
func (h *HTTP) Floors(ctx context.Context) ([]string, error) {
	var ids []string
	err := httputil.Retry(ctx, h.attempts, h.delay, func() error {
		return httputil.GetJSON(ctx, h.client, h.base+"/floors", &ids)
	})
	return ids, err
}

func (h *HTTP) Close() error {
	h.client.CloseIdleConnections()
	return nil
}
