package network

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/android254/droidconke-feeds/internal/config"
	"github.com/android254/droidconke-feeds/internal/requestid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// ErrDecode wraps failures to decode a 2xx response body.
var ErrDecode = errors.New("failed to decode response body")

// StatusError is returned for any non-2xx upstream response.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s returned status: %d", e.Method, e.URL, e.StatusCode)
}

// HTTPClientFactory builds clients bound to the DroidconKE API.
type HTTPClientFactory struct {
	tokenProvider TokenProvider
	baseURL       string
}

type Option func(*HTTPClientFactory)

// WithBaseURL overrides the configured API base URL.
func WithBaseURL(baseURL string) Option {
	return func(f *HTTPClientFactory) {
		f.baseURL = strings.TrimRight(baseURL, "/")
	}
}

func NewHTTPClientFactory(tokenProvider TokenProvider, opts ...Option) *HTTPClientFactory {
	if tokenProvider == nil {
		tokenProvider = NewStaticTokenProvider("")
	}
	f := &HTTPClientFactory{
		tokenProvider: tokenProvider,
		baseURL:       config.GetDroidconKEBaseURL(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create returns a client sending requests through transport.
// A nil transport means http.DefaultTransport.
func (f *HTTPClientFactory) Create(transport http.RoundTripper) *Client {
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &Client{
		baseURL: f.baseURL,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(&authTransport{
				next:          transport,
				tokenProvider: f.tokenProvider,
			}),
		},
	}
}

// authTransport decorates every outgoing request with the headers the API expects.
type authTransport struct {
	next          http.RoundTripper
	tokenProvider TokenProvider
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	req = req.Clone(ctx)
	req.Header.Set("Accept", "application/json")
	if token, ok := t.tokenProvider.Token(ctx); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if id := requestid.FromContext(ctx); id != "" {
		req.Header.Set(requestid.Header, id)
	}
	return t.next.RoundTrip(req)
}

// Client issues JSON requests relative to the API base URL.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get issues GET {base}/{path}?{query} and decodes the JSON body into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Method: http.MethodGet, URL: endpoint, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return nil
}
