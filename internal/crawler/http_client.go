package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// FetchErrorKind classifies why a fetch produced no HTTP response.
type FetchErrorKind string

const (
	// FetchTimeout covers request timeouts and deadline expiry.
	FetchTimeout FetchErrorKind = "timeout"
	// FetchConnectionError covers DNS failures and refused/reset connections.
	FetchConnectionError FetchErrorKind = "connection_error"
	// FetchTooManyRedirects is returned after the redirect limit is hit.
	FetchTooManyRedirects FetchErrorKind = "too_many_redirects"
	// FetchNonHTTPError covers everything else that prevented a response.
	FetchNonHTTPError FetchErrorKind = "non_http_error"
)

// FetchError is a typed transport-level failure. A 4xx or 5xx response is
// not a FetchError; the server was reached and answered.
type FetchError struct {
	URL  string
	Kind FetchErrorKind
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// errRedirectLimit is the sentinel installed in CheckRedirect so the
// classifier can recognize redirect loops.
var errRedirectLimit = errors.New("stopped after 10 redirects")

// Response is a completed HTTP exchange.
type Response struct {
	StatusCode  int
	Body        []byte
	ContentType string
	FinalURL    string // after following redirects
}

// IsHTML reports whether the response declared an HTML content type.
func (r *Response) IsHTML() bool {
	return strings.HasPrefix(r.ContentType, "text/html") ||
		strings.HasPrefix(r.ContentType, "application/xhtml+xml")
}

// HTTPClient performs single GET requests with a per-request timeout and
// a fixed User-Agent. There is no retry: a failed fetch yields exactly
// one typed failure and the crawl moves on.
type HTTPClient struct {
	client    *http.Client
	userAgent string
}

// NewHTTPClient creates an HTTP client for one crawl run.
func NewHTTPClient(userAgent string, timeout time.Duration) *HTTPClient {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return errRedirectLimit
			}
			return nil
		},
	}

	return &HTTPClient{client: client, userAgent: userAgent}
}

// Get fetches a URL. On transport failure the returned error is always a
// *FetchError; any status code that did arrive is a success from the
// fetcher's point of view.
func (h *HTTPClient) Get(ctx context.Context, rawURL string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Kind: FetchNonHTTPError, Err: err}
	}

	req.Header.Set("User-Agent", h.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Kind: classifyFetchError(err), Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Kind: classifyFetchError(err), Err: err}
	}

	return &Response{
		StatusCode:  resp.StatusCode,
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
		FinalURL:    resp.Request.URL.String(),
	}, nil
}

// Close releases idle connections.
func (h *HTTPClient) Close() {
	h.client.CloseIdleConnections()
}

func classifyFetchError(err error) FetchErrorKind {
	if errors.Is(err, errRedirectLimit) {
		return FetchTooManyRedirects
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return FetchTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return FetchTimeout
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return FetchConnectionError
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return FetchConnectionError
	}

	// url.Error wrapping something unrecognized: connection-level if it
	// happened during dial, otherwise a generic non-HTTP failure.
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return FetchTimeout
		}
	}

	return FetchNonHTTPError
}
