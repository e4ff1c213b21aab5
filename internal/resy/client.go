package resy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/example/resy-asks/internal/domain/reservation"
)

const (
	DefaultBaseURL = "https://api.resy.com"
	// DefaultAPIKey is the key resy.com's own web client sends.
	DefaultAPIKey = "VbWk7s3L4KiK5fzlO7JD3Q5EYolJI7n5"

	userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/114.0.0.0 Safari/537.36"
)

// Client talks to the Resy API on behalf of one account. It requires an API key
// and an auth token captured from an authenticated browser session.
type Client struct {
	hc      *http.Client
	creds   Credentials
	base    string
	limiter *rate.Limiter

	paymentMethodID int64
	now             func() time.Time
}

type Credentials struct {
	APIKey    string
	AuthToken string
}

type Option func(*Client)

func WithBaseURL(base string) Option {
	return func(c *Client) { c.base = strings.TrimRight(base, "/") }
}

// WithHTTPClient replaces the default client. nil keeps the default.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.hc = hc
		}
	}
}

// WithRateLimit paces every request. rps <= 0 disables pacing.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithPaymentMethod is used when the hold response lists no payment method.
func WithPaymentMethod(id int64) Option {
	return func(c *Client) { c.paymentMethodID = id }
}

func New(creds Credentials, opts ...Option) *Client {
	if creds.APIKey == "" {
		creds.APIKey = DefaultAPIKey
	}
	c := &Client{
		hc:      &http.Client{Timeout: 10 * time.Second},
		creds:   creds,
		base:    DefaultBaseURL,
		limiter: rate.NewLimiter(rate.Limit(2), 1),
		now:     time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) Name() string { return "resy" }

func (c *Client) Ping(ctx context.Context) error {
	status, body, err := c.do(ctx, http.MethodGet, "/2/user", "", nil, nil)
	if err != nil {
		return err
	}
	if status >= 400 {
		var r struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(body, &r)
		if r.Message != "" {
			return fmt.Errorf("%w: resy ping failed: %s (status=%d)", reservation.ErrTransport, r.Message, status)
		}
		return fmt.Errorf("%w: resy ping failed (status=%d)", reservation.ErrTransport, status)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path, contentType string, query url.Values, body []byte) (int, []byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return 0, nil, fmt.Errorf("%w: %v", reservation.ErrTransport, err)
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Add("user-agent", userAgent)
	req.Header.Add("origin", "https://resy.com")
	req.Header.Add("referer", "https://resy.com/")
	req.Header.Add("x-origin", "https://resy.com")
	req.Header.Add("accept", "application/json, text/plain, */*")
	req.Header.Add("cache-control", "no-cache")
	if contentType != "" {
		req.Header.Add("content-type", contentType)
	}
	req.Header.Add("authorization", fmt.Sprintf(`ResyAPI api_key="%s"`, c.creds.APIKey))
	if c.creds.AuthToken != "" {
		req.Header.Add("x-resy-auth-token", c.creds.AuthToken)
		req.Header.Add("x-resy-universal-auth", c.creds.AuthToken)
	}
	if query != nil {
		req.URL.RawQuery = query.Encode()
	}

	res, err := c.hc.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %s %s: %v", reservation.ErrTransport, method, path, err)
	}
	defer res.Body.Close()
	b, err := io.ReadAll(res.Body)
	if err != nil {
		return res.StatusCode, nil, fmt.Errorf("%w: read %s: %v", reservation.ErrTransport, path, err)
	}
	return res.StatusCode, b, nil
}

// statusError builds an error for a non-2xx response, carrying the API's
// message field when present.
func statusError(kind error, op string, status int, body []byte) error {
	var r struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &r) == nil && r.Message != "" {
		return fmt.Errorf("%w: %s: %s (status=%d)", kind, op, r.Message, status)
	}
	return fmt.Errorf("%w: %s (status=%d)", kind, op, status)
}

func ok(status int) bool { return status >= 200 && status < 300 }
