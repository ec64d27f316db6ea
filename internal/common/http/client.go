// internal/common/http/client.go
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// DefaultTimeout bounds every outbound call made by a data provider.
const DefaultTimeout = 10 * time.Second

// maxBodyBytes caps how much of an upstream body is decoded.
const maxBodyBytes = 4 << 20

var (
	ErrTimeout          = errors.New("upstream timeout")
	ErrUnexpectedStatus = errors.New("unexpected upstream status")
	ErrDecode           = errors.New("upstream body could not be decoded")
)

type Client struct {
	httpClient *http.Client
	userAgent  string
	accept     string
}

type Option func(*Client)

// WithUserAgent sets the User-Agent sent on every request. Some public
// endpoints reject Go's default agent string.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithAccept sets the Accept header sent on every request.
func WithAccept(accept string) Option {
	return func(c *Client) {
		c.accept = accept
	}
}

func NewClient(timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		accept: "application/json",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Timeout reports the per-request bound of the client.
func (c *Client) Timeout() time.Duration {
	return c.httpClient.Timeout
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if c.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.accept != "" && req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", c.accept)
	}
	return c.httpClient.Do(req)
}

// GetJSON issues a GET and decodes a 200 response body into out.
func (c *Client) GetJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.Do(req)
	if err != nil {
		if IsTimeout(err) {
			return fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(out); err != nil {
		if IsTimeout(err) {
			return fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return nil
}

// IsTimeout reports whether err is a deadline or client timeout.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
