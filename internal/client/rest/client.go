// Package rest implements the cart, order and profile services over the
// backend's JSON REST API.
package rest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/xenking/storefront-checkout/internal/jsonx"
)

const maxErrorBody = 4 << 10

// Config configures a Client.
type Config struct {
	BaseURL string
	// Timeout bounds every request. Zero means no client-side timeout.
	Timeout time.Duration
	// Transport defaults to http.DefaultTransport.
	Transport      http.RoundTripper
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
	// Err is the domain sentinel for the status, if any.
	Err error
}

func (e *StatusError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, msg)
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

// Client talks to the backend services. Requests are not retried.
type Client struct {
	base *url.URL
	http *http.Client
}

// New creates a Client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("backend base URL is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(err, "parse base URL")
	}

	transport := cfg.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	var opts []otelhttp.Option
	if cfg.TracerProvider != nil {
		opts = append(opts, otelhttp.WithTracerProvider(cfg.TracerProvider))
	}
	if cfg.MeterProvider != nil {
		opts = append(opts, otelhttp.WithMeterProvider(cfg.MeterProvider))
	}

	return &Client{
		base: base,
		http: &http.Client{
			Transport: otelhttp.NewTransport(transport, opts...),
			Timeout:   cfg.Timeout,
		},
	}, nil
}

// Carts returns the cart service.
func (c *Client) Carts() *CartClient { return &CartClient{c: c} }

// Orders returns the order service.
func (c *Client) Orders() *OrderClient { return &OrderClient{c: c} }

// Profiles returns the profile service.
func (c *Client) Profiles() *ProfileClient { return &ProfileClient{c: c} }

// Ping checks that the backend answers at all. Any HTTP response counts.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.base.String(), http.NoBody)
	if err != nil {
		return errors.Wrap(err, "create request")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "ping backend")
	}
	_ = resp.Body.Close()
	return nil
}

// do sends the body written by in (if non-nil) and decodes the response with
// out (if non-nil). A 404 is reported as a StatusError wrapping notFound.
func (c *Client) do(
	ctx context.Context,
	method, path string,
	query url.Values,
	in func(e *jx.Encoder),
	out func(d *jx.Decoder) error,
	notFound error,
) error {
	u := *c.base
	raw := c.base.EscapedPath() + path
	unescaped, err := url.PathUnescape(raw)
	if err != nil {
		return errors.Wrap(err, "build path")
	}
	u.Path, u.RawPath = unescaped, raw
	u.RawQuery = query.Encode()

	var body io.Reader = http.NoBody
	if in != nil {
		body = bytes.NewReader(jsonx.Marshal(in))
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return errors.Wrap(err, "create request")
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		serr := &StatusError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(msg)),
		}
		if resp.StatusCode == http.StatusNotFound {
			serr.Err = notFound
		}
		return serr
	}

	if out == nil {
		return nil
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrapf(err, "read %s %s", method, path)
	}
	if err := jsonx.Unmarshal(data, out); err != nil {
		return errors.Wrapf(err, "decode %s %s", method, path)
	}
	return nil
}

func segment(s string) string {
	return "/" + url.PathEscape(s)
}
