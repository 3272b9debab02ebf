// Package httpapi implements the remote.Gateway port over the bill
// store's HTTP/JSON API.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"contas/internal/core"
	"contas/internal/remote"
)

const defaultPathPrefix = "/api/v1"

// Config selects the API origin and the per-call timeout.
type Config struct {
	// BaseURL is the API origin, e.g. "http://localhost:8000".
	BaseURL string
	// PathPrefix defaults to "/api/v1".
	PathPrefix string
	// Timeout bounds each remote call; a timeout is reported to the
	// caller the same way as any other transport failure.
	Timeout time.Duration
	// HTTPClient overrides the pooled default, used by tests.
	HTTPClient *http.Client
}

type Client struct {
	base    string
	hc      *http.Client
	timeout time.Duration
}

var _ remote.Gateway = (*Client)(nil)

func New(cfg Config) (*Client, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		return nil, errors.New("missing API base URL")
	}
	u, err := url.Parse(base)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("invalid API base URL %q", base)
	}
	prefix := cfg.PathPrefix
	if prefix == "" {
		prefix = defaultPathPrefix
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = newPooledHTTPClient()
	}
	return &Client{
		base:    strings.TrimRight(base, "/") + "/" + strings.Trim(prefix, "/"),
		hc:      hc,
		timeout: timeout,
	}, nil
}

// newPooledHTTPClient builds a transport with connection pooling and
// keep-alive tuned for a single API host.
func newPooledHTTPClient() *http.Client {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   10,
		MaxConnsPerHost:       20,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 15 * time.Second,
		ForceAttemptHTTP2:     true,
	}
	return &http.Client{Transport: transport}
}

func (c *Client) ListBills(ctx context.Context) ([]core.Bill, error) {
	var wires []remote.BillWire
	if err := c.do(ctx, http.MethodGet, "/contas", nil, &wires); err != nil {
		return nil, err
	}
	bills := make([]core.Bill, 0, len(wires))
	for _, w := range wires {
		b, err := remote.DecodeBill(w)
		if err != nil {
			return nil, fmt.Errorf("decode bill: %w", err)
		}
		bills = append(bills, b)
	}
	return bills, nil
}

func (c *Client) CreateBill(ctx context.Context, b core.Bill) (core.Bill, error) {
	var out remote.BillWire
	if err := c.do(ctx, http.MethodPost, "/contas", remote.EncodeBill(b), &out); err != nil {
		return core.Bill{}, err
	}
	created, err := remote.DecodeBill(out)
	if err != nil {
		return core.Bill{}, fmt.Errorf("decode created bill: %w", err)
	}
	return created, nil
}

func (c *Client) UpdateBill(ctx context.Context, id string, b core.Bill) (core.Bill, error) {
	var out remote.BillWire
	if err := c.do(ctx, http.MethodPut, "/contas/"+url.PathEscape(id), remote.EncodeBill(b), &out); err != nil {
		return core.Bill{}, err
	}
	updated, err := remote.DecodeBill(out)
	if err != nil {
		return core.Bill{}, fmt.Errorf("decode updated bill: %w", err)
	}
	return updated, nil
}

func (c *Client) DeleteBill(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/contas/"+url.PathEscape(id), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s %s: %w", method, path, remote.ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: unexpected status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}
