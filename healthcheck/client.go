// Package healthcheck checks the health endpoint of a running studio API.
package healthcheck

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// DefaultPath is the endpoint checked when WithPath is not called.
const DefaultPath = "/health"

// ErrNotOK is returned when the service answers but reports ok=false.
var ErrNotOK = errors.New("healthcheck: service reported not ok")

// Report is the decoded health response.
type Report struct {
	OK      bool   `json:"ok"`
	Service string `json:"service"`
	Note    string `json:"note"`
}

// StatusError is returned for any non-200 response.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return "healthcheck: unexpected status " + strconv.Itoa(e.Code)
}

// Client talks to the health endpoint of one service instance.
type Client struct {
	baseURL string
	path    string
	http    *http.Client
}

// NewClient returns a Client. If httpClient is nil, http.DefaultClient is used.
func NewClient(httpClient *http.Client) *Client {
	c := &Client{http: httpClient, path: DefaultPath}
	if c.http == nil {
		c.http = http.DefaultClient
	}
	return c
}

// WithURL sets the base URL (e.g. "http://localhost:8080").
func (c *Client) WithURL(baseURL string) *Client {
	c.baseURL = strings.TrimSuffix(baseURL, "/")
	return c
}

// WithPath sets the endpoint path, e.g. "/api/health".
func (c *Client) WithPath(path string) *Client {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	c.path = path
	return c
}

// Check performs one GET against the health endpoint.
func (c *Client) Check(ctx context.Context) (*Report, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+c.path, nil)
	if err != nil {
		return nil, errors.Wrap(err, "healthcheck: build request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "healthcheck: request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode}
	}

	var out Report
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, errors.Wrap(err, "healthcheck: decode response")
	}
	if !out.OK {
		return &out, ErrNotOK
	}
	return &out, nil
}
