// Package transport provides the authenticated HTTP client shared by the
// remote catalog API operations. Retry, backoff and token refresh are
// deliberately absent: callers receive the response (or error) of a single
// attempt.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	pkgerrors "github.com/quickmart/shelfsync/pkg/errors"
)

// DefaultHTTPTimeout bounds a single request round trip.
const DefaultHTTPTimeout = 60 * time.Second

// Client provides HTTP client functionality with authentication.
type Client struct {
	http *http.Client
	auth Authenticator
}

// New creates a new transport client with the specified authenticator.
func New(auth Authenticator) *Client {
	return NewWithHTTPClient(auth, &http.Client{Timeout: DefaultHTTPTimeout})
}

// NewWithHTTPClient creates a transport client around an existing
// *http.Client, the seam tests use to point at an httptest server.
func NewWithHTTPClient(auth Authenticator, httpClient *http.Client) *Client {
	if auth == nil {
		auth = &NoAuth{}
	}
	return &Client{http: httpClient, auth: auth}
}

// SetAuth swaps the authenticator, used once the startup token exchange
// has produced a bearer token.
func (c *Client) SetAuth(auth Authenticator) {
	c.auth = auth
}

// Do performs an HTTP request with authentication applied.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	c.auth.Apply(req)
	req.Header.Set("Accept", "application/json")
	if req.Method == http.MethodPost || req.Method == http.MethodPut {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.http.Do(req)
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, pkgerrors.WrapAPI(url, 0, err)
	}
	return c.Do(req)
}

// PostJSON performs a POST request with a JSON body.
func (c *Client) PostJSON(ctx context.Context, url string, body any) (*http.Response, error) {
	return c.sendJSON(ctx, http.MethodPost, url, body)
}

// PutJSON performs a PUT request with a JSON body.
func (c *Client) PutJSON(ctx context.Context, url string, body any) (*http.Response, error) {
	return c.sendJSON(ctx, http.MethodPut, url, body)
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return nil, pkgerrors.WrapAPI(url, 0, err)
	}
	return c.Do(req)
}

func (c *Client) sendJSON(ctx context.Context, method, url string, body any) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, pkgerrors.WrapAPI(url, 0, err)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(payload))
	if err != nil {
		return nil, pkgerrors.WrapAPI(url, 0, err)
	}
	return c.Do(req)
}

// DecodeResponse decodes a JSON response into the target structure,
// converting non-200 statuses into an APIError carrying the body.
func DecodeResponse(resp *http.Response, endpoint string, target any) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return pkgerrors.WrapAPI(endpoint, resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		return pkgerrors.NewAPIError(endpoint, resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, target); err != nil {
		return pkgerrors.WrapAPI(endpoint, resp.StatusCode, err)
	}
	return nil
}
