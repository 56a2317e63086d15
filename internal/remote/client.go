// Package remote implements the catalog API client: the startup token
// exchange, merchant lookup and mutation, and per-item product submission.
// Each operation is a single attempt; retrying is not this layer's job.
package remote

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/quickmart/shelfsync/internal/creds"
	"github.com/quickmart/shelfsync/internal/transport"
	"github.com/quickmart/shelfsync/pkg/catalog"
	pkgerrors "github.com/quickmart/shelfsync/pkg/errors"
)

// API paths.
const (
	pathToken     = "oauth/token"
	pathMerchants = "api/merchants"
	pathProducts  = "api/products"
)

// Merchant is one merchant record as the API returns it. The API owns the
// schema; mutations round-trip the whole record with one property changed,
// so unknown properties must survive.
type Merchant map[string]any

// ID returns the merchant's id, or "" when absent.
func (m Merchant) ID() string {
	id, _ := m["id"].(string)
	return id
}

// Name returns the merchant's name, or "" when absent.
func (m Merchant) Name() string {
	name, _ := m["name"].(string)
	return name
}

// Client talks to the remote catalog API.
type Client struct {
	baseURL string
	http    *transport.Client
}

// New creates an unauthenticated client for the given host. Call
// Authenticate before any other operation.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: transport.DefaultHTTPTimeout}
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    transport.NewWithHTTPClient(&transport.NoAuth{}, httpClient),
	}
}

func (c *Client) url(path string) string {
	return c.baseURL + "/" + path
}

// Authenticate exchanges the client credentials for a bearer token and
// installs it on the transport. The exchange happens once at startup;
// token refresh is out of scope.
func (c *Client) Authenticate(ctx context.Context, cr *creds.Credentials) error {
	params := url.Values{}
	params.Set("client_id", cr.ClientID)
	params.Set("client_secret", cr.ClientSecret)
	params.Set("grant_type", cr.GrantType)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(pathToken)+"?"+params.Encode(), nil)
	if err != nil {
		return pkgerrors.WrapAPI(pathToken, 0, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return pkgerrors.WrapAPI(pathToken, 0, err)
	}

	var token struct {
		AccessToken string `json:"access_token"`
	}
	if err := transport.DecodeResponse(resp, pathToken, &token); err != nil {
		return err
	}
	if token.AccessToken == "" {
		return pkgerrors.NewAPIError(pathToken, resp.StatusCode, "response carried no access_token")
	}
	c.http.SetAuth(&transport.BearerAuth{Token: token.AccessToken})
	return nil
}

// MerchantByName returns the last merchant in listing order whose name
// contains substr and which carries an id. ErrNotFound when no merchant
// matches.
func (c *Client) MerchantByName(ctx context.Context, substr string) (Merchant, error) {
	resp, err := c.http.Get(ctx, c.url(pathMerchants))
	if err != nil {
		return nil, pkgerrors.WrapAPI(pathMerchants, 0, err)
	}

	var listing struct {
		Merchants []Merchant `json:"merchants"`
	}
	if err := transport.DecodeResponse(resp, pathMerchants, &listing); err != nil {
		return nil, err
	}

	var match Merchant
	for _, m := range listing.Merchants {
		if m.ID() != "" && strings.Contains(m.Name(), substr) {
			match = m
		}
	}
	if match == nil {
		return nil, pkgerrors.ErrNotFound
	}
	return match, nil
}

// MerchantID returns the id of the merchant matched by name substring.
func (c *Client) MerchantID(ctx context.Context, substr string) (string, error) {
	m, err := c.MerchantByName(ctx, substr)
	if err != nil {
		return "", err
	}
	return m.ID(), nil
}

// UpdateMerchant fetches the merchant matched by substr, sets one property
// on the record and PUTs the whole record back.
func (c *Client) UpdateMerchant(ctx context.Context, substr, property string, value any) error {
	m, err := c.MerchantByName(ctx, substr)
	if err != nil {
		return err
	}
	m[property] = value

	endpoint := pathMerchants + "/" + m.ID()
	resp, err := c.http.PutJSON(ctx, c.url(endpoint), m)
	if err != nil {
		return pkgerrors.WrapAPI(endpoint, 0, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return pkgerrors.NewAPIError(endpoint, resp.StatusCode, "merchant update rejected")
	}
	return nil
}

// DeleteMerchant removes the merchant matched by substr.
func (c *Client) DeleteMerchant(ctx context.Context, substr string) error {
	m, err := c.MerchantByName(ctx, substr)
	if err != nil {
		return err
	}

	endpoint := pathMerchants + "/" + m.ID()
	resp, err := c.http.Delete(ctx, c.url(endpoint))
	if err != nil {
		return pkgerrors.WrapAPI(endpoint, 0, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return pkgerrors.NewAPIError(endpoint, resp.StatusCode, "merchant delete rejected")
	}
	return nil
}

// SendProduct submits one catalog item, returning the API status code.
// 200 is success; any other status is the caller's per-item failure.
func (c *Client) SendProduct(ctx context.Context, item *catalog.Item) (int, error) {
	resp, err := c.http.PostJSON(ctx, c.url(pathProducts), item)
	if err != nil {
		return 0, pkgerrors.WrapAPI(pathProducts, 0, err)
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}
