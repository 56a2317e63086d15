package transport_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/quickmart/shelfsync/internal/transport"
	pkgerrors "github.com/quickmart/shelfsync/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBearerAuthHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://example.com/api/merchants", nil)
	auth := &transport.BearerAuth{Token: "abc123"}
	auth.Apply(req)
	assert.Equal(t, "Bearer abc123", req.Header.Get("token"))
}

func TestNoAuthLeavesRequestAlone(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://example.com/", nil)
	(&transport.NoAuth{}).Apply(req)
	assert.Empty(t, req.Header.Get("token"))
	assert.Empty(t, req.Header.Get("Authorization"))
}

func TestClientAppliesAuthAndHeaders(t *testing.T) {
	var got http.Header
	var method string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		method = r.Method
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := transport.New(&transport.BearerAuth{Token: "tok"})

	resp, err := c.PostJSON(context.Background(), srv.URL+"/api/products", map[string]string{"sku": "1"})
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.MethodPost, method)
	assert.Equal(t, "Bearer tok", got.Get("token"))
	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.Equal(t, "application/json", got.Get("Accept"))
}

func TestDecodeResponseOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"access_token":"tok"}`))
	}))
	defer srv.Close()

	c := transport.New(nil)
	resp, err := c.Get(context.Background(), srv.URL)
	require.NoError(t, err)

	var out struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, transport.DecodeResponse(resp, "/oauth/token", &out))
	assert.Equal(t, "tok", out.AccessToken)
}

func TestDecodeResponseNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := transport.New(nil)
	resp, err := c.Get(context.Background(), srv.URL)
	require.NoError(t, err)

	var out map[string]any
	err = transport.DecodeResponse(resp, "api/merchants", &out)
	require.Error(t, err)

	var apiErr *pkgerrors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
	assert.Equal(t, "api/merchants", apiErr.Endpoint)
}
