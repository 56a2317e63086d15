package remote_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/quickmart/shelfsync/internal/creds"
	"github.com/quickmart/shelfsync/internal/remote"
	"github.com/quickmart/shelfsync/pkg/catalog"
	pkgerrors "github.com/quickmart/shelfsync/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI mimics the catalog API surface the client touches.
type fakeAPI struct {
	t         *testing.T
	merchants []map[string]any
	updated   map[string]any
	deleted   string
	products  []map[string]any
	status    int // product POST status, default 200
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /oauth/token", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("client_id") == "" || r.URL.Query().Get("client_secret") == "" {
			http.Error(w, "missing credentials", http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"access_token": "tok-1"})
	})
	mux.HandleFunc("GET /api/merchants", func(w http.ResponseWriter, r *http.Request) {
		f.requireToken(w, r)
		json.NewEncoder(w).Encode(map[string]any{"merchants": f.merchants})
	})
	mux.HandleFunc("PUT /api/merchants/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.requireToken(w, r)
		var m map[string]any
		json.NewDecoder(r.Body).Decode(&m)
		f.updated = m
	})
	mux.HandleFunc("DELETE /api/merchants/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.requireToken(w, r)
		f.deleted = r.PathValue("id")
	})
	mux.HandleFunc("POST /api/products", func(w http.ResponseWriter, r *http.Request) {
		f.requireToken(w, r)
		var p map[string]any
		json.NewDecoder(r.Body).Decode(&p)
		f.products = append(f.products, p)
		if f.status != 0 {
			w.WriteHeader(f.status)
		}
	})
	return mux
}

func (f *fakeAPI) requireToken(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("token") != "Bearer tok-1" {
		f.t.Errorf("request to %s missing bearer token", r.URL.Path)
	}
}

func newClient(t *testing.T, f *fakeAPI) *remote.Client {
	t.Helper()
	f.t = t
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)

	c := remote.New(srv.URL+"/", srv.Client())
	err := c.Authenticate(context.Background(), &creds.Credentials{
		ClientID:     "id",
		ClientSecret: "secret",
		GrantType:    creds.DefaultGrantType,
	})
	require.NoError(t, err)
	return c
}

func merchants() []map[string]any {
	return []map[string]any{
		{"id": "m-1", "name": "Richard's Market", "is_active": false, "tier": "gold"},
		{"id": "m-2", "name": "Corner Store", "is_active": true},
		{"name": "Ghost Merchant Richard"}, // no id, never matched
	}
}

func TestAuthenticateRejectsMissingToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := remote.New(srv.URL, srv.Client())
	err := c.Authenticate(context.Background(), &creds.Credentials{ClientID: "a", ClientSecret: "b", GrantType: "client_credentials"})
	assert.Error(t, err)
}

func TestMerchantByName(t *testing.T) {
	c := newClient(t, &fakeAPI{merchants: merchants()})

	m, err := c.MerchantByName(context.Background(), "Richard")
	require.NoError(t, err)
	assert.Equal(t, "m-1", m.ID())
	assert.Equal(t, "Richard's Market", m.Name())

	id, err := c.MerchantID(context.Background(), "Corner")
	require.NoError(t, err)
	assert.Equal(t, "m-2", id)
}

func TestMerchantByNameKeepsLastMatch(t *testing.T) {
	c := newClient(t, &fakeAPI{merchants: []map[string]any{
		{"id": "m-1", "name": "Richard's Market"},
		{"id": "m-2", "name": "Richard's Deli"},
		{"name": "Richard's Ghost"}, // no id, never matched
	}})

	m, err := c.MerchantByName(context.Background(), "Richard")
	require.NoError(t, err)
	assert.Equal(t, "m-2", m.ID())
}

func TestMerchantByNameNotFound(t *testing.T) {
	c := newClient(t, &fakeAPI{merchants: merchants()})

	_, err := c.MerchantByName(context.Background(), "Nobody")
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestUpdateMerchantRoundTripsRecord(t *testing.T) {
	f := &fakeAPI{merchants: merchants()}
	c := newClient(t, f)

	require.NoError(t, c.UpdateMerchant(context.Background(), "Richard", "is_active", true))
	require.NotNil(t, f.updated)
	assert.Equal(t, true, f.updated["is_active"])
	// Unknown properties survive the round trip.
	assert.Equal(t, "gold", f.updated["tier"])
	assert.Equal(t, "m-1", f.updated["id"])
}

func TestDeleteMerchant(t *testing.T) {
	f := &fakeAPI{merchants: merchants()}
	c := newClient(t, f)

	require.NoError(t, c.DeleteMerchant(context.Background(), "Corner"))
	assert.Equal(t, "m-2", f.deleted)
}

func TestSendProduct(t *testing.T) {
	f := &fakeAPI{merchants: merchants()}
	c := newClient(t, f)

	item := &catalog.Item{
		MerchantID: "m-1",
		SKU:        "A1",
		Barcodes:   []string{"779001"},
		BranchProducts: []catalog.BranchProduct{
			{Branch: "MM", Price: 10, Stock: 5},
		},
	}
	status, err := c.SendProduct(context.Background(), item)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)

	require.Len(t, f.products, 1)
	assert.Equal(t, "A1", f.products[0]["sku"])
	assert.Equal(t, "m-1", f.products[0]["merchant_id"])
}

func TestSendProductNon200IsReportedNotFatal(t *testing.T) {
	f := &fakeAPI{merchants: merchants(), status: http.StatusUnprocessableEntity}
	c := newClient(t, f)

	status, err := c.SendProduct(context.Background(), &catalog.Item{SKU: "A1"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
}
