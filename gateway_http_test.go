package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/longbridgeapp/assert"

	"github.com/hyp3rd/storefront/pkg/apierror"
	"github.com/hyp3rd/storefront/pkg/cartlog"
)

// gatewayStub overrides only the methods a test exercises.
type gatewayStub struct {
	Service

	lastQuery ListQuery
	cartErr   error
}

func (s *gatewayStub) Cart(_ context.Context) (cartlog.Snapshot, error) {
	if s.cartErr != nil {
		return cartlog.Snapshot{}, s.cartErr
	}

	return cartlog.Snapshot{Currency: "USD", Version: 3}, nil
}

func (s *gatewayStub) AddItem(_ context.Context, params AddItemParams) (cartlog.Snapshot, error) {
	return cartlog.Snapshot{
		Items:    []cartlog.Item{{SKU: params.SKU, Quantity: params.Quantity}},
		Currency: "USD",
		Version:  4,
	}, nil
}

func (s *gatewayStub) Products(_ context.Context, query ListQuery) ([]Product, error) {
	s.lastQuery = query

	return []Product{{ID: "p1", Slug: "mug"}}, nil
}

func (s *gatewayStub) PrimeCSRF(_ context.Context) error { return nil }

func startGateway(t *testing.T, svc Service) (*Gateway, string) {
	t.Helper()

	gw := NewGateway("127.0.0.1:0", svc)

	ctx := context.Background()

	err := gw.Start(ctx)
	assert.Nil(t, err)

	t.Cleanup(func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		_ = gw.Shutdown(shutdownCtx)
	})

	// wait briefly for listener
	time.Sleep(30 * time.Millisecond)

	addr := gw.Address()
	assert.True(t, addr != "")

	return gw, "http://" + addr
}

func TestGateway_BasicEndpoints(t *testing.T) {
	stub := &gatewayStub{}
	_, base := startGateway(t, stub)

	client := &http.Client{Timeout: 2 * time.Second}

	// /healthz
	resp, err := client.Get(base + "/healthz")
	assert.Nil(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	// /api/cart
	resp, err = client.Get(base + "/api/cart")
	assert.Nil(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var snap cartlog.Snapshot

	err = json.NewDecoder(resp.Body).Decode(&snap)
	assert.NoError(t, err)
	assert.Equal(t, uint64(3), snap.Version)
	_ = resp.Body.Close()

	// /api/csrf
	resp, err = client.Get(base + "/api/csrf")
	assert.Nil(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestGateway_AddItemRoundTrip(t *testing.T) {
	stub := &gatewayStub{}
	_, base := startGateway(t, stub)

	client := &http.Client{Timeout: 2 * time.Second}

	body, err := json.Marshal(AddItemParams{SKU: "sku-1", Name: "Mug", Price: 1200, Quantity: 2})
	assert.Nil(t, err)

	resp, err := client.Post(base+"/api/cart/items", "application/json", bytes.NewReader(body))
	assert.Nil(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var snap cartlog.Snapshot

	err = json.NewDecoder(resp.Body).Decode(&snap)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(snap.Items))
	assert.Equal(t, 2, snap.Items[0].Quantity)
	_ = resp.Body.Close()
}

func TestGateway_ClassifiedErrorsKeepStatusAndKind(t *testing.T) {
	stub := &gatewayStub{
		cartErr: &apierror.Error{Kind: apierror.KindSessionExpired, Status: http.StatusUnauthorized, Message: "signed out"},
	}
	_, base := startGateway(t, stub)

	client := &http.Client{Timeout: 2 * time.Second}

	resp, err := client.Get(base + "/api/cart")
	assert.Nil(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var payload map[string]any

	err = json.NewDecoder(resp.Body).Decode(&payload)
	assert.NoError(t, err)
	assert.Equal(t, "session_expired", payload["kind"])
	_ = resp.Body.Close()
}

func TestGateway_CatalogQueryPlumbing(t *testing.T) {
	stub := &gatewayStub{}
	_, base := startGateway(t, stub)

	client := &http.Client{Timeout: 2 * time.Second}

	resp, err := client.Get(base + "/api/catalog/products?q=mug&category=kitchen&page=2&perPage=24")
	assert.Nil(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	assert.Equal(t, "mug", stub.lastQuery.Search)
	assert.Equal(t, "kitchen", stub.lastQuery.Category)
	assert.Equal(t, 2, stub.lastQuery.Page)
	assert.Equal(t, 24, stub.lastQuery.PerPage)
}
