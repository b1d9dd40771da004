package storefront

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/longbridgeapp/assert"

	"github.com/hyp3rd/storefront/internal/constants"
	"github.com/hyp3rd/storefront/pkg/apierror"
	"github.com/hyp3rd/storefront/pkg/cartlog"
)

func newTestClient(t *testing.T, baseURL string, options ...Option) *Client {
	t.Helper()

	client, err := New(NewConfig(baseURL, options...))
	assert.Nil(t, err)

	return client
}

func writeSnapshot(w http.ResponseWriter, snap cartlog.Snapshot) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(snap)
}

func TestClient_AddItemConfirmsThroughIdempotencyKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/cart/items", r.URL.Path)

		key := r.Header.Get(constants.HeaderIdempotencyKey)
		assert.True(t, key != "")

		writeSnapshot(w, cartlog.Snapshot{
			Items: []cartlog.Item{
				{ID: "line-1", SKU: "sku-1", Name: "Mug", Quantity: 1, UnitPrice: 1200, LineTotal: 1200},
			},
			Subtotal:          1200,
			Total:             1200,
			Currency:          "USD",
			Version:           2,
			AppliedOperations: []string{key},
		})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	view, err := client.AddItem(context.Background(), AddItemParams{SKU: "sku-1", Name: "Mug", Price: 1200, Quantity: 1})
	assert.Nil(t, err)
	assert.Equal(t, 1, len(view.Items))
	assert.Equal(t, uint64(2), view.Version)

	// The operation settled: nothing pending, version confirmed.
	assert.Equal(t, 0, len(client.log.PendingIDs()))

	version, known := client.CartVersion(context.Background())
	assert.True(t, known)
	assert.Equal(t, uint64(2), version)
}

func TestClient_ValidationFailureRollsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"validation failed","errors":{"quantity":["must be positive"]}}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	view, err := client.AddItem(context.Background(), AddItemParams{SKU: "sku-1", Name: "Mug", Price: 1200, Quantity: -1})
	assert.NotNil(t, err)

	clsErr, ok := apierror.From(err)
	assert.True(t, ok)
	assert.Equal(t, apierror.KindValidation, clsErr.Kind)
	assert.Equal(t, []string{"must be positive"}, clsErr.FieldErrors["quantity"])

	// The rejected operation is gone from the view and the queue.
	assert.Equal(t, 0, len(view.Items))
	assert.Equal(t, 0, len(client.log.PendingIDs()))
}

func TestClient_TransientFailureKeepsOperationPending(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	view, err := client.AddItem(context.Background(), AddItemParams{SKU: "sku-1", Name: "Mug", Price: 1200, Quantity: 1})
	assert.NotNil(t, err)

	clsErr, ok := apierror.From(err)
	assert.True(t, ok)
	assert.Equal(t, apierror.KindUnknown, clsErr.Kind)

	// Transient failures are not rolled back: the optimistic line survives for
	// an explicit retry.
	assert.Equal(t, 1, len(view.Items))
	assert.Equal(t, 1, len(client.log.PendingIDs()))
}

func TestClient_ConflictRetryRefreshesThroughCartFetch(t *testing.T) {
	var (
		mu       sync.Mutex
		posts    int
		cartGets int
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/v1/cart":
			mu.Lock()
			cartGets++
			mu.Unlock()

			writeSnapshot(w, cartlog.Snapshot{Currency: "USD", Version: 7})
		case r.Method == http.MethodPost && r.URL.Path == "/api/v1/cart/items":
			mu.Lock()
			posts++
			n := posts
			mu.Unlock()

			if n == 1 {
				w.WriteHeader(http.StatusConflict)

				return
			}

			assert.Equal(t, "7", r.Header.Get(constants.HeaderIfMatch))

			key := r.Header.Get(constants.HeaderIdempotencyKey)
			writeSnapshot(w, cartlog.Snapshot{
				Items: []cartlog.Item{
					{ID: "line-1", SKU: "sku-1", Name: "Mug", Quantity: 1, UnitPrice: 1200, LineTotal: 1200},
				},
				Subtotal:          1200,
				Total:             1200,
				Currency:          "USD",
				Version:           8,
				AppliedOperations: []string{key},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	view, err := client.AddItem(context.Background(), AddItemParams{SKU: "sku-1", Name: "Mug", Price: 1200, Quantity: 1})
	assert.Nil(t, err)
	assert.Equal(t, uint64(8), view.Version)
	assert.Equal(t, 2, posts)
	assert.Equal(t, 1, cartGets)
	assert.Equal(t, 0, len(client.log.PendingIDs()))
}

func TestClient_FallbackHeadersAndLazyGuestToken(t *testing.T) {
	var (
		mu     sync.Mutex
		tokens []string
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "en-US", r.Header.Get(constants.HeaderLocale))
		assert.Equal(t, "USD", r.Header.Get(constants.HeaderCurrency))

		mu.Lock()
		tokens = append(tokens, r.Header.Get(constants.HeaderGuestToken))
		mu.Unlock()

		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	ctx := context.Background()

	_, err := client.Favorites(ctx)
	assert.Nil(t, err)

	_, err = client.Favorites(ctx)
	assert.Nil(t, err)

	assert.Equal(t, 2, len(tokens))
	assert.True(t, tokens[0] != "")
	assert.Equal(t, tokens[0], tokens[1])
}

func TestClient_NegotiatedPreferencesOverrideFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "de-DE", r.Header.Get(constants.HeaderLocale))
		assert.Equal(t, "EUR", r.Header.Get(constants.HeaderCurrency))
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, WithStaticPreferences("de-DE", "EUR"))

	_, err := client.Orders(context.Background())
	assert.Nil(t, err)
}

func TestClient_PrimedCSRFTokenRidesMutations(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/csrf":
			http.SetCookie(w, &http.Cookie{Name: constants.CSRFCookieName, Value: "csrf-xyz", Path: "/"})
			w.WriteHeader(http.StatusNoContent)
		case "/api/v1/cart/items":
			assert.Equal(t, "csrf-xyz", r.Header.Get(constants.HeaderCSRFToken))

			key := r.Header.Get(constants.HeaderIdempotencyKey)
			writeSnapshot(w, cartlog.Snapshot{Currency: "USD", Version: 1, AppliedOperations: []string{key}})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	ctx := context.Background()

	err := client.PrimeCSRF(ctx)
	assert.Nil(t, err)

	_, err = client.AddItem(ctx, AddItemParams{SKU: "sku-1", Name: "Mug", Price: 1200, Quantity: 1})
	assert.Nil(t, err)
}

func TestClient_SynchronousModeHasNoQueue(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, WithOptimisticCart(false))

	_, err := client.AddItem(context.Background(), AddItemParams{SKU: "sku-1", Name: "Mug", Price: 1200, Quantity: 1})
	assert.NotNil(t, err)
	assert.Equal(t, 0, len(client.log.PendingIDs()))
}

func TestClient_SessionExpiredHandlerFires(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	fired := 0

	client := newTestClient(t, server.URL, WithSessionExpiredHandler(func(_ context.Context) {
		fired++
	}))

	_, err := client.Orders(context.Background())
	assert.NotNil(t, err)

	clsErr, ok := apierror.From(err)
	assert.True(t, ok)
	assert.Equal(t, apierror.KindSessionExpired, clsErr.Kind)
	assert.Equal(t, 1, fired)
}

func TestClient_CartViewReflectsPendingOperations(t *testing.T) {
	block := make(chan struct{})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block

		key := r.Header.Get(constants.HeaderIdempotencyKey)
		writeSnapshot(w, cartlog.Snapshot{
			Items: []cartlog.Item{
				{ID: "line-1", SKU: "sku-1", Name: "Mug", Quantity: 1, UnitPrice: 1200, LineTotal: 1200},
			},
			Subtotal:          1200,
			Total:             1200,
			Currency:          "USD",
			Version:           1,
			AppliedOperations: []string{key},
		})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	ctx := context.Background()

	done := make(chan struct{})

	go func() {
		defer close(done)

		_, _ = client.AddItem(ctx, AddItemParams{SKU: "sku-1", Name: "Mug", Price: 1200, Quantity: 1})
	}()

	// The optimistic line is visible while the request is still in flight.
	visible := false

	for i := 0; i < 200; i++ {
		view, viewErr := client.CartView(ctx)
		if viewErr == nil && len(view.Items) == 1 {
			visible = true

			break
		}

		time.Sleep(5 * time.Millisecond)
	}

	assert.True(t, visible)

	close(block)
	<-done

	assert.Equal(t, 0, len(client.log.PendingIDs()))
}

func TestNew_Validation(t *testing.T) {
	_, err := New(nil)
	assert.NotNil(t, err)

	_, err = New(&Config{BaseURL: "   "})
	assert.NotNil(t, err)

	_, err = New(&Config{BaseURL: "http://localhost"})
	assert.NotNil(t, err) // nil token store
}
