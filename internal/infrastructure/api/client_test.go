package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-bff/internal/config"
	"github.com/your-org/storefront-bff/internal/domain/cart"
	"github.com/your-org/storefront-bff/internal/pkg/auth"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	return NewClient(config.UpstreamConfig{
		BaseURL:    srv.URL + "/",
		Timeout:    2 * time.Second,
		MaxRetries: 2,
		RetryMin:   time.Millisecond,
		RetryMax:   5 * time.Millisecond,
	}, logger)
}

func authed() context.Context {
	return auth.WithToken(context.Background(), "token-123")
}

func TestGetCartForwardsBearerToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/cart/get", r.URL.Path)
		assert.Equal(t, "Bearer token-123", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`[{"productId":1,"quantity":2,"product":{"id":1,"name":"Áo thun","price":150000,"instock":10}}]`))
	})

	items, err := client.GetCart(authed())
	assert.NoError(t, err)
	assert.Equal(t, []cart.LineItem{{
		ProductID: 1,
		Quantity:  2,
		Product:   cart.Product{ID: 1, Name: "Áo thun", Price: 150000, InStock: 10},
	}}, items)
}

func TestAnonymousRequestHasNoAuthorization(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`[]`))
	})

	_, err := client.GetCart(context.Background())
	assert.NoError(t, err)
}

func TestDecodeCartItems(t *testing.T) {
	one := []cart.LineItem{{ProductID: 3, Quantity: 1}}

	tests := []struct {
		name string
		body string
		want []cart.LineItem
	}{
		{"BareArray", `[{"productId":3,"quantity":1}]`, one},
		{"Items", `{"items":[{"productId":3,"quantity":1}]}`, one},
		{"CartItems", `{"cartItems":[{"productId":3,"quantity":1}]}`, one},
		{"NestedData", `{"data":{"items":[{"productId":3,"quantity":1}]}}`, one},
		{"DataArray", `{"data":[{"productId":3,"quantity":1}]}`, one},
		{"Null", `null`, []cart.LineItem{}},
		{"Empty", ``, []cart.LineItem{}},
		{"NoLines", `{"total":0}`, []cart.LineItem{}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := decodeCartItems(json.RawMessage(test.body))
			assert.NoError(t, err)
			assert.Equal(t, test.want, got)
		})
	}

	_, err := decodeCartItems(json.RawMessage(`"nope"`))
	assert.Error(t, err)
}

func TestVariantLineRoundTripsThroughRequests(t *testing.T) {
	var got cart.AddItemRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/cart/add", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	})

	variantID := uint(7)
	err := client.AddItem(authed(), cart.AddItemRequest{ProductID: 5, Quantity: 2, ProductVariantID: &variantID})
	assert.NoError(t, err)
	assert.Equal(t, uint(5), got.ProductID)
	assert.Equal(t, 2, got.Quantity)
	assert.Equal(t, uint(7), *got.ProductVariantID)
}

func TestUpdateQuantity(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/cart/update-quantity", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, `{"productId":5,"quantity":3}`, string(body))
	})

	assert.NoError(t, client.UpdateQuantity(authed(), cart.UpdateQuantityRequest{ProductID: 5, Quantity: 3}))
}

func TestRemoveItem(t *testing.T) {
	var uris []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		uris = append(uris, r.URL.RequestURI())
	})

	variantID := uint(5)
	assert.NoError(t, client.RemoveItem(authed(), 1, &variantID))
	assert.NoError(t, client.RemoveItem(authed(), 1, nil))
	assert.Equal(t, []string{"/cart/delete/1?productVariantId=5", "/cart/delete/1"}, uris)
}

func TestUnauthorized(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.GetCart(authed())
	assert.IsError(t, err, ErrUnauthorized)
}

func TestServerMessageIsPassedThrough(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"MessageField", `{"message":"Sản phẩm đã hết hàng"}`, "Sản phẩm đã hết hàng"},
		{"ErrorField", `{"error":"Quantity exceeds stock"}`, "Quantity exceeds stock"},
		{"ProblemTitle", `{"title":"One or more validation errors occurred."}`, "One or more validation errors occurred."},
		{"PlainText", "Không đủ hàng trong kho\n", "Không đủ hàng trong kho"},
		{"Empty", ``, "400 Bad Request"},
		{"UnknownJSON", `{"code":17}`, "400 Bad Request"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(test.body))
			})

			err := client.AddItem(authed(), cart.AddItemRequest{ProductID: 1, Quantity: 99})
			var apiErr *Error
			assert.True(t, errors.As(err, &apiErr))
			assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
			assert.Equal(t, test.message, apiErr.Message)
		})
	}
}

func TestGetIsRetriedOnServerError(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"items":[]}`))
	})

	items, err := client.GetCart(authed())
	assert.NoError(t, err)
	assert.Equal(t, 0, len(items))
	assert.Equal(t, int32(3), calls.Load())
}

func TestGetGivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.GetCart(authed())
	var apiErr *Error
	assert.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
	assert.Equal(t, int32(3), calls.Load())
}

func TestMutationsAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	assert.Error(t, client.AddItem(authed(), cart.AddItemRequest{ProductID: 1, Quantity: 1}))
	assert.Equal(t, int32(1), calls.Load())
}

func TestClientErrorsAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.GetCart(authed())
	assert.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestSubmitOrder(t *testing.T) {
	tests := []struct {
		name string
		body string
		id   string
	}{
		{"Numeric", `{"orderId":1024}`, "1024"},
		{"String", `{"orderId":"ORD-77"}`, "ORD-77"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var got OrderRequest
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/Order/", r.URL.Path)
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
				_, _ = w.Write([]byte(test.body))
			})

			id, err := client.SubmitOrder(authed(), OrderRequest{DeliveryAddress: "Hà Nội", Note: "gọi trước"})
			assert.NoError(t, err)
			assert.Equal(t, test.id, id)
			assert.Equal(t, OrderRequest{DeliveryAddress: "Hà Nội", Note: "gọi trước"}, got)
		})
	}
}

func TestSubmitOrderWithoutID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"orderId":null}`))
	})

	_, err := client.SubmitOrder(authed(), OrderRequest{DeliveryAddress: "Hà Nội"})
	assert.Error(t, err)
}

func TestCreatePayment(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/payment/create", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, `{"orderId":"1024","paymentMethod":"COD","amount":760000}`, string(body))
	})

	assert.NoError(t, client.CreatePayment(authed(), PaymentRequest{OrderID: "1024", PaymentMethod: "COD", Amount: 760000}))
}

func TestMetricEndpoint(t *testing.T) {
	assert.Equal(t, "/cart/delete/:id", metricEndpoint("/cart/delete/9?productVariantId=2"))
	assert.Equal(t, "/cart/get", metricEndpoint("/cart/get"))
}
