package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dairylicious/dairyshop-backend/api/middleware"
	cartsvc "github.com/dairylicious/dairyshop-backend/internal/cart"
	pkgerrors "github.com/dairylicious/dairyshop-backend/pkg/errors"
	"github.com/dairylicious/dairyshop-backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

type stubCartService struct {
	cart *cartsvc.CartDTO
	err  error

	addUserID    uuid.UUID
	addProductID uuid.UUID
	addQuantity  int

	updateProductID uuid.UUID
	updateQuantity  int

	removedProductID uuid.UUID
	cleared          bool
	count            int
}

func (s *stubCartService) GetCart(_ context.Context, userID uuid.UUID) (*cartsvc.CartDTO, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.cart, nil
}

func (s *stubCartService) AddItem(_ context.Context, userID, productID uuid.UUID, quantity int) (*cartsvc.CartDTO, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.addUserID = userID
	s.addProductID = productID
	s.addQuantity = quantity
	return s.cart, nil
}

func (s *stubCartService) UpdateItem(_ context.Context, _, productID uuid.UUID, quantity int) (*cartsvc.CartDTO, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.updateProductID = productID
	s.updateQuantity = quantity
	return s.cart, nil
}

func (s *stubCartService) RemoveItem(_ context.Context, _, productID uuid.UUID) (*cartsvc.CartDTO, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.removedProductID = productID
	return s.cart, nil
}

func (s *stubCartService) ClearCart(context.Context, uuid.UUID) error {
	if s.err != nil {
		return s.err
	}
	s.cleared = true
	return nil
}

func (s *stubCartService) CountItems(context.Context, uuid.UUID) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	return s.count, nil
}

func sampleCart() *cartsvc.CartDTO {
	return &cartsvc.CartDTO{
		ID:            uuid.New(),
		TotalQuantity: 2,
		Subtotal:      decimal.RequireFromString("6.98"),
		Items: []cartsvc.CartItemDTO{{
			ProductID:    uuid.New(),
			Name:         "Whole Milk",
			Unit:         "liter",
			UnitPrice:    decimal.RequireFromString("3.49"),
			Quantity:     2,
			LineSubtotal: decimal.RequireFromString("6.98"),
			Stock:        10,
			InStock:      true,
		}},
	}
}

func authedRequest(method, target string, body string, userID uuid.UUID) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	return req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestCartGetReturnsEnvelope(t *testing.T) {
	svc := &stubCartService{cart: sampleCart()}
	handler := CartGet(svc, testLogger())

	rec := httptest.NewRecorder()
	handler(rec, authedRequest("GET", "/cart", "", uuid.New()))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Data cartsvc.CartDTO `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if body.Data.TotalQuantity != 2 || len(body.Data.Items) != 1 {
		t.Fatalf("unexpected payload: %+v", body.Data)
	}
}

func TestCartGetRequiresUserContext(t *testing.T) {
	handler := CartGet(&stubCartService{cart: sampleCart()}, testLogger())

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest("GET", "/cart", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestCartAddItemDecodesPayload(t *testing.T) {
	svc := &stubCartService{cart: sampleCart()}
	handler := CartAddItem(svc, testLogger())

	userID := uuid.New()
	productID := uuid.New()
	rec := httptest.NewRecorder()
	handler(rec, authedRequest("POST", "/cart/items",
		`{"product_id":"`+productID.String()+`","quantity":3}`, userID))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if svc.addUserID != userID || svc.addProductID != productID || svc.addQuantity != 3 {
		t.Fatalf("service called with %v %v %d", svc.addUserID, svc.addProductID, svc.addQuantity)
	}
}

func TestCartAddItemValidatesPayload(t *testing.T) {
	handler := CartAddItem(&stubCartService{cart: sampleCart()}, testLogger())

	cases := map[string]string{
		"missing product": `{"quantity":3}`,
		"zero quantity":   `{"product_id":"` + uuid.NewString() + `","quantity":0}`,
		"unknown field":   `{"product_id":"` + uuid.NewString() + `","quantity":1,"price":"0.01"}`,
		"not json":        `quantity=3`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler(rec, authedRequest("POST", "/cart/items", body, uuid.New()))
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestCartAddItemMapsInsufficientStock(t *testing.T) {
	svc := &stubCartService{err: pkgerrors.New(pkgerrors.CodeInsufficientStock, "not enough stock").
		WithDetails(map[string]any{"available": 1, "requested": 3})}
	handler := CartAddItem(svc, testLogger())

	rec := httptest.NewRecorder()
	handler(rec, authedRequest("POST", "/cart/items",
		`{"product_id":"`+uuid.NewString()+`","quantity":3}`, uuid.New()))

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Error struct {
			Code    string         `json:"code"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if body.Error.Code != "INSUFFICIENT_STOCK" || body.Error.Details == nil {
		t.Fatalf("unexpected error payload: %+v", body.Error)
	}
}

func TestCartUpdateItemUsesURLParam(t *testing.T) {
	svc := &stubCartService{cart: sampleCart()}
	handler := CartUpdateItem(svc, testLogger())

	productID := uuid.New()
	req := authedRequest("PUT", "/cart/items/"+productID.String(), `{"quantity":0}`, uuid.New())
	req = withURLParam(req, "productId", productID.String())

	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if svc.updateProductID != productID || svc.updateQuantity != 0 {
		t.Fatalf("service called with %v %d", svc.updateProductID, svc.updateQuantity)
	}
}

func TestCartUpdateItemRejectsBadID(t *testing.T) {
	handler := CartUpdateItem(&stubCartService{cart: sampleCart()}, testLogger())

	req := authedRequest("PUT", "/cart/items/not-a-uuid", `{"quantity":1}`, uuid.New())
	req = withURLParam(req, "productId", "not-a-uuid")

	rec := httptest.NewRecorder()
	handler(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestCartRemoveItem(t *testing.T) {
	svc := &stubCartService{cart: sampleCart()}
	handler := CartRemoveItem(svc, testLogger())

	productID := uuid.New()
	req := authedRequest("DELETE", "/cart/items/"+productID.String(), "", uuid.New())
	req = withURLParam(req, "productId", productID.String())

	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if svc.removedProductID != productID {
		t.Fatalf("service called with %v", svc.removedProductID)
	}
}

func TestCartClearAndCount(t *testing.T) {
	svc := &stubCartService{cart: sampleCart(), count: 7}

	rec := httptest.NewRecorder()
	CartClear(svc, testLogger())(rec, authedRequest("DELETE", "/cart", "", uuid.New()))
	if rec.Code != http.StatusOK || !svc.cleared {
		t.Fatalf("clear: status = %d, cleared = %v", rec.Code, svc.cleared)
	}

	rec = httptest.NewRecorder()
	CartCount(svc, testLogger())(rec, authedRequest("GET", "/cart/count", "", uuid.New()))
	if rec.Code != http.StatusOK {
		t.Fatalf("count: status = %d", rec.Code)
	}
	var body struct {
		Data struct {
			Count int `json:"count"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if body.Data.Count != 7 {
		t.Fatalf("count = %d", body.Data.Count)
	}
}

func TestCartHandlersNilService(t *testing.T) {
	rec := httptest.NewRecorder()
	CartGet(nil, testLogger())(rec, authedRequest("GET", "/cart", "", uuid.New()))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
}
