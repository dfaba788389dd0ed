package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	ordersvc "github.com/dairylicious/dairyshop-backend/internal/orders"
	"github.com/dairylicious/dairyshop-backend/pkg/enums"
	pkgerrors "github.com/dairylicious/dairyshop-backend/pkg/errors"
	"github.com/dairylicious/dairyshop-backend/pkg/pagination"
)

type stubOrderService struct {
	order *ordersvc.OrderDTO
	list  *ordersvc.OrderListResult
	err   error

	createUserID uuid.UUID
	createInput  ordersvc.CreateOrderInput
	listPage     int
	listLimit    int
	statusOrder  uuid.UUID
	statusTarget enums.OrderStatus
}

func (s *stubOrderService) CreateOrder(_ context.Context, userID uuid.UUID, input ordersvc.CreateOrderInput) (*ordersvc.OrderDTO, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.createUserID = userID
	s.createInput = input
	return s.order, nil
}

func (s *stubOrderService) ListOrders(_ context.Context, _ uuid.UUID, page, limit int) (*ordersvc.OrderListResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.listPage = page
	s.listLimit = limit
	return s.list, nil
}

func (s *stubOrderService) GetOrder(context.Context, uuid.UUID, uuid.UUID) (*ordersvc.OrderDTO, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.order, nil
}

func (s *stubOrderService) UpdateStatus(_ context.Context, orderID uuid.UUID, status enums.OrderStatus) (*ordersvc.OrderDTO, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.statusOrder = orderID
	s.statusTarget = status
	return s.order, nil
}

func sampleOrder() *ordersvc.OrderDTO {
	return &ordersvc.OrderDTO{
		ID:          uuid.New(),
		Status:      "pending",
		Subtotal:    decimal.RequireFromString("19.97"),
		Tax:         decimal.RequireFromString("1.60"),
		ShippingFee: decimal.RequireFromString("5.99"),
		Total:       decimal.RequireFromString("27.56"),
	}
}

const shippingAddressJSON = `{"shipping_address":{"line1":"12 Dairy Lane","city":"Madison","state":"WI","postal_code":"53703","country":"US"}}`

func TestOrderCreate(t *testing.T) {
	svc := &stubOrderService{order: sampleOrder()}
	handler := OrderCreate(svc, testLogger())

	userID := uuid.New()
	rec := httptest.NewRecorder()
	handler(rec, authedRequest("POST", "/orders", shippingAddressJSON, userID))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if svc.createUserID != userID {
		t.Fatalf("user id = %v", svc.createUserID)
	}
	if svc.createInput.ShippingAddress.City != "Madison" {
		t.Fatalf("address not forwarded: %+v", svc.createInput.ShippingAddress)
	}
}

func TestOrderCreateForwardsPaymentMethod(t *testing.T) {
	svc := &stubOrderService{order: sampleOrder()}
	handler := OrderCreate(svc, testLogger())

	body := `{"shipping_address":{"line1":"12 Dairy Lane","city":"Madison","state":"WI","postal_code":"53703","country":"US"},"payment_method":"cash_on_delivery"}`
	rec := httptest.NewRecorder()
	handler(rec, authedRequest("POST", "/orders", body, uuid.New()))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if svc.createInput.PaymentMethod != "cash_on_delivery" {
		t.Fatalf("payment method = %q", svc.createInput.PaymentMethod)
	}
}

func TestOrderCreateRejectsUnknownPaymentMethod(t *testing.T) {
	handler := OrderCreate(&stubOrderService{order: sampleOrder()}, testLogger())

	body := `{"shipping_address":{"line1":"12 Dairy Lane","city":"Madison","state":"WI","postal_code":"53703","country":"US"},"payment_method":"barter"}`
	rec := httptest.NewRecorder()
	handler(rec, authedRequest("POST", "/orders", body, uuid.New()))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestOrderCreateRequiresAuth(t *testing.T) {
	handler := OrderCreate(&stubOrderService{order: sampleOrder()}, testLogger())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/orders", nil)
	handler(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestOrderCreateMapsServiceErrors(t *testing.T) {
	cases := map[string]struct {
		err    error
		status int
	}{
		"empty cart":         {pkgerrors.New(pkgerrors.CodeValidation, "cart is empty"), http.StatusBadRequest},
		"insufficient stock": {pkgerrors.New(pkgerrors.CodeInsufficientStock, "not enough stock"), http.StatusConflict},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			handler := OrderCreate(&stubOrderService{err: tc.err}, testLogger())
			rec := httptest.NewRecorder()
			handler(rec, authedRequest("POST", "/orders", shippingAddressJSON, uuid.New()))
			if rec.Code != tc.status {
				t.Fatalf("status = %d, want %d", rec.Code, tc.status)
			}
		})
	}
}

func TestOrdersListForwardsPagination(t *testing.T) {
	svc := &stubOrderService{list: &ordersvc.OrderListResult{
		Orders:     []ordersvc.OrderDTO{*sampleOrder()},
		Pagination: pagination.BuildMeta(pagination.Params{Page: 2, Limit: 5}, 11),
	}}
	handler := OrdersList(svc, testLogger())

	rec := httptest.NewRecorder()
	handler(rec, authedRequest("GET", "/orders?page=2&limit=5", "", uuid.New()))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if svc.listPage != 2 || svc.listLimit != 5 {
		t.Fatalf("pagination = %d/%d", svc.listPage, svc.listLimit)
	}
	var body struct {
		Data ordersvc.OrderListResult `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if body.Data.Pagination.TotalItems != 11 {
		t.Fatalf("unexpected meta: %+v", body.Data.Pagination)
	}
}

func TestOrderGetScopedErrors(t *testing.T) {
	handler := OrderGet(&stubOrderService{err: pkgerrors.New(pkgerrors.CodeNotFound, "order not found")}, testLogger())

	id := uuid.New()
	req := withURLParam(authedRequest("GET", "/orders/"+id.String(), "", uuid.New()), "orderId", id.String())
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestAdminOrderUpdateStatus(t *testing.T) {
	svc := &stubOrderService{order: sampleOrder()}
	handler := AdminOrderUpdateStatus(svc, testLogger())

	id := uuid.New()
	req := withURLParam(adminRequest("PATCH", "/admin/orders/"+id.String()+"/status", `{"status":"confirmed"}`), "orderId", id.String())
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if svc.statusOrder != id || svc.statusTarget != enums.OrderStatusConfirmed {
		t.Fatalf("service called with %v %q", svc.statusOrder, svc.statusTarget)
	}
}

func TestAdminOrderUpdateStatusRejectsUnknownStatus(t *testing.T) {
	handler := AdminOrderUpdateStatus(&stubOrderService{order: sampleOrder()}, testLogger())

	id := uuid.New()
	req := withURLParam(adminRequest("PATCH", "/admin/orders/"+id.String()+"/status", `{"status":"shipped"}`), "orderId", id.String())
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestAdminOrderUpdateStatusConflict(t *testing.T) {
	handler := AdminOrderUpdateStatus(&stubOrderService{
		err: pkgerrors.New(pkgerrors.CodeConflict, "order cannot move from delivered to cancelled"),
	}, testLogger())

	id := uuid.New()
	req := withURLParam(adminRequest("PATCH", "/admin/orders/"+id.String()+"/status", `{"status":"cancelled"}`), "orderId", id.String())
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d", rec.Code)
	}
}
