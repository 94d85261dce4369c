package orders

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Motasaith/abdulshop-backend/api/middleware"
	internalorders "github.com/Motasaith/abdulshop-backend/internal/orders"
	"github.com/Motasaith/abdulshop-backend/pkg/types"
)

type stubOrdersService struct {
	create    func(ctx context.Context, input internalorders.CreateOrderInput) (*internalorders.OrderDTO, error)
	get       func(ctx context.Context, actor internalorders.Actor, orderID uuid.UUID) (*internalorders.OrderDTO, error)
	list      func(ctx context.Context, params internalorders.ListParams) (*internalorders.ListResult, error)
	markPaid  func(ctx context.Context, actor internalorders.Actor, orderID uuid.UUID, result *types.PaymentResult) (*internalorders.OrderDTO, error)
	ship      func(ctx context.Context, orderID uuid.UUID, info *types.TrackingInfo, estimated *time.Time) (*internalorders.OrderDTO, error)
	deliver   func(ctx context.Context, orderID uuid.UUID) (*internalorders.OrderDTO, error)
	cancel    func(ctx context.Context, actor internalorders.Actor, orderID uuid.UUID) (*internalorders.OrderDTO, error)
	track     func(ctx context.Context, trackingNumber string) (*internalorders.TrackingView, error)
	trackByID func(ctx context.Context, orderID uuid.UUID, email string) (*internalorders.TrackingView, error)
}

func (s *stubOrdersService) Create(ctx context.Context, input internalorders.CreateOrderInput) (*internalorders.OrderDTO, error) {
	if s.create != nil {
		return s.create(ctx, input)
	}
	return &internalorders.OrderDTO{}, nil
}

func (s *stubOrdersService) Get(ctx context.Context, actor internalorders.Actor, orderID uuid.UUID) (*internalorders.OrderDTO, error) {
	if s.get != nil {
		return s.get(ctx, actor, orderID)
	}
	return &internalorders.OrderDTO{}, nil
}

func (s *stubOrdersService) List(ctx context.Context, params internalorders.ListParams) (*internalorders.ListResult, error) {
	if s.list != nil {
		return s.list(ctx, params)
	}
	return &internalorders.ListResult{}, nil
}

func (s *stubOrdersService) MarkPaid(ctx context.Context, actor internalorders.Actor, orderID uuid.UUID, result *types.PaymentResult) (*internalorders.OrderDTO, error) {
	if s.markPaid != nil {
		return s.markPaid(ctx, actor, orderID, result)
	}
	return &internalorders.OrderDTO{}, nil
}

func (s *stubOrdersService) MarkShipped(ctx context.Context, orderID uuid.UUID, info *types.TrackingInfo, estimated *time.Time) (*internalorders.OrderDTO, error) {
	if s.ship != nil {
		return s.ship(ctx, orderID, info, estimated)
	}
	return &internalorders.OrderDTO{}, nil
}

func (s *stubOrdersService) MarkDelivered(ctx context.Context, orderID uuid.UUID) (*internalorders.OrderDTO, error) {
	if s.deliver != nil {
		return s.deliver(ctx, orderID)
	}
	return &internalorders.OrderDTO{}, nil
}

func (s *stubOrdersService) Cancel(ctx context.Context, actor internalorders.Actor, orderID uuid.UUID) (*internalorders.OrderDTO, error) {
	if s.cancel != nil {
		return s.cancel(ctx, actor, orderID)
	}
	return &internalorders.OrderDTO{}, nil
}

func (s *stubOrdersService) Track(ctx context.Context, trackingNumber string) (*internalorders.TrackingView, error) {
	if s.track != nil {
		return s.track(ctx, trackingNumber)
	}
	return &internalorders.TrackingView{}, nil
}

func (s *stubOrdersService) TrackByOrder(ctx context.Context, orderID uuid.UUID, email string) (*internalorders.TrackingView, error) {
	if s.trackByID != nil {
		return s.trackByID(ctx, orderID, email)
	}
	return &internalorders.TrackingView{}, nil
}

func authedRequest(method, target, body string, userID uuid.UUID, role string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	ctx := middleware.WithUserID(req.Context(), userID.String())
	ctx = middleware.WithRole(ctx, role)
	return req.WithContext(ctx)
}

func withOrderParam(req *http.Request, orderID string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("orderId", orderID)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestCreateRequiresUserContext(t *testing.T) {
	handler := Create(&stubOrdersService{}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(`{}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without user context got %d", resp.Code)
	}
}

func TestCreateRejectsUnknownFields(t *testing.T) {
	handler := Create(&stubOrdersService{}, nil)
	body := `{"items":[{"product_id":"` + uuid.NewString() + `","qty":1}],"bogus":true}`
	req := authedRequest(http.MethodPost, "/api/v1/orders", body, uuid.New(), "customer")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field got %d", resp.Code)
	}
}

func TestCreatePassesSnapshotInput(t *testing.T) {
	productID := uuid.New()
	userID := uuid.New()
	var captured internalorders.CreateOrderInput
	svc := &stubOrdersService{
		create: func(ctx context.Context, input internalorders.CreateOrderInput) (*internalorders.OrderDTO, error) {
			captured = input
			return &internalorders.OrderDTO{ID: uuid.New()}, nil
		},
	}

	body := `{
		"items":[{"product_id":"` + productID.String() + `","qty":3}],
		"shipping_address":{"line1":"12 Mall Rd","city":"Lahore","postal_code":"54000","country":"PK"},
		"payment_method":"card",
		"tax_price":"5.00",
		"shipping_price":"10.00"
	}`
	req := authedRequest(http.MethodPost, "/api/v1/orders", body, userID, "customer")
	resp := httptest.NewRecorder()
	Create(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if captured.Actor.UserID != userID {
		t.Fatalf("expected actor %s got %s", userID, captured.Actor.UserID)
	}
	if len(captured.Items) != 1 || captured.Items[0].ProductID != productID || captured.Items[0].Qty != 3 {
		t.Fatalf("unexpected items: %+v", captured.Items)
	}
	if captured.TaxPrice.String() != "5" || captured.ShippingPrice.String() != "10" {
		t.Fatalf("unexpected prices: tax=%s shipping=%s", captured.TaxPrice, captured.ShippingPrice)
	}
}

func TestPayForwardsPaymentResult(t *testing.T) {
	orderID := uuid.New()
	var captured *types.PaymentResult
	svc := &stubOrdersService{
		markPaid: func(ctx context.Context, actor internalorders.Actor, id uuid.UUID, result *types.PaymentResult) (*internalorders.OrderDTO, error) {
			if id != orderID {
				t.Fatalf("expected order %s got %s", orderID, id)
			}
			captured = result
			return &internalorders.OrderDTO{ID: id, IsPaid: true}, nil
		},
	}

	body := `{"transaction_id":"tx-42","status":"COMPLETED","payer_email":"buyer@example.com"}`
	req := authedRequest(http.MethodPut, "/api/v1/orders/"+orderID.String()+"/pay", body, uuid.New(), "customer")
	req = withOrderParam(req, orderID.String())
	resp := httptest.NewRecorder()
	Pay(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if captured == nil || captured.TransactionID != "tx-42" || captured.PayerEmail != "buyer@example.com" {
		t.Fatalf("unexpected payment result: %+v", captured)
	}
}

func TestPayRejectsInvalidOrderID(t *testing.T) {
	req := authedRequest(http.MethodPut, "/api/v1/orders/not-a-uuid/pay", `{"transaction_id":"tx"}`, uuid.New(), "customer")
	req = withOrderParam(req, "not-a-uuid")
	resp := httptest.NewRecorder()
	Pay(&stubOrdersService{}, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad order id got %d", resp.Code)
	}
}

func TestCancelInvokesService(t *testing.T) {
	orderID := uuid.New()
	called := false
	svc := &stubOrdersService{
		cancel: func(ctx context.Context, actor internalorders.Actor, id uuid.UUID) (*internalorders.OrderDTO, error) {
			called = true
			return &internalorders.OrderDTO{ID: id}, nil
		},
	}

	req := authedRequest(http.MethodPut, "/api/v1/orders/"+orderID.String()+"/cancel", "", uuid.New(), "customer")
	req = withOrderParam(req, orderID.String())
	resp := httptest.NewRecorder()
	Cancel(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !called {
		t.Fatal("expected cancel to reach the service")
	}
}

func TestShipForwardsTrackingDetails(t *testing.T) {
	orderID := uuid.New()
	estimated := time.Date(2025, 9, 10, 0, 0, 0, 0, time.UTC)
	var gotInfo *types.TrackingInfo
	var gotEstimated *time.Time
	svc := &stubOrdersService{
		ship: func(ctx context.Context, id uuid.UUID, info *types.TrackingInfo, est *time.Time) (*internalorders.OrderDTO, error) {
			gotInfo = info
			gotEstimated = est
			return &internalorders.OrderDTO{ID: id, IsShipped: true}, nil
		},
	}

	body := `{"tracking":{"number":"1Z999","carrier":"ups"},"estimated_delivery":"2025-09-10T00:00:00Z"}`
	req := authedRequest(http.MethodPut, "/api/v1/admin/orders/"+orderID.String()+"/ship", body, uuid.New(), "admin")
	req = withOrderParam(req, orderID.String())
	resp := httptest.NewRecorder()
	Ship(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if gotInfo == nil || gotInfo.Number != "1Z999" || gotInfo.Carrier != "ups" {
		t.Fatalf("unexpected tracking info: %+v", gotInfo)
	}
	if gotEstimated == nil || !gotEstimated.Equal(estimated) {
		t.Fatalf("unexpected estimated delivery: %v", gotEstimated)
	}
}

func TestListScopesToCaller(t *testing.T) {
	userID := uuid.New()
	svc := &stubOrdersService{
		list: func(ctx context.Context, params internalorders.ListParams) (*internalorders.ListResult, error) {
			if params.All {
				t.Fatal("expected caller-scoped listing")
			}
			if params.Actor.UserID != userID {
				t.Fatalf("expected actor %s got %s", userID, params.Actor.UserID)
			}
			return &internalorders.ListResult{Items: []internalorders.OrderDTO{{ID: uuid.New()}}}, nil
		},
	}

	req := authedRequest(http.MethodGet, "/api/v1/orders?limit=10", "", userID, "customer")
	resp := httptest.NewRecorder()
	List(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data internalorders.ListResult `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data.Items) != 1 {
		t.Fatalf("expected one order got %d", len(envelope.Data.Items))
	}
}

func TestAdminListRequestsAllOrders(t *testing.T) {
	svc := &stubOrdersService{
		list: func(ctx context.Context, params internalorders.ListParams) (*internalorders.ListResult, error) {
			if !params.All {
				t.Fatal("expected platform-wide listing")
			}
			return &internalorders.ListResult{}, nil
		},
	}

	req := authedRequest(http.MethodGet, "/api/v1/admin/orders", "", uuid.New(), "admin")
	resp := httptest.NewRecorder()
	AdminList(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestActorRejectsUnknownRole(t *testing.T) {
	req := authedRequest(http.MethodGet, "/api/v1/orders", "", uuid.New(), "superuser")
	resp := httptest.NewRecorder()
	List(&stubOrdersService{}, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for unknown role got %d", resp.Code)
	}
}
