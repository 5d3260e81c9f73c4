package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"freshcart/internal/middlewares"
	"freshcart/internal/models"
	"freshcart/internal/repository"
	"freshcart/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubOrderService struct {
	orders map[uint]*models.Order
}

func (s *stubOrderService) Create(order *models.Order) error { return nil }

func (s *stubOrderService) GetByID(id uint) (*models.Order, error) {
	order, ok := s.orders[id]
	if !ok {
		return nil, services.ErrOrderNotFound
	}
	return order, nil
}

func (s *stubOrderService) GetByOrderNumber(orderNumber string) (*models.Order, error) {
	for _, o := range s.orders {
		if o.OrderNumber == orderNumber {
			return o, nil
		}
	}
	return nil, services.ErrOrderNotFound
}

func (s *stubOrderService) CountByStore(storeID uint) (int64, error) {
	var n int64
	for _, o := range s.orders {
		if o.StoreID == storeID {
			n++
		}
	}
	return n, nil
}

func (s *stubOrderService) List(filter repository.OrderFilter) ([]models.Order, error) {
	var out []models.Order
	for _, o := range s.orders {
		if filter.CustomerID != 0 && o.CustomerID != filter.CustomerID {
			continue
		}
		if filter.StoreID != 0 && o.StoreID != filter.StoreID {
			continue
		}
		out = append(out, *o)
	}
	return out, nil
}

func (s *stubOrderService) Transition(orderID uint, target models.OrderStatus, actor services.Actor) (*models.Order, error) {
	return nil, services.ErrInvalidTransition
}

func (s *stubOrderService) Cancel(orderID uint, reason string, actor services.Actor) (*models.Order, error) {
	return nil, services.ErrInvalidTransition
}

func (s *stubOrderService) Delete(id uint, actor services.Actor) error { return nil }

type stubFulfillmentService struct {
	createErr   error
	advanceErr  error
	assignErr   error
	trackingErr error

	created       *models.Order
	cancelCalls   int
	advanceCalls  int
	trackingActor services.Actor
}

func (s *stubFulfillmentService) CreateOrder(order *models.Order) error {
	if s.createErr != nil {
		return s.createErr
	}
	order.ID = 1
	order.Status = models.OrderPending
	s.created = order
	return nil
}

func (s *stubFulfillmentService) AdvanceStatus(orderID uint, target models.OrderStatus, actor services.Actor) (*models.Order, error) {
	s.advanceCalls++
	if s.advanceErr != nil {
		return nil, s.advanceErr
	}
	return &models.Order{ID: orderID, Status: target}, nil
}

func (s *stubFulfillmentService) CancelOrder(orderID uint, reason string, actor services.Actor) (*models.Order, error) {
	s.cancelCalls++
	return &models.Order{ID: orderID, Status: models.OrderCancelled, CancelReason: reason}, nil
}

func (s *stubFulfillmentService) AssignDelivery(orderID uint, employeeID *uint, actor services.Actor) (*models.Order, error) {
	if s.assignErr != nil {
		return nil, s.assignErr
	}
	return &models.Order{ID: orderID, Status: models.OrderOutForDelivery, DeliveryEmployeeID: employeeID}, nil
}

func (s *stubFulfillmentService) UpdateTracking(orderID uint, lat, lng float64, status models.TrackingStatus, eta *time.Time, note string, actor services.Actor) (*models.TrackingRecord, error) {
	s.trackingActor = actor
	if s.trackingErr != nil {
		return nil, s.trackingErr
	}
	return &models.TrackingRecord{OrderID: orderID, Status: status}, nil
}

func (s *stubFulfillmentService) GetTracking(orderID uint) (*models.TrackingRecord, error) {
	return nil, services.ErrTrackingNotFound
}

func (s *stubFulfillmentService) UpdateEmployeeLocation(employeeID uint, lat, lng float64) error {
	return nil
}

func (s *stubFulfillmentService) UpdateEmployeeLocationByUser(userID uint, lat, lng float64) error {
	return nil
}

func setupRouter(t *testing.T, orders *stubOrderService, fulfillment *stubFulfillmentService, actor services.Actor) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("claims", &middlewares.Claims{
			UserID:  actor.UserID,
			Role:    string(actor.Role),
			StoreID: actor.StoreID,
		})
	})

	h := NewOrderHandler(orders, fulfillment)
	router.POST("/api/orders", h.CreateOrder)
	router.GET("/api/orders", h.ListOrders)
	router.GET("/api/orders/:id", h.GetOrder)
	router.PUT("/api/orders/:id/status", h.UpdateStatus)
	router.POST("/api/orders/:id/assign-delivery", h.AssignDelivery)
	router.GET("/api/orders/:id/tracking", h.GetTracking)
	router.PUT("/api/orders/:id/tracking", h.UpdateTracking)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func customer(id uint) services.Actor {
	return services.Actor{UserID: id, Role: models.RoleCustomer}
}

func TestCreateOrderForcesCustomerID(t *testing.T) {
	fulfillment := &stubFulfillmentService{}
	router := setupRouter(t, &stubOrderService{}, fulfillment, customer(42))

	body := gin.H{
		"store_id":    1,
		"customer_id": 999,
		"items":       []gin.H{{"product_id": 1, "name": "Milk", "quantity": 2, "unit_price": 3.5}},
	}
	w := doJSON(t, router, http.MethodPost, "/api/orders", body)

	assert.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, fulfillment.created)
	assert.Equal(t, uint(42), fulfillment.created.CustomerID)
}

func TestCreateOrderInvalidPayload(t *testing.T) {
	router := setupRouter(t, &stubOrderService{}, &stubFulfillmentService{createErr: services.ErrInvalidOrder}, customer(1))

	w := doJSON(t, router, http.MethodPost, "/api/orders", gin.H{"store_id": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetOrderNotFound(t *testing.T) {
	router := setupRouter(t, &stubOrderService{orders: map[uint]*models.Order{}}, &stubFulfillmentService{}, customer(1))

	w := doJSON(t, router, http.MethodGet, "/api/orders/7", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetOrderByNumber(t *testing.T) {
	orders := &stubOrderService{orders: map[uint]*models.Order{
		1: {ID: 1, OrderNumber: "FC-20250610-00001", CustomerID: 1, StoreID: 1},
	}}
	router := setupRouter(t, orders, &stubFulfillmentService{}, customer(1))

	w := doJSON(t, router, http.MethodGet, "/api/orders/FC-20250610-00001", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var order models.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))
	assert.Equal(t, uint(1), order.ID)
}

func TestGetOrderByUnknownNumber(t *testing.T) {
	router := setupRouter(t, &stubOrderService{}, &stubFulfillmentService{}, customer(1))

	w := doJSON(t, router, http.MethodGet, "/api/orders/FC-20250610-99999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateStatusInvalidTransitionConflicts(t *testing.T) {
	fulfillment := &stubFulfillmentService{advanceErr: services.ErrInvalidTransition}
	router := setupRouter(t, &stubOrderService{}, fulfillment, services.Actor{UserID: 1, Role: models.RoleAdmin})

	w := doJSON(t, router, http.MethodPut, "/api/orders/1/status", gin.H{"status": "DELIVERED"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestUpdateStatusCancelledRoutesToCancel(t *testing.T) {
	fulfillment := &stubFulfillmentService{}
	router := setupRouter(t, &stubOrderService{}, fulfillment, services.Actor{UserID: 1, Role: models.RoleAdmin})

	w := doJSON(t, router, http.MethodPut, "/api/orders/1/status", gin.H{
		"status":        "CANCELLED",
		"cancel_reason": "customer changed their mind",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, fulfillment.cancelCalls)
	assert.Equal(t, 0, fulfillment.advanceCalls)

	var order models.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))
	assert.Equal(t, models.OrderCancelled, order.Status)
	assert.Equal(t, "customer changed their mind", order.CancelReason)
}

func TestUpdateStatusUnauthorized(t *testing.T) {
	fulfillment := &stubFulfillmentService{advanceErr: services.ErrUnauthorized}
	router := setupRouter(t, &stubOrderService{}, fulfillment, customer(1))

	w := doJSON(t, router, http.MethodPut, "/api/orders/1/status", gin.H{"status": "CONFIRMED"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAssignDeliveryNoCandidate(t *testing.T) {
	fulfillment := &stubFulfillmentService{assignErr: services.ErrNoAvailableEmployee}
	router := setupRouter(t, &stubOrderService{}, fulfillment, services.Actor{UserID: 1, Role: models.RoleAdmin})

	w := doJSON(t, router, http.MethodPost, "/api/orders/1/assign-delivery", gin.H{})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestAssignDeliveryManualPick(t *testing.T) {
	router := setupRouter(t, &stubOrderService{}, &stubFulfillmentService{}, services.Actor{UserID: 1, Role: models.RoleAdmin})

	w := doJSON(t, router, http.MethodPost, "/api/orders/1/assign-delivery", gin.H{"employee_id": 5})
	assert.Equal(t, http.StatusOK, w.Code)

	var order models.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))
	require.NotNil(t, order.DeliveryEmployeeID)
	assert.Equal(t, uint(5), *order.DeliveryEmployeeID)
	assert.Equal(t, models.OrderOutForDelivery, order.Status)
}

func TestGetTrackingNotFound(t *testing.T) {
	router := setupRouter(t, &stubOrderService{}, &stubFulfillmentService{}, customer(1))

	w := doJSON(t, router, http.MethodGet, "/api/orders/1/tracking", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateTrackingRequiresStatus(t *testing.T) {
	router := setupRouter(t, &stubOrderService{}, &stubFulfillmentService{}, services.Actor{UserID: 1, Role: models.RoleDelivery})

	w := doJSON(t, router, http.MethodPut, "/api/orders/1/tracking", gin.H{"latitude": 1.0, "longitude": 2.0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateTrackingOK(t *testing.T) {
	fulfillment := &stubFulfillmentService{}
	router := setupRouter(t, &stubOrderService{}, fulfillment, services.Actor{UserID: 1, Role: models.RoleDelivery})

	w := doJSON(t, router, http.MethodPut, "/api/orders/1/tracking", gin.H{
		"latitude":  -6.2,
		"longitude": 106.8,
		"status":    "IN_TRANSIT",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var record models.TrackingRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &record))
	assert.Equal(t, models.TrackingInTransit, record.Status)

	// The authenticated identity must reach the service for authorization.
	assert.Equal(t, uint(1), fulfillment.trackingActor.UserID)
	assert.Equal(t, models.RoleDelivery, fulfillment.trackingActor.Role)
}

func TestUpdateTrackingForbidden(t *testing.T) {
	fulfillment := &stubFulfillmentService{trackingErr: services.ErrUnauthorized}
	router := setupRouter(t, &stubOrderService{}, fulfillment, customer(3))

	w := doJSON(t, router, http.MethodPut, "/api/orders/1/tracking", gin.H{
		"latitude":  -6.2,
		"longitude": 106.8,
		"status":    "IN_TRANSIT",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestListOrdersScopedToCustomer(t *testing.T) {
	orders := &stubOrderService{orders: map[uint]*models.Order{
		1: {ID: 1, CustomerID: 42, StoreID: 1},
		2: {ID: 2, CustomerID: 7, StoreID: 1},
	}}
	router := setupRouter(t, orders, &stubFulfillmentService{}, customer(42))

	w := doJSON(t, router, http.MethodGet, "/api/orders", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Orders []models.Order `json:"orders"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Orders, 1)
	assert.Equal(t, uint(42), resp.Orders[0].CustomerID)
}
