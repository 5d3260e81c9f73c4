package handlers

import (
	"net/http"
	"strconv"
	"time"

	"freshcart/internal/middlewares"
	"freshcart/internal/models"
	"freshcart/internal/repository"
	"freshcart/internal/services"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	orderService       services.OrderService
	fulfillmentService services.FulfillmentService
}

func NewOrderHandler(orderService services.OrderService, fulfillmentService services.FulfillmentService) *OrderHandler {
	return &OrderHandler{
		orderService:       orderService,
		fulfillmentService: fulfillmentService,
	}
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var order models.Order
	if err := c.ShouldBindJSON(&order); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	actor := middlewares.CurrentActor(c)
	if actor.Role == models.RoleCustomer {
		order.CustomerID = actor.UserID
	}

	if err := h.fulfillmentService.CreateOrder(&order); err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	actor := middlewares.CurrentActor(c)

	filter := repository.OrderFilter{
		Status:   models.OrderStatus(c.Query("status")),
		Page:     atoiDefault(c.Query("page"), 1),
		PageSize: atoiDefault(c.Query("page_size"), 20),
	}
	// Non-admins only see their own side of the marketplace.
	switch actor.Role {
	case models.RoleCustomer:
		filter.CustomerID = actor.UserID
	case models.RoleStore:
		if actor.StoreID != nil {
			filter.StoreID = *actor.StoreID
		}
	}

	orders, err := h.orderService.List(filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list orders"})
		return
	}

	resp := gin.H{"orders": orders}
	if filter.StoreID != 0 {
		if total, err := h.orderService.CountByStore(filter.StoreID); err == nil {
			resp["total"] = total
		}
	}
	c.JSON(http.StatusOK, resp)
}

// GetOrder looks up by numeric id, or by order number when the path segment
// is not a number.
func (h *OrderHandler) GetOrder(c *gin.Context) {
	param := c.Param("id")

	var (
		order *models.Order
		err   error
	)
	if id, perr := strconv.ParseUint(param, 10, 32); perr == nil {
		order, err = h.orderService.GetByID(uint(id))
	} else {
		order, err = h.orderService.GetByOrderNumber(param)
	}
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req struct {
		Status       models.OrderStatus `json:"status" binding:"required"`
		CancelReason string             `json:"cancel_reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	actor := middlewares.CurrentActor(c)
	var (
		order *models.Order
		err   error
	)
	if req.Status == models.OrderCancelled {
		order, err = h.fulfillmentService.CancelOrder(id, req.CancelReason, actor)
	} else {
		order, err = h.fulfillmentService.AdvanceStatus(id, req.Status, actor)
	}
	middlewares.RecordFulfillmentOperation("update_status", err == nil)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) AssignDelivery(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req struct {
		EmployeeID *uint `json:"employee_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	actor := middlewares.CurrentActor(c)
	order, err := h.fulfillmentService.AssignDelivery(id, req.EmployeeID, actor)
	middlewares.RecordFulfillmentOperation("assign_delivery", err == nil)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) GetTracking(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	record, err := h.fulfillmentService.GetTracking(id)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *OrderHandler) UpdateTracking(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req struct {
		Latitude              float64               `json:"latitude"`
		Longitude             float64               `json:"longitude"`
		Status                models.TrackingStatus `json:"status" binding:"required"`
		EstimatedDeliveryTime *time.Time            `json:"estimated_delivery_time"`
		Notes                 string                `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	actor := middlewares.CurrentActor(c)
	record, err := h.fulfillmentService.UpdateTracking(id, req.Latitude, req.Longitude, req.Status, req.EstimatedDeliveryTime, req.Notes, actor)
	middlewares.RecordFulfillmentOperation("update_tracking", err == nil)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, record)
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
