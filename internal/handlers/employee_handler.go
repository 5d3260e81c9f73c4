package handlers

import (
	"net/http"

	"freshcart/internal/middlewares"
	"freshcart/internal/models"
	"freshcart/internal/services"

	"github.com/gin-gonic/gin"
)

type EmployeeHandler struct {
	employeeService    services.EmployeeService
	fulfillmentService services.FulfillmentService
}

func NewEmployeeHandler(employeeService services.EmployeeService, fulfillmentService services.FulfillmentService) *EmployeeHandler {
	return &EmployeeHandler{
		employeeService:    employeeService,
		fulfillmentService: fulfillmentService,
	}
}

func (h *EmployeeHandler) GetEmployee(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	employee, err := h.employeeService.GetByID(id)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"employee": employee,
		"online":   h.employeeService.Online(employee.UserID),
	})
}

// canActOnEmployee allows the employee's own user, the employing store and
// admins.
func (h *EmployeeHandler) canActOnEmployee(c *gin.Context, id uint) (*models.Employee, bool) {
	employee, err := h.employeeService.GetByID(id)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return nil, false
	}

	actor := middlewares.CurrentActor(c)
	switch {
	case actor.Role == models.RoleAdmin:
	case actor.Role == models.RoleDelivery && actor.UserID == employee.UserID:
	case actor.Role == models.RoleStore && actor.StoreID != nil && *actor.StoreID == employee.StoreID:
	default:
		c.JSON(http.StatusForbidden, gin.H{"error": services.ErrUnauthorized.Error()})
		return nil, false
	}
	return employee, true
}

func (h *EmployeeHandler) UpdateLocation(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if _, ok := h.canActOnEmployee(c, id); !ok {
		return
	}

	var req struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if err := h.fulfillmentService.UpdateEmployeeLocation(id, req.Latitude, req.Longitude); err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

// GetLocation serves the courier's last known position for polling clients
// that are not on the realtime channel.
func (h *EmployeeHandler) GetLocation(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	lat, lng, err := h.employeeService.Location(id)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"latitude": lat, "longitude": lng})
}

func (h *EmployeeHandler) SetAvailability(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if _, ok := h.canActOnEmployee(c, id); !ok {
		return
	}

	var req struct {
		IsAvailable *bool `json:"is_available" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if err := h.employeeService.SetAvailability(id, *req.IsAvailable); err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}
