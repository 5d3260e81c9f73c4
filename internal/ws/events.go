package ws

import (
	"fmt"
	"time"

	"freshcart/internal/models"
)

type EventType string

const (
	EventOrderStatusChanged      EventType = "order_status_changed"
	EventDeliveryLocationUpdated EventType = "delivery_location_updated"
	EventNewOrder                EventType = "new_order"
	EventNewDeliveryAssignment   EventType = "new_delivery_assignment"
	EventNewNotification         EventType = "new_notification"
)

// Event is the wire envelope pushed to clients. The payload is one of the
// typed structs below, fixed per event type.
type Event struct {
	Type    EventType   `json:"type"`
	Payload interface{} `json:"payload"`
}

type OrderStatusPayload struct {
	OrderID     uint               `json:"order_id"`
	OrderNumber string             `json:"order_number"`
	Status      models.OrderStatus `json:"status"`
	CancelReason string            `json:"cancel_reason,omitempty"`
}

type DeliveryLocationPayload struct {
	OrderID               uint                  `json:"order_id"`
	Latitude              float64               `json:"latitude"`
	Longitude             float64               `json:"longitude"`
	Status                models.TrackingStatus `json:"status"`
	EstimatedDeliveryTime *time.Time            `json:"estimated_delivery_time,omitempty"`
}

type NewOrderPayload struct {
	OrderID     uint    `json:"order_id"`
	OrderNumber string  `json:"order_number"`
	Total       float64 `json:"total"`
}

type DeliveryAssignmentPayload struct {
	OrderID     uint   `json:"order_id"`
	OrderNumber string `json:"order_number"`
	Street      string `json:"street"`
	City        string `json:"city"`
}

type NotificationPayload struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func NewOrderStatusChanged(order *models.Order) Event {
	return Event{
		Type: EventOrderStatusChanged,
		Payload: OrderStatusPayload{
			OrderID:      order.ID,
			OrderNumber:  order.OrderNumber,
			Status:       order.Status,
			CancelReason: order.CancelReason,
		},
	}
}

func NewDeliveryLocationUpdated(record *models.TrackingRecord) Event {
	return Event{
		Type: EventDeliveryLocationUpdated,
		Payload: DeliveryLocationPayload{
			OrderID:               record.OrderID,
			Latitude:              record.CurrentLat,
			Longitude:             record.CurrentLng,
			Status:                record.Status,
			EstimatedDeliveryTime: record.EstimatedDeliveryTime,
		},
	}
}

func NewOrderCreated(order *models.Order) Event {
	return Event{
		Type: EventNewOrder,
		Payload: NewOrderPayload{
			OrderID:     order.ID,
			OrderNumber: order.OrderNumber,
			Total:       order.Total,
		},
	}
}

func NewDeliveryAssignment(order *models.Order) Event {
	return Event{
		Type: EventNewDeliveryAssignment,
		Payload: DeliveryAssignmentPayload{
			OrderID:     order.ID,
			OrderNumber: order.OrderNumber,
			Street:      order.DeliveryAddress.Street,
			City:        order.DeliveryAddress.City,
		},
	}
}

func NewNotification(kind, message string) Event {
	return Event{
		Type:    EventNewNotification,
		Payload: NotificationPayload{Kind: kind, Message: message},
	}
}

// Broadcast group keys. Connections are auto-joined to their user group,
// their store group and (for delivery roles) the shared delivery group;
// order groups are joined on demand.
const GroupAllDelivery = "delivery:all"

func UserGroup(userID uint) string   { return fmt.Sprintf("user:%d", userID) }
func StoreGroup(storeID uint) string { return fmt.Sprintf("store:%d", storeID) }
func OrderGroup(orderID uint) string { return fmt.Sprintf("order:%d", orderID) }
