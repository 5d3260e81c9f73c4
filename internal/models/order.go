package models

import (
	"time"

	"gorm.io/gorm"
)

type OrderItem struct {
	ProductID uint    `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	LineTotal float64 `json:"line_total"`
}

type DeliveryAddress struct {
	Street    string  `json:"street"`
	City      string  `json:"city"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type Order struct {
	ID                    uint            `json:"id" gorm:"primaryKey"`
	OrderNumber           string          `json:"order_number" gorm:"unique;not null"`
	StoreID               uint            `json:"store_id" gorm:"not null;index"`
	CustomerID            uint            `json:"customer_id" gorm:"not null;index"`
	Items                 []OrderItem     `json:"items" gorm:"serializer:json"`
	Subtotal              float64         `json:"subtotal"`
	Tax                   float64         `json:"tax"`
	DeliveryFee           float64         `json:"delivery_fee"`
	Discount              float64         `json:"discount"`
	Total                 float64         `json:"total"`
	Status                OrderStatus     `json:"status" gorm:"default:'PENDING'"`
	PaymentMethod         string          `json:"payment_method"`
	PaymentStatus         string          `json:"payment_status" gorm:"default:'pending'"`
	DeliveryAddress       DeliveryAddress `json:"delivery_address" gorm:"serializer:json"`
	DeliveryEmployeeID    *uint           `json:"delivery_employee_id" gorm:"index"`
	CancelReason          string          `json:"cancel_reason"`
	EstimatedDeliveryTime *time.Time      `json:"estimated_delivery_time"`
	ActualDeliveryTime    *time.Time      `json:"actual_delivery_time"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
	DeletedAt             gorm.DeletedAt  `json:"deleted_at" gorm:"index"`
}

type OrderStatus string

const (
	OrderPending        OrderStatus = "PENDING"
	OrderConfirmed      OrderStatus = "CONFIRMED"
	OrderPreparing      OrderStatus = "PREPARING"
	OrderReady          OrderStatus = "READY"
	OrderOutForDelivery OrderStatus = "OUT_FOR_DELIVERY"
	OrderDelivered      OrderStatus = "DELIVERED"
	OrderCancelled      OrderStatus = "CANCELLED"
)

// nextStatus holds the single forward edge for each non-terminal status.
// CANCELLED is reachable from any non-terminal status and handled separately.
var nextStatus = map[OrderStatus]OrderStatus{
	OrderPending:        OrderConfirmed,
	OrderConfirmed:      OrderPreparing,
	OrderPreparing:      OrderReady,
	OrderReady:          OrderOutForDelivery,
	OrderOutForDelivery: OrderDelivered,
}

// IsTerminal reports whether no further status transition is permitted.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderDelivered || s == OrderCancelled
}

// CanTransition reports whether target is reachable from s in one step.
func (s OrderStatus) CanTransition(target OrderStatus) bool {
	if s.IsTerminal() {
		return false
	}
	if target == OrderCancelled {
		return true
	}
	return nextStatus[s] == target
}
