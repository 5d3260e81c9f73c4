package models

import (
	"time"
)

type TrackingStatus string

const (
	TrackingPickedUp  TrackingStatus = "PICKED_UP"
	TrackingInTransit TrackingStatus = "IN_TRANSIT"
	TrackingDelivered TrackingStatus = "DELIVERED"
)

// Checkpoint is one immutable entry in a tracking record's history.
// Corrections append a new checkpoint, never edit an existing one.
type Checkpoint struct {
	Status    TrackingStatus `json:"status"`
	Latitude  float64        `json:"latitude"`
	Longitude float64        `json:"longitude"`
	Timestamp time.Time      `json:"timestamp"`
	Note      string         `json:"note,omitempty"`
}

// TrackingRecord is the append-only delivery ledger for one order. The
// current status/location/ETA always mirror the last checkpoint.
type TrackingRecord struct {
	ID                    uint           `json:"id" gorm:"primaryKey"`
	OrderID               uint           `json:"order_id" gorm:"unique;not null"`
	DeliveryEmployeeID    uint           `json:"delivery_employee_id" gorm:"not null;index"`
	Status                TrackingStatus `json:"status"`
	CurrentLat            float64        `json:"current_lat"`
	CurrentLng            float64        `json:"current_lng"`
	EstimatedDeliveryTime *time.Time     `json:"estimated_delivery_time"`
	Checkpoints           []Checkpoint   `json:"checkpoints" gorm:"serializer:json"`
	CreatedAt             time.Time      `json:"created_at"`
	UpdatedAt             time.Time      `json:"updated_at"`
}
