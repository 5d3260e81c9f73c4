package models

import (
	"time"

	"gorm.io/gorm"
)

type DaySchedule struct {
	Working   bool   `json:"working"`
	StartTime string `json:"start_time"` // zero-padded HH:MM
	EndTime   string `json:"end_time"`
}

// WeekSchedule is keyed by lowercase weekday name ("monday" ... "sunday").
type WeekSchedule map[string]DaySchedule

type Employee struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	UserID         uint           `json:"user_id" gorm:"unique;not null"`
	StoreID        uint           `json:"store_id" gorm:"not null;index"`
	IsAvailable    bool           `json:"is_available" gorm:"default:true"`
	Schedule       WeekSchedule   `json:"schedule" gorm:"serializer:json"`
	CurrentLat     *float64       `json:"current_lat"`
	CurrentLng     *float64       `json:"current_lng"`
	DeliveredCount int            `json:"delivered_count" gorm:"default:0"`
	Rating         float64        `json:"rating" gorm:"default:5"`
	RatingCount    int            `json:"rating_count" gorm:"default:0"`
	IsActive       bool           `json:"is_active" gorm:"default:true"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}

// WorkingAt reports whether the schedule has the employee on shift at t.
// Times compare as zero-padded HH:MM strings, which is only valid within a
// single day; shifts crossing midnight are not supported.
func (e *Employee) WorkingAt(t time.Time) bool {
	day, ok := e.Schedule[weekdayKey(t.Weekday())]
	if !ok || !day.Working {
		return false
	}
	hm := t.Format("15:04")
	return day.StartTime <= hm && hm <= day.EndTime
}

func weekdayKey(d time.Weekday) string {
	switch d {
	case time.Monday:
		return "monday"
	case time.Tuesday:
		return "tuesday"
	case time.Wednesday:
		return "wednesday"
	case time.Thursday:
		return "thursday"
	case time.Friday:
		return "friday"
	case time.Saturday:
		return "saturday"
	default:
		return "sunday"
	}
}
