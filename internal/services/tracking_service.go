package services

import (
	"errors"
	"sync"
	"time"

	"freshcart/internal/models"
	"freshcart/internal/repository"

	"gorm.io/gorm"
)

type TrackingService interface {
	Create(orderID, employeeID uint, lat, lng float64, eta *time.Time) (*models.TrackingRecord, error)
	AppendCheckpoint(orderID uint, lat, lng float64, status models.TrackingStatus, eta *time.Time, note string) (*models.TrackingRecord, error)
	GetByOrderID(orderID uint) (*models.TrackingRecord, error)
}

type trackingService struct {
	trackingRepo repository.TrackingRepository
	orderRepo    repository.OrderRepository

	// Appends for the same order must not interleave, so every write takes
	// a per-order lock.
	mu         sync.Mutex
	orderLocks map[uint]*sync.Mutex
}

func NewTrackingService(trackingRepo repository.TrackingRepository, orderRepo repository.OrderRepository) TrackingService {
	return &trackingService{
		trackingRepo: trackingRepo,
		orderRepo:    orderRepo,
		orderLocks:   make(map[uint]*sync.Mutex),
	}
}

func (s *trackingService) lockOrder(orderID uint) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.orderLocks[orderID]
	if !ok {
		l = &sync.Mutex{}
		s.orderLocks[orderID] = l
	}
	return l
}

// Create opens the ledger for an order with the initial PICKED_UP checkpoint
// and moves the order to OUT_FOR_DELIVERY. Status validity and actor
// authority are the caller's responsibility.
func (s *trackingService) Create(orderID, employeeID uint, lat, lng float64, eta *time.Time) (*models.TrackingRecord, error) {
	l := s.lockOrder(orderID)
	l.Lock()
	defer l.Unlock()

	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	if _, err := s.trackingRepo.GetByOrderID(orderID); err == nil {
		return nil, ErrTrackingExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	now := time.Now()
	record := &models.TrackingRecord{
		OrderID:               orderID,
		DeliveryEmployeeID:    employeeID,
		Status:                models.TrackingPickedUp,
		CurrentLat:            lat,
		CurrentLng:            lng,
		EstimatedDeliveryTime: eta,
		Checkpoints: []models.Checkpoint{
			{Status: models.TrackingPickedUp, Latitude: lat, Longitude: lng, Timestamp: now},
		},
	}
	if err := s.trackingRepo.Create(record); err != nil {
		return nil, err
	}

	order.Status = models.OrderOutForDelivery
	if err := s.orderRepo.Update(order); err != nil {
		return nil, err
	}
	return record, nil
}

// AppendCheckpoint adds one immutable checkpoint and mirrors it onto the
// record's current fields. A DELIVERED checkpoint also completes the order.
func (s *trackingService) AppendCheckpoint(orderID uint, lat, lng float64, status models.TrackingStatus, eta *time.Time, note string) (*models.TrackingRecord, error) {
	l := s.lockOrder(orderID)
	l.Lock()
	defer l.Unlock()

	record, err := s.trackingRepo.GetByOrderID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTrackingNotFound
		}
		return nil, err
	}

	ts := time.Now()
	if n := len(record.Checkpoints); n > 0 && record.Checkpoints[n-1].Timestamp.After(ts) {
		// Keep the history non-decreasing even if the clock steps back.
		ts = record.Checkpoints[n-1].Timestamp
	}

	record.Checkpoints = append(record.Checkpoints, models.Checkpoint{
		Status:    status,
		Latitude:  lat,
		Longitude: lng,
		Timestamp: ts,
		Note:      note,
	})
	record.Status = status
	record.CurrentLat = lat
	record.CurrentLng = lng
	if eta != nil {
		record.EstimatedDeliveryTime = eta
	}
	if err := s.trackingRepo.Update(record); err != nil {
		return nil, err
	}

	if status == models.TrackingDelivered {
		order, err := s.orderRepo.GetByID(orderID)
		if err != nil {
			return nil, err
		}
		order.Status = models.OrderDelivered
		now := time.Now()
		order.ActualDeliveryTime = &now
		if err := s.orderRepo.Update(order); err != nil {
			return nil, err
		}
	}
	return record, nil
}

func (s *trackingService) GetByOrderID(orderID uint) (*models.TrackingRecord, error) {
	record, err := s.trackingRepo.GetByOrderID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTrackingNotFound
		}
		return nil, err
	}
	return record, nil
}
