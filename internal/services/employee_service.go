package services

import (
	"errors"
	"log"
	"time"

	"freshcart/internal/models"
	"freshcart/internal/redis"
	"freshcart/internal/repository"

	"gorm.io/gorm"
)

type EmployeeService interface {
	Create(employee *models.Employee) error
	GetByID(id uint) (*models.Employee, error)
	GetByUserID(userID uint) (*models.Employee, error)
	UpdateLocation(id uint, lat, lng float64) error
	Location(id uint) (lat, lng float64, err error)
	Online(userID uint) bool
	SetAvailability(id uint, available bool) error
	RecordDelivery(id uint, rating *float64) error
}

type employeeService struct {
	employeeRepo repository.EmployeeRepository
	cache        *redis.Client
	locationTTL  time.Duration
}

func NewEmployeeService(employeeRepo repository.EmployeeRepository, cache *redis.Client, locationTTL time.Duration) EmployeeService {
	return &employeeService{employeeRepo: employeeRepo, cache: cache, locationTTL: locationTTL}
}

func (s *employeeService) Create(employee *models.Employee) error {
	return s.employeeRepo.Create(employee)
}

func (s *employeeService) GetByID(id uint) (*models.Employee, error) {
	employee, err := s.employeeRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		return nil, err
	}
	return employee, nil
}

func (s *employeeService) GetByUserID(userID uint) (*models.Employee, error) {
	employee, err := s.employeeRepo.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		return nil, err
	}
	return employee, nil
}

func (s *employeeService) UpdateLocation(id uint, lat, lng float64) error {
	if err := s.employeeRepo.UpdateLocation(id, lat, lng); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEmployeeNotFound
		}
		return err
	}

	// Cache is best-effort; the database row is the source of truth.
	if s.cache != nil {
		if err := s.cache.SetEmployeeLocation(id, lat, lng, s.locationTTL); err != nil {
			log.Printf("failed to cache location for employee %d: %v", id, err)
		}
	}
	return nil
}

// Location reads the last known position, preferring the cache while the TTL
// has not expired and falling back to the stored row.
func (s *employeeService) Location(id uint) (float64, float64, error) {
	if s.cache != nil {
		if loc, err := s.cache.GetEmployeeLocation(id); err == nil {
			return loc.Latitude, loc.Longitude, nil
		}
	}

	employee, err := s.GetByID(id)
	if err != nil {
		return 0, 0, err
	}
	if employee.CurrentLat == nil || employee.CurrentLng == nil {
		return 0, 0, ErrLocationUnknown
	}
	return *employee.CurrentLat, *employee.CurrentLng, nil
}

// Online reports whether the user has a live realtime connection, best-effort.
func (s *employeeService) Online(userID uint) bool {
	if s.cache == nil {
		return false
	}
	online, err := s.cache.IsOnline(userID)
	if err != nil {
		log.Printf("failed to check presence for user %d: %v", userID, err)
		return false
	}
	return online
}

func (s *employeeService) SetAvailability(id uint, available bool) error {
	if err := s.employeeRepo.UpdateAvailability(id, available); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEmployeeNotFound
		}
		return err
	}

	// An off-shift employee's cached position goes stale immediately.
	if !available && s.cache != nil {
		if err := s.cache.DeleteEmployeeLocation(id); err != nil {
			log.Printf("failed to drop cached location for employee %d: %v", id, err)
		}
	}
	return nil
}

// RecordDelivery bumps the delivered-order counter and, when the customer
// rated the delivery, folds the rating into the running weighted average.
func (s *employeeService) RecordDelivery(id uint, rating *float64) error {
	employee, err := s.GetByID(id)
	if err != nil {
		return err
	}

	employee.DeliveredCount++
	if rating != nil && *rating >= 0 && *rating <= 5 {
		total := employee.Rating*float64(employee.RatingCount) + *rating
		employee.RatingCount++
		employee.Rating = total / float64(employee.RatingCount)
	}
	return s.employeeRepo.Update(employee)
}
