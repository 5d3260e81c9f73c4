package services

import (
	"time"

	"freshcart/internal/geo"
	"freshcart/internal/models"
	"freshcart/internal/repository"
)

type AssignmentService interface {
	FindBestEmployee(storeID uint, destLat, destLng float64) (*models.Employee, error)
}

type assignmentService struct {
	employeeRepo repository.EmployeeRepository
	now          func() time.Time
}

func NewAssignmentService(employeeRepo repository.EmployeeRepository) AssignmentService {
	return &assignmentService{employeeRepo: employeeRepo, now: time.Now}
}

// FindBestEmployee picks the delivery employee for a destination. Candidates
// must belong to the store, be active, available and on shift right now.
// Candidates with a known location are scored as (5 - distance/10) + rating,
// highest wins, ties broken by insertion order; without any location data the
// least-loaded candidate wins.
func (s *assignmentService) FindBestEmployee(storeID uint, destLat, destLng float64) (*models.Employee, error) {
	employees, err := s.employeeRepo.GetByStore(storeID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var eligible []models.Employee
	for _, e := range employees {
		if !e.IsActive || !e.IsAvailable {
			continue
		}
		if !e.WorkingAt(now) {
			continue
		}
		eligible = append(eligible, e)
	}
	if len(eligible) == 0 {
		return nil, ErrNoAvailableEmployee
	}

	var located []models.Employee
	for _, e := range eligible {
		if e.CurrentLat != nil && e.CurrentLng != nil {
			located = append(located, e)
		}
	}

	if len(located) == 0 {
		best := eligible[0]
		for _, e := range eligible[1:] {
			if e.DeliveredCount < best.DeliveredCount {
				best = e
			}
		}
		return &best, nil
	}

	best := located[0]
	bestScore := score(&best, destLat, destLng)
	for i := 1; i < len(located); i++ {
		if sc := score(&located[i], destLat, destLng); sc > bestScore {
			best = located[i]
			bestScore = sc
		}
	}
	return &best, nil
}

// score lets rating offset a longer trip; a 50 km trip contributes zero to
// the distance term.
func score(e *models.Employee, destLat, destLng float64) float64 {
	dist := geo.Distance(*e.CurrentLat, *e.CurrentLng, destLat, destLng)
	return (5 - dist/10) + e.Rating
}
