package services

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"freshcart/internal/models"
	"freshcart/internal/repository"

	"gorm.io/gorm"
)

// Actor identifies who is performing a mutation.
type Actor struct {
	UserID  uint
	Role    models.UserRole
	StoreID *uint
}

func (a Actor) isAdmin() bool {
	return a.Role == models.RoleAdmin
}

func (a Actor) ownsStore(storeID uint) bool {
	return a.Role == models.RoleStore && a.StoreID != nil && *a.StoreID == storeID
}

type OrderService interface {
	Create(order *models.Order) error
	GetByID(id uint) (*models.Order, error)
	GetByOrderNumber(orderNumber string) (*models.Order, error)
	List(filter repository.OrderFilter) ([]models.Order, error)
	CountByStore(storeID uint) (int64, error)
	Transition(orderID uint, target models.OrderStatus, actor Actor) (*models.Order, error)
	Cancel(orderID uint, reason string, actor Actor) (*models.Order, error)
	Delete(id uint, actor Actor) error
}

type orderService struct {
	orderRepo repository.OrderRepository

	mu     sync.Mutex
	seqDay string
	seq    uint64
}

func NewOrderService(orderRepo repository.OrderRepository) OrderService {
	return &orderService{orderRepo: orderRepo}
}

// Create validates totals, assigns an order number and persists the order in
// PENDING status.
func (s *orderService) Create(order *models.Order) error {
	if order.StoreID == 0 || order.CustomerID == 0 || len(order.Items) == 0 {
		return fmt.Errorf("%w: missing store, customer or items", ErrInvalidOrder)
	}

	subtotal := 0.0
	for i := range order.Items {
		item := &order.Items[i]
		if item.Quantity <= 0 || item.UnitPrice < 0 {
			return fmt.Errorf("%w: bad quantity or price for product %d", ErrInvalidOrder, item.ProductID)
		}
		item.LineTotal = float64(item.Quantity) * item.UnitPrice
		subtotal += item.LineTotal
	}
	order.Subtotal = subtotal

	if order.Tax < 0 || order.DeliveryFee < 0 || order.Discount < 0 {
		return fmt.Errorf("%w: negative amount", ErrInvalidOrder)
	}
	order.Total = order.Subtotal + order.Tax + order.DeliveryFee - order.Discount
	if order.Total < 0 {
		return fmt.Errorf("%w: discount exceeds order value", ErrInvalidOrder)
	}

	order.Status = models.OrderPending
	number, err := s.nextOrderNumber()
	if err != nil {
		return err
	}
	order.OrderNumber = number
	return s.orderRepo.Create(order)
}

// nextOrderNumber hands out FC-<yyyymmdd>-<seq> numbers. The counter resets
// each day and is seeded from the highest persisted number for that day, so
// a restart continues where the previous process left off instead of
// colliding with the order-number unique index.
func (s *orderService) nextOrderNumber() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	day := time.Now().Format("20060102")
	prefix := "FC-" + day + "-"
	if s.seqDay != day {
		last, err := s.orderRepo.GetLastOrderNumber(prefix)
		switch {
		case err == nil && len(last) > len(prefix):
			n, perr := strconv.ParseUint(last[len(prefix):], 10, 64)
			if perr != nil {
				return "", fmt.Errorf("corrupt order number %q: %w", last, perr)
			}
			s.seq = n
		case err == nil || errors.Is(err, gorm.ErrRecordNotFound):
			s.seq = 0
		default:
			return "", err
		}
		s.seqDay = day
	}

	s.seq++
	return fmt.Sprintf("%s%05d", prefix, s.seq), nil
}

func (s *orderService) GetByID(id uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func (s *orderService) GetByOrderNumber(orderNumber string) (*models.Order, error) {
	order, err := s.orderRepo.GetByOrderNumber(orderNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func (s *orderService) List(filter repository.OrderFilter) ([]models.Order, error) {
	return s.orderRepo.List(filter)
}

func (s *orderService) CountByStore(storeID uint) (int64, error) {
	return s.orderRepo.CountByStore(storeID)
}

// Transition moves the order along the status state machine. Only the owning
// store or an admin may advance or cancel. DELIVERED stamps the actual
// delivery time. OUT_FOR_DELIVERY additionally requires an assigned employee
// so that the delivery-employee invariant holds.
func (s *orderService) Transition(orderID uint, target models.OrderStatus, actor Actor) (*models.Order, error) {
	order, err := s.GetByID(orderID)
	if err != nil {
		return nil, err
	}

	if !actor.isAdmin() && !actor.ownsStore(order.StoreID) {
		return nil, ErrUnauthorized
	}
	if !order.Status.CanTransition(target) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, target)
	}
	if target == models.OrderOutForDelivery && order.DeliveryEmployeeID == nil {
		return nil, ErrEmployeeNotAssigned
	}

	order.Status = target
	if target == models.OrderDelivered {
		now := time.Now()
		order.ActualDeliveryTime = &now
	}
	if err := s.orderRepo.Update(order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *orderService) Cancel(orderID uint, reason string, actor Actor) (*models.Order, error) {
	order, err := s.GetByID(orderID)
	if err != nil {
		return nil, err
	}

	if !actor.isAdmin() && !actor.ownsStore(order.StoreID) {
		return nil, ErrUnauthorized
	}
	if !order.Status.CanTransition(models.OrderCancelled) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, models.OrderCancelled)
	}

	order.Status = models.OrderCancelled
	order.CancelReason = reason
	if err := s.orderRepo.Update(order); err != nil {
		return nil, err
	}
	return order, nil
}

// Delete soft-deletes an order. Administrative action only.
func (s *orderService) Delete(id uint, actor Actor) error {
	if !actor.isAdmin() {
		return ErrUnauthorized
	}
	if _, err := s.GetByID(id); err != nil {
		return err
	}
	return s.orderRepo.Delete(id)
}
