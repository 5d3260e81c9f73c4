package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"freshcart/internal/geo"
	"freshcart/internal/models"
	"freshcart/internal/repository"
	"freshcart/internal/ws"

	"gorm.io/gorm"
)

// Broadcaster pushes typed events to live connections, best-effort.
type Broadcaster interface {
	Publish(group string, event ws.Event)
}

// NotificationPublisher hands durable notifications to the external
// notification service.
type NotificationPublisher interface {
	Publish(userID uint, kind string, data map[string]interface{}) error
}

// GeocodeResolver turns a postal address into coordinates.
type GeocodeResolver interface {
	Resolve(address string) (lat, lng float64, err error)
}

// FulfillmentService orchestrates order transitions, delivery assignment and
// the tracking ledger, and broadcasts every committed change. All broadcasts
// happen strictly after the mutation is persisted and carry the
// post-mutation value.
type FulfillmentService interface {
	CreateOrder(order *models.Order) error
	AdvanceStatus(orderID uint, target models.OrderStatus, actor Actor) (*models.Order, error)
	CancelOrder(orderID uint, reason string, actor Actor) (*models.Order, error)
	AssignDelivery(orderID uint, employeeID *uint, actor Actor) (*models.Order, error)
	UpdateTracking(orderID uint, lat, lng float64, status models.TrackingStatus, eta *time.Time, note string, actor Actor) (*models.TrackingRecord, error)
	GetTracking(orderID uint) (*models.TrackingRecord, error)
	UpdateEmployeeLocation(employeeID uint, lat, lng float64) error
	UpdateEmployeeLocationByUser(userID uint, lat, lng float64) error
}

type fulfillmentService struct {
	orderService    OrderService
	trackingService TrackingService
	assignment      AssignmentService
	employeeService EmployeeService
	orderRepo       repository.OrderRepository
	storeRepo       repository.StoreRepository
	hub             Broadcaster
	notifier        NotificationPublisher
	geocoder        GeocodeResolver
	avgSpeedKmh     float64
	baseFee         float64
	feePerKm        float64
}

func NewFulfillmentService(
	orderService OrderService,
	trackingService TrackingService,
	assignment AssignmentService,
	employeeService EmployeeService,
	orderRepo repository.OrderRepository,
	storeRepo repository.StoreRepository,
	hub Broadcaster,
	notifier NotificationPublisher,
	geocoder GeocodeResolver,
	avgSpeedKmh float64,
	baseFee float64,
	feePerKm float64,
) FulfillmentService {
	return &fulfillmentService{
		orderService:    orderService,
		trackingService: trackingService,
		assignment:      assignment,
		employeeService: employeeService,
		orderRepo:       orderRepo,
		storeRepo:       storeRepo,
		hub:             hub,
		notifier:        notifier,
		geocoder:        geocoder,
		avgSpeedKmh:     avgSpeedKmh,
		baseFee:         baseFee,
		feePerKm:        feePerKm,
	}
}

func (s *fulfillmentService) CreateOrder(order *models.Order) error {
	if order.DeliveryFee == 0 {
		order.DeliveryFee = s.deliveryFee(order)
	}
	if err := s.orderService.Create(order); err != nil {
		return err
	}
	s.hub.Publish(ws.StoreGroup(order.StoreID), ws.NewOrderCreated(order))
	s.notify(order.CustomerID, "order_created", map[string]interface{}{
		"order_number": order.OrderNumber,
		"total":        order.Total,
	})
	return nil
}

func (s *fulfillmentService) AdvanceStatus(orderID uint, target models.OrderStatus, actor Actor) (*models.Order, error) {
	order, err := s.orderService.Transition(orderID, target, actor)
	if err != nil {
		return nil, err
	}

	s.broadcastStatus(order)
	s.notify(order.CustomerID, "order_status_changed", map[string]interface{}{
		"order_number": order.OrderNumber,
		"status":       string(order.Status),
	})

	if target == models.OrderDelivered && order.DeliveryEmployeeID != nil {
		if err := s.employeeService.RecordDelivery(*order.DeliveryEmployeeID, nil); err != nil {
			log.Printf("failed to record delivery for employee %d: %v", *order.DeliveryEmployeeID, err)
		}
	}
	return order, nil
}

func (s *fulfillmentService) CancelOrder(orderID uint, reason string, actor Actor) (*models.Order, error) {
	order, err := s.orderService.Cancel(orderID, reason, actor)
	if err != nil {
		return nil, err
	}

	s.broadcastStatus(order)
	s.notify(order.CustomerID, "order_cancelled", map[string]interface{}{
		"order_number": order.OrderNumber,
		"reason":       reason,
	})
	return order, nil
}

// AssignDelivery resolves a delivery employee, either the explicit manual
// pick or the engine's best match, opens the tracking ledger and moves the
// order out for delivery. Manual picks are not re-validated against shift or
// availability; the store owns that call.
func (s *fulfillmentService) AssignDelivery(orderID uint, employeeID *uint, actor Actor) (*models.Order, error) {
	order, err := s.orderService.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if !actor.isAdmin() && !actor.ownsStore(order.StoreID) {
		return nil, ErrUnauthorized
	}
	if !order.Status.CanTransition(models.OrderOutForDelivery) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, models.OrderOutForDelivery)
	}

	var employee *models.Employee
	if employeeID != nil {
		employee, err = s.employeeService.GetByID(*employeeID)
		if err != nil {
			return nil, err
		}
	} else {
		destLat, destLng, err := s.destination(order)
		if err != nil {
			return nil, err
		}
		employee, err = s.assignment.FindBestEmployee(order.StoreID, destLat, destLng)
		if err != nil {
			return nil, err
		}
	}

	pickupLat, pickupLng := s.pickupLocation(employee, order.StoreID)
	eta := s.estimateDelivery(pickupLat, pickupLng, order)

	order.DeliveryEmployeeID = &employee.ID
	order.EstimatedDeliveryTime = eta
	if err := s.orderRepo.Update(order); err != nil {
		return nil, err
	}

	if _, err := s.trackingService.Create(orderID, employee.ID, pickupLat, pickupLng, eta); err != nil {
		return nil, err
	}

	// Re-read so every broadcast carries the committed state.
	order, err = s.orderService.GetByID(orderID)
	if err != nil {
		return nil, err
	}

	s.hub.Publish(ws.UserGroup(employee.UserID), ws.NewDeliveryAssignment(order))
	s.broadcastStatus(order)
	s.notify(order.CustomerID, "delivery_assigned", map[string]interface{}{
		"order_number": order.OrderNumber,
	})
	return order, nil
}

// UpdateTracking appends a checkpoint, creating the ledger first if this is
// the first update after assignment. Only the assigned delivery employee, the
// owning store or an admin may write checkpoints.
func (s *fulfillmentService) UpdateTracking(orderID uint, lat, lng float64, status models.TrackingStatus, eta *time.Time, note string, actor Actor) (*models.TrackingRecord, error) {
	order, err := s.orderService.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if !s.canTrack(order, actor) {
		return nil, ErrUnauthorized
	}

	record, err := s.trackingService.GetByOrderID(orderID)
	if errors.Is(err, ErrTrackingNotFound) {
		if order.DeliveryEmployeeID == nil {
			return nil, ErrEmployeeNotAssigned
		}
		record, err = s.trackingService.Create(orderID, *order.DeliveryEmployeeID, lat, lng, eta)
		if err != nil {
			return nil, err
		}
		if status != "" && status != models.TrackingPickedUp {
			record, err = s.trackingService.AppendCheckpoint(orderID, lat, lng, status, eta, note)
		}
	} else if err == nil {
		record, err = s.trackingService.AppendCheckpoint(orderID, lat, lng, status, eta, note)
	}
	if err != nil {
		return nil, err
	}

	event := ws.NewDeliveryLocationUpdated(record)
	s.hub.Publish(ws.OrderGroup(orderID), event)
	s.hub.Publish(ws.UserGroup(order.CustomerID), event)

	if record.Status == models.TrackingDelivered && order.DeliveryEmployeeID != nil {
		if err := s.employeeService.RecordDelivery(*order.DeliveryEmployeeID, nil); err != nil {
			log.Printf("failed to record delivery for employee %d: %v", *order.DeliveryEmployeeID, err)
		}
		if updated, err := s.orderService.GetByID(orderID); err == nil {
			s.broadcastStatus(updated)
		}
	}
	return record, nil
}

// canTrack reports whether the actor may write checkpoints for the order:
// admins, the owning store, or the delivery user currently assigned to it.
func (s *fulfillmentService) canTrack(order *models.Order, actor Actor) bool {
	if actor.isAdmin() || actor.ownsStore(order.StoreID) {
		return true
	}
	if actor.Role != models.RoleDelivery || order.DeliveryEmployeeID == nil {
		return false
	}
	employee, err := s.employeeService.GetByUserID(actor.UserID)
	return err == nil && employee.ID == *order.DeliveryEmployeeID
}

func (s *fulfillmentService) GetTracking(orderID uint) (*models.TrackingRecord, error) {
	return s.trackingService.GetByOrderID(orderID)
}

// UpdateEmployeeLocation persists the employee's position and fans the
// update out to every order that employee is currently delivering.
func (s *fulfillmentService) UpdateEmployeeLocation(employeeID uint, lat, lng float64) error {
	if _, err := s.employeeService.GetByID(employeeID); err != nil {
		return err
	}
	if err := s.employeeService.UpdateLocation(employeeID, lat, lng); err != nil {
		return err
	}

	orders, err := s.orderRepo.GetActiveByEmployee(employeeID)
	if err != nil {
		return err
	}
	for _, order := range orders {
		record, err := s.trackingService.GetByOrderID(order.ID)
		if err != nil {
			continue
		}
		snapshot := *record
		snapshot.CurrentLat = lat
		snapshot.CurrentLng = lng
		event := ws.NewDeliveryLocationUpdated(&snapshot)
		s.hub.Publish(ws.OrderGroup(order.ID), event)
		s.hub.Publish(ws.UserGroup(order.CustomerID), event)
	}
	return nil
}

// UpdateEmployeeLocationByUser serves location frames pushed over the
// realtime channel, where only the authenticated user id is known.
func (s *fulfillmentService) UpdateEmployeeLocationByUser(userID uint, lat, lng float64) error {
	employee, err := s.employeeService.GetByUserID(userID)
	if err != nil {
		return err
	}
	return s.UpdateEmployeeLocation(employee.ID, lat, lng)
}

func (s *fulfillmentService) broadcastStatus(order *models.Order) {
	event := ws.NewOrderStatusChanged(order)
	s.hub.Publish(ws.OrderGroup(order.ID), event)
	s.hub.Publish(ws.UserGroup(order.CustomerID), event)
}

func (s *fulfillmentService) notify(userID uint, kind string, data map[string]interface{}) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Publish(userID, kind, data); err != nil {
		log.Printf("failed to publish %s notification for user %d: %v", kind, userID, err)
	}
}

// destination resolves the order's drop-off coordinates, falling back to the
// geocoding service when the address has none.
func (s *fulfillmentService) destination(order *models.Order) (float64, float64, error) {
	addr := order.DeliveryAddress
	if addr.Latitude != 0 || addr.Longitude != 0 {
		return addr.Latitude, addr.Longitude, nil
	}
	if s.geocoder == nil {
		return 0, 0, fmt.Errorf("order %d has no delivery coordinates", order.ID)
	}
	return s.geocoder.Resolve(addr.Street + ", " + addr.City)
}

// pickupLocation is the employee's last known position, or the store when
// the employee has never reported one.
func (s *fulfillmentService) pickupLocation(employee *models.Employee, storeID uint) (float64, float64) {
	if employee.CurrentLat != nil && employee.CurrentLng != nil {
		return *employee.CurrentLat, *employee.CurrentLng
	}
	store, err := s.storeRepo.GetByID(storeID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("failed to load store %d for pickup location: %v", storeID, err)
		}
		return 0, 0
	}
	return store.Latitude, store.Longitude
}

// deliveryFee prices the delivery from the store-to-destination distance.
// Orders without known coordinates on either end just get the base fee.
func (s *fulfillmentService) deliveryFee(order *models.Order) float64 {
	addr := order.DeliveryAddress
	if addr.Latitude == 0 && addr.Longitude == 0 {
		return s.baseFee
	}
	store, err := s.storeRepo.GetByID(order.StoreID)
	if err != nil {
		return s.baseFee
	}
	dist := geo.Distance(store.Latitude, store.Longitude, addr.Latitude, addr.Longitude)
	return geo.DeliveryFee(dist, s.baseFee, s.feePerKm)
}

func (s *fulfillmentService) estimateDelivery(fromLat, fromLng float64, order *models.Order) *time.Time {
	addr := order.DeliveryAddress
	if addr.Latitude == 0 && addr.Longitude == 0 {
		return nil
	}
	dist := geo.Distance(fromLat, fromLng, addr.Latitude, addr.Longitude)
	eta := time.Now().Add(geo.ETA(dist, s.avgSpeedKmh))
	return &eta
}
