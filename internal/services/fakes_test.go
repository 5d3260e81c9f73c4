package services

import (
	"strings"
	"sync"

	"freshcart/internal/models"
	"freshcart/internal/repository"
	"freshcart/internal/ws"

	"gorm.io/gorm"
)

// In-memory repositories backing the service tests. They mirror the gorm
// implementations' contract, including gorm.ErrRecordNotFound on misses, and
// return copies so that unpersisted mutations do not leak into the "store".

type fakeOrderRepo struct {
	mu     sync.Mutex
	nextID uint
	orders map[uint]models.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[uint]models.Order)}
}

func (r *fakeOrderRepo) Create(order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	order.ID = r.nextID
	r.orders[order.ID] = *order
	return nil
}

func (r *fakeOrderRepo) GetByID(id uint) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := order
	return &out, nil
}

func (r *fakeOrderRepo) GetByOrderNumber(orderNumber string) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, order := range r.orders {
		if order.OrderNumber == orderNumber {
			out := order
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeOrderRepo) GetLastOrderNumber(prefix string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var last string
	for _, order := range r.orders {
		if strings.HasPrefix(order.OrderNumber, prefix) && order.OrderNumber > last {
			last = order.OrderNumber
		}
	}
	if last == "" {
		return "", gorm.ErrRecordNotFound
	}
	return last, nil
}

func (r *fakeOrderRepo) List(filter repository.OrderFilter) ([]models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Order
	for _, order := range r.orders {
		if filter.StoreID != 0 && order.StoreID != filter.StoreID {
			continue
		}
		if filter.CustomerID != 0 && order.CustomerID != filter.CustomerID {
			continue
		}
		if filter.Status != "" && order.Status != filter.Status {
			continue
		}
		out = append(out, order)
	}
	return out, nil
}

func (r *fakeOrderRepo) Update(order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[order.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.orders[order.ID] = *order
	return nil
}

func (r *fakeOrderRepo) GetActiveByEmployee(employeeID uint) ([]models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Order
	for _, order := range r.orders {
		if order.DeliveryEmployeeID != nil && *order.DeliveryEmployeeID == employeeID &&
			order.Status == models.OrderOutForDelivery {
			out = append(out, order)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) CountByStore(storeID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, order := range r.orders {
		if order.StoreID == storeID {
			n++
		}
	}
	return n, nil
}

func (r *fakeOrderRepo) Delete(id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.orders, id)
	return nil
}

type fakeTrackingRepo struct {
	mu      sync.Mutex
	nextID  uint
	records map[uint]models.TrackingRecord // keyed by order id
}

func newFakeTrackingRepo() *fakeTrackingRepo {
	return &fakeTrackingRepo{records: make(map[uint]models.TrackingRecord)}
}

func copyRecord(record models.TrackingRecord) models.TrackingRecord {
	out := record
	out.Checkpoints = append([]models.Checkpoint(nil), record.Checkpoints...)
	return out
}

func (r *fakeTrackingRepo) Create(record *models.TrackingRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	record.ID = r.nextID
	r.records[record.OrderID] = copyRecord(*record)
	return nil
}

func (r *fakeTrackingRepo) GetByOrderID(orderID uint) (*models.TrackingRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[orderID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := copyRecord(record)
	return &out, nil
}

func (r *fakeTrackingRepo) Update(record *models.TrackingRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[record.OrderID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.records[record.OrderID] = copyRecord(*record)
	return nil
}

type fakeEmployeeRepo struct {
	mu        sync.Mutex
	nextID    uint
	employees []models.Employee // insertion order matters for tie-breaking
}

func newFakeEmployeeRepo() *fakeEmployeeRepo {
	return &fakeEmployeeRepo{}
}

func (r *fakeEmployeeRepo) Create(employee *models.Employee) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	employee.ID = r.nextID
	r.employees = append(r.employees, *employee)
	return nil
}

func (r *fakeEmployeeRepo) GetByID(id uint) (*models.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.employees {
		if e.ID == id {
			out := e
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeEmployeeRepo) GetByUserID(userID uint) (*models.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.employees {
		if e.UserID == userID {
			out := e
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeEmployeeRepo) GetByStore(storeID uint) ([]models.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Employee
	for _, e := range r.employees {
		if e.StoreID == storeID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeEmployeeRepo) Update(employee *models.Employee) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.employees {
		if e.ID == employee.ID {
			r.employees[i] = *employee
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeEmployeeRepo) UpdateLocation(id uint, lat, lng float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.employees {
		if e.ID == id {
			r.employees[i].CurrentLat = &lat
			r.employees[i].CurrentLng = &lng
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeEmployeeRepo) UpdateAvailability(id uint, available bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.employees {
		if e.ID == id {
			r.employees[i].IsAvailable = available
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type fakeStoreRepo struct {
	mu     sync.Mutex
	nextID uint
	stores map[uint]models.Store
}

func newFakeStoreRepo() *fakeStoreRepo {
	return &fakeStoreRepo{stores: make(map[uint]models.Store)}
}

func (r *fakeStoreRepo) Create(store *models.Store) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	store.ID = r.nextID
	r.stores[store.ID] = *store
	return nil
}

func (r *fakeStoreRepo) GetByID(id uint) (*models.Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	store, ok := r.stores[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := store
	return &out, nil
}

func (r *fakeStoreRepo) GetAll() ([]models.Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Store
	for _, store := range r.stores {
		out = append(out, store)
	}
	return out, nil
}

func (r *fakeStoreRepo) Update(store *models.Store) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stores[store.ID] = *store
	return nil
}

// fakeBroadcaster records published events for assertions.
type fakeBroadcaster struct {
	mu     sync.Mutex
	events []publishedEvent
}

type publishedEvent struct {
	Group string
	Event ws.Event
}

func (b *fakeBroadcaster) Publish(group string, event ws.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, publishedEvent{Group: group, Event: event})
}

func (b *fakeBroadcaster) published(group string, eventType ws.EventType) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, e := range b.events {
		if e.Group == group && e.Event.Type == eventType {
			n++
		}
	}
	return n
}

type fakeNotifier struct {
	mu    sync.Mutex
	kinds []string
}

func (n *fakeNotifier) Publish(userID uint, kind string, data map[string]interface{}) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.kinds = append(n.kinds, kind)
	return nil
}
