package repository

import (
	"freshcart/internal/models"

	"gorm.io/gorm"
)

// OrderFilter narrows List results; zero values mean "any".
type OrderFilter struct {
	StoreID    uint
	CustomerID uint
	Status     models.OrderStatus
	Page       int
	PageSize   int
}

type OrderRepository interface {
	Create(order *models.Order) error
	GetByID(id uint) (*models.Order, error)
	GetByOrderNumber(orderNumber string) (*models.Order, error)
	GetLastOrderNumber(prefix string) (string, error)
	List(filter OrderFilter) ([]models.Order, error)
	Update(order *models.Order) error
	GetActiveByEmployee(employeeID uint) ([]models.Order, error)
	CountByStore(storeID uint) (int64, error)
	Delete(id uint) error
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(order *models.Order) error {
	return r.db.Create(order).Error
}

func (r *orderRepository) GetByID(id uint) (*models.Order, error) {
	var order models.Order
	err := r.db.First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetByOrderNumber(orderNumber string) (*models.Order, error) {
	var order models.Order
	err := r.db.Where("order_number = ?", orderNumber).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetLastOrderNumber returns the highest order number starting with prefix.
// Soft-deleted orders still count because their numbers stay reserved.
func (r *orderRepository) GetLastOrderNumber(prefix string) (string, error) {
	var order models.Order
	err := r.db.Unscoped().
		Where("order_number LIKE ?", prefix+"%").
		Order("order_number DESC").
		First(&order).Error
	if err != nil {
		return "", err
	}
	return order.OrderNumber, nil
}

func (r *orderRepository) List(filter OrderFilter) ([]models.Order, error) {
	query := r.db.Model(&models.Order{})
	if filter.StoreID != 0 {
		query = query.Where("store_id = ?", filter.StoreID)
	}
	if filter.CustomerID != 0 {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var orders []models.Order
	err := query.Order("created_at DESC").Find(&orders).Error
	return orders, err
}

func (r *orderRepository) Update(order *models.Order) error {
	return r.db.Save(order).Error
}

// GetActiveByEmployee returns the orders the employee is currently delivering.
func (r *orderRepository) GetActiveByEmployee(employeeID uint) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Where("delivery_employee_id = ? AND status = ?", employeeID, models.OrderOutForDelivery).
		Find(&orders).Error
	return orders, err
}

func (r *orderRepository) CountByStore(storeID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Order{}).Where("store_id = ?", storeID).Count(&count).Error
	return count, err
}

func (r *orderRepository) Delete(id uint) error {
	return r.db.Delete(&models.Order{}, id).Error
}
