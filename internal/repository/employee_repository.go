package repository

import (
	"freshcart/internal/models"

	"gorm.io/gorm"
)

type EmployeeRepository interface {
	Create(employee *models.Employee) error
	GetByID(id uint) (*models.Employee, error)
	GetByUserID(userID uint) (*models.Employee, error)
	GetByStore(storeID uint) ([]models.Employee, error)
	Update(employee *models.Employee) error
	UpdateLocation(id uint, lat, lng float64) error
	UpdateAvailability(id uint, available bool) error
}

type employeeRepository struct {
	db *gorm.DB
}

func NewEmployeeRepository(db *gorm.DB) EmployeeRepository {
	return &employeeRepository{db: db}
}

func (r *employeeRepository) Create(employee *models.Employee) error {
	return r.db.Create(employee).Error
}

func (r *employeeRepository) GetByID(id uint) (*models.Employee, error) {
	var employee models.Employee
	err := r.db.First(&employee, id).Error
	if err != nil {
		return nil, err
	}
	return &employee, nil
}

func (r *employeeRepository) GetByUserID(userID uint) (*models.Employee, error) {
	var employee models.Employee
	err := r.db.Where("user_id = ?", userID).First(&employee).Error
	if err != nil {
		return nil, err
	}
	return &employee, nil
}

func (r *employeeRepository) GetByStore(storeID uint) ([]models.Employee, error) {
	var employees []models.Employee
	err := r.db.Where("store_id = ?", storeID).Order("id").Find(&employees).Error
	return employees, err
}

func (r *employeeRepository) Update(employee *models.Employee) error {
	return r.db.Save(employee).Error
}

func (r *employeeRepository) UpdateLocation(id uint, lat, lng float64) error {
	res := r.db.Model(&models.Employee{}).Where("id = ?", id).
		Updates(map[string]interface{}{"current_lat": lat, "current_lng": lng})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *employeeRepository) UpdateAvailability(id uint, available bool) error {
	res := r.db.Model(&models.Employee{}).Where("id = ?", id).
		Update("is_available", available)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
