package repository

import (
	"freshcart/internal/models"

	"gorm.io/gorm"
)

type TrackingRepository interface {
	Create(record *models.TrackingRecord) error
	GetByOrderID(orderID uint) (*models.TrackingRecord, error)
	Update(record *models.TrackingRecord) error
}

type trackingRepository struct {
	db *gorm.DB
}

func NewTrackingRepository(db *gorm.DB) TrackingRepository {
	return &trackingRepository{db: db}
}

func (r *trackingRepository) Create(record *models.TrackingRecord) error {
	return r.db.Create(record).Error
}

func (r *trackingRepository) GetByOrderID(orderID uint) (*models.TrackingRecord, error) {
	var record models.TrackingRecord
	err := r.db.Where("order_id = ?", orderID).First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *trackingRepository) Update(record *models.TrackingRecord) error {
	return r.db.Save(record).Error
}
