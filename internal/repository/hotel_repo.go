package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/dumeirei/hotel-booking-backend/internal/models"
)

// HotelRepository 酒店仓储
type HotelRepository struct {
	db *gorm.DB
}

// NewHotelRepository 创建酒店仓储
func NewHotelRepository(db *gorm.DB) *HotelRepository {
	return &HotelRepository{db: db}
}

// Create 创建酒店
func (r *HotelRepository) Create(ctx context.Context, hotel *models.Hotel) error {
	return r.db.WithContext(ctx).Create(hotel).Error
}

// GetByID 根据 ID 获取酒店
func (r *HotelRepository) GetByID(ctx context.Context, id int64) (*models.Hotel, error) {
	var hotel models.Hotel
	err := r.db.WithContext(ctx).First(&hotel, id).Error
	if err != nil {
		return nil, err
	}
	return &hotel, nil
}

// IsOwnedBy 判断酒店是否属于指定业主
func (r *HotelRepository) IsOwnedBy(ctx context.Context, hotelID, ownerID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Hotel{}).
		Where("id = ? AND owner_id = ?", hotelID, ownerID).
		Count(&count).Error
	return count > 0, err
}
