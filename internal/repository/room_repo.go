package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dumeirei/hotel-booking-backend/internal/models"
)

// RoomRepository 房间仓储
type RoomRepository struct {
	db *gorm.DB
}

// NewRoomRepository 创建房间仓储
func NewRoomRepository(db *gorm.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// Create 创建房间
func (r *RoomRepository) Create(ctx context.Context, room *models.Room) error {
	return r.db.WithContext(ctx).Create(room).Error
}

// GetByID 根据 ID 获取房间
func (r *RoomRepository) GetByID(ctx context.Context, id int64) (*models.Room, error) {
	var room models.Room
	err := r.db.WithContext(ctx).First(&room, id).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// GetByIDWithHotel 根据 ID 获取房间（包含酒店）
func (r *RoomRepository) GetByIDWithHotel(ctx context.Context, id int64) (*models.Room, error) {
	var room models.Room
	err := r.db.WithContext(ctx).Preload("Hotel").First(&room, id).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// GetByIDForUpdate 获取房间并加行锁，用于按房间串行化预订写入
// sqlite 不支持行锁，驱动会忽略 FOR UPDATE
func (r *RoomRepository) GetByIDForUpdate(ctx context.Context, tx *gorm.DB, id int64) (*models.Room, error) {
	var room models.Room
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&room, id).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// UpdateFields 更新指定字段
func (r *RoomRepository) UpdateFields(ctx context.Context, tx *gorm.DB, id int64, fields map[string]interface{}) error {
	return conn(r.db, tx).WithContext(ctx).Model(&models.Room{}).Where("id = ?", id).Updates(fields).Error
}
