package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dumeirei/hotel-booking-backend/internal/common/database"
	"github.com/dumeirei/hotel-booking-backend/internal/models"
)

// 列表范围
const (
	ScopeUpcoming = "upcoming"
	ScopePast     = "past"
)

// BookingFilter 预订列表过滤条件
type BookingFilter struct {
	UserID  int64
	HotelID int64
	Status  string
	Scope   string    // upcoming, past
	Today   time.Time // Scope 计算基准
}

// BookingRepository 预订仓储
type BookingRepository struct {
	db *gorm.DB
}

// NewBookingRepository 创建预订仓储
func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Create 创建预订
func (r *BookingRepository) Create(ctx context.Context, tx *gorm.DB, booking *models.Booking) error {
	return conn(r.db, tx).WithContext(ctx).Create(booking).Error
}

// GetByID 根据 ID 获取预订
func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).First(&booking, id).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// GetByIDWithDetails 根据 ID 获取预订（包含房间、酒店、支付）
func (r *BookingRepository) GetByIDWithDetails(ctx context.Context, id int64) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Hotel").
		Preload("Room").
		Preload("Payment").
		First(&booking, id).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// GetForUpdate 获取预订（加锁）
func (r *BookingRepository) GetForUpdate(ctx context.Context, tx *gorm.DB, id int64) (*models.Booking, error) {
	var booking models.Booking
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&booking, id).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// GetByBookingNo 根据预订号获取预订
func (r *BookingRepository) GetByBookingNo(ctx context.Context, bookingNo string) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).Where("booking_no = ?", bookingNo).First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// FindOverlapping 查询与 [checkIn, checkOut) 重叠且仍占用房间的预订
func (r *BookingRepository) FindOverlapping(ctx context.Context, tx *gorm.DB, roomID int64, checkIn, checkOut time.Time) ([]*models.Booking, error) {
	var bookings []*models.Booking
	err := conn(r.db, tx).WithContext(ctx).
		Where("room_id = ?", roomID).
		Where("status IN ?", models.OccupyingStatuses).
		Where("check_in_date < ? AND check_out_date > ?", checkOut, checkIn).
		Order("check_in_date").
		Find(&bookings).Error
	return bookings, err
}

// UpdateFields 更新指定字段
func (r *BookingRepository) UpdateFields(ctx context.Context, tx *gorm.DB, id int64, fields map[string]interface{}) error {
	return conn(r.db, tx).WithContext(ctx).Model(&models.Booking{}).Where("id = ?", id).Updates(fields).Error
}

// TransitionStatus 仅当当前状态为 from 时更新为 to，返回是否更新成功
func (r *BookingRepository) TransitionStatus(ctx context.Context, tx *gorm.DB, id int64, from, to string, fields map[string]interface{}) (bool, error) {
	updates := map[string]interface{}{"status": to}
	for k, v := range fields {
		updates[k] = v
	}
	result := conn(r.db, tx).WithContext(ctx).Model(&models.Booking{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	return result.RowsAffected > 0, result.Error
}

// List 获取预订列表，按入住日期倒序
func (r *BookingRepository) List(ctx context.Context, page, pageSize int, filter BookingFilter) ([]*models.Booking, int64, error) {
	var bookings []*models.Booking
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Booking{}).Scopes(filter.apply)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.
		Preload("Hotel").
		Preload("Room").
		Order("check_in_date DESC").
		Order("id DESC").
		Scopes(database.Paginate(page, pageSize)).
		Find(&bookings).Error; err != nil {
		return nil, 0, err
	}

	return bookings, total, nil
}

// apply 过滤条件作用域
// past 的两个条件必须加括号，否则 OR 会绕过 user_id 限制
func (f BookingFilter) apply(db *gorm.DB) *gorm.DB {
	if f.UserID > 0 {
		db = db.Where("user_id = ?", f.UserID)
	}
	if f.HotelID > 0 {
		db = db.Where("hotel_id = ?", f.HotelID)
	}
	if f.Status != "" {
		db = db.Where("status = ?", f.Status)
	}
	switch f.Scope {
	case ScopeUpcoming:
		db = db.Where("check_in_date >= ?", f.Today).Where("status IN ?", models.OccupyingStatuses)
	case ScopePast:
		db = db.Where("(check_out_date < ? OR status = ?)", f.Today, models.BookingStatusCompleted)
	}
	return db
}

// ListFinished 获取已离店但尚未标记完成的预订
func (r *BookingRepository) ListFinished(ctx context.Context, today time.Time, limit int) ([]*models.Booking, error) {
	var bookings []*models.Booking
	err := r.db.WithContext(ctx).
		Where("status = ?", models.BookingStatusConfirmed).
		Where("check_out_date <= ?", today).
		Order("id").
		Limit(limit).
		Find(&bookings).Error
	return bookings, err
}
