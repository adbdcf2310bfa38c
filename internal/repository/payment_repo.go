package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dumeirei/hotel-booking-backend/internal/models"
)

// PaymentRepository 支付仓储
type PaymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository 创建支付仓储
func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// GetByID 根据 ID 获取支付记录
func (r *PaymentRepository) GetByID(ctx context.Context, id int64) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).First(&payment, id).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// GetByBookingID 根据预订 ID 获取支付记录
func (r *PaymentRepository) GetByBookingID(ctx context.Context, tx *gorm.DB, bookingID int64) (*models.Payment, error) {
	var payment models.Payment
	err := conn(r.db, tx).WithContext(ctx).Where("booking_id = ?", bookingID).First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// GetByIntentID 根据支付意图 ID 获取支付记录
func (r *PaymentRepository) GetByIntentID(ctx context.Context, intentID string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).Where("payment_intent_id = ?", intentID).First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// GetByIntentIDForUpdate 根据支付意图 ID 获取支付记录（加锁）
func (r *PaymentRepository) GetByIntentIDForUpdate(ctx context.Context, tx *gorm.DB, intentID string) (*models.Payment, error) {
	var payment models.Payment
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("payment_intent_id = ?", intentID).
		First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// GetForUpdate 根据 ID 获取支付记录（加锁）
func (r *PaymentRepository) GetForUpdate(ctx context.Context, tx *gorm.DB, id int64) (*models.Payment, error) {
	var payment models.Payment
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&payment, id).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// FirstOrCreateForBooking 按预订查找支付记录，不存在则以 attrs 创建
// 返回的 created 表示本次是否新建
func (r *PaymentRepository) FirstOrCreateForBooking(ctx context.Context, tx *gorm.DB, attrs *models.Payment) (*models.Payment, bool, error) {
	db := conn(r.db, tx).WithContext(ctx)

	var payment models.Payment
	err := db.Where("booking_id = ?", attrs.BookingID).First(&payment).Error
	if err == nil {
		return &payment, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	payment = *attrs
	if err := db.Create(&payment).Error; err != nil {
		return nil, false, err
	}
	return &payment, true, nil
}

// UpdateFields 更新指定字段
func (r *PaymentRepository) UpdateFields(ctx context.Context, tx *gorm.DB, id int64, fields map[string]interface{}) error {
	return conn(r.db, tx).WithContext(ctx).Model(&models.Payment{}).Where("id = ?", id).Updates(fields).Error
}

// ListPendingRefunds 获取有待退款金额的支付记录
func (r *PaymentRepository) ListPendingRefunds(ctx context.Context, limit int) ([]*models.Payment, error) {
	var payments []*models.Payment
	err := r.db.WithContext(ctx).
		Where("status = ?", models.PaymentStatusSucceeded).
		Where("refund_due > 0").
		Order("id").
		Limit(limit).
		Find(&payments).Error
	return payments, err
}
