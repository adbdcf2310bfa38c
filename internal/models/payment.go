package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment 支付记录，与预订一一对应
type Payment struct {
	ID               int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	BookingID        int64           `gorm:"uniqueIndex;not null" json:"booking_id"`
	UserID           int64           `gorm:"index;not null" json:"user_id"`
	PaymentIntentID  *string         `gorm:"type:varchar(255);uniqueIndex" json:"payment_intent_id,omitempty"`
	ChargeID         *string         `gorm:"type:varchar(255)" json:"charge_id,omitempty"`
	Amount           decimal.Decimal `gorm:"type:numeric(18,6);not null" json:"amount"`
	Currency         string          `gorm:"type:varchar(3);not null;default:'usd'" json:"currency"`
	PaymentMethod    string          `gorm:"type:varchar(20);not null;default:'card'" json:"payment_method"`
	Status           string          `gorm:"type:varchar(20);index;not null;default:'pending'" json:"status"`
	CardLast4        *string         `gorm:"type:varchar(4)" json:"card_last4,omitempty"`
	CardBrand        *string         `gorm:"type:varchar(32)" json:"card_brand,omitempty"`
	RefundedAmount   decimal.Decimal `gorm:"type:numeric(18,6);not null;default:0" json:"refunded_amount"`
	RefundDue        decimal.Decimal `gorm:"type:numeric(18,6);not null;default:0" json:"refund_due"`
	ProviderRefundID *string         `gorm:"type:varchar(255)" json:"provider_refund_id,omitempty"`
	FailureMessage   *string         `gorm:"type:varchar(500)" json:"failure_message,omitempty"`
	PaidAt           *time.Time      `json:"paid_at,omitempty"`
	RefundedAt       *time.Time      `json:"refunded_at,omitempty"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	// 关联
	Booking *Booking `gorm:"foreignKey:BookingID" json:"booking,omitempty"`
}

// TableName 表名
func (Payment) TableName() string {
	return "payments"
}

// PaymentStatus 支付状态
const (
	PaymentStatusPending   = "pending"
	PaymentStatusSucceeded = "succeeded"
	PaymentStatusFailed    = "failed"
	PaymentStatusRefunded  = "refunded"
)

// PaymentMethodCard 银行卡支付
const PaymentMethodCard = "card"

// IsSucceeded 是否已支付成功
func (p *Payment) IsSucceeded() bool {
	return p.Status == PaymentStatusSucceeded
}

// IntentID 返回支付意图ID，未创建时为空串
func (p *Payment) IntentID() string {
	if p.PaymentIntentID == nil {
		return ""
	}
	return *p.PaymentIntentID
}
