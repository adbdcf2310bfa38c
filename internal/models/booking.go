package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Booking 预订模型
// 金额字段保存未舍入的完整精度，仅在展示时保留两位小数
type Booking struct {
	ID              int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	BookingNo       string          `gorm:"type:varchar(64);uniqueIndex;not null" json:"booking_no"`
	UserID          int64           `gorm:"index;not null" json:"user_id"`
	RoomID          int64           `gorm:"index:idx_bookings_room_dates;not null" json:"room_id"`
	HotelID         int64           `gorm:"index;not null" json:"hotel_id"`
	CheckInDate     time.Time       `gorm:"type:date;index:idx_bookings_room_dates;not null" json:"check_in_date"`
	CheckOutDate    time.Time       `gorm:"type:date;index:idx_bookings_room_dates;not null" json:"check_out_date"`
	TotalNights     int             `gorm:"not null" json:"total_nights"`
	GuestName       string          `gorm:"type:varchar(100);not null" json:"guest_name"`
	GuestEmail      string          `gorm:"type:varchar(191);not null" json:"guest_email"`
	GuestPhone      string          `gorm:"type:varchar(32);not null" json:"guest_phone"`
	GuestsCount     int             `gorm:"not null;default:1" json:"guests_count"`
	RoomsCount      int             `gorm:"not null;default:1" json:"rooms_count"`
	GuestsDetails   datatypes.JSON  `json:"guests_details,omitempty"`
	SpecialRequests *string         `gorm:"type:text" json:"special_requests,omitempty"`
	PricePerNight   decimal.Decimal `gorm:"type:numeric(18,6);not null" json:"price_per_night"`
	Subtotal        decimal.Decimal `gorm:"type:numeric(18,6);not null" json:"subtotal"`
	ServiceFee      decimal.Decimal `gorm:"type:numeric(18,6);not null" json:"service_fee"`
	Taxes           decimal.Decimal `gorm:"type:numeric(18,6);not null" json:"taxes"`
	TotalAmount     decimal.Decimal `gorm:"type:numeric(18,6);not null" json:"total_amount"`
	Status          string          `gorm:"type:varchar(20);index;not null;default:'pending'" json:"status"`
	CancelledAt     *time.Time      `json:"cancelled_at,omitempty"`
	CancelledBy     *int64          `json:"cancelled_by,omitempty"`
	CancelReason    *string         `gorm:"type:varchar(255)" json:"cancel_reason,omitempty"`
	CompletedAt     *time.Time      `json:"completed_at,omitempty"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	// 关联
	User    *User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Room    *Room    `gorm:"foreignKey:RoomID" json:"room,omitempty"`
	Hotel   *Hotel   `gorm:"foreignKey:HotelID" json:"hotel,omitempty"`
	Payment *Payment `gorm:"foreignKey:BookingID" json:"payment,omitempty"`
}

// TableName 表名
func (Booking) TableName() string {
	return "bookings"
}

// BookingStatus 预订状态
const (
	BookingStatusPending   = "pending"   // 待支付
	BookingStatusConfirmed = "confirmed" // 已确认
	BookingStatusCancelled = "cancelled" // 已取消
	BookingStatusCompleted = "completed" // 已完成
)

// OccupyingStatuses 占用房间日期的预订状态
var OccupyingStatuses = []string{BookingStatusPending, BookingStatusConfirmed}

// bookingTransitions 合法的状态流转
var bookingTransitions = map[string][]string{
	BookingStatusPending:   {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed: {BookingStatusCompleted, BookingStatusCancelled},
}

// CanTransitionTo 判断能否流转到目标状态
func (b *Booking) CanTransitionTo(next string) bool {
	for _, s := range bookingTransitions[b.Status] {
		if s == next {
			return true
		}
	}
	return false
}

// IsCancellableAt 判断在 today 这一天能否取消：状态允许且入住日期严格晚于今天
func (b *Booking) IsCancellableAt(today time.Time) bool {
	return b.CanTransitionTo(BookingStatusCancelled) && b.CheckInDate.After(today)
}

// Overlaps 半开区间 [in, out) 是否与本预订重叠
func (b *Booking) Overlaps(checkIn, checkOut time.Time) bool {
	return b.CheckInDate.Before(checkOut) && b.CheckOutDate.After(checkIn)
}
