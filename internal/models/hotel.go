package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Hotel 酒店模型
type Hotel struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OwnerID     int64     `gorm:"index;not null" json:"owner_id"`
	Name        string    `gorm:"type:varchar(150);not null" json:"name"`
	City        string    `gorm:"type:varchar(100);not null" json:"city"`
	Address     string    `gorm:"type:varchar(255);not null" json:"address"`
	Description *string   `gorm:"type:text" json:"description,omitempty"`
	IsActive    bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// 关联
	Owner *User  `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Rooms []Room `gorm:"foreignKey:HotelID" json:"rooms,omitempty"`
}

// TableName 表名
func (Hotel) TableName() string {
	return "hotels"
}

// Room 房间模型
type Room struct {
	ID            int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	HotelID       int64           `gorm:"index;not null" json:"hotel_id"`
	Name          string          `gorm:"type:varchar(100);not null" json:"name"`
	Type          string          `gorm:"type:varchar(50);not null" json:"type"`
	PricePerNight decimal.Decimal `gorm:"type:numeric(18,6);not null" json:"price_per_night"`
	MaxGuests     int             `gorm:"not null;default:2" json:"max_guests"`
	IsAvailable   bool            `gorm:"not null;default:true" json:"is_available"`
	IsActive      bool            `gorm:"not null;default:true" json:"is_active"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	// 关联
	Hotel *Hotel `gorm:"foreignKey:HotelID" json:"hotel,omitempty"`
}

// TableName 表名
func (Room) TableName() string {
	return "rooms"
}

// RoomType 房型
const (
	RoomTypeSingle = "single"
	RoomTypeDouble = "double"
	RoomTypeSuite  = "suite"
	RoomTypeFamily = "family"
)

// Bookable 房间是否开放预订（不考虑日期占用）
func (r *Room) Bookable() bool {
	return r.IsAvailable && r.IsActive
}
