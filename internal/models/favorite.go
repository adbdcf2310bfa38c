package models

import (
	"fmt"
	"time"
)

// TargetType 收藏对象类型
type TargetType string

const (
	TargetHotel TargetType = "hotel"
	TargetRoom  TargetType = "room"
)

// TargetRef 指向酒店或房间的引用
type TargetRef struct {
	Type TargetType `json:"type"`
	ID   int64      `json:"id"`
}

// HotelRef 酒店引用
func HotelRef(id int64) TargetRef {
	return TargetRef{Type: TargetHotel, ID: id}
}

// RoomRef 房间引用
func RoomRef(id int64) TargetRef {
	return TargetRef{Type: TargetRoom, ID: id}
}

// ParseTargetRef 校验并构造引用
func ParseTargetRef(typ string, id int64) (TargetRef, error) {
	if id <= 0 {
		return TargetRef{}, fmt.Errorf("invalid target id %d", id)
	}
	switch TargetType(typ) {
	case TargetHotel:
		return HotelRef(id), nil
	case TargetRoom:
		return RoomRef(id), nil
	default:
		return TargetRef{}, fmt.Errorf("unknown target type %q", typ)
	}
}

// String 便于日志输出，例如 room:12
func (r TargetRef) String() string {
	return fmt.Sprintf("%s:%d", r.Type, r.ID)
}

// Favorite 用户收藏
type Favorite struct {
	ID         int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     int64      `gorm:"uniqueIndex:uk_favorites_user_target;not null" json:"user_id"`
	TargetType TargetType `gorm:"type:varchar(20);uniqueIndex:uk_favorites_user_target;index:idx_favorites_target;not null" json:"target_type"`
	TargetID   int64      `gorm:"uniqueIndex:uk_favorites_user_target;index:idx_favorites_target;not null" json:"target_id"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

// TableName 表名
func (Favorite) TableName() string {
	return "favorites"
}

// Target 返回收藏对象引用
func (f *Favorite) Target() TargetRef {
	return TargetRef{Type: f.TargetType, ID: f.TargetID}
}
