package models

import (
	"time"
)

// User 用户模型
// 认证由外部完成，这里只保存归属判断和通知所需的信息
type User struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	Email     string    `gorm:"type:varchar(191);uniqueIndex;not null" json:"email"`
	Role      string    `gorm:"type:varchar(20);not null;default:'user'" json:"role"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 表名
func (User) TableName() string {
	return "users"
}

// 用户角色
const (
	RoleUser       = "user"
	RoleHotelOwner = "hotel_owner"
	RoleAdmin      = "admin"
)

// IsAdmin 是否管理员
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Actor 当前操作人，由认证层解析后传入业务层
type Actor struct {
	UserID int64
	Role   string
}

// IsAdmin 是否管理员
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// IsHotelOwner 是否酒店业主角色
func (a Actor) IsHotelOwner() bool {
	return a.Role == RoleHotelOwner
}
