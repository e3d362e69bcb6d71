package models

import (
	"fmt"
	"time"
)

type Role struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"role_id"`
	Name        string    `gorm:"not null"                 json:"name"`
	Key         string    `gorm:"unique;not null"          json:"key"`
	Description string    `gorm:"not null"                 json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type Permission struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"permission_id"`
	Name        string    `gorm:"not null"                 json:"name"`
	Key         string    `gorm:"unique;not null"          json:"key"`
	Description string    `gorm:"not null"                 json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// RolePermission links a role to a permission. The (role, permission)
// pair is unique, assigning the same permission twice fails.
type RolePermission struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"                 json:"role_permission_id"`
	RoleID       uint      `gorm:"not null;uniqueIndex:idx_role_permission" json:"role_id"`
	PermissionID uint      `gorm:"not null;uniqueIndex:idx_role_permission" json:"permission_id"`
	CreatedAt    time.Time `json:"created_at"`
}

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"user_id"`
	Username     string    `gorm:"unique;not null"          json:"username"`
	Email        string    `gorm:"unique;not null"          json:"email"`
	PasswordHash string    `gorm:"not null"                 json:"-"`
	RoleID       uint      `gorm:"index;not null"           json:"role_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// AuthToken is one issued access/refresh pair. A user may own several
// rows at once (one per device/session).
type AuthToken struct {
	ID               uint      `gorm:"primaryKey;autoIncrement" json:"token_id"`
	UserID           uint      `gorm:"index;not null"           json:"user_id"`
	AccessToken      string    `gorm:"type:text;not null"       json:"-"`
	AccessExpiresAt  time.Time `gorm:"not null"                 json:"access_expires_at"`
	RefreshToken     string    `gorm:"type:text;not null;index" json:"-"`
	RefreshExpiresAt time.Time `gorm:"not null"                 json:"refresh_expires_at"`
	CreatedAt        time.Time `json:"created_at"`
}

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusInProcess OrderStatus = "in_process"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Valid reports whether s is one of the closed set of order states.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusInProcess, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

func ParseOrderStatus(raw string) (OrderStatus, error) {
	s := OrderStatus(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown order status %q", raw)
	}
	return s, nil
}

type Order struct {
	ID          uint        `gorm:"primaryKey;autoIncrement" json:"order_id"`
	OrderCode   string      `gorm:"unique;not null"          json:"order_code"`
	UserID      uint        `gorm:"index;not null"           json:"user_id"`
	OrderDate   time.Time   `json:"order_date"`
	TotalAmount float64     `gorm:"not null"                 json:"total_amount"`
	Status      OrderStatus `gorm:"not null"                 json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}
