package model

import (
	"time"

	"github.com/d60-Lab/blog-rbac/internal/auth"
)

// User 用户。Role 以字符串落库，读取边界用 auth.ParseRole 收敛成闭合枚举。
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Username  string    `json:"username" gorm:"type:varchar(64);uniqueIndex;not null"`
	Email     string    `json:"email" gorm:"type:varchar(128);uniqueIndex;not null"`
	Password  string    `json:"-" gorm:"type:varchar(128);not null"` // bcrypt 哈希
	Role      auth.Role `json:"role" gorm:"type:varchar(16);not null;default:viewer"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }
