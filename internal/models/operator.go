package models

import (
	"time"

	"gorm.io/gorm"
)

// Operator 收银操作员
type Operator struct {
	ID           uint           `gorm:"primarykey" json:"id"`                   // 主键
	Username     string         `gorm:"uniqueIndex;not null" json:"username"`   // 登录名
	PasswordHash string         `gorm:"not null" json:"-"`                      // 密码哈希
	DisplayName  string         `json:"display_name"`                           // 显示名称
	IsActive     bool           `gorm:"not null;default:true" json:"is_active"` // 是否启用
	CreatedAt    time.Time      `json:"created_at"`                             // 创建时间
	UpdatedAt    time.Time      `json:"updated_at"`                             // 更新时间
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`                         // 软删除时间
}

// TableName 指定表名
func (Operator) TableName() string {
	return "operators"
}
