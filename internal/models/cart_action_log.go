package models

import "time"

// CartActionLog 购物车动作审计（供观察方消费，仅追加）
type CartActionLog struct {
	ID          uint      `gorm:"primarykey" json:"id"`                   // 主键
	LocationID  string    `gorm:"not null;index" json:"location_id"`      // 门店ID
	IdentityKey string    `gorm:"not null;index" json:"identity_key"`     // 行标识
	Action      string    `gorm:"type:varchar(20);not null" json:"action"` // 动作（add/decrease/remove/...）
	CreatedAt   time.Time `gorm:"index" json:"created_at"`                // 发生时间
}

// TableName 指定表名
func (CartActionLog) TableName() string {
	return "cart_action_logs"
}
