package models

// SessionRecord 终端会话键值表（门店作用域的持久化适配层）
type SessionRecord struct {
	Key       string  `gorm:"primarykey" json:"key"`  // 存储键（{domain}_{locationID}）
	ValueJSON RawJSON `gorm:"type:json" json:"value"` // 存储值（原始 JSON）
}

// TableName 指定表名
func (SessionRecord) TableName() string {
	return "session_records"
}
