package repository

import (
	"errors"

	"github.com/caja-pos/internal/models"

	"gorm.io/gorm"
)

// SessionRepository 门店会话键值存储接口（读/写/删，无业务逻辑）
type SessionRepository interface {
	GetByKey(key string) (*models.SessionRecord, error)
	Upsert(key string, value models.RawJSON) (*models.SessionRecord, error)
	DeleteByKey(key string) error
}

// GormSessionRepository GORM 实现
type GormSessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository 创建会话存储仓库
func NewSessionRepository(db *gorm.DB) *GormSessionRepository {
	return &GormSessionRepository{db: db}
}

// GetByKey 读取键值（不存在时返回 nil）
func (r *GormSessionRepository) GetByKey(key string) (*models.SessionRecord, error) {
	var record models.SessionRecord
	if err := r.db.Where("key = ?", key).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// Upsert 写入键值
func (r *GormSessionRepository) Upsert(key string, value models.RawJSON) (*models.SessionRecord, error) {
	record, err := r.GetByKey(key)
	if err != nil {
		return nil, err
	}
	if record == nil {
		record = &models.SessionRecord{
			Key:       key,
			ValueJSON: value,
		}
		if err := r.db.Create(record).Error; err != nil {
			return nil, err
		}
		return record, nil
	}

	record.ValueJSON = value
	if err := r.db.Save(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

// DeleteByKey 删除键（键不存在时为空操作）
func (r *GormSessionRepository) DeleteByKey(key string) error {
	return r.db.Where("key = ?", key).Delete(&models.SessionRecord{}).Error
}
