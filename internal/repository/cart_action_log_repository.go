package repository

import (
	"github.com/caja-pos/internal/models"

	"gorm.io/gorm"
)

// CartActionLogRepository 购物车动作审计数据访问接口
type CartActionLogRepository interface {
	Append(log *models.CartActionLog) error
	ListRecent(locationID string, limit int) ([]models.CartActionLog, error)
}

// GormCartActionLogRepository GORM 实现
type GormCartActionLogRepository struct {
	db *gorm.DB
}

// NewCartActionLogRepository 创建动作审计仓库
func NewCartActionLogRepository(db *gorm.DB) *GormCartActionLogRepository {
	return &GormCartActionLogRepository{db: db}
}

// Append 追加动作记录
func (r *GormCartActionLogRepository) Append(log *models.CartActionLog) error {
	return r.db.Create(log).Error
}

// ListRecent 按时间倒序列出门店最近动作
func (r *GormCartActionLogRepository) ListRecent(locationID string, limit int) ([]models.CartActionLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var logs []models.CartActionLog
	err := r.db.Where("location_id = ?", locationID).
		Order("id desc").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}
