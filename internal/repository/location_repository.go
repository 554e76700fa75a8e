package repository

import (
	"errors"

	"github.com/caja-pos/internal/models"

	"gorm.io/gorm"
)

// LocationRepository 门店数据访问接口
type LocationRepository interface {
	GetByID(id string) (*models.Location, error)
	ListActive() ([]models.Location, error)
	Create(location *models.Location) error
}

// GormLocationRepository GORM 实现
type GormLocationRepository struct {
	db *gorm.DB
}

// NewLocationRepository 创建门店仓库
func NewLocationRepository(db *gorm.DB) *GormLocationRepository {
	return &GormLocationRepository{db: db}
}

// GetByID 按ID获取门店
func (r *GormLocationRepository) GetByID(id string) (*models.Location, error) {
	var location models.Location
	if err := r.db.Where("id = ?", id).First(&location).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &location, nil
}

// ListActive 列出启用门店
func (r *GormLocationRepository) ListActive() ([]models.Location, error) {
	var locations []models.Location
	if err := r.db.Where("is_active = ?", true).Order("id asc").Find(&locations).Error; err != nil {
		return nil, err
	}
	return locations, nil
}

// Create 创建门店
func (r *GormLocationRepository) Create(location *models.Location) error {
	return r.db.Create(location).Error
}
