package repository

import (
	"errors"
	"strings"

	"github.com/caja-pos/internal/models"

	"gorm.io/gorm"
)

// ProductRepository 商品目录数据访问接口
type ProductRepository interface {
	Search(query string, limit int) ([]models.Product, error)
	GetByID(id uint) (*models.Product, error)
	GetByBarcode(barcode string) (*models.Product, error)
	StockByProduct(productID uint) ([]models.StockRecord, error)
	StockForLocation(productID, variantID uint, locationID string) (*models.StockRecord, error)
	StockRecordByID(id uint) (*models.StockRecord, error)
	ControlUnitBySerial(serial string) (*models.ControlStockUnit, error)
	Create(product *models.Product) error
}

// GormProductRepository GORM 实现
type GormProductRepository struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓库
func NewProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// Search 按条码精确或名称模糊检索在售商品
func (r *GormProductRepository) Search(query string, limit int) ([]models.Product, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return []models.Product{}, nil
	}
	if limit <= 0 {
		limit = 20
	}

	var products []models.Product
	err := r.db.Preload("Variants").
		Where("is_active = ?", true).
		Where("barcode = ? OR name LIKE ?", trimmed, "%"+trimmed+"%").
		Order("name asc").
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

// GetByID 按ID获取商品
func (r *GormProductRepository) GetByID(id uint) (*models.Product, error) {
	var product models.Product
	if err := r.db.Preload("Variants").First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// GetByBarcode 按条码获取商品
func (r *GormProductRepository) GetByBarcode(barcode string) (*models.Product, error) {
	var product models.Product
	if err := r.db.Preload("Variants").Where("barcode = ?", strings.TrimSpace(barcode)).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// StockByProduct 获取商品在所有门店的库存快照
func (r *GormProductRepository) StockByProduct(productID uint) ([]models.StockRecord, error) {
	var records []models.StockRecord
	if err := r.db.Where("product_id = ?", productID).Order("location_id asc").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// StockForLocation 获取商品在指定门店的库存记录（不存在时返回 nil）
func (r *GormProductRepository) StockForLocation(productID, variantID uint, locationID string) (*models.StockRecord, error) {
	var record models.StockRecord
	err := r.db.Where("product_id = ? AND variant_id = ? AND location_id = ?", productID, variantID, locationID).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// StockRecordByID 按ID获取库存记录（带关联商品，不存在时返回 nil）
func (r *GormProductRepository) StockRecordByID(id uint) (*models.StockRecord, error) {
	var record models.StockRecord
	if err := r.db.Preload("Product.Variants").First(&record, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// ControlUnitBySerial 按串号获取序列化库存单件
func (r *GormProductRepository) ControlUnitBySerial(serial string) (*models.ControlStockUnit, error) {
	var unit models.ControlStockUnit
	if err := r.db.Where("serial_id = ?", strings.TrimSpace(serial)).First(&unit).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &unit, nil
}

// Create 创建商品
func (r *GormProductRepository) Create(product *models.Product) error {
	return r.db.Create(product).Error
}
