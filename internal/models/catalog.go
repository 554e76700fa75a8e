package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Location 门店/销售点
type Location struct {
	ID        string    `gorm:"primarykey" json:"id"`                   // 门店标识
	Name      string    `gorm:"not null" json:"name"`                   // 门店名称
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"` // 是否启用
	CreatedAt time.Time `json:"created_at"`                             // 创建时间
	UpdatedAt time.Time `json:"updated_at"`                             // 更新时间
}

// TableName 指定表名
func (Location) TableName() string {
	return "locations"
}

// Product 商品表
type Product struct {
	ID        uint            `gorm:"primarykey" json:"id"`                                          // 主键
	Name      string          `gorm:"not null;index" json:"name"`                                    // 商品名称
	Barcode   string          `gorm:"uniqueIndex;not null" json:"barcode"`                           // 条码
	Kind      string          `gorm:"type:varchar(20);not null;default:'stock_record'" json:"kind"`  // 商品类型（stock_record/control_stock/manual）
	UnitPrice Money           `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"`       // 含税单价
	ListPrice Money           `gorm:"type:decimal(20,2);not null;default:0" json:"list_price"`       // 标价
	TaxRate   decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"tax_rate"`          // 税率（百分比）
	IsActive  bool            `gorm:"default:true;index" json:"is_active"`                           // 是否在售
	CreatedAt time.Time       `gorm:"index" json:"created_at"`                                       // 创建时间
	UpdatedAt time.Time       `json:"updated_at"`                                                    // 更新时间
	DeletedAt gorm.DeletedAt  `gorm:"index" json:"-"`                                                // 软删除时间

	Variants []ProductVariant `gorm:"foreignKey:ProductID" json:"variants,omitempty"` // 规格列表
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}

// ProductVariant 商品规格
type ProductVariant struct {
	ID        uint      `gorm:"primarykey" json:"id"`              // 主键
	ProductID uint      `gorm:"not null;index" json:"product_id"`  // 商品ID
	Label     string    `gorm:"not null" json:"label"`             // 规格名称
	Barcode   string    `gorm:"index" json:"barcode"`              // 规格条码
	IsActive  bool      `gorm:"default:true" json:"is_active"`     // 是否启用
	CreatedAt time.Time `json:"created_at"`                        // 创建时间
	UpdatedAt time.Time `json:"updated_at"`                        // 更新时间
}

// TableName 指定表名
func (ProductVariant) TableName() string {
	return "product_variants"
}

// StockRecord 门店库存记录（商品/规格在单一门店的存量）
type StockRecord struct {
	ID         uint      `gorm:"primarykey" json:"id"`                                         // 主键
	ProductID  uint      `gorm:"not null;uniqueIndex:idx_stock_product_variant_location" json:"product_id"` // 商品ID
	VariantID  uint      `gorm:"uniqueIndex:idx_stock_product_variant_location" json:"variant_id"`          // 规格ID（0 表示无规格）
	LocationID string    `gorm:"not null;uniqueIndex:idx_stock_product_variant_location;index" json:"location_id"` // 门店ID
	Quantity   int       `gorm:"not null;default:0" json:"quantity"`                           // 可售数量
	CreatedAt  time.Time `json:"created_at"`                                                   // 创建时间
	UpdatedAt  time.Time `json:"updated_at"`                                                   // 更新时间

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"` // 关联商品
}

// TableName 指定表名
func (StockRecord) TableName() string {
	return "stock_records"
}

// ControlStockUnit 序列化库存单件（串号唯一、不可按数量合并）
type ControlStockUnit struct {
	ID            uint      `gorm:"primarykey" json:"id"`                      // 主键
	SerialID      string    `gorm:"uniqueIndex;not null" json:"serial_id"`     // 串号
	StockRecordID uint      `gorm:"not null;index" json:"stock_record_id"`     // 库存记录ID
	LocationID    string    `gorm:"not null;index" json:"location_id"`         // 门店ID
	IsSold        bool      `gorm:"not null;default:false" json:"is_sold"`     // 是否已售出
	CreatedAt     time.Time `json:"created_at"`                                // 创建时间
	UpdatedAt     time.Time `json:"updated_at"`                                // 更新时间
}

// TableName 指定表名
func (ControlStockUnit) TableName() string {
	return "control_stock_units"
}
