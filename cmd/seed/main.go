package main

import (
	"github.com/caja-pos/internal/config"
	"github.com/caja-pos/internal/constants"
	"github.com/caja-pos/internal/logger"
	"github.com/caja-pos/internal/models"

	"github.com/shopspring/decimal"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 默认操作员
	if err := models.InitDefaultOperator("", ""); err != nil {
		stdLog.Printf("Failed to init default operator: %v", err)
	}

	// 门店
	locations := []models.Location{
		{ID: "1", Name: "Tienda Centro", IsActive: true},
		{ID: "2", Name: "Tienda Norte", IsActive: true},
	}
	for _, loc := range locations {
		var existing models.Location
		if err := models.DB.Where("id = ?", loc.ID).First(&existing).Error; err != nil {
			if err := models.DB.Create(&loc).Error; err != nil {
				stdLog.Printf("Failed to create location %s: %v", loc.ID, err)
			} else {
				stdLog.Printf("Created location: %s (%s)", loc.ID, loc.Name)
			}
		} else {
			stdLog.Printf("Location already exists: %s", loc.ID)
		}
	}

	// 商品
	products := []models.Product{
		{
			Name:      "Camiseta básica",
			Barcode:   "7501001001001",
			Kind:      constants.ProductKindStockRecord,
			UnitPrice: models.NewMoneyFromDecimal(decimal.NewFromFloat(19.90)),
			ListPrice: models.NewMoneyFromDecimal(decimal.NewFromFloat(24.90)),
			TaxRate:   decimal.NewFromInt(21),
			IsActive:  true,
			Variants: []models.ProductVariant{
				{Label: "S", Barcode: "7501001001001-S", IsActive: true},
				{Label: "M", Barcode: "7501001001001-M", IsActive: true},
				{Label: "L", Barcode: "7501001001001-L", IsActive: true},
			},
		},
		{
			Name:      "Smartphone X200",
			Barcode:   "7501001002002",
			Kind:      constants.ProductKindControlStock,
			UnitPrice: models.NewMoneyFromDecimal(decimal.NewFromFloat(399.00)),
			ListPrice: models.NewMoneyFromDecimal(decimal.NewFromFloat(449.00)),
			TaxRate:   decimal.NewFromInt(21),
			IsActive:  true,
		},
		{
			Name:      "Bolsa reutilizable",
			Barcode:   "7501001003003",
			Kind:      constants.ProductKindStockRecord,
			UnitPrice: models.NewMoneyFromDecimal(decimal.NewFromFloat(0.50)),
			ListPrice: models.NewMoneyFromDecimal(decimal.NewFromFloat(0.50)),
			TaxRate:   decimal.NewFromInt(10),
			IsActive:  true,
		},
	}
	for i := range products {
		var existing models.Product
		if err := models.DB.Where("barcode = ?", products[i].Barcode).First(&existing).Error; err != nil {
			if err := models.DB.Create(&products[i]).Error; err != nil {
				stdLog.Printf("Failed to create product %s: %v", products[i].Barcode, err)
				continue
			}
			stdLog.Printf("Created product: %s", products[i].Name)
		} else {
			products[i] = existing
			stdLog.Printf("Product already exists: %s", existing.Name)
		}
	}

	// 库存记录
	seedStock := func(productID, variantID uint, locationID string, quantity int) uint {
		var existing models.StockRecord
		err := models.DB.Where("product_id = ? AND variant_id = ? AND location_id = ?", productID, variantID, locationID).
			First(&existing).Error
		if err == nil {
			return existing.ID
		}
		record := models.StockRecord{
			ProductID:  productID,
			VariantID:  variantID,
			LocationID: locationID,
			Quantity:   quantity,
		}
		if err := models.DB.Create(&record).Error; err != nil {
			stdLog.Printf("Failed to create stock record: %v", err)
			return 0
		}
		return record.ID
	}

	if products[0].ID != 0 {
		for _, v := range products[0].Variants {
			seedStock(products[0].ID, v.ID, "1", 25)
			seedStock(products[0].ID, v.ID, "2", 10)
		}
	}
	if products[2].ID != 0 {
		seedStock(products[2].ID, 0, "1", 500)
		seedStock(products[2].ID, 0, "2", 500)
	}

	// 序列化库存单件
	if products[1].ID != 0 {
		stockID := seedStock(products[1].ID, 0, "1", 2)
		serials := []string{"SN-X200-0001", "SN-X200-0002"}
		for _, serial := range serials {
			var existing models.ControlStockUnit
			if err := models.DB.Where("serial_id = ?", serial).First(&existing).Error; err != nil {
				unit := models.ControlStockUnit{
					SerialID:      serial,
					StockRecordID: stockID,
					LocationID:    "1",
				}
				if err := models.DB.Create(&unit).Error; err != nil {
					stdLog.Printf("Failed to create control stock unit %s: %v", serial, err)
				} else {
					stdLog.Printf("Created control stock unit: %s", serial)
				}
			} else {
				stdLog.Printf("Control stock unit already exists: %s", serial)
			}
		}
	}

	stdLog.Printf("Seed finished")
}
