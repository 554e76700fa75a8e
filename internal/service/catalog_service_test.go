package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/caja-pos/internal/constants"
	"github.com/caja-pos/internal/models"
	"github.com/caja-pos/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupCatalogServiceTest(t *testing.T) (*CatalogService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:catalog_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Location{},
		&models.Product{},
		&models.ProductVariant{},
		&models.StockRecord{},
		&models.ControlStockUnit{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	svc := NewCatalogService(repository.NewProductRepository(db), repository.NewLocationRepository(db))
	return svc, db
}

func seedCatalog(t *testing.T, db *gorm.DB) (models.Product, models.StockRecord) {
	t.Helper()
	location := models.Location{ID: "1", Name: "Tienda Centro", IsActive: true}
	if err := db.Create(&location).Error; err != nil {
		t.Fatalf("create location failed: %v", err)
	}
	product := models.Product{
		Name:      "Camiseta",
		Barcode:   "7501001001001",
		Kind:      constants.ProductKindStockRecord,
		UnitPrice: models.NewMoneyFromDecimal(decimal.RequireFromString("19.90")),
		ListPrice: models.NewMoneyFromDecimal(decimal.RequireFromString("24.90")),
		TaxRate:   decimal.NewFromInt(21),
		IsActive:  true,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	stock := models.StockRecord{ProductID: product.ID, LocationID: "1", Quantity: 8}
	if err := db.Create(&stock).Error; err != nil {
		t.Fatalf("create stock failed: %v", err)
	}
	return product, stock
}

func TestCatalogServiceSearchAttachesStock(t *testing.T) {
	svc, db := setupCatalogServiceTest(t)
	product, stock := seedCatalog(t, db)
	_ = product

	summaries, err := svc.Search("Camiseta", 10)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("expected 1 match, got %d", len(summaries))
	}
	if len(summaries[0].StockByLocation) != 1 || summaries[0].StockByLocation[0].ID != stock.ID {
		t.Fatalf("summary must carry per-location stock, got: %+v", summaries[0].StockByLocation)
	}
}

func TestCatalogServiceResolveByProduct(t *testing.T) {
	svc, db := setupCatalogServiceTest(t)
	product, stock := seedCatalog(t, db)

	resolved, err := svc.ResolveByProduct(product.ID, 0, "1")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if resolved.StockCeiling != 8 {
		t.Fatalf("expected ceiling 8, got: %d", resolved.StockCeiling)
	}
	if resolved.Candidate.StockRecordID != stock.ID {
		t.Fatalf("candidate must carry stock record id, got: %+v", resolved.Candidate)
	}
	if resolved.Candidate.LocationName != "Tienda Centro" {
		t.Fatalf("candidate must carry location name, got: %s", resolved.Candidate.LocationName)
	}
}

func TestCatalogServiceResolveByProductNoStockRecord(t *testing.T) {
	svc, db := setupCatalogServiceTest(t)
	product, _ := seedCatalog(t, db)

	other := models.Location{ID: "2", Name: "Tienda Norte", IsActive: true}
	if err := db.Create(&other).Error; err != nil {
		t.Fatalf("create location failed: %v", err)
	}

	// 该门店无库存记录：上限 0，交由策略决定能否超售
	resolved, err := svc.ResolveByProduct(product.ID, 0, "2")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if resolved.StockCeiling != 0 {
		t.Fatalf("expected ceiling 0, got: %d", resolved.StockCeiling)
	}
}

func TestCatalogServiceResolveUnknownLocation(t *testing.T) {
	svc, db := setupCatalogServiceTest(t)
	product, _ := seedCatalog(t, db)

	if _, err := svc.ResolveByProduct(product.ID, 0, "404"); !errors.Is(err, ErrLocationNotFound) {
		t.Fatalf("expected ErrLocationNotFound, got: %v", err)
	}
}

func TestCatalogServiceResolveInactiveProduct(t *testing.T) {
	svc, db := setupCatalogServiceTest(t)
	product, _ := seedCatalog(t, db)

	if err := db.Model(&models.Product{}).Where("id = ?", product.ID).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate product failed: %v", err)
	}
	if _, err := svc.ResolveByProduct(product.ID, 0, "1"); !errors.Is(err, ErrProductNotAvailable) {
		t.Fatalf("expected ErrProductNotAvailable, got: %v", err)
	}
}

func TestCatalogServiceResolveBySerial(t *testing.T) {
	svc, db := setupCatalogServiceTest(t)
	product, stock := seedCatalog(t, db)
	_ = product

	unit := models.ControlStockUnit{SerialID: "SN-0001", StockRecordID: stock.ID, LocationID: "1"}
	if err := db.Create(&unit).Error; err != nil {
		t.Fatalf("create control unit failed: %v", err)
	}

	resolved, err := svc.ResolveBySerial("SN-0001", "1")
	if err != nil {
		t.Fatalf("resolve serial failed: %v", err)
	}
	if resolved.StockCeiling != 1 {
		t.Fatalf("serial ceiling must be 1, got: %d", resolved.StockCeiling)
	}
	if resolved.Candidate.ControlStockID != "SN-0001" {
		t.Fatalf("candidate must carry serial, got: %+v", resolved.Candidate)
	}
	if resolved.Candidate.Kind != constants.ProductKindControlStock {
		t.Fatalf("candidate kind must be control_stock, got: %s", resolved.Candidate.Kind)
	}
}

func TestCatalogServiceResolveSoldSerial(t *testing.T) {
	svc, db := setupCatalogServiceTest(t)
	_, stock := seedCatalog(t, db)

	unit := models.ControlStockUnit{SerialID: "SN-0002", StockRecordID: stock.ID, LocationID: "1", IsSold: true}
	if err := db.Create(&unit).Error; err != nil {
		t.Fatalf("create control unit failed: %v", err)
	}
	if _, err := svc.ResolveBySerial("SN-0002", "1"); !errors.Is(err, ErrProductNotAvailable) {
		t.Fatalf("expected ErrProductNotAvailable for sold unit, got: %v", err)
	}
}

func TestCatalogServiceResolveManual(t *testing.T) {
	svc, db := setupCatalogServiceTest(t)
	seedCatalog(t, db)

	resolved, err := svc.ResolveManual("Ajuste caja", models.NewMoneyFromDecimal(decimal.RequireFromString("3.00")), "1")
	if err != nil {
		t.Fatalf("resolve manual failed: %v", err)
	}
	if resolved.StockCeiling != constants.StockUnlimited {
		t.Fatalf("manual ceiling must be unlimited, got: %d", resolved.StockCeiling)
	}
	if resolved.Candidate.Kind != constants.ProductKindManual {
		t.Fatalf("candidate kind must be manual, got: %s", resolved.Candidate.Kind)
	}

	if _, err := svc.ResolveManual("   ", models.Money{}, "1"); !errors.Is(err, ErrCartCandidateInvalid) {
		t.Fatalf("expected ErrCartCandidateInvalid for blank name, got: %v", err)
	}
}
