package service

import (
	"strings"

	"github.com/caja-pos/internal/constants"
	"github.com/caja-pos/internal/models"
	"github.com/caja-pos/internal/repository"
)

// CatalogService 商品目录服务（检索与加购候选解析）
type CatalogService struct {
	productRepo  repository.ProductRepository
	locationRepo repository.LocationRepository
}

// NewCatalogService 创建目录服务
func NewCatalogService(productRepo repository.ProductRepository, locationRepo repository.LocationRepository) *CatalogService {
	return &CatalogService{productRepo: productRepo, locationRepo: locationRepo}
}

// ResolvedCandidate 解析结果：加购候选与门店库存上限
type ResolvedCandidate struct {
	Candidate    CartCandidate `json:"candidate"`
	StockCeiling int           `json:"stockCeiling"`
}

// ProductSummary 检索结果：商品及其各门店库存快照
type ProductSummary struct {
	models.Product
	StockByLocation []models.StockRecord `json:"stockByLocation"`
}

// Search 检索在售商品，并附带各门店库存快照
func (s *CatalogService) Search(query string, limit int) ([]ProductSummary, error) {
	products, err := s.productRepo.Search(query, limit)
	if err != nil {
		return nil, err
	}

	summaries := make([]ProductSummary, 0, len(products))
	for _, product := range products {
		stock, err := s.productRepo.StockByProduct(product.ID)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, ProductSummary{Product: product, StockByLocation: stock})
	}
	return summaries, nil
}

// ListLocations 列出启用门店
func (s *CatalogService) ListLocations() ([]models.Location, error) {
	return s.locationRepo.ListActive()
}

// GetLocation 获取门店（不存在或停用时返回错误）
func (s *CatalogService) GetLocation(locationID string) (*models.Location, error) {
	location, err := s.locationRepo.GetByID(locationID)
	if err != nil {
		return nil, err
	}
	if location == nil || !location.IsActive {
		return nil, ErrLocationNotFound
	}
	return location, nil
}

// ResolveByProduct 解析商品/规格在指定门店的加购候选。
// 无该门店库存记录时上限为 0（仍可按策略超售）。
func (s *CatalogService) ResolveByProduct(productID, variantID uint, locationID string) (*ResolvedCandidate, error) {
	location, err := s.GetLocation(locationID)
	if err != nil {
		return nil, err
	}
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil || !product.IsActive {
		return nil, ErrProductNotAvailable
	}

	candidate := candidateFromProduct(product, location)
	candidate.VariantID = variantID
	if variantID != 0 {
		label, ok := variantLabel(product, variantID)
		if !ok {
			return nil, ErrProductNotAvailable
		}
		candidate.VariantLabel = label
	}

	ceiling := 0
	if product.Kind == constants.ProductKindManual {
		ceiling = constants.StockUnlimited
	} else {
		stock, err := s.productRepo.StockForLocation(productID, variantID, locationID)
		if err != nil {
			return nil, err
		}
		if stock != nil {
			candidate.StockRecordID = stock.ID
			ceiling = stock.Quantity
		}
	}
	return &ResolvedCandidate{Candidate: candidate, StockCeiling: ceiling}, nil
}

// ResolveBySerial 按串号解析序列化库存单件的加购候选。
// 串号单件上限固定为 1，已售出或门店不符视为不可售。
func (s *CatalogService) ResolveBySerial(serial, locationID string) (*ResolvedCandidate, error) {
	location, err := s.GetLocation(locationID)
	if err != nil {
		return nil, err
	}
	unit, err := s.productRepo.ControlUnitBySerial(serial)
	if err != nil {
		return nil, err
	}
	if unit == nil || unit.IsSold || unit.LocationID != locationID {
		return nil, ErrProductNotAvailable
	}

	stock, err := s.productRepo.StockRecordByID(unit.StockRecordID)
	if err != nil {
		return nil, err
	}
	if stock == nil || stock.Product == nil {
		return nil, ErrProductNotAvailable
	}

	candidate := candidateFromProduct(stock.Product, location)
	candidate.Kind = constants.ProductKindControlStock
	candidate.StockRecordID = unit.StockRecordID
	candidate.VariantID = stock.VariantID
	candidate.ControlStockID = unit.SerialID
	return &ResolvedCandidate{Candidate: candidate, StockCeiling: 1}, nil
}

// ResolveManual 构造手工行候选（不关联库存，上限不限）
func (s *CatalogService) ResolveManual(name string, unitPrice models.Money, locationID string) (*ResolvedCandidate, error) {
	location, err := s.GetLocation(locationID)
	if err != nil {
		return nil, err
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, ErrCartCandidateInvalid
	}
	candidate := CartCandidate{
		Kind:         constants.ProductKindManual,
		Name:         trimmed,
		UnitPrice:    unitPrice,
		ListPrice:    unitPrice,
		LocationID:   location.ID,
		LocationName: location.Name,
	}
	return &ResolvedCandidate{Candidate: candidate, StockCeiling: constants.StockUnlimited}, nil
}

func candidateFromProduct(product *models.Product, location *models.Location) CartCandidate {
	return CartCandidate{
		Kind:         product.Kind,
		ProductID:    product.ID,
		Name:         product.Name,
		Barcode:      product.Barcode,
		UnitPrice:    product.UnitPrice,
		ListPrice:    product.ListPrice,
		TaxRate:      product.TaxRate,
		LocationID:   location.ID,
		LocationName: location.Name,
	}
}

func variantLabel(product *models.Product, variantID uint) (string, bool) {
	for i := range product.Variants {
		if product.Variants[i].ID == variantID && product.Variants[i].IsActive {
			return product.Variants[i].Label, true
		}
	}
	return "", false
}
