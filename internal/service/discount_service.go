package service

import (
	"encoding/json"
	"sync"

	"github.com/caja-pos/internal/constants"
	"github.com/caja-pos/internal/logger"
	"github.com/caja-pos/internal/models"
	"github.com/caja-pos/internal/repository"
)

// DiscountService 折扣台账（按门店有序保存，允许重复记录）
type DiscountService struct {
	sessionRepo repository.SessionRepository
	cart        *CartService
	mu          sync.Mutex
}

// NewDiscountService 创建折扣服务
func NewDiscountService(sessionRepo repository.SessionRepository, cart *CartService) *DiscountService {
	return &DiscountService{sessionRepo: sessionRepo, cart: cart}
}

func discountSessionKey(locationID string) string {
	return constants.SessionKeyDiscountsPrefix + locationID
}

// List 返回门店折扣台账（按插入顺序）
func (s *DiscountService) List(locationID string) ([]models.DiscountRecord, error) {
	if locationID == "" {
		return nil, ErrNoActiveLocation
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(locationID)
}

// Add 追加一条折扣记录（不去重），并同步标记购物车的折扣状态
func (s *DiscountService) Add(locationID string, record models.DiscountRecord) error {
	if locationID == "" {
		return ErrNoActiveLocation
	}
	s.mu.Lock()

	records, err := s.loadLocked(locationID)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	records = append(records, record)
	if err := s.saveLocked(locationID, records); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	return s.cart.MarkDiscountApplied(locationID)
}

// RemoveAt 按下标移除一条折扣记录
func (s *DiscountService) RemoveAt(locationID string, index int) error {
	if locationID == "" {
		return ErrNoActiveLocation
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.loadLocked(locationID)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(records) {
		return ErrDiscountIndexInvalid
	}
	records = append(records[:index], records[index+1:]...)
	return s.saveLocked(locationID, records)
}

// Clear 清空门店折扣台账（删除持久化键而非写空数组）
func (s *DiscountService) Clear(locationID string) error {
	if locationID == "" {
		return ErrNoActiveLocation
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessionRepo.DeleteByKey(discountSessionKey(locationID)); err != nil {
		logger.Errorw("discount_ledger_delete_failed", "location_id", locationID, "error", err)
		return ErrStorageUnavailable
	}
	return nil
}

func (s *DiscountService) loadLocked(locationID string) ([]models.DiscountRecord, error) {
	record, err := s.sessionRepo.GetByKey(discountSessionKey(locationID))
	if err != nil {
		logger.Errorw("discount_ledger_read_failed", "location_id", locationID, "error", err)
		return nil, ErrStorageUnavailable
	}
	if record == nil || len(record.ValueJSON) == 0 {
		return []models.DiscountRecord{}, nil
	}

	var records []models.DiscountRecord
	if err := json.Unmarshal(record.ValueJSON, &records); err != nil {
		logger.Warnw("discount_ledger_decode_failed", "location_id", locationID, "error", err)
		return []models.DiscountRecord{}, nil
	}
	return records, nil
}

func (s *DiscountService) saveLocked(locationID string, records []models.DiscountRecord) error {
	raw, err := json.Marshal(records)
	if err != nil {
		return err
	}
	if _, err := s.sessionRepo.Upsert(discountSessionKey(locationID), raw); err != nil {
		logger.Errorw("discount_ledger_write_failed", "location_id", locationID, "error", err)
		return ErrStorageUnavailable
	}
	return nil
}
