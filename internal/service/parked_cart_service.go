package service

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/caja-pos/internal/constants"
	"github.com/caja-pos/internal/logger"
	"github.com/caja-pos/internal/models"
	"github.com/caja-pos/internal/repository"
)

// ParkedCartService 挂单管理（保存/恢复购物车快照）
type ParkedCartService struct {
	sessionRepo repository.SessionRepository
	cart        *CartService
	mu          sync.Mutex
	now         func() time.Time
}

// NewParkedCartService 创建挂单服务
func NewParkedCartService(sessionRepo repository.SessionRepository, cart *CartService) *ParkedCartService {
	return &ParkedCartService{
		sessionRepo: sessionRepo,
		cart:        cart,
		now:         time.Now,
	}
}

func parkedSessionKey(locationID string) string {
	return constants.SessionKeyParkedCartsPrefix + locationID
}

// List 返回门店全部挂单（按保存顺序）
func (s *ParkedCartService) List(locationID string) ([]models.ParkedCart, error) {
	if locationID == "" {
		return nil, ErrNoActiveLocation
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(locationID)
}

// Save 把当前购物车行集合保存为挂单并清空购物车。
// 名称为空时以保存时刻生成默认名；空购物车直接返回不产生挂单。
func (s *ParkedCartService) Save(locationID, name string, extra models.JSON) (*models.ParkedCart, error) {
	if locationID == "" {
		return nil, ErrNoActiveLocation
	}
	items, err := s.cart.Items(locationID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}

	savedAt := s.now()
	if name == "" {
		name = savedAt.Format("15:04:05 02/01/2006")
	}
	parked := models.ParkedCart{
		ID:      fmt.Sprintf("%s_%d", locationID, savedAt.UnixMilli()),
		Name:    name,
		Items:   items,
		SavedAt: savedAt,
		Extra:   extra,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	carts, err := s.loadLocked(locationID)
	if err != nil {
		return nil, err
	}
	carts = append(carts, parked)
	if err := s.saveLocked(locationID, carts); err != nil {
		return nil, err
	}
	if err := s.cart.ResetDevolution(locationID); err != nil {
		return nil, err
	}
	return &parked, nil
}

// Load 恢复指定挂单到当前购物车（整体替换，不合并）。
// 挂单本身保留，需要时由调用方显式删除。
func (s *ParkedCartService) Load(locationID, parkedID string) (*models.ParkedCart, error) {
	if locationID == "" {
		return nil, ErrNoActiveLocation
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	carts, err := s.loadLocked(locationID)
	if err != nil {
		return nil, err
	}
	index := indexOfParkedCart(carts, parkedID)
	if index < 0 {
		return nil, ErrParkedCartNotFound
	}

	parked := carts[index]
	if err := s.cart.ReplaceItems(locationID, parked.Items); err != nil {
		return nil, err
	}
	return &parked, nil
}

// Delete 删除指定挂单（不影响当前购物车；挂单不存在时为空操作）
func (s *ParkedCartService) Delete(locationID, parkedID string) error {
	if locationID == "" {
		return ErrNoActiveLocation
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	carts, err := s.loadLocked(locationID)
	if err != nil {
		return err
	}
	index := indexOfParkedCart(carts, parkedID)
	if index < 0 {
		return nil
	}
	carts = append(carts[:index], carts[index+1:]...)
	return s.saveLocked(locationID, carts)
}

func indexOfParkedCart(carts []models.ParkedCart, parkedID string) int {
	for i := range carts {
		if carts[i].ID == parkedID {
			return i
		}
	}
	return -1
}

func (s *ParkedCartService) loadLocked(locationID string) ([]models.ParkedCart, error) {
	record, err := s.sessionRepo.GetByKey(parkedSessionKey(locationID))
	if err != nil {
		logger.Errorw("parked_carts_read_failed", "location_id", locationID, "error", err)
		return nil, ErrStorageUnavailable
	}
	if record == nil || len(record.ValueJSON) == 0 {
		return []models.ParkedCart{}, nil
	}

	var carts []models.ParkedCart
	if err := json.Unmarshal(record.ValueJSON, &carts); err != nil {
		logger.Warnw("parked_carts_decode_failed", "location_id", locationID, "error", err)
		return []models.ParkedCart{}, nil
	}
	return carts, nil
}

func (s *ParkedCartService) saveLocked(locationID string, carts []models.ParkedCart) error {
	raw, err := json.Marshal(carts)
	if err != nil {
		return err
	}
	if _, err := s.sessionRepo.Upsert(parkedSessionKey(locationID), raw); err != nil {
		logger.Errorw("parked_carts_write_failed", "location_id", locationID, "error", err)
		return ErrStorageUnavailable
	}
	return nil
}
