package service

import (
	"encoding/json"
	"sync"

	"github.com/caja-pos/internal/config"
	"github.com/caja-pos/internal/constants"
	"github.com/caja-pos/internal/logger"
	"github.com/caja-pos/internal/repository"
)

// TerminalSettings 终端运行时设置（配置文件提供默认值，存储覆盖）
type TerminalSettings struct {
	AllowOutOfStockSales bool   `json:"allowOutOfStockSales"` // 超库存销售是否可被操作员确认
	DefaultLocationID    string `json:"defaultLocationId"`    // 默认门店
}

// TerminalSettingService 终端设置服务（实现超库存销售策略）
type TerminalSettingService struct {
	sessionRepo repository.SessionRepository
	defaults    TerminalSettings

	mu     sync.RWMutex
	cached *TerminalSettings
}

// NewTerminalSettingService 创建终端设置服务
func NewTerminalSettingService(sessionRepo repository.SessionRepository, sales config.SalesConfig) *TerminalSettingService {
	return &TerminalSettingService{
		sessionRepo: sessionRepo,
		defaults: TerminalSettings{
			AllowOutOfStockSales: sales.AllowOutOfStockSales,
			DefaultLocationID:    sales.DefaultLocationID,
		},
	}
}

// Get 返回生效设置：存储行存在时覆盖配置默认值
func (s *TerminalSettingService) Get() TerminalSettings {
	s.mu.RLock()
	if s.cached != nil {
		settings := *s.cached
		s.mu.RUnlock()
		return settings
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cached != nil {
		return *s.cached
	}

	settings := s.defaults
	record, err := s.sessionRepo.GetByKey(constants.SessionKeyTerminalConfig)
	if err != nil {
		logger.Warnw("terminal_config_read_failed", "error", err)
	} else if record != nil && len(record.ValueJSON) > 0 {
		if err := json.Unmarshal(record.ValueJSON, &settings); err != nil {
			logger.Warnw("terminal_config_decode_failed", "error", err)
			settings = s.defaults
		}
	}
	s.cached = &settings
	return settings
}

// Update 写入终端设置并刷新缓存
func (s *TerminalSettingService) Update(settings TerminalSettings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.sessionRepo.Upsert(constants.SessionKeyTerminalConfig, raw); err != nil {
		logger.Errorw("terminal_config_write_failed", "error", err)
		return ErrStorageUnavailable
	}
	s.cached = &settings
	return nil
}

// AllowOutOfStockSales 超库存销售策略
func (s *TerminalSettingService) AllowOutOfStockSales() bool {
	return s.Get().AllowOutOfStockSales
}

// DefaultLocationID 未携带门店头时的回退门店
func (s *TerminalSettingService) DefaultLocationID() string {
	return s.Get().DefaultLocationID
}
