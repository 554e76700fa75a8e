package service

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/caja-pos/internal/constants"
	"github.com/caja-pos/internal/logger"
	"github.com/caja-pos/internal/models"
	"github.com/caja-pos/internal/repository"

	"github.com/shopspring/decimal"
)

// StockPolicy 超库存销售策略
type StockPolicy interface {
	AllowOutOfStockSales() bool
}

// CartCandidate 加购候选（由目录检索解析得到）
type CartCandidate struct {
	Kind                string
	ProductID           uint
	VariantID           uint
	StockRecordID       uint
	Name                string
	VariantLabel        string
	Barcode             string
	UnitPrice           models.Money
	ListPrice           models.Money
	TaxRate             decimal.Decimal
	DiscountedUnitPrice models.Money
	ControlStockID      string
	LocationID          string
	LocationName        string
	Reference           string
}

// AddOptions 加购选项
type AddOptions struct {
	Quantity int  // 数量（<=0 按 1 处理）
	Force    bool // 超库存确认后的强制提交
}

// AddResult 加购结果（两阶段：committed / needs_confirmation）
type AddResult struct {
	Status         string           `json:"status"`
	Item           *models.LineItem `json:"item,omitempty"`
	RequestedTotal int              `json:"requested_total"`
	StockCeiling   int              `json:"stock_ceiling"`
}

// CartService 购物车会话引擎（状态按门店整体持久化）
type CartService struct {
	sessionRepo repository.SessionRepository
	actionRepo  repository.CartActionLogRepository
	policy      StockPolicy

	mu       sync.Mutex
	states   map[string]*models.CartSessionState // 门店ID -> 会话状态
	recently map[string]time.Time                // 门店ID|行标识 -> 高亮过期时间
}

// NewCartService 创建购物车服务
func NewCartService(sessionRepo repository.SessionRepository, actionRepo repository.CartActionLogRepository, policy StockPolicy) *CartService {
	return &CartService{
		sessionRepo: sessionRepo,
		actionRepo:  actionRepo,
		policy:      policy,
		states:      make(map[string]*models.CartSessionState),
		recently:    make(map[string]time.Time),
	}
}

func cartSessionKey(locationID string) string {
	return constants.SessionKeyCartPrefix + locationID
}

// State 返回门店会话状态的副本
func (s *CartService) State(locationID string) (models.CartSessionState, error) {
	if locationID == "" {
		return models.CartSessionState{}, ErrNoActiveLocation
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.stateLocked(locationID)
	if err != nil {
		return models.CartSessionState{}, err
	}
	return copyState(*state), nil
}

// Items 返回门店当前行集合的深拷贝
func (s *CartService) Items(locationID string) ([]models.LineItem, error) {
	state, err := s.State(locationID)
	if err != nil {
		return nil, err
	}
	return state.Items, nil
}

// AddItem 加购：合并/新增一行，执行库存上限与串号唯一校验
func (s *CartService) AddItem(locationID string, candidate CartCandidate, stockCeiling int, opts AddOptions) (AddResult, error) {
	if locationID == "" {
		return AddResult{}, ErrNoActiveLocation
	}
	line := lineItemFromCandidate(candidate)
	if line.Kind != constants.ProductKindManual && line.ControlStockID == "" &&
		line.StockRecordID == 0 && line.ProductID == 0 {
		return AddResult{}, ErrCartCandidateInvalid
	}

	quantity := opts.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.stateLocked(locationID)
	if err != nil {
		return AddResult{}, err
	}

	identity := line.IdentityKey()
	index := state.FindItem(identity)

	// 串号单件不可合并：重复加购直接拒绝，状态不变
	if candidate.ControlStockID != "" && index >= 0 {
		return AddResult{}, ErrDuplicateControlStockItem
	}

	existing := 0
	if index >= 0 {
		existing = state.Items[index].Quantity
	}
	requested := existing + quantity

	ceiling := stockCeiling
	if candidate.Kind == constants.ProductKindManual {
		ceiling = constants.StockUnlimited
	}
	limited := ceiling >= 0

	if limited && requested > ceiling && !opts.Force {
		result := AddResult{RequestedTotal: requested, StockCeiling: ceiling}
		if !s.policy.AllowOutOfStockSales() {
			return result, ErrStockExceeded
		}
		// 策略允许超售：不改状态，等待操作员确认后以 Force 重新提交
		result.Status = constants.AddStatusNeedsConfirmation
		return result, nil
	}

	if index >= 0 {
		// 合并行只累加数量，保留已设置的行级优惠单价
		state.Items[index].Quantity += quantity
		line = state.Items[index]
	} else {
		line.Quantity = quantity
		state.Items = append(state.Items, line)
	}

	// 仅在确实越过库存上限时记为强制加购
	action := constants.CartActionAdd
	if opts.Force && limited && requested > ceiling {
		action = constants.CartActionForceAdd
	}
	s.recordActionLocked(locationID, identity, action)
	s.recently[recentKey(locationID, identity)] = time.Now().Add(constants.RecentlyAddedWindowSeconds * time.Second)

	committed := line
	result := AddResult{
		Status:         constants.AddStatusCommitted,
		Item:           &committed,
		RequestedTotal: requested,
		StockCeiling:   ceiling,
	}
	return result, s.persistLocked(locationID, state)
}

// DecreaseItem 行数量减一，归零时移除该行；行不存在时为空操作
func (s *CartService) DecreaseItem(locationID, identityKey string) error {
	if locationID == "" {
		return ErrNoActiveLocation
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.stateLocked(locationID)
	if err != nil {
		return err
	}
	index := state.FindItem(identityKey)
	if index < 0 {
		return nil
	}

	state.Items[index].Quantity--
	if state.Items[index].Quantity <= 0 {
		state.Items = append(state.Items[:index], state.Items[index+1:]...)
	}
	s.recordActionLocked(locationID, identityKey, constants.CartActionDecrease)
	return s.persistLocked(locationID, state)
}

// RemoveItem 移除一行；退货模式下移除整改行或负数量行将整车作废。
// 返回值表示本次操作是否清空了整个购物车。
func (s *CartService) RemoveItem(locationID, identityKey string) (bool, error) {
	if locationID == "" {
		return false, ErrNoActiveLocation
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.stateLocked(locationID)
	if err != nil {
		return false, err
	}
	index := state.FindItem(identityKey)
	if index < 0 {
		return false, nil
	}

	target := state.Items[index]
	if state.IsDevolution && (target.IsRectification() || target.Quantity < 0) {
		// 退货单的锚定行被移除：整车作废
		state.Items = []models.LineItem{}
		state.IsDevolution = false
		state.IsDiscount = false
		s.recordActionLocked(locationID, identityKey, constants.CartActionClear)
		return true, s.persistLocked(locationID, state)
	}

	state.Items = append(state.Items[:index], state.Items[index+1:]...)
	// 移除任意行都会使已应用的折扣失效，需重新评估
	state.IsDiscount = false
	s.recordActionLocked(locationID, identityKey, constants.CartActionRemove)
	return false, s.persistLocked(locationID, state)
}

// ReplaceItems 用快照整体替换当前行集合（挂单恢复）
func (s *CartService) ReplaceItems(locationID string, items []models.LineItem) error {
	if locationID == "" {
		return ErrNoActiveLocation
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.stateLocked(locationID)
	if err != nil {
		return err
	}
	state.Items = copyLineItems(items)
	s.recordActionLocked(locationID, "", constants.CartActionLoad)
	return s.persistLocked(locationID, state)
}

// BeginDevolution 以整改锚定行开启退货模式（替换当前购物车）
func (s *CartService) BeginDevolution(locationID string, anchor CartCandidate, quantity int) error {
	if locationID == "" {
		return ErrNoActiveLocation
	}
	if quantity == 0 {
		quantity = 1
	}
	if quantity > 0 {
		quantity = -quantity
	}

	line := lineItemFromCandidate(anchor)
	line.Quantity = quantity
	if !line.IsRectification() {
		line.Reference = devolutionReference(locationID, time.Now())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.stateLocked(locationID)
	if err != nil {
		return err
	}
	state.Items = []models.LineItem{line}
	state.IsDevolution = true
	state.IsDiscount = false
	s.recordActionLocked(locationID, line.IdentityKey(), constants.CartActionAdd)
	return s.persistLocked(locationID, state)
}

// ResetDevolution 清空购物车并复位退货/折扣标记
func (s *CartService) ResetDevolution(locationID string) error {
	if locationID == "" {
		return ErrNoActiveLocation
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.stateLocked(locationID)
	if err != nil {
		return err
	}
	state.Items = []models.LineItem{}
	state.IsDevolution = false
	state.IsDiscount = false
	s.recordActionLocked(locationID, "", constants.CartActionClear)
	return s.persistLocked(locationID, state)
}

// MarkDiscountApplied 标记当前购物车已应用折扣
func (s *CartService) MarkDiscountApplied(locationID string) error {
	if locationID == "" {
		return ErrNoActiveLocation
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.stateLocked(locationID)
	if err != nil {
		return err
	}
	if state.IsDiscount {
		return nil
	}
	state.IsDiscount = true
	return s.persistLocked(locationID, state)
}

// RecentlyAdded 返回高亮窗口内的行标识（由调用方渲染层按需计算，无后台定时器）
func (s *CartService) RecentlyAdded(locationID string, now time.Time) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, 2)
	prefix := locationID + "|"
	for key, expiry := range s.recently {
		if now.After(expiry) {
			delete(s.recently, key)
			continue
		}
		if len(key) > len(prefix) && key[:len(prefix)] == prefix {
			keys = append(keys, key[len(prefix):])
		}
	}
	return keys
}

// RecentActions 列出门店最近的购物车动作
func (s *CartService) RecentActions(locationID string, limit int) ([]models.CartActionLog, error) {
	if locationID == "" {
		return nil, ErrNoActiveLocation
	}
	if s.actionRepo == nil {
		return []models.CartActionLog{}, nil
	}
	return s.actionRepo.ListRecent(locationID, limit)
}

// stateLocked 返回门店会话状态；首次访问时从存储加载，缺省时写入并采用空状态。
// 调用方必须持有 s.mu。
func (s *CartService) stateLocked(locationID string) (*models.CartSessionState, error) {
	if state, ok := s.states[locationID]; ok {
		return state, nil
	}

	record, err := s.sessionRepo.GetByKey(cartSessionKey(locationID))
	if err != nil {
		logger.Errorw("cart_state_read_failed", "location_id", locationID, "error", err)
		return nil, ErrStorageUnavailable
	}

	state := models.NewCartSessionState()
	if record == nil {
		// 首次访问：写入空状态（加载过程中不得覆盖已有数据，只在缺省时写）
		if err := s.writeState(locationID, state); err != nil {
			logger.Warnw("cart_state_bootstrap_write_failed", "location_id", locationID, "error", err)
		}
	} else if len(record.ValueJSON) > 0 {
		if err := json.Unmarshal(record.ValueJSON, &state); err != nil {
			logger.Warnw("cart_state_decode_failed", "location_id", locationID, "error", err)
			state = models.NewCartSessionState()
		}
		if state.Items == nil {
			state.Items = []models.LineItem{}
		}
	}

	s.states[locationID] = &state
	return &state, nil
}

// persistLocked 全量落盘；失败时内存状态仍然有效，会话降级继续
func (s *CartService) persistLocked(locationID string, state *models.CartSessionState) error {
	if err := s.writeState(locationID, *state); err != nil {
		logger.Errorw("cart_state_write_failed", "location_id", locationID, "error", err)
		return ErrStorageUnavailable
	}
	return nil
}

func (s *CartService) writeState(locationID string, state models.CartSessionState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	_, err = s.sessionRepo.Upsert(cartSessionKey(locationID), raw)
	return err
}

// recordActionLocked 追加动作审计，失败只记日志不阻断交易
func (s *CartService) recordActionLocked(locationID, identityKey, action string) {
	if s.actionRepo == nil {
		return
	}
	entry := &models.CartActionLog{
		LocationID:  locationID,
		IdentityKey: identityKey,
		Action:      action,
		CreatedAt:   time.Now(),
	}
	if err := s.actionRepo.Append(entry); err != nil {
		logger.Warnw("cart_action_log_failed", "location_id", locationID, "action", action, "error", err)
	}
}

func recentKey(locationID, identityKey string) string {
	return locationID + "|" + identityKey
}

func devolutionReference(locationID string, now time.Time) string {
	return constants.RectificationReferencePrefix + "-" + locationID + "-" + now.Format("20060102150405")
}

func lineItemFromCandidate(candidate CartCandidate) models.LineItem {
	kind := candidate.Kind
	if kind == "" {
		kind = constants.ProductKindStockRecord
		if candidate.ControlStockID != "" {
			kind = constants.ProductKindControlStock
		}
	}
	return models.LineItem{
		Kind:                kind,
		ProductID:           candidate.ProductID,
		VariantID:           candidate.VariantID,
		StockRecordID:       candidate.StockRecordID,
		Name:                candidate.Name,
		VariantLabel:        candidate.VariantLabel,
		Barcode:             candidate.Barcode,
		UnitPrice:           candidate.UnitPrice,
		ListPrice:           candidate.ListPrice,
		TaxRate:             candidate.TaxRate,
		LocationID:          candidate.LocationID,
		LocationName:        candidate.LocationName,
		ControlStockID:      candidate.ControlStockID,
		DiscountedUnitPrice: candidate.DiscountedUnitPrice,
		Reference:           candidate.Reference,
	}
}

func copyLineItems(items []models.LineItem) []models.LineItem {
	cloned := make([]models.LineItem, len(items))
	copy(cloned, items)
	return cloned
}

func copyState(state models.CartSessionState) models.CartSessionState {
	state.Items = copyLineItems(state.Items)
	return state
}
