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

type stubStockPolicy struct {
	allow bool
}

func (p stubStockPolicy) AllowOutOfStockSales() bool {
	return p.allow
}

func setupCartServiceTest(t *testing.T, allowOutOfStock bool) (*CartService, repository.SessionRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:cart_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.SessionRecord{}, &models.CartActionLog{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	sessionRepo := repository.NewSessionRepository(db)
	actionRepo := repository.NewCartActionLogRepository(db)
	svc := NewCartService(sessionRepo, actionRepo, stubStockPolicy{allow: allowOutOfStock})
	return svc, sessionRepo, db
}

func stockCandidate(stockRecordID uint, price string) CartCandidate {
	return CartCandidate{
		Kind:          constants.ProductKindStockRecord,
		ProductID:     stockRecordID,
		StockRecordID: stockRecordID,
		Name:          fmt.Sprintf("商品-%d", stockRecordID),
		UnitPrice:     models.NewMoneyFromDecimal(decimal.RequireFromString(price)),
		ListPrice:     models.NewMoneyFromDecimal(decimal.RequireFromString(price)),
		LocationID:    "1",
	}
}

func serialCandidate(serial string) CartCandidate {
	return CartCandidate{
		Kind:           constants.ProductKindControlStock,
		ProductID:      99,
		StockRecordID:  99,
		ControlStockID: serial,
		Name:           "串号商品",
		UnitPrice:      models.NewMoneyFromDecimal(decimal.RequireFromString("399.00")),
		LocationID:     "1",
	}
}

func TestCartServiceAddItemMergesSameStockRecord(t *testing.T) {
	svc, _, _ := setupCartServiceTest(t, false)

	first, err := svc.AddItem("1", stockCandidate(7, "19.90"), 10, AddOptions{Quantity: 2})
	if err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	if first.Status != constants.AddStatusCommitted {
		t.Fatalf("expected committed, got: %s", first.Status)
	}

	second, err := svc.AddItem("1", stockCandidate(7, "19.90"), 10, AddOptions{Quantity: 3})
	if err != nil {
		t.Fatalf("second add failed: %v", err)
	}
	if second.Item == nil || second.Item.Quantity != 5 {
		t.Fatalf("expected merged quantity 5, got: %+v", second.Item)
	}

	items, err := svc.Items("1")
	if err != nil {
		t.Fatalf("items failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected single merged line, got %d", len(items))
	}
}

func TestCartServiceAddItemKeepsDistinctStockRecordsSeparate(t *testing.T) {
	svc, _, _ := setupCartServiceTest(t, false)

	if _, err := svc.AddItem("1", stockCandidate(7, "19.90"), 10, AddOptions{}); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if _, err := svc.AddItem("1", stockCandidate(8, "9.90"), 10, AddOptions{}); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	items, err := svc.Items("1")
	if err != nil {
		t.Fatalf("items failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(items))
	}
}

func TestCartServiceControlStockNeverMerges(t *testing.T) {
	svc, _, _ := setupCartServiceTest(t, true)

	if _, err := svc.AddItem("1", serialCandidate("SN-0001"), 1, AddOptions{}); err != nil {
		t.Fatalf("first serial add failed: %v", err)
	}
	_, err := svc.AddItem("1", serialCandidate("SN-0001"), 1, AddOptions{})
	if !errors.Is(err, ErrDuplicateControlStockItem) {
		t.Fatalf("expected ErrDuplicateControlStockItem, got: %v", err)
	}

	// 不同串号各占一行
	if _, err := svc.AddItem("1", serialCandidate("SN-0002"), 1, AddOptions{}); err != nil {
		t.Fatalf("second serial add failed: %v", err)
	}
	items, err := svc.Items("1")
	if err != nil {
		t.Fatalf("items failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 serial lines, got %d", len(items))
	}
}

func TestCartServiceStockCeilingRejectsWhenPolicyForbids(t *testing.T) {
	svc, _, _ := setupCartServiceTest(t, false)

	result, err := svc.AddItem("1", stockCandidate(7, "19.90"), 2, AddOptions{Quantity: 3})
	if !errors.Is(err, ErrStockExceeded) {
		t.Fatalf("expected ErrStockExceeded, got: %v", err)
	}
	if result.RequestedTotal != 3 || result.StockCeiling != 2 {
		t.Fatalf("unexpected result: %+v", result)
	}

	items, err := svc.Items("1")
	if err != nil {
		t.Fatalf("items failed: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("cart must stay unchanged, got %d lines", len(items))
	}
}

func TestCartServiceStockCeilingNeedsConfirmationWhenPolicyAllows(t *testing.T) {
	svc, _, _ := setupCartServiceTest(t, true)

	result, err := svc.AddItem("1", stockCandidate(7, "19.90"), 2, AddOptions{Quantity: 3})
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if result.Status != constants.AddStatusNeedsConfirmation {
		t.Fatalf("expected needs_confirmation, got: %s", result.Status)
	}
	if result.Item != nil {
		t.Fatalf("no line must be committed before confirmation")
	}

	items, err := svc.Items("1")
	if err != nil {
		t.Fatalf("items failed: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("cart must stay unchanged before confirmation, got %d lines", len(items))
	}

	// 确认后以 force 重新提交
	forced, err := svc.AddItem("1", stockCandidate(7, "19.90"), 2, AddOptions{Quantity: 3, Force: true})
	if err != nil {
		t.Fatalf("forced add failed: %v", err)
	}
	if forced.Status != constants.AddStatusCommitted {
		t.Fatalf("expected committed after force, got: %s", forced.Status)
	}
	if forced.Item == nil || forced.Item.Quantity != 3 {
		t.Fatalf("unexpected forced line: %+v", forced.Item)
	}
}

func TestCartServiceNoStockRecordSellableThroughConfirmation(t *testing.T) {
	svc, _, _ := setupCartServiceTest(t, true)

	// 已解析的商品但门店没有库存记录：上限 0，仍可经确认流程售出
	candidate := CartCandidate{
		Kind:       constants.ProductKindStockRecord,
		ProductID:  41,
		Name:       "无库存记录商品",
		UnitPrice:  models.NewMoneyFromDecimal(decimal.RequireFromString("12.00")),
		LocationID: "1",
	}

	result, err := svc.AddItem("1", candidate, 0, AddOptions{})
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if result.Status != constants.AddStatusNeedsConfirmation {
		t.Fatalf("expected needs_confirmation, got: %s", result.Status)
	}

	forced, err := svc.AddItem("1", candidate, 0, AddOptions{Force: true})
	if err != nil {
		t.Fatalf("forced add failed: %v", err)
	}
	if forced.Status != constants.AddStatusCommitted {
		t.Fatalf("expected committed after force, got: %s", forced.Status)
	}

	// 不同商品不得因缺少库存记录而互相合并
	other := candidate
	other.ProductID = 42
	other.Name = "另一无库存记录商品"
	if _, err := svc.AddItem("1", other, 0, AddOptions{Force: true}); err != nil {
		t.Fatalf("forced add failed: %v", err)
	}

	items, err := svc.Items("1")
	if err != nil {
		t.Fatalf("items failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 separate lines, got %d", len(items))
	}
	if items[0].IdentityKey() == items[1].IdentityKey() {
		t.Fatalf("lines must not share an identity: %s", items[0].IdentityKey())
	}
}

func TestCartServiceForceAddLoggedOnlyOnCeilingBypass(t *testing.T) {
	svc, _, db := setupCartServiceTest(t, true)

	// 上限内的 force 加购按普通加购记录
	if _, err := svc.AddItem("1", stockCandidate(7, "19.90"), 10, AddOptions{Quantity: 2, Force: true}); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	// 越过上限的 force 加购记为强制加购
	if _, err := svc.AddItem("1", stockCandidate(8, "9.90"), 1, AddOptions{Quantity: 3, Force: true}); err != nil {
		t.Fatalf("forced add failed: %v", err)
	}

	var logs []models.CartActionLog
	if err := db.Where("location_id = ?", "1").Order("id").Find(&logs).Error; err != nil {
		t.Fatalf("load actions failed: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("expected 2 action logs, got: %d", len(logs))
	}
	if logs[0].Action != constants.CartActionAdd {
		t.Fatalf("in-ceiling add must be logged as add, got: %s", logs[0].Action)
	}
	if logs[1].Action != constants.CartActionForceAdd {
		t.Fatalf("ceiling bypass must be logged as force_add, got: %s", logs[1].Action)
	}
}

func TestCartServiceCeilingCountsExistingQuantity(t *testing.T) {
	svc, _, _ := setupCartServiceTest(t, false)

	if _, err := svc.AddItem("1", stockCandidate(7, "19.90"), 3, AddOptions{Quantity: 2}); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	// 已有 2 件，再加 2 件超过上限 3
	_, err := svc.AddItem("1", stockCandidate(7, "19.90"), 3, AddOptions{Quantity: 2})
	if !errors.Is(err, ErrStockExceeded) {
		t.Fatalf("expected ErrStockExceeded, got: %v", err)
	}
}

func TestCartServiceManualItemIgnoresCeiling(t *testing.T) {
	svc, _, _ := setupCartServiceTest(t, false)

	manual := CartCandidate{
		Kind:       constants.ProductKindManual,
		Name:       "手工商品",
		UnitPrice:  models.NewMoneyFromDecimal(decimal.RequireFromString("5.00")),
		LocationID: "1",
	}
	result, err := svc.AddItem("1", manual, 0, AddOptions{Quantity: 100})
	if err != nil {
		t.Fatalf("manual add failed: %v", err)
	}
	if result.Status != constants.AddStatusCommitted {
		t.Fatalf("expected committed, got: %s", result.Status)
	}
	if result.StockCeiling != constants.StockUnlimited {
		t.Fatalf("manual line must be unlimited, got: %d", result.StockCeiling)
	}
}

func TestCartServiceDecreaseItem(t *testing.T) {
	svc, _, _ := setupCartServiceTest(t, false)

	if _, err := svc.AddItem("1", stockCandidate(7, "19.90"), 10, AddOptions{Quantity: 2}); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	identity := constants.IdentityPrefixStock + "7"

	if err := svc.DecreaseItem("1", identity); err != nil {
		t.Fatalf("decrease failed: %v", err)
	}
	items, _ := svc.Items("1")
	if len(items) != 1 || items[0].Quantity != 1 {
		t.Fatalf("expected quantity 1, got: %+v", items)
	}

	// 归零后移除该行
	if err := svc.DecreaseItem("1", identity); err != nil {
		t.Fatalf("decrease failed: %v", err)
	}
	items, _ = svc.Items("1")
	if len(items) != 0 {
		t.Fatalf("expected empty cart, got %d lines", len(items))
	}

	// 行不存在时为空操作
	if err := svc.DecreaseItem("1", identity); err != nil {
		t.Fatalf("decrease on missing line must be a no-op, got: %v", err)
	}
}

func TestCartServiceRemoveItemInvalidatesDiscountFlag(t *testing.T) {
	svc, _, _ := setupCartServiceTest(t, false)

	if _, err := svc.AddItem("1", stockCandidate(7, "19.90"), 10, AddOptions{}); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if _, err := svc.AddItem("1", stockCandidate(8, "9.90"), 10, AddOptions{}); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := svc.MarkDiscountApplied("1"); err != nil {
		t.Fatalf("mark discount failed: %v", err)
	}

	cleared, err := svc.RemoveItem("1", constants.IdentityPrefixStock+"8")
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if cleared {
		t.Fatalf("removing a normal line must not clear the cart")
	}

	state, err := svc.State("1")
	if err != nil {
		t.Fatalf("state failed: %v", err)
	}
	if state.IsDiscount {
		t.Fatalf("discount flag must reset after removal")
	}
	if len(state.Items) != 1 {
		t.Fatalf("expected 1 line, got %d", len(state.Items))
	}
}

func TestCartServiceDevolutionAnchorRemovalClearsCart(t *testing.T) {
	svc, _, _ := setupCartServiceTest(t, true)

	anchor := stockCandidate(7, "19.90")
	anchor.Reference = "RECT-1-20260831"
	if err := svc.BeginDevolution("1", anchor, 1); err != nil {
		t.Fatalf("begin devolution failed: %v", err)
	}

	state, err := svc.State("1")
	if err != nil {
		t.Fatalf("state failed: %v", err)
	}
	if !state.IsDevolution {
		t.Fatalf("expected devolution mode")
	}
	if len(state.Items) != 1 || state.Items[0].Quantity != -1 {
		t.Fatalf("expected single negative anchor line, got: %+v", state.Items)
	}

	// 退货模式下追加普通行
	if _, err := svc.AddItem("1", stockCandidate(8, "9.90"), 10, AddOptions{}); err != nil {
		t.Fatalf("add during devolution failed: %v", err)
	}

	cleared, err := svc.RemoveItem("1", constants.IdentityPrefixStock+"7")
	if err != nil {
		t.Fatalf("remove anchor failed: %v", err)
	}
	if !cleared {
		t.Fatalf("removing the anchor must clear the whole cart")
	}

	state, err = svc.State("1")
	if err != nil {
		t.Fatalf("state failed: %v", err)
	}
	if len(state.Items) != 0 || state.IsDevolution {
		t.Fatalf("cart must be fully reset, got: %+v", state)
	}
}

func TestCartServiceBeginDevolutionGeneratesReference(t *testing.T) {
	svc, _, _ := setupCartServiceTest(t, false)

	if err := svc.BeginDevolution("1", stockCandidate(7, "19.90"), 2); err != nil {
		t.Fatalf("begin devolution failed: %v", err)
	}
	items, _ := svc.Items("1")
	if len(items) != 1 {
		t.Fatalf("expected anchor line, got %d", len(items))
	}
	if !items[0].IsRectification() {
		t.Fatalf("anchor must carry rectification reference, got: %q", items[0].Reference)
	}
	if items[0].Quantity != -2 {
		t.Fatalf("anchor quantity must be negative, got: %d", items[0].Quantity)
	}
}

func TestCartServiceLocationIsolation(t *testing.T) {
	svc, _, _ := setupCartServiceTest(t, false)

	if _, err := svc.AddItem("1", stockCandidate(7, "19.90"), 10, AddOptions{}); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if _, err := svc.AddItem("2", stockCandidate(8, "9.90"), 10, AddOptions{Quantity: 4}); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	one, _ := svc.Items("1")
	two, _ := svc.Items("2")
	if len(one) != 1 || one[0].StockRecordID != 7 {
		t.Fatalf("location 1 cart polluted: %+v", one)
	}
	if len(two) != 1 || two[0].StockRecordID != 8 || two[0].Quantity != 4 {
		t.Fatalf("location 2 cart polluted: %+v", two)
	}

	if err := svc.ResetDevolution("1"); err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	two, _ = svc.Items("2")
	if len(two) != 1 {
		t.Fatalf("reset on location 1 must not touch location 2")
	}
}

func TestCartServiceStatePersistsAcrossInstances(t *testing.T) {
	svc, sessionRepo, db := setupCartServiceTest(t, false)

	if _, err := svc.AddItem("1", stockCandidate(7, "19.90"), 10, AddOptions{Quantity: 2}); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := svc.MarkDiscountApplied("1"); err != nil {
		t.Fatalf("mark discount failed: %v", err)
	}

	record, err := sessionRepo.GetByKey(constants.SessionKeyCartPrefix + "1")
	if err != nil || record == nil {
		t.Fatalf("expected persisted session record, err: %v", err)
	}

	// 新实例模拟重启加载
	reloaded := NewCartService(sessionRepo, repository.NewCartActionLogRepository(db), stubStockPolicy{})
	state, err := reloaded.State("1")
	if err != nil {
		t.Fatalf("reload state failed: %v", err)
	}
	if len(state.Items) != 1 || state.Items[0].Quantity != 2 {
		t.Fatalf("reloaded items mismatch: %+v", state.Items)
	}
	if !state.IsDiscount {
		t.Fatalf("reloaded discount flag lost")
	}
}

func TestCartServiceRecentlyAddedWindow(t *testing.T) {
	svc, _, _ := setupCartServiceTest(t, false)

	if _, err := svc.AddItem("1", stockCandidate(7, "19.90"), 10, AddOptions{}); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	now := time.Now()
	recent := svc.RecentlyAdded("1", now)
	if len(recent) != 1 || recent[0] != constants.IdentityPrefixStock+"7" {
		t.Fatalf("expected recent highlight, got: %v", recent)
	}

	later := now.Add((constants.RecentlyAddedWindowSeconds + 1) * time.Second)
	if remaining := svc.RecentlyAdded("1", later); len(remaining) != 0 {
		t.Fatalf("highlight must expire, got: %v", remaining)
	}
}

func TestCartServiceRequiresLocation(t *testing.T) {
	svc, _, _ := setupCartServiceTest(t, false)

	if _, err := svc.AddItem("", stockCandidate(7, "19.90"), 10, AddOptions{}); !errors.Is(err, ErrNoActiveLocation) {
		t.Fatalf("expected ErrNoActiveLocation, got: %v", err)
	}
	if _, err := svc.State(""); !errors.Is(err, ErrNoActiveLocation) {
		t.Fatalf("expected ErrNoActiveLocation, got: %v", err)
	}
}

func TestCartServiceRecordsActions(t *testing.T) {
	svc, _, db := setupCartServiceTest(t, false)

	if _, err := svc.AddItem("1", stockCandidate(7, "19.90"), 10, AddOptions{}); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := svc.DecreaseItem("1", constants.IdentityPrefixStock+"7"); err != nil {
		t.Fatalf("decrease failed: %v", err)
	}

	var count int64
	if err := db.Model(&models.CartActionLog{}).Where("location_id = ?", "1").Count(&count).Error; err != nil {
		t.Fatalf("count actions failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 action logs, got: %d", count)
	}

	logs, err := svc.RecentActions("1", 10)
	if err != nil {
		t.Fatalf("recent actions failed: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("expected 2 recent actions, got: %d", len(logs))
	}
}
