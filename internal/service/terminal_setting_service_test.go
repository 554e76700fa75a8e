package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/caja-pos/internal/config"
	"github.com/caja-pos/internal/constants"
	"github.com/caja-pos/internal/models"
	"github.com/caja-pos/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupTerminalSettingTest(t *testing.T, sales config.SalesConfig) (*TerminalSettingService, repository.SessionRepository) {
	t.Helper()
	dsn := fmt.Sprintf("file:terminal_setting_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.SessionRecord{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	sessionRepo := repository.NewSessionRepository(db)
	return NewTerminalSettingService(sessionRepo, sales), sessionRepo
}

func TestTerminalSettingServiceUsesConfigDefaults(t *testing.T) {
	svc, _ := setupTerminalSettingTest(t, config.SalesConfig{
		AllowOutOfStockSales: true,
		DefaultLocationID:    "2",
	})

	settings := svc.Get()
	if !settings.AllowOutOfStockSales {
		t.Fatalf("expected config default allow_out_of_stock_sales=true")
	}
	if settings.DefaultLocationID != "2" {
		t.Fatalf("expected default location 2, got: %s", settings.DefaultLocationID)
	}
	if !svc.AllowOutOfStockSales() {
		t.Fatalf("policy must reflect settings")
	}
}

func TestTerminalSettingServiceStoredRowOverridesDefaults(t *testing.T) {
	svc, sessionRepo := setupTerminalSettingTest(t, config.SalesConfig{AllowOutOfStockSales: false})

	if _, err := sessionRepo.Upsert(constants.SessionKeyTerminalConfig,
		[]byte(`{"allowOutOfStockSales":true,"defaultLocationId":"5"}`)); err != nil {
		t.Fatalf("seed terminal config failed: %v", err)
	}

	settings := svc.Get()
	if !settings.AllowOutOfStockSales || settings.DefaultLocationID != "5" {
		t.Fatalf("stored row must override defaults, got: %+v", settings)
	}
}

func TestTerminalSettingServiceUpdatePersists(t *testing.T) {
	svc, sessionRepo := setupTerminalSettingTest(t, config.SalesConfig{})

	if err := svc.Update(TerminalSettings{AllowOutOfStockSales: true, DefaultLocationID: "3"}); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if !svc.AllowOutOfStockSales() || svc.DefaultLocationID() != "3" {
		t.Fatalf("cache not refreshed after update: %+v", svc.Get())
	}

	record, err := sessionRepo.GetByKey(constants.SessionKeyTerminalConfig)
	if err != nil || record == nil {
		t.Fatalf("expected persisted terminal config, err: %v", err)
	}

	// 新实例读取持久化值
	fresh := NewTerminalSettingService(sessionRepo, config.SalesConfig{})
	if !fresh.AllowOutOfStockSales() || fresh.DefaultLocationID() != "3" {
		t.Fatalf("fresh instance must read persisted settings, got: %+v", fresh.Get())
	}
}
