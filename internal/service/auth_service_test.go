package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/caja-pos/internal/config"
	"github.com/caja-pos/internal/models"
	"github.com/caja-pos/internal/repository"

	"github.com/glebarez/sqlite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func setupAuthServiceTest(t *testing.T) (*AuthService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:auth_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Operator{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	svc := NewAuthService(repository.NewOperatorRepository(db), config.JWTConfig{
		SecretKey:   "test-secret-key-for-auth-service-tests",
		ExpireHours: 1,
	})
	return svc, db
}

func seedOperator(t *testing.T, db *gorm.DB, username, password string, active bool) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash password failed: %v", err)
	}
	operator := models.Operator{
		Username:     username,
		PasswordHash: string(hash),
		DisplayName:  username,
		IsActive:     active,
	}
	if err := db.Create(&operator).Error; err != nil {
		t.Fatalf("create operator failed: %v", err)
	}
	// IsActive 声明了 default:true，Create 会忽略零值 false，这里强制写入
	if err := db.Model(&operator).Update("is_active", active).Error; err != nil {
		t.Fatalf("update operator is_active failed: %v", err)
	}
}

func TestAuthServiceLoginAndParseToken(t *testing.T) {
	svc, db := setupAuthServiceTest(t)
	seedOperator(t, db, "cashier1", "secret123", true)

	token, operator, err := svc.Login("cashier1", "secret123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if token == "" || operator == nil || operator.Username != "cashier1" {
		t.Fatalf("unexpected login result: %q %+v", token, operator)
	}

	claims, err := svc.ParseToken(token)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if claims.OperatorID != operator.ID || claims.Username != "cashier1" {
		t.Fatalf("claims mismatch: %+v", claims)
	}
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	svc, db := setupAuthServiceTest(t)
	seedOperator(t, db, "cashier1", "secret123", true)

	if _, _, err := svc.Login("cashier1", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got: %v", err)
	}
	if _, _, err := svc.Login("ghost", "secret123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got: %v", err)
	}
}

func TestAuthServiceLoginInactiveOperator(t *testing.T) {
	svc, db := setupAuthServiceTest(t)
	seedOperator(t, db, "cashier1", "secret123", false)

	if _, _, err := svc.Login("cashier1", "secret123"); !errors.Is(err, ErrOperatorInactive) {
		t.Fatalf("expected ErrOperatorInactive, got: %v", err)
	}
}

func TestAuthServiceParseTokenRejectsTampered(t *testing.T) {
	svc, db := setupAuthServiceTest(t)
	seedOperator(t, db, "cashier1", "secret123", true)

	token, _, err := svc.Login("cashier1", "secret123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if _, err := svc.ParseToken(token + "x"); err == nil {
		t.Fatalf("tampered token must be rejected")
	}
}
