package service

import (
	"time"

	"github.com/caja-pos/internal/config"
	"github.com/caja-pos/internal/models"
	"github.com/caja-pos/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// JWTClaims 操作员令牌声明
type JWTClaims struct {
	OperatorID uint   `json:"operator_id"`
	Username   string `json:"username"`
	jwt.RegisteredClaims
}

// AuthService 操作员认证服务
type AuthService struct {
	operatorRepo repository.OperatorRepository
	jwtConfig    config.JWTConfig
}

// NewAuthService 创建认证服务
func NewAuthService(operatorRepo repository.OperatorRepository, jwtConfig config.JWTConfig) *AuthService {
	return &AuthService{operatorRepo: operatorRepo, jwtConfig: jwtConfig}
}

// Login 校验操作员口令并签发令牌
func (s *AuthService) Login(username, password string) (string, *models.Operator, error) {
	operator, err := s.operatorRepo.GetByUsername(username)
	if err != nil {
		return "", nil, err
	}
	if operator == nil {
		return "", nil, ErrInvalidCredentials
	}
	if !operator.IsActive {
		return "", nil, ErrOperatorInactive
	}
	if bcrypt.CompareHashAndPassword([]byte(operator.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.GenerateToken(operator)
	if err != nil {
		return "", nil, err
	}
	return token, operator, nil
}

// GenerateToken 为操作员签发 JWT
func (s *AuthService) GenerateToken(operator *models.Operator) (string, error) {
	expire := time.Duration(s.jwtConfig.ExpireHours) * time.Hour
	if expire <= 0 {
		expire = 12 * time.Hour
	}
	now := time.Now()
	claims := JWTClaims{
		OperatorID: operator.ID,
		Username:   operator.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(expire)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtConfig.SecretKey))
}

// ParseToken 解析并校验令牌
func (s *AuthService) ParseToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.jwtConfig.SecretKey), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// GetOperator 按ID获取操作员
func (s *AuthService) GetOperator(id uint) (*models.Operator, error) {
	return s.operatorRepo.GetByID(id)
}
