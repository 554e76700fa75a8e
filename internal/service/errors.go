package service

import "errors"

// 业务哨兵错误（处理器按 errors.Is 映射为接口响应）
var (
	ErrNoActiveLocation          = errors.New("no active location")
	ErrStockExceeded             = errors.New("stock ceiling exceeded")
	ErrDuplicateControlStockItem = errors.New("control stock unit already in cart")
	ErrCartCandidateInvalid      = errors.New("cart candidate invalid")
	ErrParkedCartNotFound        = errors.New("parked cart not found")
	ErrDiscountIndexInvalid      = errors.New("discount index invalid")
	ErrStorageUnavailable        = errors.New("session storage unavailable")
	ErrLocationNotFound          = errors.New("location not found")
	ErrProductNotAvailable       = errors.New("product not available")
	ErrInvalidCredentials        = errors.New("invalid credentials")
	ErrOperatorInactive          = errors.New("operator inactive")
)
