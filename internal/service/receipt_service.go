package service

import (
	"github.com/caja-pos/internal/models"

	"github.com/shopspring/decimal"
)

// ReceiptSnapshot 结账快照（购物车行 + 折扣台账 + 会话标记）
type ReceiptSnapshot struct {
	LineItems    []models.LineItem       `json:"lineItems"`
	Discounts    []models.DiscountRecord `json:"discounts"`
	IsDevolution bool                    `json:"isDevolution"`
	IsDiscount   bool                    `json:"isDiscount"`
	Subtotal     models.Money            `json:"subtotal"`
	DiscountDue  models.Money            `json:"discountDue"`
	Total        models.Money            `json:"total"`
}

// ReceiptService 结账快照服务（组合购物车与折扣台账）
type ReceiptService struct {
	cart      *CartService
	discounts *DiscountService
}

// NewReceiptService 创建结账快照服务
func NewReceiptService(cart *CartService, discounts *DiscountService) *ReceiptService {
	return &ReceiptService{cart: cart, discounts: discounts}
}

// Snapshot 生成门店当前会话的结账快照
func (s *ReceiptService) Snapshot(locationID string) (*ReceiptSnapshot, error) {
	state, err := s.cart.State(locationID)
	if err != nil {
		return nil, err
	}
	discounts, err := s.discounts.List(locationID)
	if err != nil {
		return nil, err
	}

	subtotal := decimal.Zero
	for _, item := range state.Items {
		unit := item.UnitPrice.Decimal
		if !item.DiscountedUnitPrice.Decimal.IsZero() {
			unit = item.DiscountedUnitPrice.Decimal
		}
		subtotal = subtotal.Add(unit.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	due := decimal.Zero
	for _, d := range discounts {
		due = due.Add(d.Amount.Decimal)
		if !d.Percent.IsZero() {
			due = due.Add(subtotal.Mul(d.Percent).Div(decimal.NewFromInt(100)))
		}
	}

	return &ReceiptSnapshot{
		LineItems:    state.Items,
		Discounts:    discounts,
		IsDevolution: state.IsDevolution,
		IsDiscount:   state.IsDiscount,
		Subtotal:     models.NewMoneyFromDecimal(subtotal),
		DiscountDue:  models.NewMoneyFromDecimal(due),
		Total:        models.NewMoneyFromDecimal(subtotal.Sub(due)),
	}, nil
}
