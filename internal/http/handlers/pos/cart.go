package pos

import (
	"errors"
	"time"

	"github.com/caja-pos/internal/http/response"
	"github.com/caja-pos/internal/models"
	"github.com/caja-pos/internal/service"

	"github.com/gin-gonic/gin"
)

// ManualItemRequest 手工行输入
type ManualItemRequest struct {
	Name      string       `json:"name" binding:"required"`
	UnitPrice models.Money `json:"unitPrice"`
}

// AddCartItemRequest 加购请求（商品/串号/手工行三选一）
type AddCartItemRequest struct {
	ProductID uint               `json:"productId"`
	VariantID uint               `json:"variantId"`
	Serial    string             `json:"serial"`
	Manual    *ManualItemRequest `json:"manual"`
	Quantity  int                `json:"quantity"`
	Force     bool               `json:"force"`
}

// CartStateResponse 购物车状态响应
type CartStateResponse struct {
	Items         []models.LineItem `json:"items"`
	IsDevolution  bool              `json:"isDevolution"`
	IsDiscount    bool              `json:"isDiscount"`
	RecentlyAdded []string          `json:"recentlyAdded"`
}

// GetCart 获取门店购物车状态
func (h *Handler) GetCart(c *gin.Context) {
	locationID, ok := h.getLocationID(c)
	if !ok {
		return
	}

	state, err := h.CartService.State(locationID)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, CartStateResponse{
		Items:         state.Items,
		IsDevolution:  state.IsDevolution,
		IsDiscount:    state.IsDiscount,
		RecentlyAdded: h.CartService.RecentlyAdded(locationID, time.Now()),
	})
}

// AddCartItem 加购。超出库存上限且未带 force 时返回 needs_confirmation，
// 终端确认后以 force=true 重新提交。
func (h *Handler) AddCartItem(c *gin.Context) {
	locationID, ok := h.getLocationID(c)
	if !ok {
		return
	}
	var req AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	resolved, err := h.resolveCandidate(locationID, req)
	if err != nil {
		respondCartError(c, err)
		return
	}

	result, err := h.CartService.AddItem(locationID, resolved.Candidate, resolved.StockCeiling, service.AddOptions{
		Quantity: req.Quantity,
		Force:    req.Force,
	})
	if err != nil {
		if errors.Is(err, service.ErrStockExceeded) {
			respondStockExceeded(c, result)
			return
		}
		respondCartError(c, err)
		return
	}
	response.Success(c, result)
}

func (h *Handler) resolveCandidate(locationID string, req AddCartItemRequest) (*service.ResolvedCandidate, error) {
	switch {
	case req.Serial != "":
		return h.CatalogService.ResolveBySerial(req.Serial, locationID)
	case req.Manual != nil:
		return h.CatalogService.ResolveManual(req.Manual.Name, req.Manual.UnitPrice, locationID)
	case req.ProductID != 0:
		return h.CatalogService.ResolveByProduct(req.ProductID, req.VariantID, locationID)
	default:
		return nil, service.ErrCartCandidateInvalid
	}
}

func respondStockExceeded(c *gin.Context, result service.AddResult) {
	response.ErrorWithData(c, response.CodeConflict, "error.stock_exceeded", gin.H{
		"requested_total": result.RequestedTotal,
		"stock_ceiling":   result.StockCeiling,
	})
}

// IdentityKeyRequest 行标识请求
type IdentityKeyRequest struct {
	IdentityKey string `json:"identityKey" binding:"required"`
}

// DecreaseCartItem 行数量减一，归零时移除该行
func (h *Handler) DecreaseCartItem(c *gin.Context) {
	locationID, ok := h.getLocationID(c)
	if !ok {
		return
	}
	var req IdentityKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if err := h.CartService.DecreaseItem(locationID, req.IdentityKey); err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, gin.H{"updated": true})
}

// RemoveCartItem 移除一行；退货锚定行被移除时整车作废
func (h *Handler) RemoveCartItem(c *gin.Context) {
	locationID, ok := h.getLocationID(c)
	if !ok {
		return
	}
	var req IdentityKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	cleared, err := h.CartService.RemoveItem(locationID, req.IdentityKey)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, gin.H{"removed": true, "cart_cleared": cleared})
}

// BeginDevolutionRequest 退货开启请求
type BeginDevolutionRequest struct {
	ProductID uint   `json:"productId"`
	VariantID uint   `json:"variantId"`
	Serial    string `json:"serial"`
	Reference string `json:"reference"`
	Quantity  int    `json:"quantity"`
}

// BeginDevolution 以退货锚定行开启退货模式
func (h *Handler) BeginDevolution(c *gin.Context) {
	locationID, ok := h.getLocationID(c)
	if !ok {
		return
	}
	var req BeginDevolutionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	resolved, err := h.resolveCandidate(locationID, AddCartItemRequest{
		ProductID: req.ProductID,
		VariantID: req.VariantID,
		Serial:    req.Serial,
	})
	if err != nil {
		respondCartError(c, err)
		return
	}
	candidate := resolved.Candidate
	candidate.Reference = req.Reference

	if err := h.CartService.BeginDevolution(locationID, candidate, req.Quantity); err != nil {
		respondCartError(c, err)
		return
	}
	state, err := h.CartService.State(locationID)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, state)
}

// ResetCart 清空购物车并复位退货/折扣标记
func (h *Handler) ResetCart(c *gin.Context) {
	locationID, ok := h.getLocationID(c)
	if !ok {
		return
	}
	if err := h.CartService.ResetDevolution(locationID); err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, gin.H{"cleared": true})
}

// MarkDiscountApplied 标记当前购物车已应用折扣
func (h *Handler) MarkDiscountApplied(c *gin.Context) {
	locationID, ok := h.getLocationID(c)
	if !ok {
		return
	}
	if err := h.CartService.MarkDiscountApplied(locationID); err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, gin.H{"updated": true})
}

// GetReceiptPreview 生成结账快照
func (h *Handler) GetReceiptPreview(c *gin.Context) {
	locationID, ok := h.getLocationID(c)
	if !ok {
		return
	}
	snapshot, err := h.ReceiptService.Snapshot(locationID)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, snapshot)
}

// GetCartActions 列出门店最近的购物车动作
func (h *Handler) GetCartActions(c *gin.Context) {
	locationID, ok := h.getLocationID(c)
	if !ok {
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := parsePositiveInt(raw); err == nil {
			limit = parsed
		}
	}
	logs, err := h.CartService.RecentActions(locationID, limit)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, gin.H{"actions": logs})
}
