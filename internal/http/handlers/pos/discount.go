package pos

import (
	"github.com/caja-pos/internal/http/response"
	"github.com/caja-pos/internal/models"

	"github.com/gin-gonic/gin"
)

// GetDiscounts 获取门店折扣台账
func (h *Handler) GetDiscounts(c *gin.Context) {
	locationID, ok := h.getLocationID(c)
	if !ok {
		return
	}
	records, err := h.DiscountService.List(locationID)
	if err != nil {
		respondDiscountError(c, err)
		return
	}
	response.Success(c, gin.H{"discounts": records})
}

// AddDiscount 追加折扣记录
func (h *Handler) AddDiscount(c *gin.Context) {
	locationID, ok := h.getLocationID(c)
	if !ok {
		return
	}
	var record models.DiscountRecord
	if err := c.ShouldBindJSON(&record); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if record.Name == "" && record.Code == "" {
		respondError(c, response.CodeBadRequest, "error.discount_invalid", nil)
		return
	}
	if err := h.DiscountService.Add(locationID, record); err != nil {
		respondDiscountError(c, err)
		return
	}
	response.Success(c, gin.H{"added": true})
}

// RemoveDiscountRequest 按下标移除折扣请求
type RemoveDiscountRequest struct {
	Index *int `json:"index" binding:"required"`
}

// RemoveDiscount 按下标移除折扣记录
func (h *Handler) RemoveDiscount(c *gin.Context) {
	locationID, ok := h.getLocationID(c)
	if !ok {
		return
	}
	var req RemoveDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if err := h.DiscountService.RemoveAt(locationID, *req.Index); err != nil {
		respondDiscountError(c, err)
		return
	}
	response.Success(c, gin.H{"removed": true})
}

// ClearDiscounts 清空门店折扣台账
func (h *Handler) ClearDiscounts(c *gin.Context) {
	locationID, ok := h.getLocationID(c)
	if !ok {
		return
	}
	if err := h.DiscountService.Clear(locationID); err != nil {
		respondDiscountError(c, err)
		return
	}
	response.Success(c, gin.H{"cleared": true})
}
