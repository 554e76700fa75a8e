package pos

import (
	"github.com/caja-pos/internal/http/response"
	"github.com/caja-pos/internal/models"

	"github.com/gin-gonic/gin"
)

// GetParkedCarts 列出门店挂单
func (h *Handler) GetParkedCarts(c *gin.Context) {
	locationID, ok := h.getLocationID(c)
	if !ok {
		return
	}
	carts, err := h.ParkedCartService.List(locationID)
	if err != nil {
		respondParkedCartError(c, err)
		return
	}
	response.Success(c, gin.H{"parked_carts": carts})
}

// ParkCartRequest 挂单请求
type ParkCartRequest struct {
	Name  string      `json:"name"`
	Extra models.JSON `json:"extra"`
}

// ParkCart 把当前购物车保存为挂单并清空购物车
func (h *Handler) ParkCart(c *gin.Context) {
	locationID, ok := h.getLocationID(c)
	if !ok {
		return
	}
	var req ParkCartRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	parked, err := h.ParkedCartService.Save(locationID, req.Name, req.Extra)
	if err != nil {
		respondParkedCartError(c, err)
		return
	}
	if parked == nil {
		respondError(c, response.CodeBadRequest, "error.cart_empty", nil)
		return
	}
	response.Success(c, parked)
}

// LoadParkedCart 恢复挂单到当前购物车（挂单保留）
func (h *Handler) LoadParkedCart(c *gin.Context) {
	locationID, ok := h.getLocationID(c)
	if !ok {
		return
	}
	parked, err := h.ParkedCartService.Load(locationID, c.Param("id"))
	if err != nil {
		respondParkedCartError(c, err)
		return
	}
	response.Success(c, parked)
}

// DeleteParkedCart 删除指定挂单
func (h *Handler) DeleteParkedCart(c *gin.Context) {
	locationID, ok := h.getLocationID(c)
	if !ok {
		return
	}
	if err := h.ParkedCartService.Delete(locationID, c.Param("id")); err != nil {
		respondParkedCartError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}
