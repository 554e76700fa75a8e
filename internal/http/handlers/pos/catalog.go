package pos

import (
	"github.com/caja-pos/internal/http/response"

	"github.com/gin-gonic/gin"
)

// SearchProducts 检索在售商品
func (h *Handler) SearchProducts(c *gin.Context) {
	query := c.Query("q")
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := parsePositiveInt(raw); err == nil {
			limit = parsed
		}
	}
	products, err := h.CatalogService.Search(query, limit)
	if err != nil {
		respondCatalogError(c, err)
		return
	}
	response.Success(c, gin.H{"products": products})
}

// GetLocations 列出启用门店
func (h *Handler) GetLocations(c *gin.Context) {
	locations, err := h.CatalogService.ListLocations()
	if err != nil {
		respondCatalogError(c, err)
		return
	}
	response.Success(c, gin.H{"locations": locations})
}

// ResolveProduct 解析商品在当前门店的加购候选与库存上限
func (h *Handler) ResolveProduct(c *gin.Context) {
	locationID, ok := h.getLocationID(c)
	if !ok {
		return
	}
	productID, err := parsePositiveInt(c.Param("id"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	variantID := 0
	if raw := c.Query("variant_id"); raw != "" {
		if parsed, perr := parsePositiveInt(raw); perr == nil {
			variantID = parsed
		}
	}
	resolved, err := h.CatalogService.ResolveByProduct(uint(productID), uint(variantID), locationID)
	if err != nil {
		respondCatalogError(c, err)
		return
	}
	response.Success(c, resolved)
}

// ResolveSerial 按串号解析加购候选
func (h *Handler) ResolveSerial(c *gin.Context) {
	locationID, ok := h.getLocationID(c)
	if !ok {
		return
	}
	serial := c.Param("serial")
	resolved, err := h.CatalogService.ResolveBySerial(serial, locationID)
	if err != nil {
		respondCatalogError(c, err)
		return
	}
	response.Success(c, resolved)
}
