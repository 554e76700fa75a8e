package pos

import (
	"github.com/caja-pos/internal/http/response"
	"github.com/caja-pos/internal/service"

	"github.com/gin-gonic/gin"
)

// GetTerminalConfig 获取终端生效设置
func (h *Handler) GetTerminalConfig(c *gin.Context) {
	response.Success(c, h.TerminalSettingService.Get())
}

// UpdateTerminalConfig 更新终端设置
func (h *Handler) UpdateTerminalConfig(c *gin.Context) {
	var settings service.TerminalSettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if err := h.TerminalSettingService.Update(settings); err != nil {
		respondError(c, response.CodeStorage, "error.storage_unavailable", err)
		return
	}
	response.Success(c, settings)
}
