package pos

import (
	"errors"

	"github.com/caja-pos/internal/http/response"
	"github.com/caja-pos/internal/service"

	"github.com/gin-gonic/gin"
)

// LoginRequest 操作员登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// OperatorLogin 操作员登录
func (h *Handler) OperatorLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	token, operator, err := h.AuthService.Login(req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			respondError(c, response.CodeUnauthorized, "error.credentials_invalid", nil)
		case errors.Is(err, service.ErrOperatorInactive):
			respondError(c, response.CodeUnauthorized, "error.operator_inactive", nil)
		default:
			respondError(c, response.CodeInternal, "error.login_failed", err)
		}
		return
	}

	response.Success(c, gin.H{
		"token": token,
		"operator": gin.H{
			"id":           operator.ID,
			"username":     operator.Username,
			"display_name": operator.DisplayName,
		},
	})
}

// GetCurrentOperator 获取当前登录操作员
func (h *Handler) GetCurrentOperator(c *gin.Context) {
	operatorID, ok := getOperatorID(c)
	if !ok {
		return
	}
	operator, err := h.AuthService.GetOperator(operatorID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.operator_fetch_failed", err)
		return
	}
	if operator == nil {
		respondError(c, response.CodeNotFound, "error.operator_not_found", nil)
		return
	}
	response.Success(c, operator)
}
