package pos

import (
	"strconv"
	"strings"

	handlershared "github.com/caja-pos/internal/http/handlers/shared"
	"github.com/caja-pos/internal/http/response"

	"github.com/gin-gonic/gin"
)

const locationIDHeader = "X-Location-ID"

// getLocationID 解析请求门店：优先 X-Location-ID 头，缺省时回退终端默认门店。
// 两者都为空时返回错误响应并终止处理。
func (h *Handler) getLocationID(c *gin.Context) (string, bool) {
	locationID := strings.TrimSpace(c.GetHeader(locationIDHeader))
	if locationID == "" {
		locationID = h.TerminalSettingService.DefaultLocationID()
	}
	if locationID == "" {
		respondError(c, response.CodeBadRequest, "error.location_required", nil)
		return "", false
	}
	return locationID, true
}

func getOperatorID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUint(c, "operator_id")
}

func parsePositiveInt(raw string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, err
	}
	if value <= 0 {
		return 0, strconv.ErrRange
	}
	return value, nil
}
