package pos

import "github.com/caja-pos/internal/provider"

// Handler 收银终端接口处理器入口
// 说明：该处理器覆盖终端侧全部 API（购物车、折扣、挂单、目录、配置）。
type Handler struct {
	*provider.Container
}

// New 创建终端处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
