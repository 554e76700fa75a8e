package router

import (
	"github.com/caja-pos/internal/config"
	poshandlers "github.com/caja-pos/internal/http/handlers/pos"
	"github.com/caja-pos/internal/logger"
	"github.com/caja-pos/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	posHandler := poshandlers.New(c)

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 认证接口（无需鉴权）
		auth := apiV1.Group("/auth")
		{
			auth.POST("/login", posHandler.OperatorLogin)
		}

		// 终端接口（需鉴权，门店由 X-Location-ID 头决定）
		pos := apiV1.Group("/pos")
		pos.Use(OperatorJWTAuthMiddleware(cfg.JWT.SecretKey, c.OperatorRepo))
		{
			pos.GET("/me", posHandler.GetCurrentOperator)

			pos.GET("/locations", posHandler.GetLocations)
			pos.GET("/products", posHandler.SearchProducts)
			pos.GET("/products/:id/resolve", posHandler.ResolveProduct)
			pos.GET("/serials/:serial/resolve", posHandler.ResolveSerial)

			pos.GET("/cart", posHandler.GetCart)
			pos.POST("/cart/items", posHandler.AddCartItem)
			pos.POST("/cart/items/decrease", posHandler.DecreaseCartItem)
			pos.POST("/cart/items/remove", posHandler.RemoveCartItem)
			pos.POST("/cart/devolution", posHandler.BeginDevolution)
			pos.DELETE("/cart", posHandler.ResetCart)
			pos.POST("/cart/discount-applied", posHandler.MarkDiscountApplied)
			pos.GET("/cart/receipt", posHandler.GetReceiptPreview)
			pos.GET("/cart/actions", posHandler.GetCartActions)

			pos.GET("/discounts", posHandler.GetDiscounts)
			pos.POST("/discounts", posHandler.AddDiscount)
			pos.POST("/discounts/remove", posHandler.RemoveDiscount)
			pos.DELETE("/discounts", posHandler.ClearDiscounts)

			pos.GET("/parked-carts", posHandler.GetParkedCarts)
			pos.POST("/parked-carts", posHandler.ParkCart)
			pos.POST("/parked-carts/:id/load", posHandler.LoadParkedCart)
			pos.DELETE("/parked-carts/:id", posHandler.DeleteParkedCart)

			pos.GET("/config", posHandler.GetTerminalConfig)
			pos.PUT("/config", posHandler.UpdateTerminalConfig)
		}
	}

	return r
}
