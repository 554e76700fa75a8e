package provider

import (
	"github.com/caja-pos/internal/config"
	"github.com/caja-pos/internal/models"
	"github.com/caja-pos/internal/repository"
	"github.com/caja-pos/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config *config.Config

	// Repositories
	SessionRepo       repository.SessionRepository
	ProductRepo       repository.ProductRepository
	LocationRepo      repository.LocationRepository
	OperatorRepo      repository.OperatorRepository
	CartActionLogRepo repository.CartActionLogRepository

	// Services
	AuthService            *service.AuthService
	TerminalSettingService *service.TerminalSettingService
	CatalogService         *service.CatalogService
	CartService            *service.CartService
	DiscountService        *service.DiscountService
	ParkedCartService      *service.ParkedCartService
	ReceiptService         *service.ReceiptService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	c := &Container{Config: cfg}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.SessionRepo = repository.NewSessionRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.LocationRepo = repository.NewLocationRepository(db)
	c.OperatorRepo = repository.NewOperatorRepository(db)
	c.CartActionLogRepo = repository.NewCartActionLogRepository(db)
}

func (c *Container) initServices() {
	c.AuthService = service.NewAuthService(c.OperatorRepo, c.Config.JWT)
	c.TerminalSettingService = service.NewTerminalSettingService(c.SessionRepo, c.Config.Sales)
	c.CatalogService = service.NewCatalogService(c.ProductRepo, c.LocationRepo)
	c.CartService = service.NewCartService(c.SessionRepo, c.CartActionLogRepo, c.TerminalSettingService)
	c.DiscountService = service.NewDiscountService(c.SessionRepo, c.CartService)
	c.ParkedCartService = service.NewParkedCartService(c.SessionRepo, c.CartService)
	c.ReceiptService = service.NewReceiptService(c.CartService, c.DiscountService)
}
