package provider

import (
	"github.com/laptop-next/internal/authz"
	"github.com/laptop-next/internal/cache"
	"github.com/laptop-next/internal/config"
	"github.com/laptop-next/internal/logger"
	"github.com/laptop-next/internal/models"
	"github.com/laptop-next/internal/payment/zalopay"
	"github.com/laptop-next/internal/queue"
	"github.com/laptop-next/internal/repository"
	"github.com/laptop-next/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	AdminRepo    repository.AdminRepository
	UserRepo     repository.UserRepository
	BrandRepo    repository.BrandRepository
	CategoryRepo repository.CategoryRepository
	ProductRepo  repository.ProductRepository
	VariantRepo  repository.VariantRepository
	CartRepo     repository.CartRepository
	OrderRepo    repository.OrderRepository
	PaymentRepo  repository.PaymentRepository

	// Services
	AuthzService    *authz.Service
	AuthService     *service.AuthService
	ProductService  *service.ProductService
	CartService     *service.CartService
	CheckoutService *service.CheckoutService
	OrderService    *service.OrderService
	PaymentService  *service.PaymentService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.UserRepo = repository.NewUserRepository(db)
	c.BrandRepo = repository.NewBrandRepository(db)
	c.CategoryRepo = repository.NewCategoryRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.VariantRepo = repository.NewVariantRepository(db)
	c.CartRepo = repository.NewCartRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.PaymentRepo = repository.NewPaymentRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	var gateway *zalopay.Config
	if c.Config.ZaloPay.Enabled {
		gateway = &zalopay.Config{
			AppID:       c.Config.ZaloPay.AppID,
			Key1:        c.Config.ZaloPay.Key1,
			Key2:        c.Config.ZaloPay.Key2,
			GatewayURL:  c.Config.ZaloPay.GatewayURL,
			CallbackURL: c.Config.ZaloPay.CallbackURL,
			RedirectURL: c.Config.ZaloPay.RedirectURL,
		}
		if err := zalopay.ValidateConfig(gateway); err != nil {
			logger.Errorw("provider_zalopay_config_invalid", "error", err)
			gateway = nil
		}
	}

	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo, c.UserRepo)
	c.ProductService = service.NewProductService(c.ProductRepo, c.VariantRepo, c.BrandRepo, c.CategoryRepo)
	c.CartService = service.NewCartService(c.CartRepo, c.VariantRepo)
	c.CheckoutService = service.NewCheckoutService(
		c.CartRepo,
		c.OrderRepo,
		c.VariantRepo,
		c.Config.Order.ImmediatePaidMethods,
		c.Config.Order.CheckoutLockSeconds,
	)
	c.OrderService = service.NewOrderService(c.OrderRepo, c.VariantRepo, c.QueueClient)
	c.PaymentService = service.NewPaymentService(c.PaymentRepo, c.OrderRepo, c.OrderService, gateway, c.QueueClient)
}
