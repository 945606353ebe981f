package router

import (
	"fmt"
	"strings"

	"github.com/laptop-next/internal/cache"
	"github.com/laptop-next/internal/config"
	adminhandlers "github.com/laptop-next/internal/http/handlers/admin"
	publichandlers "github.com/laptop-next/internal/http/handlers/public"
	"github.com/laptop-next/internal/logger"
	"github.com/laptop-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按前台/后台分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "ln"
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		Message:       "too many login attempts",
	}
	adminLoginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:admin_login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		Message:       "too many login attempts",
	}
	callbackRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:payment_callback", redisPrefix),
		WindowSeconds: cfg.Security.CallbackRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.CallbackRateLimit.MaxRequests,
		Message:       "too many requests",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 公开接口
		public := apiV1.Group("/public")
		{
			public.GET("/products", publicHandler.ListProducts)
			public.GET("/products/:slug", publicHandler.GetProduct)
			public.GET("/brands", publicHandler.ListBrands)
			public.GET("/categories", publicHandler.ListCategories)
		}

		// 用户认证接口
		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", publicHandler.Register)
			auth.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("email")), publicHandler.Login)
		}

		// 用户接口（需鉴权）
		user := apiV1.Group("")
		user.Use(UserJWTAuthMiddleware(cfg.UserJWT.SecretKey, c.UserRepo))
		{
			user.GET("/cart", publicHandler.GetCart)
			user.POST("/cart/items", publicHandler.AddCartItem)
			user.PUT("/cart/items/:variant_id", publicHandler.UpdateCartItem)
			user.DELETE("/cart/items/:variant_id", publicHandler.RemoveCartItem)
			user.DELETE("/cart", publicHandler.ClearCart)
			user.POST("/checkout", publicHandler.Checkout)
			user.GET("/orders", publicHandler.ListOrders)
			user.GET("/orders/:order_no", publicHandler.GetOrder)
			user.POST("/orders/:order_no/cancel", publicHandler.CancelOrder)
			user.POST("/orders/:order_no/payment", publicHandler.CreatePayment)
		}

		// 网关异步回调（无需鉴权，限流防重试风暴）
		apiV1.POST("/payments/callback", RateLimitMiddleware(redisClient, callbackRule, KeyByIP), publicHandler.PaymentCallback)

		// 管理员接口
		admin := apiV1.Group("/admin")
		{
			// 登录接口（无需鉴权）
			admin.POST("/login", RateLimitMiddleware(redisClient, adminLoginRule, KeyByIP), adminHandler.Login)

			// 需要鉴权的接口
			authorized := admin.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.AdminRepo), AdminRBACMiddleware(c.AuthzService))
			{
				authorized.GET("/profile", adminHandler.Profile)

				// 商品管理
				authorized.GET("/products", adminHandler.AdminListProducts)
				authorized.POST("/products", adminHandler.AdminCreateProduct)
				authorized.PUT("/products/:id", adminHandler.AdminUpdateProduct)
				authorized.PUT("/variants/:id", adminHandler.AdminUpdateVariant)

				// 品牌与分类管理
				authorized.GET("/brands", adminHandler.AdminListBrands)
				authorized.POST("/brands", adminHandler.AdminCreateBrand)
				authorized.PUT("/brands/:id", adminHandler.AdminUpdateBrand)
				authorized.DELETE("/brands/:id", adminHandler.AdminDeleteBrand)
				authorized.GET("/categories", adminHandler.AdminListCategories)
				authorized.POST("/categories", adminHandler.AdminCreateCategory)
				authorized.PUT("/categories/:id", adminHandler.AdminUpdateCategory)
				authorized.DELETE("/categories/:id", adminHandler.AdminDeleteCategory)

				// 订单管理
				authorized.GET("/orders", adminHandler.AdminListOrders)
				authorized.GET("/orders/:id", adminHandler.AdminGetOrder)
				authorized.PATCH("/orders/:id/status", adminHandler.AdminSetOrderStatus)
				authorized.PATCH("/orders/:id/paid", adminHandler.AdminSetOrderPaid)

				// 支付流水管理
				authorized.GET("/payments", adminHandler.AdminListPayments)
				authorized.POST("/payments/:app_trans_id/reconcile", adminHandler.AdminReconcilePayment)

				// 用户管理
				authorized.GET("/users", adminHandler.AdminListUsers)
				authorized.GET("/users/:id", adminHandler.AdminGetUser)
			}
		}
	}

	return r
}
