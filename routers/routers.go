package routers

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"storefront/auth"
	"storefront/cache"
	"storefront/checkout"
	"storefront/config"
	"storefront/handlers"
	"storefront/middleware"
	"storefront/store"
)

// Dependencies 路由使用的所有服務
type Dependencies struct {
	DB    *gorm.DB
	Redis *redis.Client

	Users        *store.Users
	Categories   *store.Categories
	Products     *store.Products
	Orders       *store.Orders
	ProductCache *cache.Products

	Passwords   *auth.Passwords
	Tokens      *auth.Tokens
	Revocations *auth.Revocations

	Checkout *checkout.Service
}

func NewDependencies(cfg config.Config, db *gorm.DB, rdb *redis.Client, gateway checkout.Gateway) *Dependencies {
	products := store.NewProducts(db)
	orders := store.NewOrders(db)
	users := store.NewUsers(db)
	return &Dependencies{
		DB:           db,
		Redis:        rdb,
		Users:        users,
		Categories:   store.NewCategories(db),
		Products:     products,
		Orders:       orders,
		ProductCache: cache.NewProducts(rdb, products, cfg.Redis.ProductCacheTTL),
		Passwords:    auth.NewPasswords(cfg.Auth.BcryptCost),
		Tokens:       auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		Revocations:  auth.NewRevocations(rdb),
		Checkout:     checkout.NewService(gateway, orders, users),
	}
}

func SetupRouters(d *Dependencies) *gin.Engine {
	//建立Gin路由器
	router := gin.New()
	router.Use(
		gin.Logger(),
		gin.Recovery(),
		middleware.RequestIDMiddleware(),
		middleware.CORSMiddleware(),
		middleware.AuthMiddleware(d.Tokens, d.Revocations),
	)
	_ = router.SetTrustedProxies(nil)

	loginRequired := []gin.HandlerFunc{middleware.CheckLoginMiddleware()}
	adminRequired := []gin.HandlerFunc{middleware.CheckLoginMiddleware(), middleware.CheckAdminPermissionMiddleware(d.Users)}

	router.GET("/health", func(context *gin.Context) {
		handlers.HealthHandler(context, d.DB, d.Redis)
	})

	////使用者及帳號
	api := router.Group("/api")
	{
		//註冊帳號
		api.POST("/register", func(context *gin.Context) {
			handlers.RegisterHandler(context, d.Users, d.Passwords, d.Tokens)
		})
		//登入帳號
		api.POST("/login", func(context *gin.Context) {
			handlers.LoginHandler(context, d.Users, d.Passwords, d.Tokens)
		})
		//忘記密碼
		api.POST("/forgot-password", func(context *gin.Context) {
			handlers.ForgotPasswordHandler(context, d.Users, d.Passwords)
		})

		////需要登入
		session := api.Group("", loginRequired...)
		{
			//確認是否登入
			session.GET("/user-auth", handlers.AuthProbeHandler)
			//修改使用者資料
			session.PUT("/profile", func(context *gin.Context) {
				handlers.UpdateProfileHandler(context, d.Users, d.Passwords)
			})
			//查詢訂單列表
			session.GET("/orders", func(context *gin.Context) {
				handlers.GetOrderListHandler(context, d.Orders)
			})
			//登出
			session.POST("/logout", func(context *gin.Context) {
				handlers.LogOutHandler(context, d.Revocations)
			})
		}

		////需要admin身分
		admin := api.Group("", adminRequired...)
		{
			//確認admin權限
			admin.GET("/admin-auth", handlers.AuthProbeHandler)
			//查詢所有訂單
			admin.GET("/all-orders", func(context *gin.Context) {
				handlers.GetAllOrdersHandler(context, d.Orders)
			})
			//修改訂單狀態
			admin.PUT("/order-status/:orderId", func(context *gin.Context) {
				handlers.UpdateOrderStatusHandler(context, d.Orders)
			})
			//查詢使用者列表
			admin.GET("/all-users", func(context *gin.Context) {
				handlers.GetUserListHandler(context, d.Users)
			})
			//刪除使用者及其訂單
			admin.DELETE("/delete-users/:id", func(context *gin.Context) {
				handlers.DeleteUserHandler(context, d.Users, d.Orders)
			})
		}
	}

	////商品分類
	category := router.Group("/api/category")
	{
		category.GET("", func(context *gin.Context) {
			handlers.GetCategoryListHandler(context, d.Categories)
		})
		category.GET("/:slug", func(context *gin.Context) {
			handlers.GetCategoryHandler(context, d.Categories)
		})

		admin := category.Group("", adminRequired...)
		{
			admin.POST("/create-category", func(context *gin.Context) {
				handlers.CreateCategoryHandler(context, d.Categories)
			})
			admin.PUT("/update-category/:id", func(context *gin.Context) {
				handlers.UpdateCategoryHandler(context, d.Categories, d.ProductCache)
			})
			admin.DELETE("/delete-category/:id", func(context *gin.Context) {
				handlers.DeleteCategoryHandler(context, d.Categories, d.ProductCache)
			})
		}
	}

	////商品及付款
	product := router.Group("/api/product")
	{
		//查詢最新商品列表
		product.GET("", func(context *gin.Context) {
			handlers.GetProductListHandler(context, d.ProductCache)
		})
		//查詢商品詳細資料
		product.GET("/get-product/:slug", func(context *gin.Context) {
			handlers.GetProductDataHandler(context, d.Products)
		})
		//查詢商品圖片
		product.GET("/product-photo/:pid", func(context *gin.Context) {
			handlers.GetProductPhotoHandler(context, d.Products)
		})
		//篩選商品
		product.POST("/product-filters", func(context *gin.Context) {
			handlers.FilterProductsHandler(context, d.Products)
		})
		//商品總數
		product.GET("/count", func(context *gin.Context) {
			handlers.CountProductsHandler(context, d.Products)
		})
		product.GET("/product-list/:page", func(context *gin.Context) {
			handlers.ProductListPageHandler(context, d.Products)
		})
		product.GET("/pagination", func(context *gin.Context) {
			handlers.PaginationHandler(context, d.Products)
		})
		//搜尋商品
		product.GET("/search/:keyword", func(context *gin.Context) {
			handlers.SearchProductsHandler(context, d.Products)
		})

		//付款
		product.GET("/braintree/token", func(context *gin.Context) {
			handlers.PaymentTokenHandler(context, d.Checkout)
		})
		product.POST("/braintree/payment", append(loginRequired, func(context *gin.Context) {
			handlers.PaymentHandler(context, d.Checkout)
		})...)

		admin := product.Group("", adminRequired...)
		{
			//新增商品
			admin.POST("/create-product", func(context *gin.Context) {
				handlers.CreateProductHandler(context, d.Products, d.ProductCache)
			})
			//修改商品
			admin.PUT("/update-product/:pid", func(context *gin.Context) {
				handlers.UpdateProductHandler(context, d.Products, d.ProductCache)
			})
			//刪除商品
			admin.DELETE("/delete-product/:pid", func(context *gin.Context) {
				handlers.DeleteProductHandler(context, d.Products, d.ProductCache)
			})
		}
	}

	return router
}
