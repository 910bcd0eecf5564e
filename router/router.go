package router

import (
	"time"

	"envelope/api"
	"envelope/config"
	_ "envelope/docs"
	"envelope/middleware"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config) *gin.Engine {
	// 设置运行模式
	gin.SetMode(cfg.Server.Mode)

	r := gin.Default()

	// CORS 中间件
	r.Use(CORSMiddleware())

	// Swagger 文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API v1 路由组
	v1 := r.Group("/api/v1")
	{
		// 认证相关路由（无需登录），登录接口加限流防爆破
		authHandler := api.NewAuthHandler(cfg)
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", middleware.LoginRateLimit(5, time.Minute), authHandler.Login)
		}

		// 需要 JWT 认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth())
		{
			// 预算账本
			budgetHandler := api.NewBudgetHandler()
			summaryHandler := api.NewSummaryHandler()
			budgets := authorized.Group("/budgets")
			{
				budgets.POST("", budgetHandler.Create)
				budgets.GET("", budgetHandler.List)
				budgets.GET("/reconcile", summaryHandler.Reconcile)
				budgets.GET("/:id", budgetHandler.Get)
				budgets.PUT("/:id", budgetHandler.Update)
				budgets.DELETE("/:id", budgetHandler.Delete)
			}

			// 信封
			envelopeHandler := api.NewEnvelopeHandler()
			envelopes := authorized.Group("/envelopes")
			{
				envelopes.POST("", envelopeHandler.Create)
				envelopes.GET("", envelopeHandler.List)
				envelopes.GET("/:id", envelopeHandler.Get)
				envelopes.PUT("/:id", envelopeHandler.Update)
				envelopes.DELETE("/:id", envelopeHandler.Delete)
			}

			// 信封分类
			categoryHandler := api.NewCategoryHandler()
			categories := authorized.Group("/categories")
			{
				categories.GET("", categoryHandler.List)
				categories.POST("", categoryHandler.Create)
				categories.PUT("/:id", categoryHandler.Update)
				categories.DELETE("/:id", categoryHandler.Delete)
			}

			// 收款方
			payeeHandler := api.NewPayeeHandler()
			payees := authorized.Group("/payees")
			{
				payees.POST("", payeeHandler.Create)
				payees.GET("", payeeHandler.List)
				payees.PUT("/:id", payeeHandler.Update)
				payees.DELETE("/:id", payeeHandler.Delete)
			}

			// 收入来源
			incomeSourceHandler := api.NewIncomeSourceHandler()
			incomeSources := authorized.Group("/income-sources")
			{
				incomeSources.POST("", incomeSourceHandler.Create)
				incomeSources.GET("", incomeSourceHandler.List)
				incomeSources.PUT("/:id", incomeSourceHandler.Update)
				incomeSources.DELETE("/:id", incomeSourceHandler.Delete)
			}

			// 交易，账本的唯一变更入口
			transactionHandler := api.NewTransactionHandler()
			transactions := authorized.Group("/transactions")
			{
				transactions.POST("", transactionHandler.Create)
				transactions.GET("", transactionHandler.List)
				transactions.GET("/upcoming", summaryHandler.Upcoming)
				transactions.GET("/:id", transactionHandler.Get)
				transactions.PUT("/:id", transactionHandler.Update)
				transactions.DELETE("/:id", transactionHandler.Delete)
				transactions.POST("/:id/restore", transactionHandler.Restore)
				transactions.GET("/:id/events", transactionHandler.ListEvents)
			}

			// 仪表盘
			authorized.GET("/dashboard", summaryHandler.Dashboard)
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	return r
}

// CORSMiddleware CORS 跨域中间件
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
