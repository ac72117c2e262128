package router

import (
	"time"

	"github.com/LAB4170/zion-grocery-dashboard-sub000/internal/cache"
	"github.com/LAB4170/zion-grocery-dashboard-sub000/internal/config"
	"github.com/LAB4170/zion-grocery-dashboard-sub000/internal/handler"
	"github.com/LAB4170/zion-grocery-dashboard-sub000/internal/middleware"
	"github.com/LAB4170/zion-grocery-dashboard-sub000/internal/model"
	"github.com/LAB4170/zion-grocery-dashboard-sub000/internal/repository"
	"github.com/LAB4170/zion-grocery-dashboard-sub000/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(cfg.RateLimitPerMinute, time.Minute))

	// ── Stats cache ──────────────────────────────────────────────────────────
	// Redis when available, in-process otherwise.
	var stats cache.StatsCache
	if rdb != nil {
		stats = cache.NewRedis(rdb)
	} else {
		stats = cache.NewMemory(time.Now)
	}

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	debtRepo := repository.NewDebtRepository(db)
	movementRepo := repository.NewStockMovementRepository(db)
	expenseRepo := repository.NewExpenseRepository(db)
	reportRepo := repository.NewReportRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg)
	productSvc := service.NewProductService(productRepo, saleRepo, movementRepo, stats)
	saleSvc := service.NewSaleService(saleRepo, productRepo, debtRepo, movementRepo, stats)
	debtSvc := service.NewDebtService(debtRepo, stats)
	expenseSvc := service.NewExpenseService(expenseRepo, stats)
	reportSvc := service.NewReportService(reportRepo, stats, time.Duration(cfg.StatsCacheTTLSeconds)*time.Second)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usersH := handler.NewUsersHandler(authSvc)
	productsH := handler.NewProductsHandler(productSvc)
	salesH := handler.NewSalesHandler(saleSvc)
	debtsH := handler.NewDebtsHandler(debtSvc)
	expensesH := handler.NewExpensesHandler(expenseSvc)
	reportsH := handler.NewReportsHandler(reportSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	anyRole := middleware.RequireRole(model.RoleAdmin, model.RoleStaff)
	adminOnly := middleware.RequireRole(model.RoleAdmin)

	v1 := r.Group("/v1", jwtMW)
	{
		// Sales: staff record and list; edits and deletions are admin-only
		v1.POST("/sales", anyRole, salesH.Create)
		v1.GET("/sales", anyRole, salesH.List)
		v1.GET("/sales/:id", anyRole, salesH.Get)
		v1.PUT("/sales/:id", adminOnly, salesH.Update)
		v1.DELETE("/sales/:id", adminOnly, salesH.Delete)

		// Products: all authenticated can read, admin writes
		v1.GET("/products", anyRole, productsH.List)
		v1.GET("/products/low-stock", anyRole, productsH.LowStock)
		v1.GET("/products/:id", anyRole, productsH.Get)
		prods := v1.Group("/products", adminOnly)
		{
			prods.POST("", productsH.Create)
			prods.PUT("/:id", productsH.Update)
			prods.DELETE("/:id", productsH.Delete)
			prods.POST("/:id/adjust-stock", productsH.AdjustStock)
		}
		v1.GET("/stock-movements", anyRole, productsH.Movements)

		// Debts: staff record payments; deletion is admin-only
		v1.POST("/debts", anyRole, debtsH.Create)
		v1.GET("/debts", anyRole, debtsH.List)
		v1.GET("/debts/:id", anyRole, debtsH.Get)
		v1.PUT("/debts/:id", anyRole, debtsH.Update)
		v1.DELETE("/debts/:id", adminOnly, debtsH.Delete)
		v1.POST("/debts/:id/payments", anyRole, debtsH.MakePayment)
		v1.GET("/debts/:id/payments", anyRole, debtsH.ListPayments)

		// Expenses
		v1.POST("/expenses", anyRole, expensesH.Create)
		v1.GET("/expenses", anyRole, expensesH.List)
		v1.GET("/expenses/:id", anyRole, expensesH.Get)
		v1.PUT("/expenses/:id", adminOnly, expensesH.Update)
		v1.DELETE("/expenses/:id", adminOnly, expensesH.Delete)

		// Reports
		reports := v1.Group("/reports", anyRole)
		{
			reports.GET("/dashboard", reportsH.Dashboard)
			reports.GET("/sales-summary", reportsH.SalesSummary)
			reports.GET("/top-products", reportsH.TopProducts)
			reports.GET("/payment-methods", reportsH.PaymentMethods)
			reports.GET("/expense-categories", reportsH.ExpenseCategories)
		}

		// Users: admin only
		users := v1.Group("/users", adminOnly)
		{
			users.POST("", usersH.Create)
			users.GET("", usersH.List)
			users.PUT("/:id", usersH.Update)
			users.DELETE("/:id", usersH.Deactivate)
			users.PATCH("/:id/reactivate", usersH.Reactivate)
		}
	}

	// Swagger UI is only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
