package router

import (
	"time"

	"github.com/Grey-kingreys/magazin-back-sub000/internal/config"
	"github.com/Grey-kingreys/magazin-back-sub000/internal/handler"
	"github.com/Grey-kingreys/magazin-back-sub000/internal/infra"
	"github.com/Grey-kingreys/magazin-back-sub000/internal/middleware"
	"github.com/Grey-kingreys/magazin-back-sub000/internal/repository"
	"github.com/Grey-kingreys/magazin-back-sub000/internal/service"
	"github.com/Grey-kingreys/magazin-back-sub000/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, smtpCB *infra.CircuitBreaker) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	storeRepo := repository.NewStoreRepository(db)
	productRepo := repository.NewProductRepository(db)
	stockRepo := repository.NewStockRepository(db)
	financeRepo := repository.NewFinanceRepository(db)
	registerRepo := repository.NewRegisterRepository(db)
	saleRepo := repository.NewSaleRepository(db)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg)
	stockSvc := service.NewStockService(stockRepo, productRepo)
	financeSvc := service.NewFinanceService(financeRepo, storeRepo)
	registerSvc := service.NewRegisterService(registerRepo, storeRepo, saleRepo, financeSvc)
	moneyflowSvc := service.NewMoneyFlowService(financeSvc, financeRepo, storeRepo, registerRepo)
	saleSvc := service.NewSaleService(saleRepo, storeRepo, productRepo, stockRepo, stockSvc, registerSvc, dispatcher)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	registersH := handler.NewRegisterHandler(registerSvc)
	salesH := handler.NewSaleHandler(saleSvc)
	stockH := handler.NewStockHandler(stockSvc)
	financeH := handler.NewFinanceHandler(moneyflowSvc, financeSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, smtpCB))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Roles: cashier, manager, admin — declared per-endpoint
		registers := v1.Group("/registers")
		{
			registers.POST("", middleware.RequireRole("cashier", "manager", "admin"), registersH.Open)
			registers.GET("/active", middleware.RequireRole("cashier", "manager", "admin"), registersH.GetActive)
			registers.GET("/:id", middleware.RequireRole("cashier", "manager", "admin"), registersH.Get)
			registers.PATCH("/:id/float", middleware.RequireRole("cashier", "manager", "admin"), registersH.Adjust)
			registers.POST("/:id/close", middleware.RequireRole("cashier", "manager", "admin"), registersH.Close)
			registers.DELETE("/:id", middleware.RequireRole("admin"), registersH.Delete)
			registers.GET("", middleware.RequireRole("manager", "admin"), registersH.History)
		}

		v1.POST("/sales", middleware.RequireRole("cashier", "manager", "admin"), salesH.Create)
		v1.GET("/sales", middleware.RequireRole("cashier", "manager", "admin"), salesH.List)
		v1.GET("/sales/:id", middleware.RequireRole("cashier", "manager", "admin"), salesH.Get)
		v1.PATCH("/sales/:id/status", middleware.RequireRole("manager", "admin"), salesH.UpdateStatus)

		v1.POST("/stock/movements", middleware.RequireRole("manager", "admin"), stockH.Move)
		v1.GET("/stock/movements", middleware.RequireRole("cashier", "manager", "admin"), stockH.ListMovements)

		finance := v1.Group("/finance")
		{
			finance.POST("/expenses", middleware.RequireRole("manager", "admin"), financeH.RecordExpense)
			finance.POST("/revenues", middleware.RequireRole("manager", "admin"), financeH.RecordRevenue)
			finance.DELETE("/transactions/:id", middleware.RequireRole("admin"), financeH.RemoveTransaction)
			finance.GET("/transactions", middleware.RequireRole("manager", "admin"), financeH.ListTransactions)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
