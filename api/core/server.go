package core

import (
	"net/http"
	"time"

	"github.com/anoixa/pos-admin/api/common"
	handlerLanes "github.com/anoixa/pos-admin/api/handler/lanes"
	handlerPairing "github.com/anoixa/pos-admin/api/handler/pairing"
	"github.com/anoixa/pos-admin/api/middleware"
	"github.com/anoixa/pos-admin/config"
	"github.com/anoixa/pos-admin/database"
	storesrepo "github.com/anoixa/pos-admin/database/repo/stores"
	laneSvc "github.com/anoixa/pos-admin/internal/lanes"
	pairingSvc "github.com/anoixa/pos-admin/internal/pairing"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var startTime = time.Now()

// ServerDependencies 服务器依赖项
type ServerDependencies struct {
	DatabaseFactory *database.Factory
	StoresRepo      *storesrepo.Repository
	LaneService     *laneSvc.Service
	PairingService  *pairingSvc.Service
}

// 组装路由
func setupRouter(deps *ServerDependencies) (*gin.Engine, func()) {
	cfg := config.Get()

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// 全局中间件
	if config.IsDevelopment() {
		router.Use(gin.Logger())
	}
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.BaseURL()},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.SetTrustedProxies(nil)

	// 速率限制：认领接口面向未认证设备，单独用更严的桶
	apiRateLimiter := middleware.NewIPRateLimiter(cfg.RateLimitApiRPS, cfg.RateLimitApiBurst, cfg.RateLimitExpireTime)
	claimRateLimiter := middleware.NewIPRateLimiter(cfg.RateLimitClaimRPS, cfg.RateLimitClaimBurst, cfg.RateLimitExpireTime)
	cleanup := func() {
		apiRateLimiter.StopCleanup()
		claimRateLimiter.StopCleanup()
	}

	router.GET("/health", func(context *gin.Context) {
		dbStatus := "ok"
		if err := deps.DatabaseFactory.Ping(); err != nil {
			dbStatus = "unavailable"
		}
		httpStatus := http.StatusOK
		if dbStatus != "ok" {
			httpStatus = http.StatusServiceUnavailable
		}
		context.JSON(httpStatus, gin.H{
			"status":  dbStatus,
			"uptime":  time.Since(startTime).Round(time.Second).String(),
			"version": config.Version,
		})
	})
	router.GET("/version", func(context *gin.Context) {
		common.RespondSuccess(context, gin.H{
			"version": config.Version,
			"commit":  config.CommitHash,
		})
	})

	// 创建处理器（依赖注入）
	laneHandler := handlerLanes.NewHandler(deps.LaneService, deps.StoresRepo)
	pairingHandler := handlerPairing.NewHandler(deps.PairingService, deps.StoresRepo)

	apiGroup := router.Group("/api")
	apiGroup.Use(func(context *gin.Context) { // 所有API禁止缓存
		context.Header("Cache-Control", "no-store")
		context.Next()
	})
	{
		v1 := apiGroup.Group("/v1")
		{
			// 设备认领，无认证
			pairGroup := v1.Group("/pair")
			pairGroup.Use(claimRateLimiter.Middleware())
			{
				pairGroup.POST("/claim", pairingHandler.Claim) // POST /api/v1/pair/claim
			}

			// 运营端接口，Bearer JWT
			authed := v1.Group("")
			authed.Use(apiRateLimiter.Middleware())
			authed.Use(middleware.JWTAuth())
			{
				authed.GET("/stores/current", laneHandler.GetCurrentStore) // GET /api/v1/stores/current

				storeGroup := authed.Group("/stores/:storeId")
				{
					storeGroup.GET("/lanes", laneHandler.ListLanes)              // GET /api/v1/stores/{store}/lanes
					storeGroup.POST("/lanes", laneHandler.CreateLane)            // POST /api/v1/stores/{store}/lanes
					storeGroup.PATCH("/lanes/:laneId", laneHandler.RenameLane)   // PATCH /api/v1/stores/{store}/lanes/{lane}
					storeGroup.DELETE("/lanes/:laneId", laneHandler.ArchiveLane) // DELETE /api/v1/stores/{store}/lanes/{lane}

					storeGroup.POST("/lanes/:laneId/pairing-codes", pairingHandler.IssueCode) // POST /api/v1/stores/{store}/lanes/{lane}/pairing-codes
				}
			}
		}
	}

	return router, cleanup
}

// StartServer 创建 http.Server
func StartServer(deps *ServerDependencies) (*http.Server, func()) {
	cfg := config.Get()
	router, clean := setupRouter(deps)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  cfg.ServerIdleTimeout,
	}

	return srv, clean
}
