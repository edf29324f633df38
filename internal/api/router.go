package api

import (
	"time"

	catalogHandler "catalog-normalizer/internal/api/handlers/catalog"
	"catalog-normalizer/internal/api/handlers/health"
	"catalog-normalizer/internal/api/middleware"
	"catalog-normalizer/internal/core/cache"
	core "catalog-normalizer/internal/core/catalog"
	"catalog-normalizer/internal/infrastructure/config"
	"catalog-normalizer/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 請求體大小限制 (50MB，目錄文件可能很大)
const maxBodySize = 50 << 20

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, resultCache cache.ResultCache) (*gin.Engine, error) {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	// 創建路由引擎
	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(requestid.New()) // 自動生成請求 ID

	// CORS 設置
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// 請求體大小限制
	router.Use(middleware.BodySizeLimit(maxBodySize))

	// 速率限制
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}

	// 初始化目錄服務
	catalogService := core.NewService(cfg.Engine, resultCache)

	common.LogInfo("Catalog service initialized",
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
		zap.String("cache_backend", cfg.Cache.Backend),
		zap.String("default_diet", cfg.Engine.DefaultDiet),
		zap.Int64("id_seed", cfg.Engine.IDSeed),
	)

	// 全局中間件：注入配置與服務
	router.Use(func(c *gin.Context) {
		c.Set("config", cfg)
		c.Set("catalog_service", catalogService)
		c.Next()
	})

	// 健康檢查路由
	router.GET("/health", health.HealthCheck)
	router.GET("/ready", health.ReadinessCheck)
	router.GET("/live", health.LivenessCheck)

	// API 路由組
	api := router.Group("/api/v1")
	{
		handler := catalogHandler.NewHandler(catalogService)

		// 目錄相關路由
		catalogGroup := api.Group("/catalog")
		{
			// 正規化一份原始目錄
			catalogGroup.POST("/normalize", handler.HandleNormalize)

			// 讀取最近一次的正規化結果
			catalogGroup.GET("", handler.HandleCatalog)

			// 餐點規劃器的桶位查詢
			catalogGroup.GET("/:region/:diet/:mealType", handler.HandleBucket)
		}

		// 變更報告
		api.GET("/report", handler.HandleReport)
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.Bool("rate_limit_enabled", cfg.RateLimit.Enabled),
		zap.Int64("max_body_size", maxBodySize),
	)

	return router, nil
}
