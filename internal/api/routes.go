package api

import (
	"github.com/gin-gonic/gin"
	"github.com/gorillaworkout/dupoin-sheet-converter/internal/config"
	"github.com/gorillaworkout/dupoin-sheet-converter/internal/hr"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Controllers 路由用到的控制器集合
type Controllers struct {
	Resource *ResourceController
	Pipeline *PipelineController
	Xero     *XeroController
	Sheets   *SheetsController
}

// SetupRoutes 配置路由
func SetupRoutes(cfg *config.Config, db *gorm.DB, logger *logrus.Logger, ctrl Controllers) *gin.Engine {
	if config.IsProduction(cfg) {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	// 中间件
	router.Use(RequestIDMiddleware())
	router.Use(RequestLogMiddleware(logger))
	router.Use(CORSMiddleware(cfg.CORS.AllowedOrigins))
	router.Use(RateLimitMiddleware(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst))

	// 健康检查
	healthController := NewHealthController(db)
	router.GET("/health", healthController.Check)

	// Prometheus 指标端点
	router.GET("/metrics", MetricsHandler)

	apiGroup := router.Group("/api")
	{
		// HR 流水线资源路由,每个资源一组 CRUD
		for i := range hr.Resources {
			name := hr.Resources[i].Name
			g := apiGroup.Group("/"+name, func(c *gin.Context) {
				c.Set(resourceNameKey, name)
			})
			g.GET("", ctrl.Resource.List)
			g.POST("", ctrl.Resource.Create)
			g.GET("/:id", ctrl.Resource.Get)
			g.PUT("/:id", ctrl.Resource.Update)
			g.DELETE("/:id", ctrl.Resource.Delete)
		}

		// 流水线汇总
		apiGroup.GET("/pipeline", ctrl.Pipeline.Summary)

		// Xero 集成
		xeroGroup := apiGroup.Group("/xero")
		{
			xeroGroup.GET("/status", ctrl.Xero.Status)
			xeroGroup.POST("/init", ctrl.Xero.Init)
			xeroGroup.GET("/callback", ctrl.Xero.Callback)
			xeroGroup.GET("/balance-sheet", ctrl.Xero.BalanceSheet)
			xeroGroup.GET("/profit-loss", ctrl.Xero.ProfitLoss)
			xeroGroup.POST("/sync", ctrl.Xero.Sync)
			xeroGroup.GET("/reports", ctrl.Xero.Reports)
		}

		// 表格编辑会话
		sheetsGroup := apiGroup.Group("/sheets")
		{
			sheetsGroup.POST("", ctrl.Sheets.Upload)
			sheetsGroup.GET("/:id", ctrl.Sheets.Get)
			sheetsGroup.DELETE("/:id", ctrl.Sheets.Delete)
			sheetsGroup.POST("/:id/cell", ctrl.Sheets.SetCell)
			sheetsGroup.POST("/:id/row", ctrl.Sheets.AddRow)
			sheetsGroup.DELETE("/:id/row", ctrl.Sheets.RemoveRow)
			sheetsGroup.POST("/:id/column", ctrl.Sheets.AddColumn)
			sheetsGroup.DELETE("/:id/column", ctrl.Sheets.RemoveColumn)
			sheetsGroup.POST("/:id/reset", ctrl.Sheets.Reset)
			sheetsGroup.GET("/:id/export", ctrl.Sheets.Export)
		}
	}

	return router
}
