package container

import (
	"fmt"
	"time"

	"github.com/gorillaworkout/dupoin-sheet-converter/internal/config"
	"github.com/gorillaworkout/dupoin-sheet-converter/internal/database"
	"github.com/gorillaworkout/dupoin-sheet-converter/internal/lark"
	"github.com/gorillaworkout/dupoin-sheet-converter/internal/repository"
	"github.com/gorillaworkout/dupoin-sheet-converter/internal/sheets"
	"github.com/gorillaworkout/dupoin-sheet-converter/internal/xero"
	"gorm.io/gorm"
)

// Container 依赖注入容器
// 管理数据库、上游客户端与仓储
type Container struct {
	db         *gorm.DB
	larkClient *lark.Client
	xeroClient *xero.Client
	sheetStore *sheets.Store
	tokenRepo  repository.TokenRepository
	reportRepo repository.ReportRepository
}

// NewContainer 创建依赖注入容器
func NewContainer(cfg *config.Config) (*Container, error) {
	// 初始化数据库（带重试机制,指数退避）
	db, err := database.ConnectWithRetry(cfg.Database, 3, time.Second)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// 执行数据库迁移
	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Container{
		db:         db,
		larkClient: lark.NewClient(cfg.Lark),
		xeroClient: xero.NewClient(cfg.Xero),
		sheetStore: sheets.NewStore(),
		tokenRepo:  repository.NewTokenRepository(db),
		reportRepo: repository.NewReportRepository(db),
	}, nil
}

// DB 获取数据库连接
func (c *Container) DB() *gorm.DB {
	return c.db
}

// LarkClient 获取 Lark Base 客户端
func (c *Container) LarkClient() *lark.Client {
	return c.larkClient
}

// XeroClient 获取 Xero 客户端
func (c *Container) XeroClient() *xero.Client {
	return c.xeroClient
}

// SheetStore 获取表格会话存储
func (c *Container) SheetStore() *sheets.Store {
	return c.sheetStore
}

// TokenRepository 获取令牌仓储
func (c *Container) TokenRepository() repository.TokenRepository {
	return c.tokenRepo
}

// ReportRepository 获取报表仓储
func (c *Container) ReportRepository() repository.ReportRepository {
	return c.reportRepo
}

// Close 关闭容器,清理资源
func (c *Container) Close() error {
	if c.db != nil {
		sqlDB, err := c.db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}
