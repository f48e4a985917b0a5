package database

import (
	"context"
	"fmt"
	"time"

	"github.com/gorillaworkout/dupoin-sheet-converter/internal/config"
	"github.com/gorillaworkout/dupoin-sheet-converter/internal/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// PoolConfig 连接池配置
type PoolConfig struct {
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime int // 秒
	ConnMaxIdleTime int // 秒
}

// BuildDSN 构建 PostgreSQL DSN
func BuildDSN(cfg config.DatabaseConfig) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)
}

// GetPoolConfig 获取连接池配置
func GetPoolConfig() *PoolConfig {
	return &PoolConfig{
		MaxIdleConns:    10,
		MaxOpenConns:    100,
		ConnMaxLifetime: 3600, // 1 小时
		ConnMaxIdleTime: 600,  // 10 分钟
	}
}

// Connect 连接数据库
func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := BuildDSN(cfg)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	// 配置连接池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	// 从配置中读取连接池参数，如果没有配置则使用默认值
	poolConfig := GetPoolConfig()
	if cfg.MaxIdleConns > 0 {
		poolConfig.MaxIdleConns = cfg.MaxIdleConns
	}
	if cfg.MaxOpenConns > 0 {
		poolConfig.MaxOpenConns = cfg.MaxOpenConns
	}
	if cfg.ConnMaxLifetime > 0 {
		poolConfig.ConnMaxLifetime = cfg.ConnMaxLifetime
	}
	if cfg.ConnMaxIdleTime > 0 {
		poolConfig.ConnMaxIdleTime = cfg.ConnMaxIdleTime
	}

	sqlDB.SetMaxIdleConns(poolConfig.MaxIdleConns)
	sqlDB.SetMaxOpenConns(poolConfig.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Duration(poolConfig.ConnMaxLifetime) * time.Second)
	sqlDB.SetConnMaxIdleTime(time.Duration(poolConfig.ConnMaxIdleTime) * time.Second)

	return db, nil
}

// Migrate 执行数据库迁移
func Migrate(db *gorm.DB) error {
	// 检测数据库类型
	dialector := db.Dialector.Name()

	// SQLite 不支持 jsonb，需要手动创建表
	// GORM SQLite dialector 的名称可能是 "sqlite" 或 "sqlite3"
	if dialector == "sqlite" || dialector == "sqlite3" {
		if err := createSQLiteTables(db); err != nil {
			return fmt.Errorf("failed to create SQLite tables: %w", err)
		}
	} else {
		// PostgreSQL 等其他数据库使用 AutoMigrate
		if err := db.AutoMigrate(
			&model.XeroTokenModel{},
			&model.BalanceSheetReportModel{},
			&model.BalanceSheetRowModel{},
			&model.ProfitLossReportModel{},
			&model.ProfitLossRowModel{},
		); err != nil {
			return fmt.Errorf("failed to auto migrate: %w", err)
		}
	}

	// 创建索引
	if err := CreateIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}

// createSQLiteTables 为 SQLite 手动创建表（使用 TEXT 替代 jsonb）
func createSQLiteTables(db *gorm.DB) error {
	// 创建 xero_tokens 表（单行）
	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS xero_tokens (
			id INTEGER PRIMARY KEY,
			access_token TEXT NOT NULL,
			refresh_token TEXT NOT NULL,
			expires_at DATETIME NOT NULL,
			tenant_id VARCHAR(64),
			updated_at DATETIME NOT NULL
		)
	`).Error; err != nil {
		return fmt.Errorf("failed to create xero_tokens table: %w", err)
	}

	// 创建 balance_sheet_reports 表
	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS balance_sheet_reports (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			report_date VARCHAR(32) NOT NULL,
			raw_json TEXT NOT NULL,
			created_at DATETIME NOT NULL
		)
	`).Error; err != nil {
		return fmt.Errorf("failed to create balance_sheet_reports table: %w", err)
	}

	// 创建 balance_sheet_rows 表
	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS balance_sheet_rows (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			report_id INTEGER NOT NULL,
			section VARCHAR(255) NOT NULL,
			account_name VARCHAR(255) NOT NULL,
			value REAL NOT NULL,
			period VARCHAR(64) NOT NULL,
			created_at DATETIME NOT NULL
		)
	`).Error; err != nil {
		return fmt.Errorf("failed to create balance_sheet_rows table: %w", err)
	}

	// 创建 profit_loss_reports 表
	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS profit_loss_reports (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			from_date VARCHAR(32) NOT NULL,
			to_date VARCHAR(32) NOT NULL,
			raw_json TEXT NOT NULL,
			created_at DATETIME NOT NULL
		)
	`).Error; err != nil {
		return fmt.Errorf("failed to create profit_loss_reports table: %w", err)
	}

	// 创建 profit_loss_rows 表
	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS profit_loss_rows (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			report_id INTEGER NOT NULL,
			section VARCHAR(255) NOT NULL,
			account_name VARCHAR(255) NOT NULL,
			value REAL NOT NULL,
			period VARCHAR(64) NOT NULL,
			created_at DATETIME NOT NULL
		)
	`).Error; err != nil {
		return fmt.Errorf("failed to create profit_loss_rows table: %w", err)
	}

	return nil
}

// CreateIndexes 创建数据库索引
func CreateIndexes(db *gorm.DB) error {
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_bs_reports_created_at ON balance_sheet_reports(created_at)").Error; err != nil {
		return fmt.Errorf("failed to create idx_bs_reports_created_at: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_bs_rows_report_id ON balance_sheet_rows(report_id)").Error; err != nil {
		return fmt.Errorf("failed to create idx_bs_rows_report_id: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_pl_reports_created_at ON profit_loss_reports(created_at)").Error; err != nil {
		return fmt.Errorf("failed to create idx_pl_reports_created_at: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_pl_rows_report_id ON profit_loss_rows(report_id)").Error; err != nil {
		return fmt.Errorf("failed to create idx_pl_rows_report_id: %w", err)
	}

	return nil
}

// ConnectWithRetry 带重试的数据库连接
func ConnectWithRetry(cfg config.DatabaseConfig, maxRetries int, retryInterval time.Duration) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	for i := 0; i < maxRetries; i++ {
		db, err = Connect(cfg)
		if err == nil {
			return db, nil
		}

		// 如果不是最后一次重试，等待后重试
		if i < maxRetries-1 {
			time.Sleep(retryInterval)
			retryInterval *= 2 // 指数退避
		}
	}

	return nil, fmt.Errorf("failed to connect database after %d retries: %w", maxRetries, err)
}

// CheckHealth 检查数据库连接健康状态
func CheckHealth(db *gorm.DB) bool {
	if db == nil {
		return false
	}

	sqlDB, err := db.DB()
	if err != nil {
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return false
	}

	return true
}
