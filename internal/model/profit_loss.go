package model

import (
	"errors"
	"time"
)

// ProfitLossReportModel 损益表快照(每次同步新增一行,只追加)
type ProfitLossReportModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	FromDate  string    `gorm:"type:varchar(32);not null"`
	ToDate    string    `gorm:"type:varchar(32);not null;index"`
	RawJSON   []byte    `gorm:"type:jsonb;not null"` // 原始报表响应
	CreatedAt time.Time `gorm:"not null;index"`
}

// TableName 指定表名
func (ProfitLossReportModel) TableName() string {
	return "profit_loss_reports"
}

// Validate 验证报表模型
func (m *ProfitLossReportModel) Validate() error {
	if len(m.RawJSON) == 0 {
		return errors.New("raw report JSON is required")
	}
	return nil
}

// ProfitLossRowModel 损益表展平行
type ProfitLossRowModel struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"`
	ReportID    uint      `gorm:"not null;index"`
	Section     string    `gorm:"type:varchar(255);not null"`
	AccountName string    `gorm:"type:varchar(255);not null"`
	Value       float64   `gorm:"not null"`
	Period      string    `gorm:"type:varchar(64);not null"`
	CreatedAt   time.Time `gorm:"not null"`
}

// TableName 指定表名
func (ProfitLossRowModel) TableName() string {
	return "profit_loss_rows"
}
