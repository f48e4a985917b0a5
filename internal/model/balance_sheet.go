package model

import (
	"errors"
	"time"
)

// BalanceSheetReportModel 资产负债表快照(每次同步新增一行,只追加)
type BalanceSheetReportModel struct {
	ID         uint      `gorm:"primaryKey;autoIncrement"`
	ReportDate string    `gorm:"type:varchar(32);not null;index"`
	RawJSON    []byte    `gorm:"type:jsonb;not null"` // 原始报表响应
	CreatedAt  time.Time `gorm:"not null;index"`
}

// TableName 指定表名
func (BalanceSheetReportModel) TableName() string {
	return "balance_sheet_reports"
}

// Validate 验证报表模型
func (m *BalanceSheetReportModel) Validate() error {
	if len(m.RawJSON) == 0 {
		return errors.New("raw report JSON is required")
	}
	return nil
}

// BalanceSheetRowModel 资产负债表展平行
type BalanceSheetRowModel struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"`
	ReportID    uint      `gorm:"not null;index"`
	Section     string    `gorm:"type:varchar(255);not null"`
	AccountName string    `gorm:"type:varchar(255);not null"`
	Value       float64   `gorm:"not null"`
	Period      string    `gorm:"type:varchar(64);not null"`
	CreatedAt   time.Time `gorm:"not null"`
}

// TableName 指定表名
func (BalanceSheetRowModel) TableName() string {
	return "balance_sheet_rows"
}
