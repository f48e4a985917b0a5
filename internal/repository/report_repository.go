package repository

import (
	"time"

	"github.com/gorillaworkout/dupoin-sheet-converter/internal/model"
	"gorm.io/gorm"
)

// ReportRepository 报表快照仓储接口
// 报表为只追加日志:每次同步新增父行+子行,不更新不删除
type ReportRepository interface {
	SaveBalanceSheet(report *model.BalanceSheetReportModel, rows []model.BalanceSheetRowModel) error
	SaveProfitLoss(report *model.ProfitLossReportModel, rows []model.ProfitLossRowModel) error
	RecentBalanceSheets(limit int) ([]*model.BalanceSheetReportModel, error)
	RecentProfitLoss(limit int) ([]*model.ProfitLossReportModel, error)
	BalanceSheetRows(reportID uint) ([]*model.BalanceSheetRowModel, error)
	ProfitLossRows(reportID uint) ([]*model.ProfitLossRowModel, error)
}

// reportRepository 报表仓储实现
type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository 创建报表仓储
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

// SaveBalanceSheet 保存资产负债表快照与展平行
func (r *reportRepository) SaveBalanceSheet(report *model.BalanceSheetReportModel, rows []model.BalanceSheetRowModel) error {
	if err := report.Validate(); err != nil {
		return err
	}

	now := time.Now()
	report.CreatedAt = now

	if err := r.db.Create(report).Error; err != nil {
		return err
	}

	if len(rows) == 0 {
		return nil
	}
	for i := range rows {
		rows[i].ReportID = report.ID
		rows[i].CreatedAt = now
	}
	return r.db.Create(&rows).Error
}

// SaveProfitLoss 保存损益表快照与展平行
func (r *reportRepository) SaveProfitLoss(report *model.ProfitLossReportModel, rows []model.ProfitLossRowModel) error {
	if err := report.Validate(); err != nil {
		return err
	}

	now := time.Now()
	report.CreatedAt = now

	if err := r.db.Create(report).Error; err != nil {
		return err
	}

	if len(rows) == 0 {
		return nil
	}
	for i := range rows {
		rows[i].ReportID = report.ID
		rows[i].CreatedAt = now
	}
	return r.db.Create(&rows).Error
}

// RecentBalanceSheets 按时间倒序查询最近的资产负债表快照
func (r *reportRepository) RecentBalanceSheets(limit int) ([]*model.BalanceSheetReportModel, error) {
	var reports []*model.BalanceSheetReportModel
	err := r.db.Order("created_at DESC").Limit(limit).Find(&reports).Error
	return reports, err
}

// RecentProfitLoss 按时间倒序查询最近的损益表快照
func (r *reportRepository) RecentProfitLoss(limit int) ([]*model.ProfitLossReportModel, error) {
	var reports []*model.ProfitLossReportModel
	err := r.db.Order("created_at DESC").Limit(limit).Find(&reports).Error
	return reports, err
}

// BalanceSheetRows 查询某份快照的展平行
func (r *reportRepository) BalanceSheetRows(reportID uint) ([]*model.BalanceSheetRowModel, error) {
	var rows []*model.BalanceSheetRowModel
	err := r.db.Where("report_id = ?", reportID).Find(&rows).Error
	return rows, err
}

// ProfitLossRows 查询某份快照的展平行
func (r *reportRepository) ProfitLossRows(reportID uint) ([]*model.ProfitLossRowModel, error) {
	var rows []*model.ProfitLossRowModel
	err := r.db.Where("report_id = ?", reportID).Find(&rows).Error
	return rows, err
}
