package repository

import (
	"testing"
	"time"

	"github.com/gorillaworkout/dupoin-sheet-converter/internal/database"
	"github.com/gorillaworkout/dupoin-sheet-converter/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newTestDB 创建内存数据库并迁移
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

// TestTokenSingleton 测试令牌单行覆盖写
func TestTokenSingleton(t *testing.T) {
	repo := NewTokenRepository(newTestDB(t))

	require.NoError(t, repo.Save(&model.XeroTokenModel{
		AccessToken:  "a1",
		RefreshToken: "r1",
		ExpiresAt:    time.Now().Add(time.Hour),
	}))
	require.NoError(t, repo.Save(&model.XeroTokenModel{
		AccessToken:  "a2",
		RefreshToken: "r2",
		ExpiresAt:    time.Now().Add(2 * time.Hour),
		TenantID:     "tid",
	}))

	token, err := repo.Load()
	require.NoError(t, err)
	require.NotNil(t, token)
	assert.Equal(t, model.XeroTokenSingletonID, token.ID)
	assert.Equal(t, "a2", token.AccessToken)
	assert.Equal(t, "tid", token.TenantID)
}

// TestTokenLoadEmpty 测试无令牌时返回 nil
func TestTokenLoadEmpty(t *testing.T) {
	repo := NewTokenRepository(newTestDB(t))

	token, err := repo.Load()
	require.NoError(t, err)
	assert.Nil(t, token)
}

// TestTokenValidate 测试缺失字段校验
func TestTokenValidate(t *testing.T) {
	repo := NewTokenRepository(newTestDB(t))

	err := repo.Save(&model.XeroTokenModel{AccessToken: "a"})
	assert.Error(t, err)
}

// TestSaveBalanceSheetWithRows 测试保存快照与展平行
func TestSaveBalanceSheetWithRows(t *testing.T) {
	db := newTestDB(t)
	repo := NewReportRepository(db)

	report := &model.BalanceSheetReportModel{
		ReportDate: "31 March 2025",
		RawJSON:    []byte(`{"Reports":[]}`),
	}
	rows := []model.BalanceSheetRowModel{
		{Section: "Assets", AccountName: "Bank", Value: 1000, Period: "Mar 2025"},
		{Section: "Assets", AccountName: "Cash", Value: 50, Period: "Mar 2025"},
	}
	require.NoError(t, repo.SaveBalanceSheet(report, rows))
	require.NotZero(t, report.ID)

	saved, err := repo.BalanceSheetRows(report.ID)
	require.NoError(t, err)
	require.Len(t, saved, 2)
	assert.Equal(t, report.ID, saved[0].ReportID)
	assert.Equal(t, "Bank", saved[0].AccountName)
}

// TestRecentReportsOrder 测试最近快照按时间倒序
func TestRecentReportsOrder(t *testing.T) {
	db := newTestDB(t)
	repo := NewReportRepository(db)

	first := &model.ProfitLossReportModel{FromDate: "2025-01-01", ToDate: "2025-01-31", RawJSON: []byte(`{}`)}
	require.NoError(t, repo.SaveProfitLoss(first, nil))
	// 时间戳不同才能区分排序
	require.NoError(t, db.Model(first).Update("created_at", time.Now().Add(-time.Hour)).Error)

	second := &model.ProfitLossReportModel{FromDate: "2025-02-01", ToDate: "2025-02-28", RawJSON: []byte(`{}`)}
	require.NoError(t, repo.SaveProfitLoss(second, nil))

	recent, err := repo.RecentProfitLoss(10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "2025-02-01", recent[0].FromDate)
	assert.Equal(t, "2025-01-01", recent[1].FromDate)
}

// TestReportValidate 测试原始 JSON 必填
func TestReportValidate(t *testing.T) {
	repo := NewReportRepository(newTestDB(t))

	err := repo.SaveBalanceSheet(&model.BalanceSheetReportModel{ReportDate: "x"}, nil)
	assert.Error(t, err)
}
