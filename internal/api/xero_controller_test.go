package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorillaworkout/dupoin-sheet-converter/internal/config"
	"github.com/gorillaworkout/dupoin-sheet-converter/internal/model"
	"github.com/gorillaworkout/dupoin-sheet-converter/internal/service"
	"github.com/gorillaworkout/dupoin-sheet-converter/internal/xero"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeXeroClient 假 Xero 客户端
type fakeXeroClient struct {
	tokens *xero.Tokens
	report json.RawMessage
	err    error
}

func (f *fakeXeroClient) BalanceSheet(ctx context.Context, date string) (json.RawMessage, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.report, nil
}

func (f *fakeXeroClient) ProfitAndLoss(ctx context.Context, fromDate, toDate string) (json.RawMessage, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.report, nil
}

func (f *fakeXeroClient) IsAuthenticated() bool {
	return f.tokens != nil && f.tokens.RefreshToken != ""
}

func (f *fakeXeroClient) SetTokens(t xero.Tokens) { f.tokens = &t }

func (f *fakeXeroClient) StoredTokens() *xero.Tokens {
	if f.tokens == nil {
		return nil
	}
	t := *f.tokens
	return &t
}

func (f *fakeXeroClient) AuthURL(state string) string {
	return "https://login.xero.com/authorize?state=" + state
}

func (f *fakeXeroClient) ExchangeCode(ctx context.Context, code string) (*xero.Tokens, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tokens = &xero.Tokens{AccessToken: "a", RefreshToken: "r", ExpiresAt: time.Now().Add(time.Hour)}
	return f.StoredTokens(), nil
}

// fakeSyncService 假同步服务
type fakeSyncService struct {
	ensureErr error
	result    *service.SyncResult
	syncErr   error
	persisted bool
}

func (f *fakeSyncService) EnsureTokens(ctx context.Context) error { return f.ensureErr }
func (f *fakeSyncService) PersistTokens() error {
	f.persisted = true
	return nil
}
func (f *fakeSyncService) Sync(ctx context.Context, fromDate, toDate string) (*service.SyncResult, error) {
	if f.syncErr != nil {
		return nil, f.syncErr
	}
	return f.result, nil
}

// fakeReportRepo 假报表仓储
type fakeReportRepo struct {
	balanceSheets []*model.BalanceSheetReportModel
	profitLoss    []*model.ProfitLossReportModel
}

func (f *fakeReportRepo) SaveBalanceSheet(report *model.BalanceSheetReportModel, rows []model.BalanceSheetRowModel) error {
	return nil
}

func (f *fakeReportRepo) SaveProfitLoss(report *model.ProfitLossReportModel, rows []model.ProfitLossRowModel) error {
	return nil
}

func (f *fakeReportRepo) RecentBalanceSheets(limit int) ([]*model.BalanceSheetReportModel, error) {
	return f.balanceSheets, nil
}

func (f *fakeReportRepo) RecentProfitLoss(limit int) ([]*model.ProfitLossReportModel, error) {
	return f.profitLoss, nil
}

func (f *fakeReportRepo) BalanceSheetRows(reportID uint) ([]*model.BalanceSheetRowModel, error) {
	return nil, nil
}

func (f *fakeReportRepo) ProfitLossRows(reportID uint) ([]*model.ProfitLossRowModel, error) {
	return nil, nil
}

// newXeroRouter 构造 Xero 路由测试路由器
func newXeroRouter(client *fakeXeroClient, sync *fakeSyncService, repo *fakeReportRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := config.XeroConfig{
		DashboardURL: "https://app.example.com/dashboard/xero",
		SyncFromDate: "2025-02-01",
		SyncToDate:   "2025-03-31",
	}
	ctrl := NewXeroController(client, sync, repo, cfg, logrus.New())

	router := gin.New()
	g := router.Group("/api/xero")
	g.GET("/status", ctrl.Status)
	g.POST("/init", ctrl.Init)
	g.GET("/callback", ctrl.Callback)
	g.GET("/balance-sheet", ctrl.BalanceSheet)
	g.GET("/profit-loss", ctrl.ProfitLoss)
	g.POST("/sync", ctrl.Sync)
	g.GET("/reports", ctrl.Reports)
	return router
}

// TestStatusUnauthenticated 测试未连接时的状态仍附带授权地址
func TestStatusUnauthenticated(t *testing.T) {
	router := newXeroRouter(&fakeXeroClient{}, &fakeSyncService{ensureErr: xero.ErrNotAuthenticated}, &fakeReportRepo{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/xero/status", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["authenticated"])
	assert.Contains(t, body["authUrl"], "login.xero.com")
	assert.Equal(t, false, body["hasTenant"])
}

// TestStatusAuthenticated 测试已连接时的状态
func TestStatusAuthenticated(t *testing.T) {
	client := &fakeXeroClient{tokens: &xero.Tokens{
		AccessToken:  "a",
		RefreshToken: "r",
		ExpiresAt:    time.Now().Add(time.Hour),
		TenantID:     "tid",
	}}
	router := newXeroRouter(client, &fakeSyncService{}, &fakeReportRepo{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/xero/status", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["authenticated"])
	assert.Equal(t, true, body["hasTenant"])
	assert.Contains(t, body["authUrl"], "login.xero.com")
}

// TestInitSeedsTokenStore 测试初始令牌写入内存并落库
func TestInitSeedsTokenStore(t *testing.T) {
	client := &fakeXeroClient{}
	sync := &fakeSyncService{}
	router := newXeroRouter(client, sync, &fakeReportRepo{})

	w := httptest.NewRecorder()
	payload := `{"access_token":"at","refresh_token":"rt","expires_in":1800}`
	req := httptest.NewRequest(http.MethodPost, "/api/xero/init", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, true, body["persistent"])

	assert.True(t, client.IsAuthenticated())
	assert.True(t, sync.persisted)
	tokens := client.StoredTokens()
	require.NotNil(t, tokens)
	assert.Equal(t, "rt", tokens.RefreshToken)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), tokens.ExpiresAt, time.Minute)
}

// TestInitMissingTokens 测试缺少令牌字段返回 400
func TestInitMissingTokens(t *testing.T) {
	client := &fakeXeroClient{}
	router := newXeroRouter(client, &fakeSyncService{}, &fakeReportRepo{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/xero/init", strings.NewReader(`{"access_token":"at"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, client.IsAuthenticated())
}

// TestCallbackRedirects 测试回调换取令牌后跳转
func TestCallbackRedirects(t *testing.T) {
	client := &fakeXeroClient{}
	router := newXeroRouter(client, &fakeSyncService{}, &fakeReportRepo{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/xero/callback?code=auth123", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusFound, w.Code)
	location := w.Header().Get("Location")
	assert.Contains(t, location, "app.example.com/dashboard/xero")
	assert.Contains(t, location, "connected=true")
	assert.True(t, client.IsAuthenticated())
}

// TestCallbackMissingCode 测试缺少授权码的回调
func TestCallbackMissingCode(t *testing.T) {
	router := newXeroRouter(&fakeXeroClient{}, &fakeSyncService{}, &fakeReportRepo{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/xero/callback", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "error=no_code")
}

// TestBalanceSheetRequiresAuth 测试未认证时返回 401
func TestBalanceSheetRequiresAuth(t *testing.T) {
	router := newXeroRouter(&fakeXeroClient{}, &fakeSyncService{ensureErr: xero.ErrNotAuthenticated}, &fakeReportRepo{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/xero/balance-sheet", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// TestBalanceSheetProxiesRawReport 测试原始报表透传
func TestBalanceSheetProxiesRawReport(t *testing.T) {
	raw := json.RawMessage(`{"Reports":[]}`)
	router := newXeroRouter(&fakeXeroClient{report: raw}, &fakeSyncService{}, &fakeReportRepo{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/xero/balance-sheet?date=2025-03-31", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"Reports":[]}`, w.Body.String())
}

// TestSyncUsesConfigDefaults 测试同步结果响应
func TestSyncUsesConfigDefaults(t *testing.T) {
	sync := &fakeSyncService{result: &service.SyncResult{
		BalanceSheet: service.ReportSync{ReportID: 1, Synced: 12},
		ProfitLoss:   service.ReportSync{ReportID: 2, Synced: 30},
	}}
	router := newXeroRouter(&fakeXeroClient{}, sync, &fakeReportRepo{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/xero/sync", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Success      bool               `json:"success"`
		BalanceSheet service.ReportSync `json:"balanceSheet"`
		ProfitLoss   service.ReportSync `json:"profitLoss"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, 12, body.BalanceSheet.Synced)
	assert.Equal(t, uint(2), body.ProfitLoss.ReportID)
}

// TestSyncNotAuthenticatedMapsTo401 测试未认证同步返回 401
func TestSyncNotAuthenticatedMapsTo401(t *testing.T) {
	router := newXeroRouter(&fakeXeroClient{}, &fakeSyncService{syncErr: xero.ErrNotAuthenticated}, &fakeReportRepo{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/xero/sync", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// TestReportsList 测试最近报表列表
func TestReportsList(t *testing.T) {
	repo := &fakeReportRepo{
		balanceSheets: []*model.BalanceSheetReportModel{
			{ID: 1, ReportDate: "31 March 2025", CreatedAt: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)},
		},
		profitLoss: []*model.ProfitLossReportModel{
			{ID: 2, FromDate: "2025-02-01", ToDate: "2025-03-31", CreatedAt: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)},
		},
	}
	router := newXeroRouter(&fakeXeroClient{}, &fakeSyncService{}, repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/xero/reports", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		BalanceSheets []map[string]interface{} `json:"balance_sheets"`
		ProfitLoss    []map[string]interface{} `json:"profit_loss"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.BalanceSheets, 1)
	assert.Equal(t, "31 March 2025", body.BalanceSheets[0]["label"])
	require.Len(t, body.ProfitLoss, 1)
	assert.Equal(t, "2025-02-01 ~ 2025-03-31", body.ProfitLoss[0]["label"])
}
