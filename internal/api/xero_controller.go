package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorillaworkout/dupoin-sheet-converter/internal/config"
	"github.com/gorillaworkout/dupoin-sheet-converter/internal/repository"
	"github.com/gorillaworkout/dupoin-sheet-converter/internal/service"
	"github.com/gorillaworkout/dupoin-sheet-converter/internal/xero"
	"github.com/sirupsen/logrus"
)

// XeroClient Xero 客户端接口(xero.Client 实现)
type XeroClient interface {
	service.ReportFetcher
	AuthURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*xero.Tokens, error)
}

// XeroController Xero 集成控制器
type XeroController struct {
	client  XeroClient
	sync    service.SyncService
	reports repository.ReportRepository
	cfg     config.XeroConfig
	log     *logrus.Logger
}

// NewXeroController 创建 Xero 控制器
func NewXeroController(client XeroClient, sync service.SyncService, reports repository.ReportRepository, cfg config.XeroConfig, log *logrus.Logger) *XeroController {
	return &XeroController{
		client:  client,
		sync:    sync,
		reports: reports,
		cfg:     cfg,
		log:     log,
	}
}

// Status 连接状态,内存为空时尝试从数据库恢复令牌
// 始终附带授权跳转地址,看板由此发起连接流程
func (xc *XeroController) Status(c *gin.Context) {
	_ = xc.sync.EnsureTokens(c.Request.Context())

	tokens := xc.client.StoredTokens()
	c.JSON(http.StatusOK, gin.H{
		"authenticated": xc.client.IsAuthenticated(),
		"authUrl":       xc.client.AuthURL(""),
		"hasTenant":     tokens != nil && tokens.TenantID != "",
	})
}

// initRequest 初始 OAuth 令牌,expires_in 缺省 1800 秒
type initRequest struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// Init 用初始 OAuth 响应播种令牌,写入内存并落库
func (xc *XeroController) Init(c *gin.Context) {
	var req initRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	if req.AccessToken == "" || req.RefreshToken == "" {
		BadRequest(c, "access_token and refresh_token required")
		return
	}
	if req.ExpiresIn <= 0 {
		req.ExpiresIn = 1800
	}

	xc.client.SetTokens(xero.Tokens{
		AccessToken:  req.AccessToken,
		RefreshToken: req.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(req.ExpiresIn) * time.Second),
	})

	if err := xc.sync.PersistTokens(); err != nil {
		ServerError(c, "failed to persist tokens", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "persistent": true})
}

// Callback OAuth 回调,换取令牌后跳回看板页
func (xc *XeroController) Callback(c *gin.Context) {
	if errParam := c.Query("error"); errParam != "" {
		xc.redirectError(c, errParam)
		return
	}

	code := c.Query("code")
	if code == "" {
		xc.redirectError(c, "no_code")
		return
	}

	if _, err := xc.client.ExchangeCode(c.Request.Context(), code); err != nil {
		xc.log.WithError(err).Error("Xero token exchange failed")
		xc.redirectError(c, "exchange_failed")
		return
	}

	if err := xc.sync.PersistTokens(); err != nil {
		xc.log.WithError(err).Warn("Failed to persist Xero tokens after callback")
	}

	c.Redirect(http.StatusFound, xc.cfg.DashboardURL+"?connected=true")
}

// redirectError 带错误码跳回前端看板
func (xc *XeroController) redirectError(c *gin.Context, code string) {
	c.Redirect(http.StatusFound, xc.cfg.DashboardURL+"?error="+url.QueryEscape(code))
}

// BalanceSheet 透传资产负债表原始报表
func (xc *XeroController) BalanceSheet(c *gin.Context) {
	if err := xc.sync.EnsureTokens(c.Request.Context()); err != nil {
		xc.authError(c, err)
		return
	}

	raw, err := xc.client.BalanceSheet(c.Request.Context(), c.Query("date"))
	if err != nil {
		xc.reportError(c, "failed to fetch balance sheet", err)
		return
	}
	c.Data(http.StatusOK, "application/json", raw)
}

// ProfitLoss 透传损益表原始报表
func (xc *XeroController) ProfitLoss(c *gin.Context) {
	if err := xc.sync.EnsureTokens(c.Request.Context()); err != nil {
		xc.authError(c, err)
		return
	}

	raw, err := xc.client.ProfitAndLoss(c.Request.Context(), c.Query("fromDate"), c.Query("toDate"))
	if err != nil {
		xc.reportError(c, "failed to fetch profit and loss", err)
		return
	}
	c.Data(http.StatusOK, "application/json", raw)
}

// syncRequest 同步请求体,日期缺省时使用配置默认值
type syncRequest struct {
	FromDate string `json:"fromDate"`
	ToDate   string `json:"toDate"`
}

// Sync 触发报表同步
func (xc *XeroController) Sync(c *gin.Context) {
	var req syncRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			BadRequest(c, err.Error())
			return
		}
	}
	if req.FromDate == "" {
		req.FromDate = xc.cfg.SyncFromDate
	}
	if req.ToDate == "" {
		req.ToDate = xc.cfg.SyncToDate
	}

	result, err := xc.sync.Sync(c.Request.Context(), req.FromDate, req.ToDate)
	if err != nil {
		if errors.Is(err, xero.ErrNotAuthenticated) {
			xc.authError(c, err)
			return
		}
		ServerError(c, "xero sync failed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"balanceSheet": result.BalanceSheet,
		"profitLoss":   result.ProfitLoss,
	})
}

// Reports 最近同步的报表快照
func (xc *XeroController) Reports(c *gin.Context) {
	const recentLimit = 10

	balanceSheets, err := xc.reports.RecentBalanceSheets(recentLimit)
	if err != nil {
		ServerError(c, "failed to load balance sheet reports", err)
		return
	}
	profitLoss, err := xc.reports.RecentProfitLoss(recentLimit)
	if err != nil {
		ServerError(c, "failed to load profit and loss reports", err)
		return
	}

	type reportSummary struct {
		ID        uint   `json:"id"`
		Label     string `json:"label"`
		CreatedAt string `json:"created_at"`
	}

	bs := make([]reportSummary, 0, len(balanceSheets))
	for _, r := range balanceSheets {
		bs = append(bs, reportSummary{
			ID:        r.ID,
			Label:     r.ReportDate,
			CreatedAt: r.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		})
	}
	pl := make([]reportSummary, 0, len(profitLoss))
	for _, r := range profitLoss {
		pl = append(pl, reportSummary{
			ID:        r.ID,
			Label:     r.FromDate + " ~ " + r.ToDate,
			CreatedAt: r.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"balance_sheets": bs,
		"profit_loss":    pl,
	})
}

// authError 未认证错误统一处理
func (xc *XeroController) authError(c *gin.Context, err error) {
	Unauthorized(c, "connect Xero first: "+err.Error())
}

// reportError 报表拉取错误,未认证单独映射为 401
func (xc *XeroController) reportError(c *gin.Context, summary string, err error) {
	if errors.Is(err, xero.ErrNotAuthenticated) {
		xc.authError(c, err)
		return
	}
	ServerError(c, summary, err)
}
