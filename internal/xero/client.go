package xero

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorillaworkout/dupoin-sheet-converter/internal/config"
	"github.com/gorillaworkout/dupoin-sheet-converter/internal/metrics"
)

const (
	tokenURL       = "https://identity.xero.com/connect/token"
	apiBase        = "https://api.xero.com/api.xro/2.0"
	connectionsURL = "https://api.xero.com/connections"
	authorizeURL   = "https://login.xero.com/identity/connect/authorize"

	oauthScopes = "openid profile email accounting.reports.read accounting.settings offline_access"

	// access token 距过期不足 60 秒时刷新
	refreshMargin = 60 * time.Second

	// 未提供 expires_in 时的默认有效期
	defaultTokenTTL = 1800 * time.Second
)

// ErrNotAuthenticated 尚未完成 Xero OAuth 连接
var ErrNotAuthenticated = errors.New("not authenticated with Xero")

// Tokens Xero OAuth2 令牌集
type Tokens struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	TenantID     string
}

// Client Xero API 客户端
// 令牌为互斥锁保护的进程内单槽缓存,可由调用方持久化到数据库
type Client struct {
	clientID     string
	clientSecret string
	redirectURI  string
	httpClient   *http.Client

	mu     sync.Mutex
	tokens *Tokens
}

// NewClient 创建 Xero 客户端
func NewClient(cfg config.XeroConfig) *Client {
	return &Client{
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		redirectURI:  cfg.RedirectURI,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

// SetTokens 写入令牌,保留已知的 tenant id
func (c *Client) SetTokens(t Tokens) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if t.ExpiresAt.IsZero() {
		t.ExpiresAt = time.Now().Add(defaultTokenTTL)
	}
	if t.TenantID == "" && c.tokens != nil {
		t.TenantID = c.tokens.TenantID
	}
	c.tokens = &t
}

// StoredTokens 返回当前令牌的副本,未认证返回 nil
func (c *Client) StoredTokens() *Tokens {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.tokens == nil {
		return nil
	}
	t := *c.tokens
	return &t
}

// IsAuthenticated 是否持有 refresh token
func (c *Client) IsAuthenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tokens != nil && c.tokens.RefreshToken != ""
}

// AuthURL 生成授权码流程的跳转地址
func (c *Client) AuthURL(state string) string {
	if state == "" {
		state = "xero_auth"
	}
	params := url.Values{}
	params.Set("response_type", "code")
	params.Set("client_id", c.clientID)
	params.Set("redirect_uri", c.redirectURI)
	params.Set("scope", oauthScopes)
	params.Set("state", state)
	return authorizeURL + "?" + params.Encode()
}

// ExchangeCode 用授权码换取令牌并立即解析 tenant id
func (c *Client) ExchangeCode(ctx context.Context, code string) (*Tokens, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", c.redirectURI)

	data, err := c.postToken(ctx, form, "exchange")
	if err != nil {
		return nil, fmt.Errorf("token exchange failed: %w", err)
	}

	c.SetTokens(Tokens{
		AccessToken:  data.AccessToken,
		RefreshToken: data.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(data.ExpiresIn) * time.Second),
	})

	if _, err := c.tenantID(ctx); err != nil {
		return nil, err
	}

	return c.StoredTokens(), nil
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// postToken 向 token 端点发送表单请求(Basic 认证)
func (c *Client) postToken(ctx context.Context, form url.Values, op string) (*tokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	basic := base64.StdEncoding.EncodeToString([]byte(c.clientID + ":" + c.clientSecret))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Basic "+basic)

	res, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordXeroRequest(op, 0)
		return nil, err
	}
	defer res.Body.Close()
	metrics.RecordXeroRequest(op, res.StatusCode)

	if res.StatusCode != http.StatusOK {
		text, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("%d %s", res.StatusCode, string(text))
	}

	var data tokenResponse
	if err := json.NewDecoder(res.Body).Decode(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// refreshLocked 刷新 access token,调用方必须持有 c.mu
func (c *Client) refreshLocked(ctx context.Context) (string, error) {
	if c.tokens == nil || c.tokens.RefreshToken == "" {
		return "", fmt.Errorf("no refresh token available, re-authenticate with Xero: %w", ErrNotAuthenticated)
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", c.tokens.RefreshToken)

	data, err := c.postToken(ctx, form, "refresh")
	if err != nil {
		return "", fmt.Errorf("failed to refresh Xero token: %w", err)
	}

	c.tokens = &Tokens{
		AccessToken:  data.AccessToken,
		RefreshToken: data.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(data.ExpiresIn) * time.Second),
		TenantID:     c.tokens.TenantID,
	}

	return data.AccessToken, nil
}

// accessToken 返回有效的 access token,临近过期时透明刷新
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.tokens == nil {
		return "", ErrNotAuthenticated
	}

	if time.Now().After(c.tokens.ExpiresAt.Add(-refreshMargin)) {
		return c.refreshLocked(ctx)
	}

	return c.tokens.AccessToken, nil
}

// forceRefresh 401 重试路径使用的显式刷新
func (c *Client) forceRefresh(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refreshLocked(ctx)
}

// tenantID 返回已连接组织的 tenant id,首次调用查询 /connections
func (c *Client) tenantID(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.tokens != nil && c.tokens.TenantID != "" {
		id := c.tokens.TenantID
		c.mu.Unlock()
		return id, nil
	}
	c.mu.Unlock()

	token, err := c.accessToken(ctx)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, connectionsURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	res, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordXeroRequest("connections", 0)
		return "", fmt.Errorf("failed to get Xero connections: %w", err)
	}
	defer res.Body.Close()
	metrics.RecordXeroRequest("connections", res.StatusCode)

	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to get Xero connections: %d", res.StatusCode)
	}

	var connections []struct {
		TenantID string `json:"tenantId"`
	}
	if err := json.NewDecoder(res.Body).Decode(&connections); err != nil {
		return "", err
	}
	if len(connections) == 0 {
		return "", errors.New("no Xero organizations connected")
	}

	c.mu.Lock()
	if c.tokens != nil {
		c.tokens.TenantID = connections[0].TenantID
	}
	c.mu.Unlock()

	return connections[0].TenantID, nil
}

// BalanceSheet 拉取资产负债表报表(两期,按月)
func (c *Client) BalanceSheet(ctx context.Context, date string) (json.RawMessage, error) {
	params := url.Values{}
	if date != "" {
		params.Set("date", date)
	}
	params.Set("periods", "2")
	params.Set("timeframe", "MONTH")

	return c.fetchReport(ctx, apiBase+"/Reports/BalanceSheet?"+params.Encode(), "balance_sheet")
}

// ProfitAndLoss 拉取损益表报表(两期,按月)
func (c *Client) ProfitAndLoss(ctx context.Context, fromDate, toDate string) (json.RawMessage, error) {
	params := url.Values{}
	if fromDate != "" {
		params.Set("fromDate", fromDate)
	}
	if toDate != "" {
		params.Set("toDate", toDate)
	}
	params.Set("periods", "2")
	params.Set("timeframe", "MONTH")

	return c.fetchReport(ctx, apiBase+"/Reports/ProfitAndLoss?"+params.Encode(), "profit_loss")
}

// fetchReport 拉取报表,401 时刷新令牌并重试一次
func (c *Client) fetchReport(ctx context.Context, endpoint, op string) (json.RawMessage, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}
	tenantID, err := c.tenantID(ctx)
	if err != nil {
		return nil, err
	}

	body, status, err := c.reportRequest(ctx, endpoint, token, tenantID, op)
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized {
		newToken, err := c.forceRefresh(ctx)
		if err != nil {
			return nil, err
		}
		body, status, err = c.reportRequest(ctx, endpoint, newToken, tenantID, op)
		if err != nil {
			return nil, err
		}
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("xero api error: %d", status)
	}

	return body, nil
}

// reportRequest 单次报表请求,返回响应体与状态码
func (c *Client) reportRequest(ctx context.Context, endpoint, token, tenantID, op string) (json.RawMessage, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Xero-Tenant-Id", tenantID)
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordXeroRequest(op, 0)
		return nil, 0, fmt.Errorf("xero request failed: %w", err)
	}
	defer res.Body.Close()
	metrics.RecordXeroRequest(op, res.StatusCode)

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, res.StatusCode, err
	}

	return body, res.StatusCode, nil
}
