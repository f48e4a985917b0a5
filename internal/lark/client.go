package lark

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/gorillaworkout/dupoin-sheet-converter/internal/config"
	"github.com/gorillaworkout/dupoin-sheet-converter/internal/metrics"
)

// ErrRecordNotFound 记录不存在
var ErrRecordNotFound = errors.New("record not found")

// tokenSafetyMargin tenant token 提前刷新的安全边际
const tokenSafetyMargin = 5 * time.Minute

// defaultPageSize 列表分页大小
const defaultPageSize = 100

// Record Lark Base 记录
type Record struct {
	RecordID string                 `json:"record_id"`
	Fields   map[string]interface{} `json:"fields"`
}

// RecordsPage 单页查询结果
type RecordsPage struct {
	HasMore   bool     `json:"has_more"`
	PageToken string   `json:"page_token"`
	Total     int      `json:"total"`
	Items     []Record `json:"items"`
}

// Client Lark Base HTTP 客户端
// tenant token 为互斥锁保护的单槽缓存,避免并发过期时重复刷新
type Client struct {
	appID        string
	appSecret    string
	baseAppToken string
	apiBase      string
	httpClient   *http.Client

	mu             sync.Mutex
	token          string
	tokenExpiresAt time.Time
}

// NewClient 创建 Lark 客户端
func NewClient(cfg config.LarkConfig) *Client {
	return &Client{
		appID:        cfg.AppID,
		appSecret:    cfg.AppSecret,
		baseAppToken: cfg.BaseAppToken,
		apiBase:      cfg.APIBase,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

// TenantToken 获取 tenant access token
// 距上次报告的过期时间不足 5 分钟时重新获取
func (c *Client) TenantToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiresAt) {
		return c.token, nil
	}

	body, err := json.Marshal(map[string]string{
		"app_id":     c.appID,
		"app_secret": c.appSecret,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.apiBase+"/auth/v3/tenant_access_token/internal", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordLarkRequest("auth", 0)
		return "", fmt.Errorf("failed to get tenant token: %w", err)
	}
	defer res.Body.Close()
	metrics.RecordLarkRequest("auth", res.StatusCode)

	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to get tenant token: %d", res.StatusCode)
	}

	var data struct {
		Code              int    `json:"code"`
		Msg               string `json:"msg"`
		TenantAccessToken string `json:"tenant_access_token"`
		Expire            int    `json:"expire"` // 秒,默认 2 小时
	}
	if err := json.NewDecoder(res.Body).Decode(&data); err != nil {
		return "", fmt.Errorf("failed to decode tenant token response: %w", err)
	}
	if data.Code != 0 {
		return "", fmt.Errorf("lark auth error: %s", data.Msg)
	}

	c.token = data.TenantAccessToken
	c.tokenExpiresAt = time.Now().Add(time.Duration(data.Expire)*time.Second - tokenSafetyMargin)

	return c.token, nil
}

// ListRecords 查询单页记录
func (c *Client) ListRecords(ctx context.Context, tableID string, pageSize int, pageToken string) (*RecordsPage, error) {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	params := url.Values{}
	params.Set("page_size", strconv.Itoa(pageSize))
	if pageToken != "" {
		params.Set("page_token", pageToken)
	}

	endpoint := fmt.Sprintf("%s/bitable/v1/apps/%s/tables/%s/records?%s",
		c.apiBase, c.baseAppToken, tableID, params.Encode())

	var envelope struct {
		Code int          `json:"code"`
		Msg  string       `json:"msg"`
		Data *RecordsPage `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &envelope, "list"); err != nil {
		return nil, err
	}
	if envelope.Code != 0 {
		return nil, fmt.Errorf("lark api error: %s", envelope.Msg)
	}
	if envelope.Data == nil {
		return nil, errors.New("lark api returned empty data")
	}

	return envelope.Data, nil
}

// AllRecords 跟随 page_token 拉取整表
func (c *Client) AllRecords(ctx context.Context, tableID string) ([]Record, error) {
	var all []Record
	pageToken := ""

	for {
		page, err := c.ListRecords(ctx, tableID, defaultPageSize, pageToken)
		if err != nil {
			return nil, err
		}

		all = append(all, page.Items...)

		if !page.HasMore || page.PageToken == "" {
			break
		}
		pageToken = page.PageToken
	}

	return all, nil
}

// GetRecord 查询单条记录,不存在返回 ErrRecordNotFound
func (c *Client) GetRecord(ctx context.Context, tableID, recordID string) (*Record, error) {
	endpoint := fmt.Sprintf("%s/bitable/v1/apps/%s/tables/%s/records/%s",
		c.apiBase, c.baseAppToken, tableID, recordID)

	var envelope struct {
		Code int    `json:"code"`
		Msg  string `json:"msg"`
		Data struct {
			Record *Record `json:"record"`
		} `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &envelope, "get"); err != nil {
		return nil, err
	}
	if envelope.Code != 0 {
		return nil, fmt.Errorf("lark api error: %s", envelope.Msg)
	}
	if envelope.Data.Record == nil {
		return nil, ErrRecordNotFound
	}

	return envelope.Data.Record, nil
}

// CreateRecord 插入记录,返回 Lark 分配的 record_id
func (c *Client) CreateRecord(ctx context.Context, tableID string, fields map[string]interface{}) (string, error) {
	endpoint := fmt.Sprintf("%s/bitable/v1/apps/%s/tables/%s/records",
		c.apiBase, c.baseAppToken, tableID)

	var envelope struct {
		Code int    `json:"code"`
		Msg  string `json:"msg"`
		Data struct {
			Record Record `json:"record"`
		} `json:"data"`
	}
	payload := map[string]interface{}{"fields": fields}
	if err := c.do(ctx, http.MethodPost, endpoint, payload, &envelope, "create"); err != nil {
		return "", err
	}
	if envelope.Code != 0 {
		return "", fmt.Errorf("lark api error: %s", envelope.Msg)
	}

	return envelope.Data.Record.RecordID, nil
}

// UpdateRecord 部分覆盖记录字段
func (c *Client) UpdateRecord(ctx context.Context, tableID, recordID string, fields map[string]interface{}) error {
	endpoint := fmt.Sprintf("%s/bitable/v1/apps/%s/tables/%s/records/%s",
		c.apiBase, c.baseAppToken, tableID, recordID)

	var envelope struct {
		Code int    `json:"code"`
		Msg  string `json:"msg"`
	}
	payload := map[string]interface{}{"fields": fields}
	if err := c.do(ctx, http.MethodPut, endpoint, payload, &envelope, "update"); err != nil {
		return err
	}
	if envelope.Code != 0 {
		return fmt.Errorf("lark api error: %s", envelope.Msg)
	}

	return nil
}

// DeleteRecord 删除记录
func (c *Client) DeleteRecord(ctx context.Context, tableID, recordID string) error {
	endpoint := fmt.Sprintf("%s/bitable/v1/apps/%s/tables/%s/records/%s",
		c.apiBase, c.baseAppToken, tableID, recordID)

	var envelope struct {
		Code int    `json:"code"`
		Msg  string `json:"msg"`
	}
	if err := c.do(ctx, http.MethodDelete, endpoint, nil, &envelope, "delete"); err != nil {
		return err
	}
	if envelope.Code != 0 {
		return fmt.Errorf("lark api error: %s", envelope.Msg)
	}

	return nil
}

// do 执行带 Bearer token 的请求并解码响应
func (c *Client) do(ctx context.Context, method, endpoint string, payload interface{}, out interface{}, op string) error {
	token, err := c.TenantToken(ctx)
	if err != nil {
		return err
	}

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordLarkRequest(op, 0)
		return fmt.Errorf("lark request failed: %w", err)
	}
	defer res.Body.Close()
	metrics.RecordLarkRequest(op, res.StatusCode)

	if res.StatusCode == http.StatusNotFound {
		return ErrRecordNotFound
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		text, _ := io.ReadAll(res.Body)
		return fmt.Errorf("lark request failed (%d): %s", res.StatusCode, string(text))
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode lark response: %w", err)
	}

	return nil
}
