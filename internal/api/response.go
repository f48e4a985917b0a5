package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListResponse 列表响应格式
type ListResponse struct {
	Data  interface{} `json:"data"`  // 记录列表
	Total int         `json:"total"` // 记录总数
}

// ErrorBody 错误响应格式
type ErrorBody struct {
	Error   string `json:"error"`             // 错误摘要
	Message string `json:"message,omitempty"` // 错误详情(可选)
}

// listCacheControl 列表与汇总端点的缓存头
const listCacheControl = "public, s-maxage=60, stale-while-revalidate=120"

// List 列表响应,附带 CDN 缓存头
func List(c *gin.Context, data interface{}, total int) {
	c.Header("Cache-Control", listCacheControl)
	c.JSON(http.StatusOK, ListResponse{Data: data, Total: total})
}

// Cached 带缓存头的 200 响应
func Cached(c *gin.Context, body interface{}) {
	c.Header("Cache-Control", listCacheControl)
	c.JSON(http.StatusOK, body)
}

// Created 创建成功响应
func Created(c *gin.Context, recordID string) {
	c.JSON(http.StatusCreated, gin.H{"record_id": recordID})
}

// Mutated 更新/删除成功响应
func Mutated(c *gin.Context, recordID string) {
	c.JSON(http.StatusOK, gin.H{"success": true, "record_id": recordID})
}

// NotFound 记录不存在
func NotFound(c *gin.Context, label string) {
	c.JSON(http.StatusNotFound, ErrorBody{Error: label + " not found"})
}

// BadRequest 请求不合法
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorBody{Error: "bad request", Message: message})
}

// Unauthorized 未完成上游认证
func Unauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, ErrorBody{Error: "not authenticated", Message: message})
}

// ServerError 上游或内部错误
func ServerError(c *gin.Context, summary string, err error) {
	body := ErrorBody{Error: summary}
	if err != nil {
		body.Message = err.Error()
	}
	c.JSON(http.StatusInternalServerError, body)
}
