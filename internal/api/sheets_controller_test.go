package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gorillaworkout/dupoin-sheet-converter/internal/sheets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newSheetsRouter 构造表格路由测试路由器
func newSheetsRouter() (*gin.Engine, *sheets.Store) {
	gin.SetMode(gin.TestMode)
	store := sheets.NewStore()
	ctrl := NewSheetsController(store)

	router := gin.New()
	g := router.Group("/api/sheets")
	g.POST("", ctrl.Upload)
	g.GET("/:id", ctrl.Get)
	g.DELETE("/:id", ctrl.Delete)
	g.POST("/:id/cell", ctrl.SetCell)
	g.POST("/:id/row", ctrl.AddRow)
	g.DELETE("/:id/row", ctrl.RemoveRow)
	g.POST("/:id/column", ctrl.AddColumn)
	g.DELETE("/:id/column", ctrl.RemoveColumn)
	g.POST("/:id/reset", ctrl.Reset)
	g.GET("/:id/export", ctrl.Export)
	return router, store
}

// uploadCSV 上传 CSV 并返回会话 id
func uploadCSV(t *testing.T, router *gin.Engine, content string) string {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "staff.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/sheets", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var body struct {
		SessionID string `json:"session_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEmpty(t, body.SessionID)
	return body.SessionID
}

// TestUploadAndGet 测试上传与读取会话
func TestUploadAndGet(t *testing.T) {
	router, _ := newSheetsRouter()
	id := uploadCSV(t, router, "Name,Role\nAlice,Engineer\n")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/sheets/"+id, nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Filename string          `json:"filename"`
		Sheets   []*sheets.Sheet `json:"sheets"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "staff.csv", body.Filename)
	require.Len(t, body.Sheets, 1)
	assert.Equal(t, []string{"Name", "Role"}, body.Sheets[0].Headers)
}

// TestUploadRejectsUnknownFormat 测试不支持的文件类型
func TestUploadRejectsUnknownFormat(t *testing.T) {
	router, _ := newSheetsRouter()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "report.pdf")
	require.NoError(t, err)
	_, _ = part.Write([]byte("pdf data"))
	require.NoError(t, writer.Close())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/sheets", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// TestEditCellAndExport 测试编辑单元格后导出
func TestEditCellAndExport(t *testing.T) {
	router, _ := newSheetsRouter()
	id := uploadCSV(t, router, "Name,Role\nAlice,Engineer\n")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/sheets/"+id+"/cell",
		strings.NewReader(`{"row":0,"col":1,"value":"Staff Engineer"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/sheets/"+id+"/export", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Equal(t, "Name,Role\nAlice,Staff Engineer\n", w.Body.String())
}

// TestRowColumnOpsAndReset 测试行列操作与重置
func TestRowColumnOpsAndReset(t *testing.T) {
	router, _ := newSheetsRouter()
	id := uploadCSV(t, router, "Name,Role\nAlice,Engineer\n")

	// 加一行
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/sheets/"+id+"/row",
		strings.NewReader(`{"values":["Bob","Designer"]}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	// 加一列
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/sheets/"+id+"/column",
		strings.NewReader(`{"header":"Email"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	// 删第一行
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodDelete, "/api/sheets/"+id+"/row?row=0", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Sheets []*sheets.Sheet `json:"sheets"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Sheets[0].Rows, 1)
	assert.Equal(t, "Bob", body.Sheets[0].Rows[0][0])
	assert.Len(t, body.Sheets[0].Headers, 3)

	// 重置回上传时的内容
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/sheets/"+id+"/reset", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []string{"Name", "Role"}, body.Sheets[0].Headers)
	require.Len(t, body.Sheets[0].Rows, 1)
	assert.Equal(t, "Alice", body.Sheets[0].Rows[0][0])
}

// TestSessionNotFound 测试会话不存在返回 404
func TestSessionNotFound(t *testing.T) {
	router, _ := newSheetsRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/sheets/nonexistent", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// TestDeleteSession 测试关闭会话
func TestDeleteSession(t *testing.T) {
	router, store := newSheetsRouter()
	id := uploadCSV(t, router, "A\n1\n")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/sheets/"+id, nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, store.Len())
}
