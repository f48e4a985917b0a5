package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorillaworkout/dupoin-sheet-converter/internal/sheets"
)

// maxUploadSize 上传文件大小上限
const maxUploadSize = 10 << 20 // 10 MiB

// SheetsController 表格编辑会话控制器
type SheetsController struct {
	store *sheets.Store
}

// NewSheetsController 创建表格控制器
func NewSheetsController(store *sheets.Store) *SheetsController {
	return &SheetsController{store: store}
}

// session 查找会话,不存在返回 404
func (sc *SheetsController) session(c *gin.Context) (*sheets.Session, bool) {
	session, ok := sc.store.Get(c.Param("id"))
	if !ok {
		NotFound(c, "sheet session")
		return nil, false
	}
	return session, true
}

// sessionBody 会话响应体
func sessionBody(session *sheets.Session) gin.H {
	return gin.H{
		"session_id": session.ID,
		"filename":   session.Workbook.Filename,
		"sheets":     session.Workbook.Sheets(),
	}
}

// Upload 上传 xlsx/csv 并创建编辑会话
func (sc *SheetsController) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		BadRequest(c, "file field is required")
		return
	}
	defer file.Close()

	if header.Size > maxUploadSize {
		BadRequest(c, "file too large")
		return
	}

	wb, err := sheets.ParseWorkbook(header.Filename, file)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	session := sc.store.Put(wb)
	c.JSON(http.StatusCreated, sessionBody(session))
}

// Get 会话当前内容
func (sc *SheetsController) Get(c *gin.Context) {
	session, ok := sc.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sessionBody(session))
}

// cellRequest 单元格编辑请求
type cellRequest struct {
	Sheet string `json:"sheet"`
	Row   *int   `json:"row" binding:"required"`
	Col   *int   `json:"col" binding:"required"`
	Value string `json:"value"`
}

// SetCell 修改单元格
func (sc *SheetsController) SetCell(c *gin.Context) {
	session, ok := sc.session(c)
	if !ok {
		return
	}

	var req cellRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	if err := session.Workbook.SetCell(req.Sheet, *req.Row, *req.Col, req.Value); err != nil {
		BadRequest(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, sessionBody(session))
}

// rowRequest 新增行请求
type rowRequest struct {
	Sheet  string   `json:"sheet"`
	Values []string `json:"values"`
}

// AddRow 追加一行
func (sc *SheetsController) AddRow(c *gin.Context) {
	session, ok := sc.session(c)
	if !ok {
		return
	}

	var req rowRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			BadRequest(c, err.Error())
			return
		}
	}

	if err := session.Workbook.AddRow(req.Sheet, req.Values); err != nil {
		BadRequest(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, sessionBody(session))
}

// RemoveRow 删除一行,行号通过查询参数传递
func (sc *SheetsController) RemoveRow(c *gin.Context) {
	session, ok := sc.session(c)
	if !ok {
		return
	}

	row, err := strconv.Atoi(c.Query("row"))
	if err != nil {
		BadRequest(c, "row query parameter is required")
		return
	}

	if err := session.Workbook.RemoveRow(c.Query("sheet"), row); err != nil {
		BadRequest(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, sessionBody(session))
}

// columnRequest 新增列请求
type columnRequest struct {
	Sheet  string `json:"sheet"`
	Header string `json:"header"`
}

// AddColumn 追加一列
func (sc *SheetsController) AddColumn(c *gin.Context) {
	session, ok := sc.session(c)
	if !ok {
		return
	}

	var req columnRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			BadRequest(c, err.Error())
			return
		}
	}

	if err := session.Workbook.AddColumn(req.Sheet, req.Header); err != nil {
		BadRequest(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, sessionBody(session))
}

// RemoveColumn 删除一列,列号通过查询参数传递
func (sc *SheetsController) RemoveColumn(c *gin.Context) {
	session, ok := sc.session(c)
	if !ok {
		return
	}

	col, err := strconv.Atoi(c.Query("col"))
	if err != nil {
		BadRequest(c, "col query parameter is required")
		return
	}

	if err := session.Workbook.RemoveColumn(c.Query("sheet"), col); err != nil {
		BadRequest(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, sessionBody(session))
}

// Reset 恢复到上传时的内容
func (sc *SheetsController) Reset(c *gin.Context) {
	session, ok := sc.session(c)
	if !ok {
		return
	}

	session.Workbook.Reset()
	c.JSON(http.StatusOK, sessionBody(session))
}

// Export 导出指定工作表为 CSV
func (sc *SheetsController) Export(c *gin.Context) {
	session, ok := sc.session(c)
	if !ok {
		return
	}

	data, err := session.Workbook.ExportCSV(c.Query("sheet"))
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	c.Header("Content-Disposition", `attachment; filename="export.csv"`)
	c.Data(http.StatusOK, "text/csv", data)
}

// Delete 关闭会话
func (sc *SheetsController) Delete(c *gin.Context) {
	if _, ok := sc.session(c); !ok {
		return
	}
	sc.store.Delete(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"success": true})
}
