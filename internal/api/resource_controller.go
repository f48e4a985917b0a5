package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorillaworkout/dupoin-sheet-converter/internal/hr"
	"github.com/gorillaworkout/dupoin-sheet-converter/internal/lark"
	"github.com/gorillaworkout/dupoin-sheet-converter/internal/service"
)

// ResourceController HR 流水线资源控制器
// 六个资源共用同一组处理器,按 URL 段查找资源配置
type ResourceController struct {
	svc service.ResourceService
}

// NewResourceController 创建 HR 资源控制器
func NewResourceController(svc service.ResourceService) *ResourceController {
	return &ResourceController{svc: svc}
}

// resourceNameKey 路由注册时写入的资源名
const resourceNameKey = "resource_name"

// resource 解析路由绑定的资源,未注册的返回 404
func (rc *ResourceController) resource(c *gin.Context) (*hr.Resource, bool) {
	name := c.GetString(resourceNameKey)
	if name == "" {
		name = c.Param("resource")
	}
	res, ok := hr.ResourceByName(name)
	if !ok {
		c.JSON(http.StatusNotFound, ErrorBody{Error: "unknown resource: " + name})
		return nil, false
	}
	return res, true
}

// List 列表,员工资源额外返回 active_count
func (rc *ResourceController) List(c *gin.Context) {
	res, ok := rc.resource(c)
	if !ok {
		return
	}

	items, err := rc.svc.List(c.Request.Context(), res)
	if err != nil {
		ServerError(c, "failed to fetch "+res.Label+" records", err)
		return
	}

	if res.Name == "employees" {
		active := 0
		for _, item := range items {
			if strings.Contains(strings.ToLower(item["status"]), "active") {
				active++
			}
		}
		c.Header("Cache-Control", listCacheControl)
		c.JSON(http.StatusOK, gin.H{
			"data":         items,
			"total":        len(items),
			"active_count": active,
		})
		return
	}

	List(c, items, len(items))
}

// Get 详情,带 checklist 的资源附加进度计数
func (rc *ResourceController) Get(c *gin.Context) {
	res, ok := rc.resource(c)
	if !ok {
		return
	}

	item, err := rc.svc.Get(c.Request.Context(), res, c.Param("id"))
	if err != nil {
		if errors.Is(err, lark.ErrRecordNotFound) {
			NotFound(c, res.Label)
			return
		}
		ServerError(c, "failed to fetch "+res.Label, err)
		return
	}

	if len(res.Checklist) == 0 {
		c.JSON(http.StatusOK, gin.H{"data": item})
		return
	}

	completed, total := hr.ChecklistProgress(item, res.Checklist)
	record := make(map[string]interface{}, len(item)+2)
	for k, v := range item {
		record[k] = v
	}
	record["checklist_completed"] = completed
	record["checklist_total"] = total
	c.JSON(http.StatusOK, gin.H{"data": record})
}

// Create 新建记录
func (rc *ResourceController) Create(c *gin.Context) {
	res, ok := rc.resource(c)
	if !ok {
		return
	}

	var data map[string]interface{}
	if err := c.ShouldBindJSON(&data); err != nil {
		BadRequest(c, err.Error())
		return
	}

	recordID, err := rc.svc.Create(c.Request.Context(), res, data)
	if err != nil {
		ServerError(c, "failed to create "+res.Label, err)
		return
	}
	Created(c, recordID)
}

// Update 部分更新记录
func (rc *ResourceController) Update(c *gin.Context) {
	res, ok := rc.resource(c)
	if !ok {
		return
	}

	var data map[string]interface{}
	if err := c.ShouldBindJSON(&data); err != nil {
		BadRequest(c, err.Error())
		return
	}

	recordID := c.Param("id")
	if err := rc.svc.Update(c.Request.Context(), res, recordID, data); err != nil {
		if errors.Is(err, lark.ErrRecordNotFound) {
			NotFound(c, res.Label)
			return
		}
		ServerError(c, "failed to update "+res.Label, err)
		return
	}
	Mutated(c, recordID)
}

// Delete 删除记录
func (rc *ResourceController) Delete(c *gin.Context) {
	res, ok := rc.resource(c)
	if !ok {
		return
	}

	recordID := c.Param("id")
	if err := rc.svc.Delete(c.Request.Context(), res, recordID); err != nil {
		if errors.Is(err, lark.ErrRecordNotFound) {
			NotFound(c, res.Label)
			return
		}
		ServerError(c, "failed to delete "+res.Label, err)
		return
	}
	Mutated(c, recordID)
}
