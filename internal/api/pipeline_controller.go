package api

import (
	"github.com/gin-gonic/gin"
	"github.com/gorillaworkout/dupoin-sheet-converter/internal/service"
)

// PipelineController 流水线汇总控制器
type PipelineController struct {
	svc service.PipelineService
}

// NewPipelineController 创建流水线汇总控制器
func NewPipelineController(svc service.PipelineService) *PipelineController {
	return &PipelineController{svc: svc}
}

// Summary 六张表的汇总计数
func (pc *PipelineController) Summary(c *gin.Context) {
	stats, err := pc.svc.Summary(c.Request.Context())
	if err != nil {
		ServerError(c, "failed to compute pipeline summary", err)
		return
	}
	Cached(c, stats)
}
