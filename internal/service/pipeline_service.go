package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/gorillaworkout/dupoin-sheet-converter/internal/config"
	"github.com/gorillaworkout/dupoin-sheet-converter/internal/lark"
	"golang.org/x/sync/errgroup"
)

// RecordLister 整表拉取接口(lark.Client 实现)
type RecordLister interface {
	AllRecords(ctx context.Context, tableID string) ([]lark.Record, error)
}

// PipelineStats 流水线汇总计数
// 桶的匹配关键词不保证互斥:一条记录可能同时落入多个桶
type PipelineStats struct {
	Manpower struct {
		Total    int `json:"total"`
		Pending  int `json:"pending"`
		Approved int `json:"approved"`
	} `json:"manpower"`
	Recruitment struct {
		Total      int `json:"total"`
		InProgress int `json:"in_progress"`
		Completed  int `json:"completed"`
	} `json:"recruitment"`
	Candidates struct {
		Total       int `json:"total"`
		Shortlisted int `json:"shortlisted"`
		Offered     int `json:"offered"`
	} `json:"candidates"`
	Onboarding struct {
		Total      int `json:"total"`
		InProgress int `json:"in_progress"`
		Completed  int `json:"completed"`
	} `json:"onboarding"`
	Employees struct {
		Total  int `json:"total"`
		Active int `json:"active"`
	} `json:"employees"`
	Offboarding struct {
		Total      int `json:"total"`
		InProgress int `json:"in_progress"`
		Completed  int `json:"completed"`
	} `json:"offboarding"`
}

// PipelineService 流水线汇总服务接口
type PipelineService interface {
	Summary(ctx context.Context) (*PipelineStats, error)
}

// pipelineService 流水线汇总服务实现
type pipelineService struct {
	lister RecordLister
	cfg    *config.LarkConfig
}

// NewPipelineService 创建流水线汇总服务
func NewPipelineService(lister RecordLister, cfg *config.LarkConfig) PipelineService {
	return &pipelineService{lister: lister, cfg: cfg}
}

// countByField 统计某字段归一化小写后包含关键词的记录数
func countByField(records []lark.Record, fieldName string, matchValues map[string][]string) map[string]int {
	counts := make(map[string]int, len(matchValues))
	for key := range matchValues {
		counts[key] = 0
	}

	for _, record := range records {
		value := strings.ToLower(lark.NormalizeFieldValue(record.Fields[fieldName]))
		for key, matchers := range matchValues {
			for _, m := range matchers {
				if strings.Contains(value, strings.ToLower(m)) {
					counts[key]++
					break
				}
			}
		}
	}

	return counts
}

// Summary 并发拉取六张表并计算汇总计数
func (s *pipelineService) Summary(ctx context.Context) (*PipelineStats, error) {
	tables := []string{"manpower", "recruitment", "candidate", "onboarding", "employee", "offboarding"}
	results := make([][]lark.Record, len(tables))

	g, gctx := errgroup.WithContext(ctx)
	for i, name := range tables {
		i, name := i, name
		tableID, err := s.cfg.TableID(name)
		if err != nil {
			return nil, err
		}
		g.Go(func() error {
			records, err := s.lister.AllRecords(gctx, tableID)
			if err != nil {
				return fmt.Errorf("failed to fetch %s records: %w", name, err)
			}
			results[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	manpower, recruitment, candidates, onboarding, employees, offboarding :=
		results[0], results[1], results[2], results[3], results[4], results[5]

	// 关键词列表沿用已上线的匹配规则,不做去重或互斥处理
	manpowerCounts := countByField(manpower, "Status", map[string][]string{
		"pending":  {"pending"},
		"approved": {"approved"},
	})
	recruitmentCounts := countByField(recruitment, "Status", map[string][]string{
		"in_progress": {"active", "open", "in progress"},
		"completed":   {"closed", "completed", "filled"},
	})
	candidateCounts := countByField(candidates, "Status", map[string][]string{
		"shortlisted": {"shortlisted", "shortlist"},
		"offered":     {"offered", "offer sent", "offer"},
	})
	onboardingCounts := countByField(onboarding, "Completed", map[string][]string{
		"completed": {"yes", "completed", "done"},
	})
	employeeCounts := countByField(employees, "Status", map[string][]string{
		"active": {"active"},
	})
	offboardingCounts := countByField(offboarding, "Offboarded", map[string][]string{
		"completed": {"yes", "completed", "done"},
	})

	stats := &PipelineStats{}
	stats.Manpower.Total = len(manpower)
	stats.Manpower.Pending = manpowerCounts["pending"]
	stats.Manpower.Approved = manpowerCounts["approved"]
	stats.Recruitment.Total = len(recruitment)
	stats.Recruitment.InProgress = recruitmentCounts["in_progress"]
	stats.Recruitment.Completed = recruitmentCounts["completed"]
	stats.Candidates.Total = len(candidates)
	stats.Candidates.Shortlisted = candidateCounts["shortlisted"]
	stats.Candidates.Offered = candidateCounts["offered"]
	stats.Onboarding.Total = len(onboarding)
	stats.Onboarding.Completed = onboardingCounts["completed"]
	stats.Onboarding.InProgress = len(onboarding) - onboardingCounts["completed"]
	stats.Employees.Total = len(employees)
	stats.Employees.Active = employeeCounts["active"]
	stats.Offboarding.Total = len(offboarding)
	stats.Offboarding.Completed = offboardingCounts["completed"]
	stats.Offboarding.InProgress = len(offboarding) - offboardingCounts["completed"]

	return stats, nil
}
