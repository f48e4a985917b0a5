package service

import (
	"context"
	"fmt"

	"github.com/gorillaworkout/dupoin-sheet-converter/internal/config"
	"github.com/gorillaworkout/dupoin-sheet-converter/internal/hr"
	"github.com/gorillaworkout/dupoin-sheet-converter/internal/lark"
)

// RecordClient Lark 记录 CRUD 接口(lark.Client 实现)
type RecordClient interface {
	AllRecords(ctx context.Context, tableID string) ([]lark.Record, error)
	GetRecord(ctx context.Context, tableID, recordID string) (*lark.Record, error)
	CreateRecord(ctx context.Context, tableID string, fields map[string]interface{}) (string, error)
	UpdateRecord(ctx context.Context, tableID, recordID string, fields map[string]interface{}) error
	DeleteRecord(ctx context.Context, tableID, recordID string) error
}

// ResourceService HR 流水线资源 CRUD 服务接口
// 所有读写直达 Lark Base,不做本地缓存
type ResourceService interface {
	List(ctx context.Context, res *hr.Resource) ([]map[string]string, error)
	Get(ctx context.Context, res *hr.Resource, recordID string) (map[string]string, error)
	Create(ctx context.Context, res *hr.Resource, data map[string]interface{}) (string, error)
	Update(ctx context.Context, res *hr.Resource, recordID string, data map[string]interface{}) error
	Delete(ctx context.Context, res *hr.Resource, recordID string) error
}

// resourceService HR 资源服务实现
type resourceService struct {
	client RecordClient
	cfg    *config.LarkConfig
}

// NewResourceService 创建 HR 资源服务
func NewResourceService(client RecordClient, cfg *config.LarkConfig) ResourceService {
	return &resourceService{client: client, cfg: cfg}
}

// List 拉取全表并映射为内部字段形态
func (s *resourceService) List(ctx context.Context, res *hr.Resource) ([]map[string]string, error) {
	tableID, err := s.cfg.TableID(res.TableKey)
	if err != nil {
		return nil, err
	}

	records, err := s.client.AllRecords(ctx, tableID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s records: %w", res.Label, err)
	}

	items := make([]map[string]string, 0, len(records))
	for _, record := range records {
		items = append(items, hr.TransformRecord(record, res.Mappings))
	}
	return items, nil
}

// Get 拉取单条记录
func (s *resourceService) Get(ctx context.Context, res *hr.Resource, recordID string) (map[string]string, error) {
	tableID, err := s.cfg.TableID(res.TableKey)
	if err != nil {
		return nil, err
	}

	record, err := s.client.GetRecord(ctx, tableID, recordID)
	if err != nil {
		return nil, err
	}
	return hr.TransformRecord(*record, res.Mappings), nil
}

// Create 反向映射后写入 Lark,返回 Lark 分配的 record_id
func (s *resourceService) Create(ctx context.Context, res *hr.Resource, data map[string]interface{}) (string, error) {
	tableID, err := s.cfg.TableID(res.TableKey)
	if err != nil {
		return "", err
	}

	fields := stripReadOnly(hr.ReverseTransform(data, res.Mappings), res.ReadOnly)
	recordID, err := s.client.CreateRecord(ctx, tableID, fields)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", res.Label, err)
	}
	return recordID, nil
}

// Update 部分更新,只提交请求中出现的字段
func (s *resourceService) Update(ctx context.Context, res *hr.Resource, recordID string, data map[string]interface{}) error {
	tableID, err := s.cfg.TableID(res.TableKey)
	if err != nil {
		return err
	}

	fields := stripReadOnly(hr.ReverseTransform(data, res.Mappings), res.ReadOnly)
	return s.client.UpdateRecord(ctx, tableID, recordID, fields)
}

// Delete 删除记录
func (s *resourceService) Delete(ctx context.Context, res *hr.Resource, recordID string) error {
	tableID, err := s.cfg.TableID(res.TableKey)
	if err != nil {
		return err
	}
	return s.client.DeleteRecord(ctx, tableID, recordID)
}

// stripReadOnly 剔除 Lark 拒绝写入的字段
func stripReadOnly(fields map[string]interface{}, readOnly []string) map[string]interface{} {
	for _, name := range readOnly {
		delete(fields, name)
	}
	return fields
}
