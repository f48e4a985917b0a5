package service

import (
	"context"
	"testing"

	"github.com/gorillaworkout/dupoin-sheet-converter/internal/config"
	"github.com/gorillaworkout/dupoin-sheet-converter/internal/hr"
	"github.com/gorillaworkout/dupoin-sheet-converter/internal/lark"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRecordClient 记录调用参数的假 Lark 客户端
type fakeRecordClient struct {
	records       []lark.Record
	record        *lark.Record
	getErr        error
	createdFields map[string]interface{}
	updatedFields map[string]interface{}
	deletedID     string
}

func (f *fakeRecordClient) AllRecords(ctx context.Context, tableID string) ([]lark.Record, error) {
	return f.records, nil
}

func (f *fakeRecordClient) GetRecord(ctx context.Context, tableID, recordID string) (*lark.Record, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.record, nil
}

func (f *fakeRecordClient) CreateRecord(ctx context.Context, tableID string, fields map[string]interface{}) (string, error) {
	f.createdFields = fields
	return "recNew", nil
}

func (f *fakeRecordClient) UpdateRecord(ctx context.Context, tableID, recordID string, fields map[string]interface{}) error {
	f.updatedFields = fields
	return nil
}

func (f *fakeRecordClient) DeleteRecord(ctx context.Context, tableID, recordID string) error {
	f.deletedID = recordID
	return nil
}

// resourceTestConfig 所有资源表的测试配置
func resourceTestConfig() *config.LarkConfig {
	return &config.LarkConfig{Tables: map[string]string{
		"manpower":    "tblMan",
		"recruitment": "tblRec",
		"candidate":   "tblCan",
		"onboarding":  "tblOnb",
		"employee":    "tblEmp",
		"offboarding": "tblOff",
	}}
}

// TestResourceList 测试列表映射
func TestResourceList(t *testing.T) {
	client := &fakeRecordClient{records: []lark.Record{
		{RecordID: "rec1", Fields: map[string]interface{}{"Full Name": "Alice", "Status": "Active"}},
	}}
	svc := NewResourceService(client, resourceTestConfig())
	res, _ := hr.ResourceByName("employees")

	items, err := svc.List(context.Background(), res)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "rec1", items[0]["record_id"])
	assert.Equal(t, "Active", items[0]["status"])
}

// TestEmployeeWriteStripsReadOnly 测试员工写入剔除只读字段
func TestEmployeeWriteStripsReadOnly(t *testing.T) {
	client := &fakeRecordClient{}
	svc := NewResourceService(client, resourceTestConfig())
	res, _ := hr.ResourceByName("employees")

	_, err := svc.Create(context.Background(), res, map[string]interface{}{
		"uuid":              "should-be-stripped",
		"work_email":        "a@example.com",
		"length_of_service": "3 years",
		"status":            "Active",
	})
	require.NoError(t, err)

	// 只读字段不提交给 Lark
	_, hasUUID := client.createdFields["UUID"]
	_, hasEmail := client.createdFields["Work Email"]
	_, hasLOS := client.createdFields["Length Of Service"]
	assert.False(t, hasUUID)
	assert.False(t, hasEmail)
	assert.False(t, hasLOS)
	assert.Equal(t, "Active", client.createdFields["Status"])
}

// TestUpdatePartial 测试部分更新只提交出现的字段
func TestUpdatePartial(t *testing.T) {
	client := &fakeRecordClient{}
	svc := NewResourceService(client, resourceTestConfig())
	res, _ := hr.ResourceByName("manpower")

	require.NoError(t, svc.Update(context.Background(), res, "rec1", map[string]interface{}{
		"status": "Approved",
	}))

	require.Len(t, client.updatedFields, 1)
	assert.Equal(t, "Approved", client.updatedFields["Status"])
}

// TestGetNotFoundPassthrough 测试 404 错误透传
func TestGetNotFoundPassthrough(t *testing.T) {
	client := &fakeRecordClient{getErr: lark.ErrRecordNotFound}
	svc := NewResourceService(client, resourceTestConfig())
	res, _ := hr.ResourceByName("candidates")

	_, err := svc.Get(context.Background(), res, "missing")
	assert.ErrorIs(t, err, lark.ErrRecordNotFound)
}

// TestDelete 测试删除调用
func TestDelete(t *testing.T) {
	client := &fakeRecordClient{}
	svc := NewResourceService(client, resourceTestConfig())
	res, _ := hr.ResourceByName("offboarding")

	require.NoError(t, svc.Delete(context.Background(), res, "rec9"))
	assert.Equal(t, "rec9", client.deletedID)
}
