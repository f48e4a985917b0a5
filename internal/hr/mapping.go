package hr

import (
	"strings"

	"github.com/gorillaworkout/dupoin-sheet-converter/internal/lark"
)

// FieldMapping Lark 字段名与内部字段名的映射
type FieldMapping struct {
	LarkField string // Lark Base 中的字段名
	OurField  string // API 返回的字段名
	IsDate    bool   // 是否按时间戳格式化为 ISO 日期
}

// TransformRecord 将 Lark 记录映射为内部字段形态
// 始终带上 record_id;日期字段经 FormatTimestamp,其余经 NormalizeFieldValue
func TransformRecord(record lark.Record, mappings []FieldMapping) map[string]string {
	result := map[string]string{"record_id": record.RecordID}

	for _, m := range mappings {
		raw := record.Fields[m.LarkField]
		if m.IsDate {
			result[m.OurField] = lark.FormatTimestamp(raw)
		} else {
			result[m.OurField] = lark.NormalizeFieldValue(raw)
		}
	}

	return result
}

// ReverseTransform 将内部字段名转换回 Lark 字段名
// 只包含输入中出现的字段,用于部分更新
func ReverseTransform(data map[string]interface{}, mappings []FieldMapping) map[string]interface{} {
	result := make(map[string]interface{})

	for _, m := range mappings {
		if v, ok := data[m.OurField]; ok {
			result[m.LarkField] = v
		}
	}

	return result
}

// checklist 勾选项视为完成的取值集合
var doneValues = map[string]bool{
	"yes":       true,
	"done":      true,
	"completed": true,
	"true":      true,
	"✓":         true,
	"✔":         true,
}

// ChecklistDone 判断 checklist 字段是否完成
func ChecklistDone(value string) bool {
	return doneValues[strings.ToLower(strings.TrimSpace(value))]
}

// ChecklistProgress 统计 checklist 完成项数,用于进度展示
func ChecklistProgress(item map[string]string, keys []string) (completed, total int) {
	for _, key := range keys {
		if ChecklistDone(item[key]) {
			completed++
		}
	}
	return completed, len(keys)
}
