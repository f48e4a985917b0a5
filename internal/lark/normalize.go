package lark

import (
	"encoding/json"
	"strconv"
	"time"
)

// NormalizeFieldValue 将 Lark Base 的异构字段表示折叠为展示字符串
// 字段可能是普通标量、公式/引用数组、关联记录数组、URL 对象或人员对象
func NormalizeFieldValue(value interface{}) string {
	if value == nil {
		return ""
	}

	switch v := value.(type) {
	case string:
		return v
	case bool:
		if v {
			return "Yes"
		}
		return "No"
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case []interface{}:
		return normalizeArray(v)
	case map[string]interface{}:
		// URL 字段: { link, text }
		if link, ok := v["link"].(string); ok {
			if text, ok := v["text"].(string); ok && text != "" {
				return text
			}
			return link
		}
		// 人员字段: { name, id }
		if name, ok := v["name"].(string); ok {
			return name
		}
	}

	// 兜底: 序列化为 JSON
	b, err := json.Marshal(value)
	if err != nil {
		return ""
	}
	return string(b)
}

// normalizeArray 处理公式/引用/关联记录等数组表示
func normalizeArray(arr []interface{}) string {
	if len(arr) == 0 {
		return ""
	}

	if first, ok := arr[0].(map[string]interface{}); ok {
		// 公式 / 引用: [{ text, type }]
		if _, hasText := first["text"]; hasText {
			out := ""
			for i, item := range arr {
				m, _ := item.(map[string]interface{})
				if i > 0 {
					out += ", "
				}
				if m != nil {
					out += NormalizeFieldValue(m["text"])
				}
			}
			return out
		}
		// 关联记录: [{ table_id, text_arr, type }]
		if _, hasTextArr := first["text_arr"]; hasTextArr {
			out := ""
			for _, item := range arr {
				m, _ := item.(map[string]interface{})
				if m == nil {
					continue
				}
				texts, _ := m["text_arr"].([]interface{})
				for _, t := range texts {
					if out != "" {
						out += ", "
					}
					out += NormalizeFieldValue(t)
				}
			}
			return out
		}
	}

	// 普通数组
	out := ""
	for i, item := range arr {
		if i > 0 {
			out += ", "
		}
		out += NormalizeFieldValue(item)
	}
	return out
}

// FormatTimestamp 将 Lark 时间戳渲染为 ISO 日期
// Lark 的时间戳可能是秒或毫秒;非数字字符串原样返回
func FormatTimestamp(value interface{}) string {
	if value == nil {
		return ""
	}

	var ts float64
	switch v := value.(type) {
	case float64:
		ts = v
	case int:
		ts = float64(v)
	case int64:
		ts = float64(v)
	case string:
		if v == "" {
			return ""
		}
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return v
		}
		ts = n
	default:
		return NormalizeFieldValue(value)
	}

	if ts == 0 {
		return ""
	}

	// 小于 1e12 视为秒级时间戳
	if ts < 1e12 {
		ts *= 1000
	}

	return time.UnixMilli(int64(ts)).UTC().Format("2006-01-02")
}
