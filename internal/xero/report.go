package xero

import (
	"strconv"
	"strings"
)

// ReportCell 报表单元格
type ReportCell struct {
	Value string `json:"Value"`
}

// ReportRow 报表行,Section 行嵌套子行
type ReportRow struct {
	RowType string       `json:"RowType"`
	Title   string       `json:"Title,omitempty"`
	Cells   []ReportCell `json:"Cells,omitempty"`
	Rows    []ReportRow  `json:"Rows,omitempty"`
}

// Report 单份报表
type Report struct {
	ReportName string      `json:"ReportName"`
	ReportDate string      `json:"ReportDate"`
	Rows       []ReportRow `json:"Rows"`
}

// ReportEnvelope Xero 报表响应外层
type ReportEnvelope struct {
	Reports []Report `json:"Reports"`
}

// FlatRow 展平后的报表行
type FlatRow struct {
	Section     string
	AccountName string
	Value       float64
	Period      string
}

// ParseAmount 解析 Xero 金额文本
// 去掉千分位逗号,括号表示负数;空串或非数字返回 0
func ParseAmount(value string) float64 {
	if value == "" {
		return 0
	}

	cleaned := strings.NewReplacer(",", "", "(", "", ")", "").Replace(value)
	n, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}

	if strings.Contains(value, "(") {
		return -n
	}
	return n
}

// FlattenReport 将嵌套的 Section/Row 结构展平为 (section, account, value, period) 元组
// Header 行的后续单元格作为期间标签;零值跳过
func FlattenReport(report *Report) []FlatRow {
	if report == nil {
		return nil
	}

	periods := []string{"Current"}
	for _, row := range report.Rows {
		if row.RowType == "Header" && len(row.Cells) > 1 {
			periods = make([]string, 0, len(row.Cells)-1)
			for _, cell := range row.Cells[1:] {
				periods = append(periods, cell.Value)
			}
			break
		}
	}

	var rows []FlatRow
	for _, section := range report.Rows {
		if section.RowType != "Section" {
			continue
		}
		sectionTitle := section.Title
		if sectionTitle == "" {
			sectionTitle = "Other"
		}

		for _, row := range section.Rows {
			if len(row.Cells) < 2 {
				continue
			}
			accountName := row.Cells[0].Value
			if accountName == "" {
				continue
			}

			for i := 1; i < len(row.Cells); i++ {
				value := ParseAmount(row.Cells[i].Value)
				if value == 0 {
					continue
				}
				period := "Period " + strconv.Itoa(i)
				if i-1 < len(periods) {
					period = periods[i-1]
				}
				rows = append(rows, FlatRow{
					Section:     sectionTitle,
					AccountName: accountName,
					Value:       value,
					Period:      period,
				})
			}
		}
	}

	return rows
}
