package sheets

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat 不支持的文件类型
var ErrUnsupportedFormat = errors.New("unsupported file format, expected .xlsx or .csv")

// ParseWorkbook 按扩展名解析上传文件为工作簿
// 每张工作表第一行作为表头,其余为数据行;空文件返回错误
func ParseWorkbook(filename string, r io.Reader) (*Workbook, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		return parseXLSX(filename, r)
	case ".csv":
		return parseCSV(filename, r)
	default:
		return nil, ErrUnsupportedFormat
	}
}

// parseXLSX 通过 excelize 解析 xlsx
func parseXLSX(filename string, r io.Reader) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer f.Close()

	var sheets []*Sheet
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", name, err)
		}
		if len(rows) == 0 {
			continue
		}
		sheets = append(sheets, buildSheet(name, rows))
	}

	if len(sheets) == 0 {
		return nil, errors.New("workbook contains no data")
	}
	return NewWorkbook(filename, sheets), nil
}

// parseCSV 解析 csv 为单工作表工作簿
func parseCSV(filename string, r io.Reader) (*Workbook, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // 允许不等长的行

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, errors.New("csv file is empty")
	}

	name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	return NewWorkbook(filename, []*Sheet{buildSheet(name, records)}), nil
}

// buildSheet 第一行作表头,数据行补齐到表头宽度
func buildSheet(name string, rows [][]string) *Sheet {
	headers := rows[0]
	data := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		padded := make([]string, len(headers))
		copy(padded, row)
		data = append(data, padded)
	}
	return &Sheet{Name: name, Headers: headers, Rows: data}
}
