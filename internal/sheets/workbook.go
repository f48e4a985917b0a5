package sheets

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"sync"
)

// Sheet 单个工作表,表头与数据行分开存放
type Sheet struct {
	Name    string     `json:"name"`
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// Workbook 内存中的工作簿,编辑操作在锁内执行
// original 保留解析时的快照,Reset 时恢复
type Workbook struct {
	mu       sync.Mutex
	Filename string
	sheets   []*Sheet
	original []*Sheet
}

// NewWorkbook 创建工作簿并保留初始快照
func NewWorkbook(filename string, sheets []*Sheet) *Workbook {
	return &Workbook{
		Filename: filename,
		sheets:   sheets,
		original: cloneSheets(sheets),
	}
}

// cloneSheets 深拷贝工作表
func cloneSheets(sheets []*Sheet) []*Sheet {
	cloned := make([]*Sheet, 0, len(sheets))
	for _, s := range sheets {
		c := &Sheet{
			Name:    s.Name,
			Headers: append([]string(nil), s.Headers...),
			Rows:    make([][]string, 0, len(s.Rows)),
		}
		for _, row := range s.Rows {
			c.Rows = append(c.Rows, append([]string(nil), row...))
		}
		cloned = append(cloned, c)
	}
	return cloned
}

// Sheets 返回当前工作表快照
func (w *Workbook) Sheets() []*Sheet {
	w.mu.Lock()
	defer w.mu.Unlock()
	return cloneSheets(w.sheets)
}

// sheetLocked 按名称查找工作表,空名取第一张;调用方必须持有 w.mu
func (w *Workbook) sheetLocked(name string) (*Sheet, error) {
	if len(w.sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	if name == "" {
		return w.sheets[0], nil
	}
	for _, s := range w.sheets {
		if s.Name == name {
			return s, nil
		}
	}
	return nil, fmt.Errorf("sheet %q not found", name)
}

// SetCell 修改单元格,row/col 以 0 起始且 col 在表头范围内
func (w *Workbook) SetCell(sheet string, row, col int, value string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	s, err := w.sheetLocked(sheet)
	if err != nil {
		return err
	}
	if row < 0 || row >= len(s.Rows) {
		return fmt.Errorf("row %d out of range", row)
	}
	if col < 0 || col >= len(s.Headers) {
		return fmt.Errorf("column %d out of range", col)
	}

	// 短行补齐到表头宽度
	for len(s.Rows[row]) < len(s.Headers) {
		s.Rows[row] = append(s.Rows[row], "")
	}
	s.Rows[row][col] = value
	return nil
}

// AddRow 追加一行,values 为空时填充空行
func (w *Workbook) AddRow(sheet string, values []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	s, err := w.sheetLocked(sheet)
	if err != nil {
		return err
	}

	row := make([]string, len(s.Headers))
	copy(row, values)
	s.Rows = append(s.Rows, row)
	return nil
}

// RemoveRow 删除指定行
func (w *Workbook) RemoveRow(sheet string, row int) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	s, err := w.sheetLocked(sheet)
	if err != nil {
		return err
	}
	if row < 0 || row >= len(s.Rows) {
		return fmt.Errorf("row %d out of range", row)
	}

	s.Rows = append(s.Rows[:row], s.Rows[row+1:]...)
	return nil
}

// AddColumn 追加一列,所有数据行补空单元格
func (w *Workbook) AddColumn(sheet, header string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	s, err := w.sheetLocked(sheet)
	if err != nil {
		return err
	}

	if header == "" {
		header = fmt.Sprintf("Column %d", len(s.Headers)+1)
	}
	s.Headers = append(s.Headers, header)
	for i := range s.Rows {
		s.Rows[i] = append(s.Rows[i], "")
	}
	return nil
}

// RemoveColumn 删除指定列,同时收缩所有数据行
func (w *Workbook) RemoveColumn(sheet string, col int) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	s, err := w.sheetLocked(sheet)
	if err != nil {
		return err
	}
	if col < 0 || col >= len(s.Headers) {
		return fmt.Errorf("column %d out of range", col)
	}

	s.Headers = append(s.Headers[:col], s.Headers[col+1:]...)
	for i := range s.Rows {
		if col < len(s.Rows[i]) {
			s.Rows[i] = append(s.Rows[i][:col], s.Rows[i][col+1:]...)
		}
	}
	return nil
}

// Reset 恢复到解析时的内容
func (w *Workbook) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.sheets = cloneSheets(w.original)
}

// ExportCSV 导出指定工作表为 CSV(表头+数据行)
func (w *Workbook) ExportCSV(sheet string) ([]byte, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	s, err := w.sheetLocked(sheet)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write(s.Headers); err != nil {
		return nil, err
	}
	for _, row := range s.Rows {
		// 短行导出时补齐,保持列数一致
		padded := make([]string, len(s.Headers))
		copy(padded, row)
		if err := writer.Write(padded); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
