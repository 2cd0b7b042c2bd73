// Package export renders a list of admission records as an Excel workbook.
package export

import (
	"fmt"
	"io"
	"net/url"
	"slices"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/zjgaokao/major-advisor/internal/major"
)

// SheetName is the name of the single data sheet.
const SheetName = "专业列表"

// ContentType is the MIME type of the workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// column is one exported field.
type column struct {
	header string
	width  float64
	value  func(m *major.Major) any
}

func text(get func(m *major.Major) string) func(m *major.Major) any {
	return func(m *major.Major) any { return get(m) }
}

func number(get func(m *major.Major) *int) func(m *major.Major) any {
	return func(m *major.Major) any {
		if v := get(m); v != nil {
			return *v
		}
		return nil
	}
}

func columns() []column {
	cols := []column{
		{"院校", 22, text(func(m *major.Major) string { return m.University })},
		{"专业名称", 24, text(func(m *major.Major) string { return m.MajorName })},
		{"专业代码", 10, text(func(m *major.Major) string { return m.MajorCode })},
		{"地区", 8, text(func(m *major.Major) string { return m.Region })},
		{"省份", 8, text(func(m *major.Major) string { return m.Province })},
		{"院校层次", 10, text(func(m *major.Major) string { return m.UniversityTier })},
		{"办学层次", 8, text(func(m *major.Major) string { return m.UniversityLevel })},
		{"办学性质", 10, text(func(m *major.Major) string { return m.UniversityType })},
		{"专业类别", 10, text(func(m *major.Major) string { return m.MajorCategory })},
		{"学制", 6, text(func(m *major.Major) string { return m.SchoolingLength })},
		{"学费(元/年)", 12, number(func(m *major.Major) *int { return m.Tuition })},
		{"选科要求", 20, text(func(m *major.Major) string { return m.Requirements() })},
		{"保研资格", 8, text(func(m *major.Major) string {
			if m.HasPostgraduateRecommendation {
				return "是"
			}
			return "否"
		})},
		{"2025预估位次", 12, number(func(m *major.Major) *int { return m.EstimatedRanking2025 })},
		{"录取概率(%)", 12, number(func(m *major.Major) *int { return m.AdmissionProbability })},
	}

	// Newest year first, as the results table shows them.
	years := slices.Clone(major.HistoryYears)
	slices.Reverse(years)
	for _, y := range years {
		cols = append(cols,
			column{strconv.Itoa(y) + "录取分", 11, number(func(m *major.Major) *int { return m.Year(y).Score })},
			column{strconv.Itoa(y) + "录取位次", 12, number(func(m *major.Major) *int { return m.Year(y).Ranking })},
		)
	}
	return cols
}

// Workbook builds a workbook with one header row and one row per record,
// in the order given. Missing values are left as empty cells.
func Workbook(majors []major.Major) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	cols := columns()
	for i, c := range cols {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(SheetName, cell, c.header); err != nil {
			_ = f.Close()
			return nil, err
		}
		name, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(SheetName, name, name, c.width); err != nil {
			_ = f.Close()
			return nil, err
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := f.SetRowStyle(SheetName, 1, 1, headerStyle); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		_ = f.Close()
		return nil, err
	}

	for i := range majors {
		row := i + 2
		for j, c := range cols {
			v := c.value(&majors[i])
			if v == nil {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(j+1, row)
			if err := f.SetCellValue(SheetName, cell, v); err != nil {
				_ = f.Close()
				return nil, err
			}
		}
	}
	return f, nil
}

// Write streams the workbook for majors to w.
func Write(w io.Writer, majors []major.Major) error {
	f, err := Workbook(majors)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// ContentDisposition returns an attachment header with an ASCII fallback
// name and the UTF-8 name in RFC 5987 form.
func ContentDisposition(asciiName, utf8Name string) string {
	return fmt.Sprintf("attachment; filename=%q; filename*=UTF-8''%s", asciiName, url.PathEscape(utf8Name))
}
