package export

import (
	"fmt"

	"paperforge/internal/domain"

	"github.com/xuri/excelize/v2"
)

var workbookHeader = []string{
	"Section", "Question ID", "Type", "Question Text",
	"Option A", "Option B", "Option C", "Option D",
	"Answer Key", "Explanation", "Image URL",
	"Marks", "Negative Marks", "Source",
}

// ExcelBuilder produces paper workbooks for offline editing and review.
type ExcelBuilder struct{}

func NewExcelBuilder() *ExcelBuilder {
	return &ExcelBuilder{}
}

// BuildWorkbook writes the selection into a single-sheet workbook, one row
// per question, grouped by section in selection order.
func (b *ExcelBuilder) BuildWorkbook(sel domain.Selection, cfg domain.PaperConfig) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Question Paper"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return nil, domain.NewRenderError("failed to create worksheet", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, domain.NewRenderError("failed to drop default worksheet", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"0066CC"}, Pattern: 1},
	})
	if err != nil {
		return nil, domain.NewRenderError("failed to create header style", err)
	}

	for col, title := range workbookHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			return nil, domain.NewRenderError("failed to write header", err)
		}
	}
	endHeader, _ := excelize.CoordinatesToCellName(len(workbookHeader), 1)
	if err := f.SetCellStyle(sheet, "A1", endHeader, headerStyle); err != nil {
		return nil, domain.NewRenderError("failed to style header", err)
	}

	row := 2
	for secIdx, secSel := range sel.Sections {
		sectionLabel := fmt.Sprintf("Section %d (%s)", secIdx+1, secSel.Section.Kind)
		for _, q := range secSel.Questions {
			values := []interface{}{
				sectionLabel,
				q.ID,
				string(q.Kind),
				q.Prompt,
				q.Options.A, q.Options.B, q.Options.C, q.Options.D,
				q.Answer,
				q.Explanation,
				q.ImageURL,
				secSel.Section.MarksPerQuestion,
				secSel.Section.NegativeMarks,
				string(q.SourceType),
			}
			for col, v := range values {
				cell, _ := excelize.CoordinatesToCellName(col+1, row)
				if err := f.SetCellValue(sheet, cell, v); err != nil {
					return nil, domain.NewRenderError("failed to write question row", err)
				}
			}
			row++
		}
	}

	if err := f.SetColWidth(sheet, "D", "D", 60); err != nil {
		return nil, domain.NewRenderError("failed to size columns", err)
	}
	if err := f.SetColWidth(sheet, "J", "J", 40); err != nil {
		return nil, domain.NewRenderError("failed to size columns", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, domain.NewRenderError("failed to serialize workbook", err)
	}
	return buf.Bytes(), nil
}
