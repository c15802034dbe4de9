package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/hyperjump/toshokan/internal/models"
)

// excelExtractor extracts one segment per sheet, rows joined cell-by-cell,
// with the sheet name recorded in attribution.
type excelExtractor struct{}

func (excelExtractor) Extract(content []byte, filename string) ([]models.Segment, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	var segments []models.Segment
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("get rows for sheet %q: %w", sheet, err)
		}
		var lines []string
		for _, row := range rows {
			joined := strings.Join(row, " | ")
			if strings.TrimSpace(joined) == "" {
				continue
			}
			lines = append(lines, joined)
		}
		if len(lines) == 0 {
			continue
		}
		segments = append(segments, models.Segment{
			Content: strings.Join(lines, "\n"),
			Meta: models.Attribution{
				Source:   filename,
				Sheet:    sheet,
				FileType: "excel",
			},
		})
	}
	return segments, nil
}
