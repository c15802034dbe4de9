package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/hyperjump/toshokan/internal/models"
)

// pdfExtractor extracts one segment per page so chunks never mix pages.
type pdfExtractor struct{}

func (pdfExtractor) Extract(content []byte, filename string) ([]models.Segment, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("open PDF: %w", err)
	}
	var segments []models.Segment
	numPages := r.NumPage()
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("extract page %d: %w", i, err)
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		segments = append(segments, models.Segment{
			Content: text,
			Meta: models.Attribution{
				Source:   filename,
				Page:     i,
				FileType: "pdf",
			},
		})
	}
	return segments, nil
}
