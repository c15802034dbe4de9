package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/hyperjump/toshokan/internal/models"
)

// odfContentPath is the path to the main content inside OpenDocument packages.
const odfContentPath = "content.xml"

// OpenDocument text elements (with optional attributes). Separate patterns so
// opening and closing tags match (e.g. <text:p>...</text:p> only).
var (
	odfTextP    = regexp.MustCompile(`<text:p[^>]*>([^<]*)</text:p>`)
	odfTextSpan = regexp.MustCompile(`<text:span[^>]*>([^<]*)</text:span>`)
	odfTextH    = regexp.MustCompile(`<text:h[^>]*>([^<]*)</text:h>`)
)

// odpExtractor extracts text from OpenDocument presentations (.odp).
type odpExtractor struct{}

func (odpExtractor) Extract(content []byte, filename string) ([]models.Segment, error) {
	text, err := extractODFText(content, []*regexp.Regexp{odfTextP, odfTextSpan, odfTextH})
	if err != nil {
		return nil, fmt.Errorf("extract ODP: %w", err)
	}
	if text == "" {
		return nil, nil
	}
	return []models.Segment{{
		Content: text,
		Meta:    models.Attribution{Source: filename, FileType: "odp"},
	}}, nil
}

// odsExtractor extracts text from OpenDocument spreadsheets (.ods).
type odsExtractor struct{}

func (odsExtractor) Extract(content []byte, filename string) ([]models.Segment, error) {
	text, err := extractODFText(content, []*regexp.Regexp{odfTextP, odfTextSpan})
	if err != nil {
		return nil, fmt.Errorf("extract ODS: %w", err)
	}
	if text == "" {
		return nil, nil
	}
	return []models.Segment{{
		Content: text,
		Meta:    models.Attribution{Source: filename, FileType: "ods"},
	}}, nil
}

// extractODFText pulls matching text elements from content.xml inside an
// OpenDocument zip and joins them with spaces.
func extractODFText(content []byte, patterns []*regexp.Regexp) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("not a zip: %w", err)
	}
	data, err := readZipFile(zr, odfContentPath)
	if err != nil {
		return "", err
	}
	s := string(data)
	var b strings.Builder
	for _, re := range patterns {
		for _, p := range re.FindAllStringSubmatch(s, -1) {
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(strings.TrimSpace(p[1]))
		}
	}
	return strings.TrimSpace(b.String()), nil
}
