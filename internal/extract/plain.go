package extract

import (
	"strings"
	"unicode/utf8"

	"github.com/hyperjump/toshokan/internal/models"
)

// textExtractor handles the plain-text family (text, logs, scripts, config,
// data, code). Content is UTF-8 validated; invalid sequences are replaced
// with the replacement character and the lowered confidence is recorded.
type textExtractor struct {
	fileType string
}

func (t textExtractor) Extract(content []byte, filename string) ([]models.Segment, error) {
	text, confidence := decodeText(content)
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	return []models.Segment{{
		Content: text,
		Meta: models.Attribution{
			Source:             filename,
			FileType:           t.fileType,
			Encoding:           "utf-8",
			EncodingConfidence: confidence,
		},
	}}, nil
}

// markdownExtractor returns the whole file as one markdown segment.
type markdownExtractor struct{}

func (markdownExtractor) Extract(content []byte, filename string) ([]models.Segment, error) {
	text, _ := decodeText(content)
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	return []models.Segment{{
		Content: text,
		Meta:    models.Attribution{Source: filename, FileType: "markdown"},
	}}, nil
}

// decodeText returns content as a string with invalid UTF-8 replaced.
// Confidence is 1.0 for valid UTF-8, 0.5 when replacements were needed.
func decodeText(content []byte) (string, float64) {
	if utf8.Valid(content) {
		return string(content), 1.0
	}
	return strings.ToValidUTF8(string(content), "�"), 0.5
}
