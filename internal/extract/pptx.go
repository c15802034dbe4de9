package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/hyperjump/toshokan/internal/models"
)

// slideFileRe matches slide XML paths inside a .pptx zip and captures the slide number.
var slideFileRe = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// atTag matches <a:t>text</a:t> or <a:t xml:space="preserve">text</a:t> (and any other attributes).
var atTag = regexp.MustCompile(`<a:t[^>]*>([^<]*)</a:t>`)

// pptxExtractor extracts one segment per slide, in slide order, with the slide
// number recorded as the page. PPTX is a ZIP containing ppt/slides/slideN.xml.
type pptxExtractor struct{}

func (pptxExtractor) Extract(content []byte, filename string) ([]models.Segment, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("extract PPTX: not a zip: %w", err)
	}
	type slide struct {
		num  int
		name string
	}
	var slides []slide
	for _, f := range zr.File {
		m := slideFileRe.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		num, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		slides = append(slides, slide{num: num, name: f.Name})
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].num < slides[j].num })

	var segments []models.Segment
	for _, sl := range slides {
		data, err := readZipFile(zr, sl.name)
		if err != nil {
			return nil, fmt.Errorf("extract PPTX: %w", err)
		}
		var b strings.Builder
		for _, p := range atTag.FindAllStringSubmatch(string(data), -1) {
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(strings.TrimSpace(p[1]))
		}
		text := strings.TrimSpace(b.String())
		if text == "" {
			continue
		}
		segments = append(segments, models.Segment{
			Content: text,
			Meta: models.Attribution{
				Source:   filename,
				Page:     sl.num,
				FileType: "pptx",
			},
		})
	}
	return segments, nil
}
