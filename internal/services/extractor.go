package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

// DocumentExtractor turns uploaded CV/JD files into raw text. This is a
// thin collaborator of the pipeline: PDF via ledongthuc/pdf, plain text
// passthrough, anything else rejected.
type DocumentExtractor interface {
	ExtractText(filePath string) (string, error)
	ExtractBatch(filePaths []string) map[string]string
}

type documentExtractor struct {
	logger *zap.SugaredLogger
}

func NewDocumentExtractor(logger *zap.SugaredLogger) DocumentExtractor {
	return &documentExtractor{logger: logger}
}

// ExtractText implements DocumentExtractor.
func (d *documentExtractor) ExtractText(filePath string) (string, error) {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return "", fmt.Errorf("file does not exist: %s", filePath)
	}

	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".pdf":
		return d.extractPDF(filePath)
	case ".txt":
		data, err := os.ReadFile(filePath)
		if err != nil {
			return "", fmt.Errorf("failed to read text file: %w", err)
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("unsupported file type: %s", filepath.Ext(filePath))
	}
}

// ExtractBatch implements DocumentExtractor. Files that fail extraction
// are logged and omitted; one unreadable CV must not abort the request.
func (d *documentExtractor) ExtractBatch(filePaths []string) map[string]string {
	texts := make(map[string]string, len(filePaths))

	for _, filePath := range filePaths {
		text, err := d.ExtractText(filePath)
		if err != nil {
			d.logger.Warnw("failed to extract document text",
				"file_path", filePath,
				"error", err,
			)
			continue
		}
		texts[filePath] = text
	}

	return texts
}

func (d *documentExtractor) extractPDF(filePath string) (string, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	var textBuilder strings.Builder
	totalPage := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// Skip unreadable pages, keep the rest
			continue
		}

		textBuilder.WriteString(text)
		textBuilder.WriteString("\n\n")
	}

	text := CleanText(textBuilder.String())
	if text == "" {
		return "", fmt.Errorf("no text content found in PDF")
	}

	return text, nil
}

// CleanText normalizes extracted text: trims each line and collapses runs
// of blank lines to one, keeping paragraph boundaries intact.
func CleanText(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")

	var cleanedLines []string
	blank := false
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			blank = len(cleanedLines) > 0
			continue
		}
		if blank {
			cleanedLines = append(cleanedLines, "")
			blank = false
		}
		cleanedLines = append(cleanedLines, line)
	}

	return strings.Join(cleanedLines, "\n")
}
