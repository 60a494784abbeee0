// Package extract turns uploaded file bytes into stored text.
package extract

import (
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"planner/internal/domain"
)

// FileExtractor implements services.TextExtractor. Plain text and
// Markdown pass through unchanged; HTML is sanitized and converted to
// Markdown; PDF is rejected (no in-process parser); everything else is
// accepted only if it decodes as UTF-8 text.
type FileExtractor struct {
	html *HTMLExtractor
}

// NewFileExtractor creates the default extractor.
func NewFileExtractor() *FileExtractor {
	return &FileExtractor{html: NewHTMLExtractor()}
}

// Extract returns the text content of the uploaded file.
func (e *FileExtractor) Extract(ctx context.Context, filename, contentType string, data []byte) (string, error) {
	kind := normalizeType(filename, contentType)

	switch {
	case kind == "application/pdf":
		return "", fmt.Errorf("PDF extraction is not supported, upload text or HTML: %w", domain.ErrValidation)

	case kind == "text/html":
		return e.html.Extract(ctx, data)

	default:
		if !utf8.Valid(data) {
			return "", fmt.Errorf("file %q is not valid UTF-8 text: %w", filename, domain.ErrValidation)
		}
		return string(data), nil
	}
}

// normalizeType resolves the effective media type from the declared
// content type, falling back to the filename extension.
func normalizeType(filename, contentType string) string {
	if contentType != "" {
		if mediaType, _, err := mime.ParseMediaType(contentType); err == nil &&
			mediaType != "application/octet-stream" {
			return mediaType
		}
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".html", ".htm":
		return "text/html"
	case ".pdf":
		return "application/pdf"
	case ".md", ".markdown":
		return "text/markdown"
	case ".txt":
		return "text/plain"
	}
	return "text/plain"
}
