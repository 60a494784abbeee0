package extract

import (
	"context"
	"fmt"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/microcosm-cc/bluemonday"
)

// HTMLExtractor converts HTML uploads to Markdown in two stages:
// sanitize (strip scripts, event handlers, javascript: URLs), then
// convert the surviving markup.
type HTMLExtractor struct {
	policy    *bluemonday.Policy
	converter *md.Converter
}

// NewHTMLExtractor creates an HTML-to-Markdown extractor.
func NewHTMLExtractor() *HTMLExtractor {
	return &HTMLExtractor{
		policy:    bluemonday.UGCPolicy(),
		converter: md.NewConverter("", true, nil),
	}
}

// Extract sanitizes and converts HTML bytes to Markdown.
func (e *HTMLExtractor) Extract(_ context.Context, data []byte) (string, error) {
	sanitized := e.policy.Sanitize(string(data))

	markdown, err := e.converter.ConvertString(sanitized)
	if err != nil {
		return "", fmt.Errorf("convert HTML to markdown: %w", err)
	}

	return markdown, nil
}
