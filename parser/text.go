package parser

import (
	"context"
	"fmt"
	"os"
)

// TextLoader reads plain text and markdown files.
type TextLoader struct{}

func (l *TextLoader) SupportedFormats() []string { return []string{"txt", "md", "markdown"} }

func (l *TextLoader) Load(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading text file: %w", err)
	}
	return string(data), nil
}
