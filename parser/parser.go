// Package parser loads pathway description documents from disk and
// flattens them to plain text suitable for chunking.
package parser

import "context"

// Loader reads one document format and returns its text content.
type Loader interface {
	Load(ctx context.Context, path string) (string, error)
	SupportedFormats() []string
}
