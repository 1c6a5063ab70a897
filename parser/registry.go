package parser

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// Registry maps file extensions to loaders.
type Registry struct {
	loaders map[string]Loader
}

// NewRegistry returns a registry with the built-in loaders registered.
func NewRegistry() *Registry {
	r := &Registry{loaders: make(map[string]Loader)}
	for _, l := range []Loader{&TextLoader{}, &PDFLoader{}, &XLSXLoader{}} {
		for _, f := range l.SupportedFormats() {
			r.loaders[f] = l
		}
	}
	return r
}

// Register adds or replaces the loader for a format.
func (r *Registry) Register(format string, l Loader) {
	r.loaders[strings.ToLower(format)] = l
}

// Get returns the loader for a format.
func (r *Registry) Get(format string) (Loader, error) {
	l, ok := r.loaders[strings.ToLower(format)]
	if !ok {
		return nil, fmt.Errorf("no loader for format: %s", format)
	}
	return l, nil
}

// Load picks a loader from the file extension and reads the document.
func (r *Registry) Load(ctx context.Context, path string) (string, error) {
	format := strings.TrimPrefix(filepath.Ext(path), ".")
	l, err := r.Get(format)
	if err != nil {
		return "", err
	}
	return l.Load(ctx, path)
}
