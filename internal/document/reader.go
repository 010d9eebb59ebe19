// Package document turns stored uploads into text for prompt assembly.
package document

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/cloudwego/eino-ext/components/document/loader/file"
	einodoc "github.com/cloudwego/eino/components/document"
	"github.com/cloudwego/eino/components/document/parser"
)

// Extract is the result of reading one document. Unsupported is set when the
// bytes are not usable as text; Text is empty in that case.
type Extract struct {
	Text        string
	Unsupported bool
}

// Reader produces a text extract for the file at path.
type Reader interface {
	Read(ctx context.Context, path string) (Extract, error)
}

// TextReader reads plain text formats through the eino file loader.
type TextReader struct {
	loader *file.FileLoader
}

func NewTextReader(ctx context.Context) (*TextReader, error) {
	parserExt, err := parser.NewExtParser(ctx, &parser.ExtParserConfig{
		FallbackParser: parser.TextParser{},
	})
	if err != nil {
		return nil, fmt.Errorf("init ext parser: %w", err)
	}
	loader, err := file.NewFileLoader(ctx, &file.FileLoaderConfig{
		UseNameAsID: true,
		Parser:      parserExt,
	})
	if err != nil {
		return nil, fmt.Errorf("init file loader: %w", err)
	}
	return &TextReader{loader: loader}, nil
}

func (r *TextReader) Read(ctx context.Context, path string) (Extract, error) {
	docs, err := r.loader.Load(ctx, einodoc.Source{URI: path})
	if err != nil {
		return Extract{}, fmt.Errorf("load file: %w", err)
	}
	var builder strings.Builder
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		builder.WriteString(doc.Content)
	}
	text := builder.String()
	if !utf8.ValidString(text) {
		return Extract{Unsupported: true}, nil
	}
	return Extract{Text: text}, nil
}

// OpaqueReader handles binary office/PDF formats. Their structure is never
// parsed, so every read yields an unsupported extract.
type OpaqueReader struct{}

func (OpaqueReader) Read(context.Context, string) (Extract, error) {
	return Extract{Unsupported: true}, nil
}

// Registry maps lower-case file extensions to readers. Its key set is also
// the upload allow-list.
type Registry struct {
	readers map[string]Reader
}

// NewRegistry wires the supported extensions: .txt and .md as text, .pdf,
// .doc and .docx as opaque binaries.
func NewRegistry(ctx context.Context) (*Registry, error) {
	text, err := NewTextReader(ctx)
	if err != nil {
		return nil, err
	}
	opaque := OpaqueReader{}
	return &Registry{
		readers: map[string]Reader{
			".txt":  text,
			".md":   text,
			".pdf":  opaque,
			".doc":  opaque,
			".docx": opaque,
		},
	}, nil
}

// Allowed reports whether ext (with or without leading dot, any case) is
// an accepted upload extension.
func (r *Registry) Allowed(ext string) bool {
	_, ok := r.readers[normalizeExt(ext)]
	return ok
}

// Extensions returns the accepted extensions in sorted order.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.readers))
	for ext := range r.readers {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Read dispatches on the extension of path.
func (r *Registry) Read(ctx context.Context, path string) (Extract, error) {
	reader, ok := r.readers[normalizeExt(filepath.Ext(path))]
	if !ok {
		return Extract{Unsupported: true}, nil
	}
	return reader.Read(ctx, path)
}

// Render formats an extract for inclusion in a prompt.
func Render(name string, ex Extract) string {
	if ex.Unsupported {
		return fmt.Sprintf("[Binary file: %s. Content not readable as text.]", name)
	}
	return ex.Text
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
