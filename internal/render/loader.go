package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Source looks up the body of a named library prompt.
type Source interface {
	TemplateBody(ctx context.Context, name string) (string, error)
}

// MaxIncludes caps the library reads of a single render, which also stops
// prompts that include themselves.
const MaxIncludes = 32

var (
	errIncludesDisabled = errors.New("template includes are not available")
	errIncludeLimit     = fmt.Errorf("more than %d includes", MaxIncludes)
)

// libraryLoader satisfies pongo2.TemplateLoader so templates can include
// prompts from the library by name. A loader serves one render.
type libraryLoader struct {
	source   Source
	includes int
}

func (l *libraryLoader) Abs(_, name string) string {
	return strings.TrimSpace(name)
}

func (l *libraryLoader) Get(name string) (io.Reader, error) {
	if l.source == nil {
		return nil, errIncludesDisabled
	}
	l.includes++
	if l.includes > MaxIncludes {
		return nil, fmt.Errorf("include %q: %w", name, errIncludeLimit)
	}
	body, err := l.source.TemplateBody(context.Background(), name)
	if err != nil {
		return nil, fmt.Errorf("include %q: %w", name, err)
	}
	return strings.NewReader(prepare(body)), nil
}
