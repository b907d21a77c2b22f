// Package render turns a template and a JSON context into preview text.
//
// Rendering never fails from the caller's point of view: engine errors come
// back as output text prefixed with "Error rendering template:", so a live
// preview keeps working while the template is half written.
package render

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/flosch/pongo2/v6"

	"github.com/joestump/promptpad/internal/metrics"
)

const (
	errorPrefix  = "Error rendering template: "
	unknownError = "An unknown error occurred"
)

// pongo2 rejects contexts whose top-level keys are not identifiers.
var identifierRE = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// Options configures a Renderer.
type Options struct {
	// Source resolves {% include "name" %} against the prompt library.
	// Includes fail with a render error when nil.
	Source Source
}

// Renderer renders templates with autoescaping, trimmed block tags, silent
// undefined variables and the tojson filter.
type Renderer struct {
	source Source
}

// New creates a Renderer. It is safe for concurrent use.
func New(opts Options) *Renderer {
	registerFilters()
	return &Renderer{source: opts.Source}
}

// newSet returns an engine template set for a single render. Includes are
// read fresh from the library and counted against the include limit.
func (r *Renderer) newSet() *pongo2.TemplateSet {
	set := pongo2.NewSet("promptpad", &libraryLoader{source: r.source})
	set.Options.TrimBlocks = true
	set.Options.LStripBlocks = true
	return set
}

// Render sanitizes tmpl and executes it against data. Failures are returned
// as output text, never as an error or panic.
func (r *Renderer) Render(tmpl string, data map[string]any) (out string) {
	if tmpl == "" {
		return ""
	}

	defer func() {
		if p := recover(); p != nil {
			out = describePanic(p)
		}
	}()

	tpl, err := r.newSet().FromString(prepare(tmpl))
	if err != nil {
		return describe(err)
	}
	out, err = tpl.Execute(engineContext(data))
	if err != nil {
		return describe(err)
	}
	return out
}

// Result is what the preview shows for a template/context pair: either the
// rendered output (which may itself be a render error message) or a context
// validation error. Never both.
type Result struct {
	Output string `json:"output,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Evaluate validates jsonText and, when it is an object, renders tmpl with it.
func (r *Renderer) Evaluate(tmpl, jsonText string) Result {
	v := ValidateJSON(jsonText)
	if !v.OK() {
		metrics.RendersTotal.WithLabelValues("json_error").Inc()
		return Result{Error: v.Error}
	}

	out := r.Render(tmpl, v.Data)
	if IsRenderError(out) {
		metrics.RendersTotal.WithLabelValues("template_error").Inc()
	} else {
		metrics.RendersTotal.WithLabelValues("ok").Inc()
	}
	return Result{Output: out}
}

// IsRenderError reports whether out is an error message produced by Render.
func IsRenderError(out string) bool {
	return strings.HasPrefix(out, errorPrefix) || out == unknownError
}

func describe(err error) string {
	if err == nil || err.Error() == "" {
		return unknownError
	}
	return errorPrefix + err.Error()
}

func describePanic(p any) string {
	switch v := p.(type) {
	case error:
		return describe(v)
	case string:
		return describe(errors.New(v))
	default:
		return unknownError
	}
}

// engineContext drops keys the engine cannot address. Integral JSON numbers
// become ints and the rest become number, so neither prints as "85.000000".
func engineContext(data map[string]any) pongo2.Context {
	ctx := make(pongo2.Context, len(data))
	for k, v := range data {
		if !identifierRE.MatchString(k) {
			continue
		}
		ctx[k] = normalizeNumbers(v)
	}
	return ctx
}

func normalizeNumbers(v any) any {
	switch t := v.(type) {
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1<<53 {
			return int(t)
		}
		return number(t)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = normalizeNumbers(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalizeNumbers(e)
		}
		return out
	default:
		return v
	}
}

// number is a non-integral JSON number. The engine prints floats with six
// decimals; number prints the shortest form instead, as JavaScript does.
type number float64

func (n number) String() string {
	f := float64(n)
	if a := math.Abs(f); a >= 1e21 || a < 1e-6 {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
