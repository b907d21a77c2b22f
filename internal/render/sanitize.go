package render

import "strings"

const (
	commentOpen  = "{#"
	commentClose = "#}"
)

// Sanitize closes comment blocks that were left open. A "{#" without a later
// "#}" gets a close marker inserted before the next newline (or at the end of
// the input), so the comment cannot swallow the rest of the template.
// Comments do not nest: the first "#}" after an opener ends it.
func Sanitize(tmpl string) string {
	if !strings.Contains(tmpl, commentOpen) {
		return tmpl
	}

	var b strings.Builder
	b.Grow(len(tmpl) + len(commentClose))

	rest := tmpl
	for {
		i := strings.Index(rest, commentOpen)
		if i < 0 {
			b.WriteString(rest)
			return b.String()
		}
		b.WriteString(rest[:i+len(commentOpen)])
		rest = rest[i+len(commentOpen):]

		if j := strings.Index(rest, commentClose); j >= 0 {
			b.WriteString(rest[:j+len(commentClose)])
			rest = rest[j+len(commentClose):]
			continue
		}

		nl := strings.IndexByte(rest, '\n')
		if nl < 0 {
			b.WriteString(rest)
			b.WriteString(commentClose)
			return b.String()
		}
		b.WriteString(rest[:nl])
		b.WriteString(commentClose)
		rest = rest[nl:]
	}
}

// stripComments removes complete comment spans. The engine only accepts
// comments that fit on one line, so every comment is dropped before parsing.
func stripComments(tmpl string) string {
	if !strings.Contains(tmpl, commentOpen) {
		return tmpl
	}

	var b strings.Builder
	b.Grow(len(tmpl))

	rest := tmpl
	for {
		i := strings.Index(rest, commentOpen)
		if i < 0 {
			b.WriteString(rest)
			return b.String()
		}
		j := strings.Index(rest[i+len(commentOpen):], commentClose)
		if j < 0 {
			b.WriteString(rest)
			return b.String()
		}
		b.WriteString(rest[:i])
		rest = rest[i+len(commentOpen)+j+len(commentClose):]
	}
}

// prepare turns editor text into engine source.
func prepare(tmpl string) string {
	return stripComments(Sanitize(tmpl))
}
