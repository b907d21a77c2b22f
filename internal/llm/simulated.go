package llm

import (
	"context"
	"fmt"
)

const simulatedExcerpt = 50

// simulatedGenerator answers without a backend, echoing the start of the
// prompt. Used for offline demos.
type simulatedGenerator struct{}

func (simulatedGenerator) Generate(ctx context.Context, prompt, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if prompt == "" {
		return "", ErrEmptyPrompt
	}

	excerpt := []rune(prompt)
	suffix := ""
	if len(excerpt) > simulatedExcerpt {
		excerpt = excerpt[:simulatedExcerpt]
		suffix = "..."
	}
	return fmt.Sprintf("I've analyzed your prompt: \"%s\"\n\nHere's my response based on your template content.",
		string(excerpt)+suffix), nil
}
