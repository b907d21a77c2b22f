package llm

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/joestump/promptpad/internal/metrics"
)

type instrumented struct {
	provider string
	next     Generator
}

func instrument(provider string, g Generator) Generator {
	return &instrumented{provider: provider, next: g}
}

func (i *instrumented) Generate(ctx context.Context, prompt, model string) (string, error) {
	start := time.Now()
	out, err := i.next.Generate(ctx, prompt, model)
	metrics.InferenceDuration.WithLabelValues(i.provider, model).Observe(time.Since(start).Seconds())
	metrics.InferenceRequestsTotal.WithLabelValues(i.provider, model, status(err)).Inc()
	return out, err
}

func status(err error) string {
	var se *StatusError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &se):
		return strconv.Itoa(se.StatusCode)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}
