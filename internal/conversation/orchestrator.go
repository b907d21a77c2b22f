// Package conversation runs the chat loop: it appends user turns, sends the
// encoded prompt to the inference backend and records the reply.
package conversation

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/joestump/promptpad/internal/llm"
	"github.com/joestump/promptpad/internal/metrics"
	"github.com/joestump/promptpad/internal/prompt"
)

// ErrorReply replaces the assistant turn when the backend fails.
const ErrorReply = "Sorry, I encountered an error processing your request."

// State is the orchestrator's send state.
type State int

const (
	Idle State = iota
	Sending
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Sending:
		return "sending"
	default:
		return "unknown"
	}
}

// Orchestrator owns one conversation. It is safe for concurrent use, but
// concurrent sends interleave their turns; callers send one at a time.
type Orchestrator struct {
	id        string
	generator llm.Generator
	logger    *zap.Logger

	mu       sync.Mutex
	messages []prompt.Message
	inflight int
	// epoch advances on Clear so replies to a cleared conversation are dropped.
	epoch uint64
}

// New returns an empty conversation that sends prompts to g.
func New(id string, g llm.Generator, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		id:        id,
		generator: g,
		logger:    logger.With(zap.String("conversation", id)),
	}
}

func (o *Orchestrator) ID() string { return o.id }

// Send appends userText as a user turn, asks the backend for the next
// assistant turn and appends it. Backend failures never reach the caller:
// they become an ErrorReply turn and are logged. The returned message is the
// assistant turn that was produced.
func (o *Orchestrator) Send(ctx context.Context, instruction string, model prompt.Model, userText string) prompt.Message {
	display, raw, _ := UnwrapStructuredReply(userText)
	user := prompt.Message{Role: prompt.RoleUser, Content: display}

	o.mu.Lock()
	o.messages = append(o.messages, user)
	history := make([]prompt.Message, len(o.messages))
	copy(history, o.messages)
	o.inflight++
	epoch := o.epoch
	o.mu.Unlock()
	metrics.MessagesTotal.WithLabelValues(string(prompt.RoleUser), kind(raw != "", false)).Inc()

	encoded := prompt.Encode(prompt.Request{
		Instruction: instruction,
		History:     history,
		Model:       model,
		RawOverride: raw,
	})

	reply := prompt.Message{Role: prompt.RoleAssistant}
	out, err := o.generator.Generate(ctx, encoded, model.ID)
	if err != nil {
		o.logger.Error("inference failed", zap.String("model", model.ID), zap.Error(err))
		reply.Content = ErrorReply
	} else {
		reply.Content = out
		reply.IsStructured = IsStructured(out)
	}

	o.mu.Lock()
	o.inflight--
	stale := epoch != o.epoch
	if !stale {
		o.messages = append(o.messages, reply)
	}
	o.mu.Unlock()

	if stale {
		o.logger.Info("dropping reply to cleared conversation", zap.String("model", model.ID))
		return reply
	}
	metrics.MessagesTotal.WithLabelValues(string(prompt.RoleAssistant), kind(reply.IsStructured, err != nil)).Inc()
	return reply
}

// Clear empties the conversation. Replies still in flight are discarded.
func (o *Orchestrator) Clear() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.messages = nil
	o.epoch++
}

// Messages returns a copy of the conversation in order.
func (o *Orchestrator) Messages() []prompt.Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]prompt.Message, len(o.messages))
	copy(out, o.messages)
	return out
}

func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.inflight > 0 {
		return Sending
	}
	return Idle
}

func kind(structured, failed bool) string {
	switch {
	case failed:
		return "error"
	case structured:
		return "structured"
	default:
		return "plain"
	}
}
