package conversation

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joestump/promptpad/internal/prompt"
)

type fakeGenerator struct {
	mu      sync.Mutex
	prompts []string
	models  []string
	reply   string
	err     error
	// release, when set, blocks Generate until it is closed.
	release chan struct{}
	started chan struct{}
}

func (f *fakeGenerator) Generate(ctx context.Context, p, model string) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, p)
	f.models = append(f.models, model)
	f.mu.Unlock()
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	return f.reply, f.err
}

func (f *fakeGenerator) lastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.prompts[len(f.prompts)-1]
}

func TestSend_FirstTurn(t *testing.T) {
	g := &fakeGenerator{reply: "hello"}
	o := New("c1", g, nil)

	reply := o.Send(context.Background(), "SYSTEM", prompt.Llama32, "hi")

	want := "SYSTEM\n<|start_header_id|>user<|end_header_id|>hi<|eot_id|>\n<|start_header_id|>assistant<|end_header_id|>"
	if diff := cmp.Diff(want, g.lastPrompt()); diff != "" {
		t.Errorf("encoded prompt mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{prompt.Llama32.ID}, g.models)
	assert.Equal(t, prompt.Message{Role: prompt.RoleAssistant, Content: "hello"}, reply)
	assert.Equal(t, []prompt.Message{
		{Role: prompt.RoleUser, Content: "hi"},
		{Role: prompt.RoleAssistant, Content: "hello"},
	}, o.Messages())
	assert.Equal(t, Idle, o.State())
}

func TestSend_MultiTurnReasoningModel(t *testing.T) {
	g := &fakeGenerator{reply: "hello"}
	o := New("c1", g, nil)

	o.Send(context.Background(), "SYS", prompt.DeepSeekR1, "hi")
	g.reply = "ok"
	o.Send(context.Background(), "SYS", prompt.DeepSeekR1, "bye")

	want := "SYS\n" +
		"<|start_header_id|>user<|end_header_id|>hi<|eot_id|>\n" +
		"<|start_header_id|>assistant<|end_header_id|>hello<|eot_id|>\n" +
		"<|start_header_id|>user<|end_header_id|>bye<|eot_id|>\n" +
		"<|start_header_id|>assistant<|end_header_id|></think>"
	if diff := cmp.Diff(want, g.lastPrompt()); diff != "" {
		t.Errorf("encoded prompt mismatch (-want +got):\n%s", diff)
	}
	assert.Len(t, o.Messages(), 4)
}

func TestSend_BackendFailure(t *testing.T) {
	g := &fakeGenerator{err: errors.New("connection refused")}
	o := New("c1", g, nil)

	reply := o.Send(context.Background(), "SYS", prompt.Llama32, "hi")

	assert.Equal(t, ErrorReply, reply.Content)
	assert.False(t, reply.IsStructured)
	msgs := o.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, prompt.Message{Role: prompt.RoleAssistant, Content: ErrorReply}, msgs[1])
	assert.Equal(t, Idle, o.State())
}

func TestSend_StructuredResponse(t *testing.T) {
	tests := []struct {
		reply string
		want  bool
	}{
		{`{"sentiment":"positive"}`, true},
		{`[1, 2]`, true},
		{`null`, false},
		{`42`, false},
		{`"text"`, false},
		{`Sure! {"a":1}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.reply, func(t *testing.T) {
			o := New("c1", &fakeGenerator{reply: tt.reply}, nil)
			reply := o.Send(context.Background(), "SYS", prompt.Llama32, "hi")
			assert.Equal(t, tt.want, reply.IsStructured)
		})
	}
}

func TestSend_StructuredReplyUsesRawForm(t *testing.T) {
	g := &fakeGenerator{reply: `{"a":1}`}
	o := New("c1", g, nil)
	o.Send(context.Background(), "SYS", prompt.Llama32, "hi")

	g.reply = "done"
	wrapped := WrapStructuredReply(`{"a":2}`)
	o.Send(context.Background(), "SYS", prompt.Llama32, wrapped)

	msgs := o.Messages()
	require.Len(t, msgs, 4)
	assert.Equal(t, `{"a":2}`, msgs[2].Content)

	want := "SYS\n" +
		"<|start_header_id|>user<|end_header_id|>hi<|eot_id|>\n" +
		"<|start_header_id|>assistant<|end_header_id|>{\"a\":1}<|eot_id|>\n" +
		wrapped + "\n" +
		"<|start_header_id|>assistant<|end_header_id|>"
	if diff := cmp.Diff(want, g.lastPrompt()); diff != "" {
		t.Errorf("encoded prompt mismatch (-want +got):\n%s", diff)
	}
}

func TestSend_ConsecutiveUserTurnsAllowed(t *testing.T) {
	g := &fakeGenerator{err: errors.New("down")}
	o := New("c1", g, nil)
	o.Clear()
	o.Clear()
	assert.Empty(t, o.Messages())

	g.err = nil
	g.reply = "x"
	o.Send(context.Background(), "SYS", prompt.Llama32, "one")
	o.Send(context.Background(), "SYS", prompt.Llama32, "two")
	assert.Len(t, o.Messages(), 4)
}

func TestState_SendingWhileInFlight(t *testing.T) {
	g := &fakeGenerator{reply: "late", release: make(chan struct{}), started: make(chan struct{}, 1)}
	o := New("c1", g, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		o.Send(context.Background(), "SYS", prompt.Llama32, "hi")
	}()

	<-g.started
	assert.Equal(t, Sending, o.State())
	assert.Equal(t, []prompt.Message{{Role: prompt.RoleUser, Content: "hi"}}, o.Messages())

	close(g.release)
	<-done
	assert.Equal(t, Idle, o.State())
	assert.Len(t, o.Messages(), 2)
}

func TestClear_DropsInFlightReply(t *testing.T) {
	g := &fakeGenerator{reply: "late", release: make(chan struct{}), started: make(chan struct{}, 1)}
	o := New("c1", g, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		o.Send(context.Background(), "SYS", prompt.Llama32, "hi")
	}()

	<-g.started
	o.Clear()
	close(g.release)
	<-done

	assert.Empty(t, o.Messages())
	assert.Equal(t, Idle, o.State())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "sending", Sending.String())
}
