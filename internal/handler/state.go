package handler

import (
	"context"

	"github.com/alexedwards/scs/v2"

	promptrender "github.com/joestump/promptpad/internal/render"
)

// DefaultTemplate and DefaultContext fill the editors of a new session.
const (
	DefaultTemplate = `# Hello {{ user.name }}!

{% if user.is_premium %}
Thank you for being a premium user!
{% else %}
Consider upgrading to premium.
{% endif %}

Your items:
{% for item in items %}
- {{ item.name }}: {{ item.description }}
{% endfor %}

Your score: {{ score }}/100
`

	DefaultContext = `{
  "user": {
    "name": "John Doe",
    "is_premium": true
  },
  "items": [
    {
      "name": "Item 1",
      "description": "This is the first item"
    },
    {
      "name": "Item 2",
      "description": "This is the second item"
    }
  ],
  "score": 85
}`
)

const (
	sessionTemplateKey     = "playground.template"
	sessionContextKey      = "playground.context"
	sessionOutputKey       = "playground.output"
	sessionJSONErrorKey    = "playground.json_error"
	sessionModelKey        = "playground.model"
	sessionConversationKey = "playground.conversation"
)

// PlaygroundState is one browser session's editor state.
type PlaygroundState struct {
	Template  string
	Context   string
	Output    string
	JSONError string
	Model     string
	// ConversationID names the session's conversation in the registry.
	ConversationID string
}

// RenderFailed reports whether Output is a render error message.
func (s PlaygroundState) RenderFailed() bool {
	return promptrender.IsRenderError(s.Output)
}

// stateStore reads and writes PlaygroundState in the scs session.
type stateStore struct {
	sessions *scs.SessionManager
	renderer *promptrender.Renderer
}

// load returns the session's state, starting new sessions from the default
// template and context.
func (s *stateStore) load(ctx context.Context) PlaygroundState {
	if !s.sessions.Exists(ctx, sessionTemplateKey) {
		st := PlaygroundState{Template: DefaultTemplate, Context: DefaultContext}
		s.evaluate(&st)
		s.save(ctx, st)
		return st
	}
	return PlaygroundState{
		Template:       s.sessions.GetString(ctx, sessionTemplateKey),
		Context:        s.sessions.GetString(ctx, sessionContextKey),
		Output:         s.sessions.GetString(ctx, sessionOutputKey),
		JSONError:      s.sessions.GetString(ctx, sessionJSONErrorKey),
		Model:          s.sessions.GetString(ctx, sessionModelKey),
		ConversationID: s.sessions.GetString(ctx, sessionConversationKey),
	}
}

func (s *stateStore) save(ctx context.Context, st PlaygroundState) {
	s.sessions.Put(ctx, sessionTemplateKey, st.Template)
	s.sessions.Put(ctx, sessionContextKey, st.Context)
	s.sessions.Put(ctx, sessionOutputKey, st.Output)
	s.sessions.Put(ctx, sessionJSONErrorKey, st.JSONError)
	s.sessions.Put(ctx, sessionModelKey, st.Model)
	s.sessions.Put(ctx, sessionConversationKey, st.ConversationID)
}

// evaluate re-renders st after an edit. A context error is shown in place of
// the output while the previous output is kept.
func (s *stateStore) evaluate(st *PlaygroundState) {
	res := s.renderer.Evaluate(st.Template, st.Context)
	if res.Error != "" {
		st.JSONError = res.Error
		return
	}
	st.JSONError = ""
	st.Output = res.Output
}
