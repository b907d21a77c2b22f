package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/joestump/promptpad/internal/auth"
	"github.com/joestump/promptpad/internal/conversation"
	"github.com/joestump/promptpad/internal/prompt"
	promptrender "github.com/joestump/promptpad/internal/render"
	"github.com/joestump/promptpad/internal/store"
	"github.com/joestump/promptpad/internal/testutil"
)

type fakeGenerator struct {
	mu      sync.Mutex
	prompts []string
	reply   string
	// onGenerate, when set, runs before the reply is produced.
	onGenerate func()
}

func (f *fakeGenerator) Generate(ctx context.Context, p, model string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, p)
	if f.onGenerate != nil {
		f.onGenerate()
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return f.reply, nil
}

type routerTestEnv struct {
	router  http.Handler
	prompts *store.PromptStore
	convs   *conversation.Registry
	gen     *fakeGenerator
	cookies map[string]*http.Cookie
}

// newRouterTestEnv wires the full router against an in-memory SQLite
// database, with sessions stored in the same database.
func newRouterTestEnv(t *testing.T) *routerTestEnv {
	t.Helper()
	db := testutil.NewTestDB(t)
	ps := store.NewPromptStore(db)
	gen := &fakeGenerator{reply: "Hello!"}
	convs := conversation.NewRegistry(gen, nil)
	sm := auth.NewSessionManager(db, "sqlite3", time.Hour, false)

	router := NewRouter(Deps{
		SessionManager: sm,
		Renderer:       promptrender.New(promptrender.Options{Source: ps}),
		Catalog:        prompt.DefaultCatalog(),
		Conversations:  convs,
		PromptStore:    ps,
	})
	return &routerTestEnv{router: router, prompts: ps, convs: convs, gen: gen, cookies: map[string]*http.Cookie{}}
}

// do sends a request carrying the cookies set by earlier responses, like a
// browser would.
func (e *routerTestEnv) do(t *testing.T, method, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	return e.doContext(t, context.Background(), method, path, form)
}

func (e *routerTestEnv) doContext(t *testing.T, ctx context.Context, method, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req = req.WithContext(ctx)
	req.Header.Set("HX-Request", "true")
	for _, c := range e.cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	for _, c := range w.Result().Cookies() {
		e.cookies[c.Name] = c
	}
	return w
}

func TestIndex_DefaultTemplate(t *testing.T) {
	env := newRouterTestEnv(t)

	w := env.do(t, http.MethodGet, "/", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{
		"# Hello {{ user.name }}!",
		"# Hello John Doe!",
		"Thank you for being a premium user!",
		"Your score: 85/100",
		"Customer Welcome",
		"Start a conversation using your prompt template",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if _, ok := env.cookies["promptpad_session"]; !ok {
		t.Error("expected a session cookie")
	}
}

func TestUpdateTemplate_RendersOutputPanel(t *testing.T) {
	env := newRouterTestEnv(t)
	env.do(t, http.MethodGet, "/", nil)

	w := env.do(t, http.MethodPost, "/playground/template", url.Values{"template": {"Score: {{ score }}"}})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Score: 85") {
		t.Errorf("body = %s", w.Body)
	}

	w = env.do(t, http.MethodPost, "/playground/template", url.Values{"template": {"{% if %}"}})
	if !strings.Contains(w.Body.String(), "Error rendering template: ") {
		t.Errorf("body = %s", w.Body)
	}
	if !strings.Contains(w.Body.String(), `class="output error"`) {
		t.Error("render error should be flagged")
	}
}

func TestUpdateContext_BadJSONKeepsOutput(t *testing.T) {
	env := newRouterTestEnv(t)
	env.do(t, http.MethodGet, "/", nil)
	env.do(t, http.MethodPost, "/playground/template", url.Values{"template": {"Score: {{ score }}"}})

	w := env.do(t, http.MethodPost, "/playground/context", url.Values{"context": {`{"score": `}})
	body := w.Body.String()
	if !strings.Contains(body, `role="alert"`) {
		t.Error("expected a JSON error alert")
	}
	if !strings.Contains(body, "Score: 85") {
		t.Errorf("previous output should be kept: %s", body)
	}

	w = env.do(t, http.MethodPost, "/playground/context", url.Values{"context": {`{"score": 12}`}})
	if strings.Contains(w.Body.String(), `role="alert"`) || !strings.Contains(w.Body.String(), "Score: 12") {
		t.Errorf("body = %s", w.Body)
	}
}

func TestSelectModel(t *testing.T) {
	env := newRouterTestEnv(t)

	if w := env.do(t, http.MethodPost, "/playground/model", url.Values{"model": {"us.meta.llama3-2-90b-instruct-v1:0"}}); w.Code != http.StatusNoContent {
		t.Fatalf("status = %d", w.Code)
	}
	if w := env.do(t, http.MethodPost, "/playground/model", url.Values{"model": {"nope"}}); w.Code != http.StatusBadRequest {
		t.Errorf("unknown model status = %d", w.Code)
	}

	env.do(t, http.MethodPost, "/playground/template", url.Values{"template": {"SYS"}})
	env.do(t, http.MethodPost, "/conversation/messages", url.Values{"message": {"hi"}})
	if len(env.gen.prompts) != 1 || !strings.HasSuffix(env.gen.prompts[0], "<|start_header_id|>assistant<|end_header_id|>") {
		t.Errorf("prompts = %q", env.gen.prompts)
	}
}

func TestConversation_SendUsesRenderedOutput(t *testing.T) {
	env := newRouterTestEnv(t)
	env.do(t, http.MethodPost, "/playground/template", url.Values{"template": {"Be kind to {{ user.name }}."}})

	w := env.do(t, http.MethodPost, "/conversation/messages", url.Values{"message": {"hi"}})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Hello!") {
		t.Errorf("reply missing from body: %s", w.Body)
	}

	want := "Be kind to John Doe.\n<|start_header_id|>user<|end_header_id|>hi<|eot_id|>\n<|start_header_id|>assistant<|end_header_id|></think>"
	if len(env.gen.prompts) != 1 || env.gen.prompts[0] != want {
		t.Errorf("prompts = %q, want %q", env.gen.prompts, want)
	}

	if w := env.do(t, http.MethodPost, "/conversation/messages", url.Values{"message": {"  "}}); w.Code != http.StatusBadRequest {
		t.Errorf("blank message status = %d", w.Code)
	}
}

func TestConversation_ReplyAndClear(t *testing.T) {
	env := newRouterTestEnv(t)
	env.gen.reply = `{"step": 1}`

	w := env.do(t, http.MethodPost, "/conversation/messages", url.Values{"message": {"start"}})
	if !strings.Contains(w.Body.String(), "Reply as JSON") {
		t.Fatalf("structured reply should offer a JSON reply: %s", w.Body)
	}

	env.do(t, http.MethodPost, "/conversation/reply", url.Values{"content": {`{"step": 2}`}})
	if got := env.gen.prompts[1]; !strings.Contains(got, conversation.WrapStructuredReply(`{"step": 2}`)) {
		t.Errorf("prompt = %q", got)
	}
	if env.convs.Len() != 1 {
		t.Errorf("conversations = %d, want 1", env.convs.Len())
	}

	w = env.do(t, http.MethodPost, "/conversation/clear", nil)
	if !strings.Contains(w.Body.String(), "Start a conversation using your prompt template") {
		t.Errorf("body = %s", w.Body)
	}
}

func TestPlaygroundClear(t *testing.T) {
	env := newRouterTestEnv(t)
	env.do(t, http.MethodPost, "/conversation/messages", url.Values{"message": {"hi"}})

	w := env.do(t, http.MethodPost, "/playground/clear", nil)
	if w.Code != http.StatusNoContent || w.Header().Get("HX-Refresh") != "true" {
		t.Fatalf("status = %d, HX-Refresh = %q", w.Code, w.Header().Get("HX-Refresh"))
	}

	body := env.do(t, http.MethodGet, "/", nil).Body.String()
	if strings.Contains(body, "John Doe") {
		t.Error("template and context should be cleared")
	}
	if !strings.Contains(body, "Start a conversation using your prompt template") {
		t.Error("conversation should be cleared")
	}
	if n := env.convs.Len(); n != 0 {
		t.Errorf("conversations after clear = %d, want 0", n)
	}

	env.do(t, http.MethodPost, "/conversation/messages", url.Values{"message": {"again"}})
	if n := env.convs.Len(); n != 1 {
		t.Errorf("conversations after new message = %d, want 1", n)
	}
}

func TestConversation_SendOutlivesCancelledRequest(t *testing.T) {
	env := newRouterTestEnv(t)
	env.do(t, http.MethodPost, "/conversation/messages", url.Values{"message": {"first"}})

	// The client goes away while the model is generating.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	env.gen.reply = "Second!"
	env.gen.onGenerate = cancel

	w := env.doContext(t, ctx, http.MethodPost, "/conversation/messages", url.Values{"message": {"second"}})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Second!") {
		t.Errorf("reply missing from body: %s", w.Body)
	}
}

func TestLibrary_SaveListLoad(t *testing.T) {
	env := newRouterTestEnv(t)

	w := env.do(t, http.MethodPost, "/library", url.Values{"name": {"Mine"}, "template": {"Hi {{ user.name }}"}})
	if !strings.Contains(w.Body.String(), "Mine") {
		t.Fatalf("saved prompt missing from list: %s", w.Body)
	}

	w = env.do(t, http.MethodPost, "/library", url.Values{"name": {"Mine"}, "template": {"again"}})
	if !strings.Contains(w.Body.String(), "A prompt with that name already exists.") {
		t.Errorf("body = %s", w.Body)
	}

	w = env.do(t, http.MethodGet, "/library?q=min", nil)
	if !strings.Contains(w.Body.String(), "Mine") || strings.Contains(w.Body.String(), "Order Confirmation") {
		t.Errorf("search body = %s", w.Body)
	}

	p, err := env.prompts.GetByName(context.Background(), "Mine")
	if err != nil {
		t.Fatalf("GetByName: %v", err)
	}
	w = env.do(t, http.MethodPost, "/library/"+p.ID+"/load", nil)
	if w.Code != http.StatusNoContent || w.Header().Get("HX-Refresh") != "true" {
		t.Fatalf("load status = %d", w.Code)
	}
	if body := env.do(t, http.MethodGet, "/", nil).Body.String(); !strings.Contains(body, "Hi John Doe") {
		t.Error("loaded template should be rendered")
	}

	if w := env.do(t, http.MethodPost, "/library/missing/load", nil); w.Code != http.StatusNotFound {
		t.Errorf("missing load status = %d", w.Code)
	}
}

func TestLibrary_RenameDelete(t *testing.T) {
	env := newRouterTestEnv(t)
	p, err := env.prompts.GetByName(context.Background(), "Customer Welcome")
	if err != nil {
		t.Fatalf("GetByName: %v", err)
	}

	w := env.do(t, http.MethodPost, "/library/"+p.ID+"/rename", url.Values{"name": {"Welcome"}})
	if !strings.Contains(w.Body.String(), "Welcome") || strings.Contains(w.Body.String(), "Customer Welcome") {
		t.Errorf("rename body = %s", w.Body)
	}

	w = env.do(t, http.MethodPost, "/library/"+p.ID+"/rename", url.Values{"name": {strings.Repeat("x", 101)}})
	if !strings.Contains(w.Body.String(), "Prompt names must be 1 to 100 characters.") {
		t.Errorf("long rename body = %s", w.Body)
	}

	w = env.do(t, http.MethodDelete, "/library/"+p.ID, nil)
	if strings.Contains(w.Body.String(), ">Welcome<") {
		t.Errorf("deleted prompt still listed: %s", w.Body)
	}
	if n, _ := env.prompts.Count(context.Background()); n != 2 {
		t.Errorf("count = %d, want 2", n)
	}
}

func TestThemeToggle(t *testing.T) {
	env := newRouterTestEnv(t)

	w := env.do(t, http.MethodPost, "/theme", url.Values{"theme": {"promptpad-dark"}})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Header().Get("HX-Trigger"), "promptpad-dark") {
		t.Errorf("HX-Trigger = %q", w.Header().Get("HX-Trigger"))
	}
	if body := env.do(t, http.MethodGet, "/", nil).Body.String(); !strings.Contains(body, `data-theme="promptpad-dark"`) {
		t.Error("page should carry the chosen theme")
	}

	w = env.do(t, http.MethodPost, "/theme", url.Values{})
	if !strings.Contains(w.Header().Get("HX-Trigger"), "promptpad-light") {
		t.Errorf("toggle from dark: HX-Trigger = %q", w.Header().Get("HX-Trigger"))
	}

	if w := env.do(t, http.MethodPost, "/theme", url.Values{"theme": {"neon"}}); w.Code != http.StatusBadRequest {
		t.Errorf("invalid theme status = %d", w.Code)
	}
}

func TestHealthAndAPIMount(t *testing.T) {
	env := newRouterTestEnv(t)

	if w := env.do(t, http.MethodGet, "/healthz", nil); w.Code != http.StatusOK || w.Body.String() != "ok" {
		t.Errorf("healthz = %d %q", w.Code, w.Body)
	}
	w := env.do(t, http.MethodGet, "/api/v1/models", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "deepseek-r1") {
		t.Errorf("api models = %d %s", w.Code, w.Body)
	}
	if w := env.do(t, http.MethodGet, "/metrics", nil); w.Code != http.StatusOK {
		t.Errorf("metrics status = %d", w.Code)
	}
}
