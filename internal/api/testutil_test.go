package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/joestump/promptpad/internal/api"
	"github.com/joestump/promptpad/internal/conversation"
	"github.com/joestump/promptpad/internal/prompt"
	"github.com/joestump/promptpad/internal/render"
	"github.com/joestump/promptpad/internal/store"
	"github.com/joestump/promptpad/internal/testutil"
)

// fakeGenerator records prompts and answers with a canned reply or error.
// Like a real client it fails when ctx is already done.
type fakeGenerator struct {
	mu      sync.Mutex
	prompts []string
	reply   string
	err     error
}

func (f *fakeGenerator) Generate(ctx context.Context, p, model string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, p)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return f.reply, f.err
}

func (f *fakeGenerator) last() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		return ""
	}
	return f.prompts[len(f.prompts)-1]
}

// testEnv holds the API router and its collaborators.
type testEnv struct {
	Router      http.Handler
	PromptStore *store.PromptStore
	Convs       *conversation.Registry
	Generator   *fakeGenerator
}

// newTestEnv creates an in-memory SQLite test database, runs migrations,
// and wires up the full API router with real stores.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.NewTestDB(t)
	ps := store.NewPromptStore(db)
	gen := &fakeGenerator{reply: "ok"}
	convs := conversation.NewRegistry(gen, nil)

	router := api.NewAPIRouter(api.Deps{
		Renderer:      render.New(render.Options{Source: ps}),
		Catalog:       prompt.DefaultCatalog(),
		Conversations: convs,
		PromptStore:   ps,
	})
	return &testEnv{Router: router, PromptStore: ps, Convs: convs, Generator: gen}
}

// do sends a request with an optional JSON body and records the response.
func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.Router.ServeHTTP(rec, req)
	return rec
}

// decode unmarshals a recorded JSON response into v.
func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}
