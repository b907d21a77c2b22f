package api_test

import (
	"net/http"
	"testing"

	"github.com/joestump/promptpad/internal/api"
)

func TestPrompts_ListAndSearch(t *testing.T) {
	env := newTestEnv(t)

	var all api.PromptListResponse
	decode(t, env.do(t, http.MethodGet, "/prompts", nil), &all)
	if len(all.Prompts) != 3 || all.NextCursor != nil {
		t.Fatalf("list = %+v", all)
	}

	var found api.PromptListResponse
	decode(t, env.do(t, http.MethodGet, "/prompts?q=feedback", nil), &found)
	if len(found.Prompts) != 1 || found.Prompts[0].Name != "Product Feedback" {
		t.Errorf("search = %+v", found.Prompts)
	}
}

func TestPrompts_Pagination(t *testing.T) {
	env := newTestEnv(t)

	var page1 api.PromptListResponse
	decode(t, env.do(t, http.MethodGet, "/prompts?limit=2", nil), &page1)
	if len(page1.Prompts) != 2 || page1.NextCursor == nil {
		t.Fatalf("page1 = %+v", page1)
	}

	var page2 api.PromptListResponse
	decode(t, env.do(t, http.MethodGet, "/prompts?limit=2&cursor="+*page1.NextCursor, nil), &page2)
	if len(page2.Prompts) != 1 || page2.NextCursor != nil {
		t.Fatalf("page2 = %+v", page2)
	}
	if page2.Prompts[0].Name != "Product Feedback" {
		t.Errorf("page2 first = %q", page2.Prompts[0].Name)
	}
}

func TestPrompts_CRUD(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/prompts", api.PromptRequest{Content: "Hello"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body)
	}
	var created api.PromptResponse
	decode(t, rec, &created)
	if created.Name != "Prompt 4" {
		t.Errorf("generated name = %q", created.Name)
	}

	name := "Greeting"
	content := "Hi {{ name }}"
	rec = env.do(t, http.MethodPut, "/prompts/"+created.ID, api.UpdatePromptRequest{Name: &name, Content: &content})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d: %s", rec.Code, rec.Body)
	}
	var updated api.PromptResponse
	decode(t, rec, &updated)
	if updated.Name != name || updated.Content != content {
		t.Errorf("updated = %+v", updated)
	}

	var got api.PromptResponse
	decode(t, env.do(t, http.MethodGet, "/prompts/"+created.ID, nil), &got)
	if got.Content != content {
		t.Errorf("get content = %q", got.Content)
	}

	if rec := env.do(t, http.MethodDelete, "/prompts/"+created.ID, nil); rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d", rec.Code)
	}
	if rec := env.do(t, http.MethodGet, "/prompts/"+created.ID, nil); rec.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d", rec.Code)
	}
}

func TestPrompts_Errors(t *testing.T) {
	env := newTestEnv(t)

	if rec := env.do(t, http.MethodPost, "/prompts", api.PromptRequest{Name: "Customer Welcome"}); rec.Code != http.StatusConflict {
		t.Errorf("duplicate status = %d", rec.Code)
	}
	long := make([]byte, 101)
	for i := range long {
		long[i] = 'x'
	}
	if rec := env.do(t, http.MethodPost, "/prompts", api.PromptRequest{Name: string(long)}); rec.Code != http.StatusBadRequest {
		t.Errorf("long name status = %d", rec.Code)
	}
	name := "x"
	if rec := env.do(t, http.MethodPut, "/prompts/missing", api.UpdatePromptRequest{Name: &name}); rec.Code != http.StatusNotFound {
		t.Errorf("missing update status = %d", rec.Code)
	}
	if rec := env.do(t, http.MethodDelete, "/prompts/missing", nil); rec.Code != http.StatusNotFound {
		t.Errorf("missing delete status = %d", rec.Code)
	}
}
