package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
)

type fakeExchanger struct {
	claims *Claims
	err    error
}

func (f *fakeExchanger) AuthCodeURL(state, verifier string) string {
	return "https://id.example.com/authorize?state=" + state
}

func (f *fakeExchanger) Exchange(ctx context.Context, code, verifier string) (*Claims, error) {
	return f.claims, f.err
}

func TestLogin_SetsPreAuthCookies(t *testing.T) {
	sm := newTestSessions()
	h := NewHandlers(&fakeExchanger{}, sm, zap.NewNop())

	rec := httptest.NewRecorder()
	h.Login(rec, httptest.NewRequest(http.MethodGet, "/auth/login?redirect=//evil", nil))

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.HasPrefix(rec.Header().Get("Location"), "https://id.example.com/authorize?state=") {
		t.Errorf("location = %q", rec.Header().Get("Location"))
	}
	cookies := map[string]string{}
	for _, c := range rec.Result().Cookies() {
		cookies[c.Name] = c.Value
	}
	if cookies[cookieState] == "" || cookies[cookieCodeVerifier] == "" {
		t.Errorf("missing pre-auth cookies: %v", cookies)
	}
	if cookies[cookieRedirect] != "/" {
		t.Errorf("redirect cookie = %q, want /", cookies[cookieRedirect])
	}
}

func callback(t *testing.T, h *Handlers, state string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/auth/callback?state=s1&code=c1", nil)
	req.AddCookie(&http.Cookie{Name: cookieState, Value: state})
	req.AddCookie(&http.Cookie{Name: cookieCodeVerifier, Value: "v"})
	req.AddCookie(&http.Cookie{Name: cookieRedirect, Value: "/library"})
	rec := httptest.NewRecorder()
	h.sessions.LoadAndSave(http.HandlerFunc(h.Callback)).ServeHTTP(rec, req)
	return rec
}

func TestCallback_StoresUser(t *testing.T) {
	sm := newTestSessions()
	h := NewHandlers(&fakeExchanger{claims: &Claims{Subject: "sub-1", Name: "Ada"}}, sm, zap.NewNop())

	rec := callback(t, h, "s1")
	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if got := rec.Header().Get("Location"); got != "/library" {
		t.Errorf("location = %q", got)
	}
}

func TestCallback_StateMismatch(t *testing.T) {
	sm := newTestSessions()
	h := NewHandlers(&fakeExchanger{}, sm, zap.NewNop())

	if rec := callback(t, h, "other"); rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestCallback_ExchangeFails(t *testing.T) {
	sm := newTestSessions()
	h := NewHandlers(&fakeExchanger{err: errors.New("bad code")}, sm, zap.NewNop())

	if rec := callback(t, h, "s1"); rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
