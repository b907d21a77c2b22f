package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInvokeServer(t *testing.T, handler http.HandlerFunc) *invokeGenerator {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	g, err := newInvokeGenerator(srv.URL+"/model/{model}/invoke", "secret", 5*time.Second)
	require.NoError(t, err)
	return g
}

func TestInvoke_RequestShape(t *testing.T) {
	var got invokeRequest
	var path, auth string
	g := newInvokeServer(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string]string{"generation": "hello there"})
	})

	out, err := g.Generate(context.Background(), "PROMPT", "deepseek-r1")
	require.NoError(t, err)

	assert.Equal(t, "hello there", out)
	assert.Equal(t, "/model/deepseek-r1/invoke", path)
	assert.Equal(t, "Bearer secret", auth)
	assert.Equal(t, invokeRequest{Prompt: "PROMPT", MaxGenLen: 5000, TopP: 0.3, Temperature: 0.01}, got)
}

func TestInvoke_MissingGeneration(t *testing.T) {
	g := newInvokeServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	out, err := g.Generate(context.Background(), "PROMPT", "m")
	require.NoError(t, err)
	assert.Equal(t, NoResponse, out)
}

func TestInvoke_Non2xxIsFailure(t *testing.T) {
	g := newInvokeServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "throttled", http.StatusTooManyRequests)
	})

	_, err := g.Generate(context.Background(), "PROMPT", "m")
	var se *StatusError
	require.True(t, errors.As(err, &se), "got %v", err)
	assert.Equal(t, http.StatusTooManyRequests, se.StatusCode)
	assert.Contains(t, se.Body, "throttled")
	assert.Equal(t, "429", status(err))
}

func TestInvoke_MalformedBody(t *testing.T) {
	g := newInvokeServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	})

	_, err := g.Generate(context.Background(), "PROMPT", "m")
	assert.Error(t, err)
}

func TestInvoke_EmptyPrompt(t *testing.T) {
	g := newInvokeServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("backend must not be called")
	})

	_, err := g.Generate(context.Background(), "", "m")
	assert.ErrorIs(t, err, ErrEmptyPrompt)
}

func TestNewInvokeGenerator_RequiresPlaceholder(t *testing.T) {
	_, err := newInvokeGenerator("http://localhost/invoke", "", time.Second)
	assert.Error(t, err)
}
