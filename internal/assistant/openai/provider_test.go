package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-modsynth/internal/assistant"
)

func TestName(t *testing.T) {
	assert.Equal(t, "openai", New("key", "").Name())
}

func TestBuildParams(t *testing.T) {
	params := buildParams("", []assistant.Message{
		{Role: assistant.RoleSystem, Content: "be brief"},
		{Role: assistant.RoleUser, Content: "make a bass"},
		{Role: assistant.RoleAssistant, Content: "done"},
		{Role: assistant.RoleUser, Content: "darker"},
	})

	assert.Equal(t, defaultModel, params.Model)
	assert.Equal(t, "be brief", params.Instructions.Value)
	require.Len(t, params.Input.OfInputItemList, 3)
	assert.Equal(t, "assistant", responsesRole(t, params.Input.OfInputItemList[1]))
}

func responsesRole(t *testing.T, item any) string {
	t.Helper()
	data, err := json.Marshal(item)
	require.NoError(t, err)
	var v struct {
		Role string `json:"role"`
	}
	require.NoError(t, json.Unmarshal(data, &v))
	return v.Role
}

func TestCompleteAgainstServer(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/responses", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"id": "resp_1", "object": "response", "created_at": 0, "status": "completed",
			"model": "test-model",
			"output": [{
				"type": "message", "id": "msg_1", "role": "assistant", "status": "completed",
				"content": [{"type": "output_text", "text": "hello", "annotations": []}]
			}]
		}`)
	}))
	defer srv.Close()

	p := New("key", srv.URL)
	text, err := p.Complete(context.Background(), "test-model", []assistant.Message{
		{Role: assistant.RoleSystem, Content: "sys"},
		{Role: assistant.RoleUser, Content: "hi"},
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", text)
	assert.Equal(t, "test-model", got["model"])
	assert.Equal(t, "sys", got["instructions"])
}

func TestModelsAgainstServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"object": "list", "data": [
			{"id": "b-model", "object": "model", "created": 0, "owned_by": "x"},
			{"id": "a-model", "object": "model", "created": 0, "owned_by": "x"}
		]}`)
	}))
	defer srv.Close()

	models, err := New("key", srv.URL).Models(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a-model", "b-model"}, models)
}

func TestKeylessAgainstServer(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	require.NoError(t, os.Unsetenv("OPENAI_API_KEY"))

	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"object": "list", "data": [
			{"id": "llama3.2", "object": "model", "created": 0, "owned_by": "library"}
		]}`)
	}))
	defer srv.Close()

	models, err := New("", srv.URL).Models(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"llama3.2"}, models)
	assert.Empty(t, auth)
}

func TestCompleteServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error": {"message": "bad key"}}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := New("key", srv.URL).Complete(context.Background(), "m", nil)
	require.Error(t, err)
}
