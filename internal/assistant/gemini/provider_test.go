package gemini

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/cwbudde/algo-modsynth/internal/assistant"
)

func TestName(t *testing.T) {
	provider := &Provider{client: nil}
	assert.Equal(t, "gemini", provider.Name())
}

func TestBuildContents(t *testing.T) {
	tests := []struct {
		name       string
		in         []assistant.Message
		wantSystem string
		wantRoles  []string
	}{
		{
			name:      "single user message",
			in:        []assistant.Message{{Role: assistant.RoleUser, Content: "hi"}},
			wantRoles: []string{"user"},
		},
		{
			name: "system split off",
			in: []assistant.Message{
				{Role: assistant.RoleSystem, Content: "a"},
				{Role: assistant.RoleSystem, Content: "b"},
				{Role: assistant.RoleUser, Content: "hi"},
			},
			wantSystem: "a\n\nb",
			wantRoles:  []string{"user"},
		},
		{
			name: "assistant becomes model",
			in: []assistant.Message{
				{Role: assistant.RoleUser, Content: "hi"},
				{Role: assistant.RoleAssistant, Content: "hello"},
				{Role: assistant.RoleUser, Content: "more"},
			},
			wantRoles: []string{"user", "model", "user"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			system, contents := buildContents(tt.in)
			assert.Equal(t, tt.wantSystem, system)
			require.Len(t, contents, len(tt.wantRoles))
			for i, c := range contents {
				assert.Equal(t, tt.wantRoles[i], c.Role)
				assert.NotEmpty(t, c.Parts)
			}
		})
	}
}

func TestResponseText(t *testing.T) {
	_, err := responseText(&genai.GenerateContentResponse{})
	require.Error(t, err)

	_, err = responseText(&genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{}}},
	})
	require.Error(t, err)

	text, err := responseText(&genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []*genai.Part{
			{Text: "thinking", Thought: true},
			{Text: "a "},
			{Text: "patch"},
		}}}},
	})
	require.NoError(t, err)
	assert.Equal(t, "a patch", text)

	_, err = responseText(&genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []*genai.Part{{Text: ""}}}}},
	})
	require.ErrorIs(t, err, errEmptyReply)
}
