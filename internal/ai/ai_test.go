package ai

import (
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func response(parts ...genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Role: "model", Parts: parts}}},
	}
}

func TestFirstPartJoinsText(t *testing.T) {
	call, text := firstPart(response(genai.Text("Hello, "), genai.Text("world")))
	assert.Nil(t, call)
	assert.Equal(t, "Hello, world", text)
}

func TestFirstPartPrefersFunctionCall(t *testing.T) {
	call, _ := firstPart(response(
		genai.Text("let me check"),
		genai.FunctionCall{Name: "search_catalog", Args: map[string]any{"query": "dry block"}},
	))
	require.NotNil(t, call)
	assert.Equal(t, "search_catalog", call.Name)
	assert.Equal(t, "dry block", call.Args["query"])
}

func TestFirstPartEmpty(t *testing.T) {
	call, text := firstPart(&genai.GenerateContentResponse{})
	assert.Nil(t, call)
	assert.Empty(t, text)

	call, text = firstPart(nil)
	assert.Nil(t, call)
	assert.Empty(t, text)
}
