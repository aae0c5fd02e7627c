package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/01moynul/calibration-catalog/internal/chatbot"
)

const DefaultModel = "gemini-1.5-flash"

// maxToolRounds bounds the function-call loop of one answer.
const maxToolRounds = 3

// CatalogLookup returns catalog entries matching a free-text query, ready to
// be marshalled as JSON for the model.
type CatalogLookup func(ctx context.Context, query string) (any, error)

// AIService answers website visitors through Gemini. The model may call a
// catalog search tool to ground its answers in real products.
type AIService struct {
	Client    *genai.Client
	ModelName string
	Lookup    CatalogLookup
}

// NewAIService initializes the Gemini client.
func NewAIService(ctx context.Context, apiKey, modelName string, lookup CatalogLookup) (*AIService, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if modelName == "" {
		modelName = DefaultModel
	}
	return &AIService{Client: client, ModelName: modelName, Lookup: lookup}, nil
}

func (s *AIService) Close() error {
	return s.Client.Close()
}

// Respond implements chatbot.Responder.
func (s *AIService) Respond(ctx context.Context, history []chatbot.Turn, message string) (string, error) {
	model := s.Client.GenerativeModel(s.ModelName)

	// 1. Tool: read-only catalog search.
	if s.Lookup != nil {
		model.Tools = []*genai.Tool{{
			FunctionDeclarations: []*genai.FunctionDeclaration{{
				Name:        "search_catalog",
				Description: "Searches the product catalog by name or description and returns matching products.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"query": {Type: genai.TypeString, Description: "Words to look for, e.g. 'pressure controller'."},
					},
					Required: []string{"query"},
				},
			}},
		}}
	}

	// 2. System instructions.
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(`
			You are the website assistant of an industrial calibration equipment manufacturer.
			Answer briefly and politely. Use search_catalog to look up products; never invent model numbers or prices.
			For prices, point the visitor to the quote form.
		`)},
	}

	// 3. Replay the session so far.
	cs := model.StartChat()
	for _, t := range history {
		role := "user"
		if t.Role == chatbot.RoleBot {
			role = "model"
		}
		cs.History = append(cs.History, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(t.Text)}})
	}

	res, err := cs.SendMessage(ctx, genai.Text(message))
	if err != nil {
		return "", fmt.Errorf("error sending message: %w", err)
	}

	// 4. Answer tool calls until the model replies with text.
	for round := 0; ; round++ {
		call, text := firstPart(res)
		if call == nil {
			return text, nil
		}
		if round >= maxToolRounds {
			return "", fmt.Errorf("too many tool calls")
		}
		if call.Name != "search_catalog" || s.Lookup == nil {
			return "", fmt.Errorf("unknown function: %s", call.Name)
		}

		query, _ := call.Args["query"].(string)
		log.Printf("AI searching catalog: %q", query)

		var result any
		found, err := s.Lookup(ctx, query)
		if err != nil {
			result = map[string]any{"error": err.Error()}
		} else {
			result = found
		}
		payload, err := json.Marshal(result)
		if err != nil {
			return "", err
		}

		res, err = cs.SendMessage(ctx, genai.FunctionResponse{
			Name:     call.Name,
			Response: map[string]any{"result": string(payload)},
		})
		if err != nil {
			return "", fmt.Errorf("tool response error: %w", err)
		}
	}
}

// firstPart returns the first function call of the response, or else its text.
func firstPart(res *genai.GenerateContentResponse) (*genai.FunctionCall, string) {
	if res == nil || len(res.Candidates) == 0 || res.Candidates[0].Content == nil {
		return nil, ""
	}
	var b strings.Builder
	for _, part := range res.Candidates[0].Content.Parts {
		switch p := part.(type) {
		case genai.FunctionCall:
			return &p, ""
		case genai.Text:
			b.WriteString(string(p))
		}
	}
	return nil, b.String()
}
