// Package ai asks a Gemini model for task ideas and short encouragements.
// Every call is best effort: errors and a missing API key degrade to an
// empty list or a fixed sentence.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"google.golang.org/genai"
)

// FallbackMotivation is returned whenever the model cannot be reached
const FallbackMotivation = "Great work today, keep it up!"

const maxSuggestions = 10

// Generator turns a prompt into text
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// TaskSuggestion is a draft task proposed by the model
type TaskSuggestion struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	SuggestedPoints int64  `json:"suggestedPoints"`
	SuggestedMoney  int64  `json:"suggestedMoney"`
}

// Service wraps a Generator with prompts and parsing
type Service struct {
	gen Generator
}

// NewService creates a service around any generator. A nil generator disables it.
func NewService(gen Generator) *Service {
	return &Service{gen: gen}
}

// NewGeminiService connects to Gemini. Without an API key the service is disabled.
func NewGeminiService(ctx context.Context, apiKey, model string) *Service {
	if apiKey == "" {
		log.Println("AI suggestions disabled: GEMINI_API_KEY not configured")
		return &Service{}
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		log.Printf("Warning: failed to create Gemini client: %v", err)
		return &Service{}
	}

	log.Printf("AI suggestions enabled: model=%s", model)
	return &Service{gen: &GeminiGenerator{client: client, model: model}}
}

// IsEnabled reports whether a model is configured
func (s *Service) IsEnabled() bool {
	return s != nil && s.gen != nil
}

// SuggestTasks asks for up to count chore ideas matching the child's interests
func (s *Service) SuggestTasks(ctx context.Context, interests string, count int) []TaskSuggestion {
	if !s.IsEnabled() {
		return []TaskSuggestion{}
	}
	count = max(1, min(maxSuggestions, count))

	prompt := fmt.Sprintf(`Suggest %d household chores or learning tasks for a child interested in: %s.
Reply with only a JSON array of objects with the keys "title", "description",
"suggestedPoints" (integer 5-50) and "suggestedMoney" (integer, minor currency units, 0-50).`,
		count, strings.TrimSpace(interests))

	text, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		log.Printf("AI task suggestion failed: %v", err)
		return []TaskSuggestion{}
	}

	suggestions, err := parseSuggestions(text)
	if err != nil {
		log.Printf("AI task suggestion returned unparseable output: %v", err)
		return []TaskSuggestion{}
	}
	if len(suggestions) > count {
		suggestions = suggestions[:count]
	}
	return suggestions
}

// Motivation asks for one encouraging sentence for a child
func (s *Service) Motivation(ctx context.Context, name string, completedTasks int) string {
	if !s.IsEnabled() {
		return FallbackMotivation
	}

	prompt := fmt.Sprintf(
		"Write one short, cheerful sentence encouraging a child named %s who has completed %d chores. No emojis, no quotes.",
		name, completedTasks)

	text, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		log.Printf("AI motivation failed: %v", err)
		return FallbackMotivation
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return FallbackMotivation
	}
	return text
}

func parseSuggestions(text string) ([]TaskSuggestion, error) {
	text = stripCodeFence(text)
	var suggestions []TaskSuggestion
	if err := json.Unmarshal([]byte(text), &suggestions); err != nil {
		return nil, err
	}

	valid := suggestions[:0]
	for _, sg := range suggestions {
		sg.Title = strings.TrimSpace(sg.Title)
		if sg.Title == "" {
			continue
		}
		sg.SuggestedPoints = max(0, sg.SuggestedPoints)
		sg.SuggestedMoney = max(0, sg.SuggestedMoney)
		valid = append(valid, sg)
	}
	return valid, nil
}

// stripCodeFence removes a markdown ``` block around the model's answer
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[i+1:]
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

// GeminiGenerator calls the Gemini API
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// Generate sends a single text prompt and returns the model's text reply
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text := result.Text()
	if text == "" {
		return "", fmt.Errorf("model returned no text")
	}
	return text, nil
}
