// Package phrasing relays the deterministically selected interview question
// through an OpenAI-compatible model for wording. The caller keeps the raw
// question as a guaranteed fallback, so every failure here is non-fatal.
package phrasing

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"quartz/app/config"

	_ "embed"

	"github.com/samber/do"
	"github.com/sashabaranov/go-openai"
)

//go:embed prompt_template.txt
var promptTemplate string

const (
	maxPhraseDuration = 30 * time.Second
	maxPhraseTokens   = 50
)

// Request carries everything the model needs to phrase one question.
type Request struct {
	Question         string
	QuestionNumber   int
	EstablishedFacts []string
	RecentInput      string
	// History holds the tail of the conversation, most recent last.
	History []HistoryMessage
}

type HistoryMessage struct {
	Role    string
	Content string
}

type Service struct {
	cfg *config.Config

	client *openai.Client
	model  string
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)

	s := &Service{cfg: cfg}

	if model := cfg.OpenAI.Phrasing; model.Token != "" {
		s.client = createClient(model)
		s.model = model.Model
	}

	return s, nil
}

func createClient(cfg config.ModelConfig) *openai.Client {
	clientConfig := openai.DefaultConfig(cfg.Token)

	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	clientConfig.HTTPClient = &http.Client{
		Timeout: maxPhraseDuration,
	}

	return openai.NewClientWithConfig(clientConfig)
}

// Enabled reports whether a phrasing model is configured.
func (s *Service) Enabled() bool {
	return s.client != nil
}

// Phrase asks the model to word the question. Returns the trimmed completion
// text; the caller validates it before use.
func (s *Service) Phrase(ctx context.Context, req Request) (string, error) {
	if s.client == nil {
		return "", fmt.Errorf("phrasing model is not configured")
	}

	templateValues := map[string]any{
		"question":          req.Question,
		"question_number":   req.QuestionNumber,
		"recent_input":      req.RecentInput,
		"established_facts": strings.Join(req.EstablishedFacts, ", "),
	}

	prompt := promptTemplate
	for key, value := range templateValues {
		prompt = strings.ReplaceAll(prompt, "{"+key+"}", fmt.Sprint(value))
	}

	chatMessages := []openai.ChatCompletionMessage{
		{
			Role:    openai.ChatMessageRoleSystem,
			Content: prompt,
		},
	}

	history := req.History
	if len(history) > 2 {
		history = history[len(history)-2:]
	}
	for _, msg := range history {
		chatMessages = append(chatMessages, openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}

	ctx, cancel := context.WithTimeout(ctx, maxPhraseDuration)
	defer cancel()

	aiResponse, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model:       s.model,
			Messages:    chatMessages,
			MaxTokens:   maxPhraseTokens,
			Temperature: 0.1,
			TopP:        0.2,
		},
	)
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}

	if len(aiResponse.Choices) == 0 {
		return "", fmt.Errorf("no chat completion found")
	}

	return strings.TrimSpace(aiResponse.Choices[0].Message.Content), nil
}
