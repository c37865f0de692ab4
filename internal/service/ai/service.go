package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"

	"edubot/internal/config"
)

const (
	classifyPromptFormat = "Is '%s' an educational topic suitable for a school or university curriculum? Answer only 'yes' or 'no'."

	claudeMaxTokens = 3000
)

var ErrEmptyResponse = errors.New("model returned an empty response")

// Service talks to a generative-language model through eino.
type Service struct {
	chatModel model.BaseChatModel
}

// NewService builds the chat model for the configured provider.
func NewService(ctx context.Context, provCfg config.ProviderConfig, apiKey string) (*Service, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("api key is required")
	}
	var (
		chatModel model.BaseChatModel
		err       error
	)

	switch strings.ToLower(provCfg.Name) {
	case "gemini":
		client, cerr := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if cerr != nil {
			return nil, fmt.Errorf("create gemini client: %w", cerr)
		}
		chatModel, err = gemini.NewChatModel(ctx, &gemini.Config{
			Client: client,
			Model:  provCfg.Model,
		})
	case "openai":
		chatModel, err = openai.NewChatModel(ctx, &openai.ChatModelConfig{
			BaseURL: provCfg.BaseURL,
			Model:   provCfg.Model,
			APIKey:  apiKey,
		})
	case "claude":
		var baseURLPtr *string
		if provCfg.BaseURL != "" {
			baseURLPtr = &provCfg.BaseURL
		}
		chatModel, err = claude.NewChatModel(ctx, &claude.Config{
			APIKey:    apiKey,
			Model:     provCfg.Model,
			BaseURL:   baseURLPtr,
			MaxTokens: claudeMaxTokens,
		})
	default:
		return nil, fmt.Errorf("invalid provider: %s", provCfg.Name)
	}
	if err != nil {
		return nil, fmt.Errorf("init %s chat model: %w", provCfg.Name, err)
	}
	return NewServiceWithModel(chatModel), nil
}

// NewServiceWithModel wraps an existing chat model.
func NewServiceWithModel(chatModel model.BaseChatModel) *Service {
	return &Service{chatModel: chatModel}
}

// Classify asks the model whether text is an educational topic. Only a
// plain "yes" answer counts.
func (s *Service) Classify(ctx context.Context, text string) (bool, error) {
	answer, err := s.generate(ctx, fmt.Sprintf(classifyPromptFormat, text))
	if err != nil {
		return false, fmt.Errorf("classify topic: %w", err)
	}
	return strings.EqualFold(strings.TrimSpace(answer), "yes"), nil
}

// Complete returns the model's answer to prompt.
func (s *Service) Complete(ctx context.Context, prompt string) (string, error) {
	answer, err := s.generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("complete prompt: %w", err)
	}
	if strings.TrimSpace(answer) == "" {
		return "", ErrEmptyResponse
	}
	return answer, nil
}

func (s *Service) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := s.chatModel.Generate(ctx, []*schema.Message{
		{
			Role:    schema.User,
			Content: prompt,
		},
	})
	if err != nil {
		return "", err
	}
	if resp == nil {
		return "", ErrEmptyResponse
	}
	return resp.Content, nil
}
