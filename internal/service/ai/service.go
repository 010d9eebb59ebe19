package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"secassist/internal/config"
	"secassist/internal/models"

	"github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"
)

// ErrUpstream wraps every failure of the completion API.
var ErrUpstream = errors.New("upstream completion failed")

const SystemPrompt = "You are a security compliance assistant helping to verify assessment questionnaire answers against security policies.\n\n" +
	"Your role is to:\n" +
	"1. Analyze uploaded security policies and assessment questionnaires\n" +
	"2. Check if answers comply with stated policies\n" +
	"3. Identify gaps, inconsistencies, or areas of concern\n" +
	"4. Provide specific references to relevant policy sections\n" +
	"5. Suggest improvements or corrections when needed\n\n" +
	"Be thorough, objective, and cite specific sections from the documents when making assessments."

// NewChatModel builds the eino chat model for the configured provider.
func NewChatModel(ctx context.Context, provider string, cfg config.ProviderConfig) (model.BaseChatModel, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key for provider %s is empty", provider)
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = config.DefaultMaxTokens
	}

	switch provider {
	case "claude":
		var baseURLPtr *string
		if cfg.BaseURL != "" {
			baseURLPtr = &cfg.BaseURL
		}
		return claude.NewChatModel(ctx, &claude.Config{
			APIKey:    cfg.APIKey,
			Model:     cfg.Model,
			BaseURL:   baseURLPtr,
			MaxTokens: maxTokens,
		})
	case "openai":
		return openai.NewChatModel(ctx, &openai.ChatModelConfig{
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			APIKey:  cfg.APIKey,
		})
	case "gemini":
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey: cfg.APIKey,
		})
		if err != nil {
			return nil, fmt.Errorf("new gemini client: %w", err)
		}
		return gemini.NewChatModel(ctx, &gemini.Config{
			Client: client,
			Model:  cfg.Model,
		})
	default:
		return nil, fmt.Errorf("invalid provider: %s", provider)
	}
}

// Service sends prompts plus conversation history to the upstream model.
type Service struct {
	chatModel    model.BaseChatModel
	maxTokens    int
	systemPrompt string
}

func NewService(chatModel model.BaseChatModel, maxTokens int) *Service {
	if maxTokens <= 0 {
		maxTokens = config.DefaultMaxTokens
	}
	return &Service{
		chatModel:    chatModel,
		maxTokens:    maxTokens,
		systemPrompt: SystemPrompt,
	}
}

// Complete replays history, appends prompt as the newest user turn and
// returns the assistant reply. Errors wrap ErrUpstream.
func (s *Service) Complete(ctx context.Context, history []*models.Message, prompt string) (*models.Message, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, errors.New("prompt cannot be empty")
	}
	messages := s.buildMessages(history, prompt)

	resp, err := s.generate(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	if resp == nil || strings.TrimSpace(resp.Content) == "" {
		return nil, fmt.Errorf("%w: empty response", ErrUpstream)
	}
	return &models.Message{
		Role:      models.RoleAssistant,
		Content:   resp.Content,
		CreatedAt: time.Now(),
	}, nil
}

// generate is the only place the upstream API is called.
func (s *Service) generate(ctx context.Context, messages []*schema.Message) (*schema.Message, error) {
	if s.chatModel == nil {
		return nil, errors.New("chat model not initialized")
	}
	return s.chatModel.Generate(ctx, messages, model.WithMaxTokens(s.maxTokens))
}

func (s *Service) buildMessages(history []*models.Message, prompt string) []*schema.Message {
	messages := make([]*schema.Message, 0, len(history)+2)
	messages = append(messages, &schema.Message{
		Role:    schema.System,
		Content: s.systemPrompt,
	})
	for _, msg := range history {
		if msg == nil {
			continue
		}
		var role schema.RoleType
		switch msg.Role {
		case models.RoleAssistant:
			role = schema.Assistant
		case models.RoleSystem:
			role = schema.System
		default:
			role = schema.User
		}
		messages = append(messages, &schema.Message{
			Role:    role,
			Content: msg.Content,
		})
	}
	messages = append(messages, &schema.Message{
		Role:    schema.User,
		Content: prompt,
	})
	return messages
}
