package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"secassist/internal/config"
	"secassist/internal/models"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

type recordingModel struct {
	reply     string
	err       error
	calls     [][]*schema.Message
	maxTokens *int
}

func (m *recordingModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	m.calls = append(m.calls, input)
	m.maxTokens = model.GetCommonOptions(nil, opts...).MaxTokens
	if m.err != nil {
		return nil, m.err
	}
	return &schema.Message{Role: schema.Assistant, Content: m.reply}, nil
}

func (m *recordingModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

func TestCompleteSendsSystemHistoryAndPrompt(t *testing.T) {
	fake := &recordingModel{reply: "Yes, AES-256 is required."}
	svc := NewService(fake, 4096)

	history := []*models.Message{
		{Role: models.RoleUser, Content: "first question"},
		{Role: models.RoleAssistant, Content: "first answer"},
	}
	resp, err := svc.Complete(context.Background(), history, "second question")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if resp.Role != models.RoleAssistant || resp.Content != "Yes, AES-256 is required." {
		t.Fatalf("unexpected reply: %#v", resp)
	}
	if len(fake.calls) != 1 {
		t.Fatalf("expected one upstream call, got %d", len(fake.calls))
	}
	sent := fake.calls[0]
	if len(sent) != 4 {
		t.Fatalf("expected system + 2 history + prompt, got %d", len(sent))
	}
	if sent[0].Role != schema.System || !strings.Contains(sent[0].Content, "security compliance assistant") {
		t.Fatalf("missing system prompt: %#v", sent[0])
	}
	if sent[1].Role != schema.User || sent[1].Content != "first question" {
		t.Fatalf("history user turn mismatch: %#v", sent[1])
	}
	if sent[2].Role != schema.Assistant || sent[2].Content != "first answer" {
		t.Fatalf("history assistant turn mismatch: %#v", sent[2])
	}
	if sent[3].Role != schema.User || sent[3].Content != "second question" {
		t.Fatalf("prompt turn mismatch: %#v", sent[3])
	}
	if fake.maxTokens == nil || *fake.maxTokens != 4096 {
		t.Fatalf("max tokens option not forwarded: %v", fake.maxTokens)
	}
}

func TestCompleteWrapsUpstreamErrors(t *testing.T) {
	fake := &recordingModel{err: errors.New("401 invalid x-api-key")}
	svc := NewService(fake, 0)

	_, err := svc.Complete(context.Background(), nil, "hello")
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func TestCompleteRejectsEmptyReply(t *testing.T) {
	svc := NewService(&recordingModel{reply: "   "}, 0)
	if _, err := svc.Complete(context.Background(), nil, "hello"); !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream for empty reply, got %v", err)
	}
}

func TestCompleteRejectsEmptyPrompt(t *testing.T) {
	fake := &recordingModel{reply: "x"}
	svc := NewService(fake, 0)
	if _, err := svc.Complete(context.Background(), nil, " "); err == nil {
		t.Fatalf("expected error for empty prompt")
	}
	if len(fake.calls) != 0 {
		t.Fatalf("empty prompt must not reach upstream")
	}
}

func TestNewChatModelValidation(t *testing.T) {
	ctx := context.Background()
	if _, err := NewChatModel(ctx, "claude", config.ProviderConfig{}); err == nil {
		t.Fatalf("expected error for empty api key")
	}
	if _, err := NewChatModel(ctx, "unknown", config.ProviderConfig{APIKey: "k"}); err == nil {
		t.Fatalf("expected error for unknown provider")
	}
	m, err := NewChatModel(ctx, "claude", config.ProviderConfig{APIKey: "k", Model: "claude-sonnet-4-20250514", MaxTokens: 4096})
	if err != nil || m == nil {
		t.Fatalf("claude model construction failed: %v", err)
	}
}
