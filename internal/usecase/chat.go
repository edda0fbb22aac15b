package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"cloudnerve-chat/internal/domain"
)

type LLMClient interface {
	HasAPIKey() bool
	Complete(ctx context.Context, req domain.CompletionRequest) (string, error)
}

type httpStatusCoder interface {
	HTTPStatusCode() int
}

type responseBodier interface {
	ResponseBody() string
}

type timeouter interface {
	Timeout() bool
}

// Settings are the fixed completion parameters applied to every request.
type Settings struct {
	SystemPrompt        string
	MaxCompletionTokens int
	Temperature         float64
}

type ChatService struct {
	llm      LLMClient
	settings Settings
	logger   *slog.Logger
}

type ChatInput struct {
	Message       string
	History       []domain.ChatMessage
	CorrelationID string
}

type ChatOutput struct {
	Response string
}

func NewChatService(llm LLMClient, settings Settings, logger *slog.Logger) (*ChatService, error) {
	if llm == nil {
		return nil, errors.New("usecase: llm client must not be nil")
	}
	if strings.TrimSpace(settings.SystemPrompt) == "" {
		return nil, errors.New("usecase: system prompt must not be empty")
	}
	if settings.MaxCompletionTokens <= 0 {
		return nil, errors.New("usecase: max completion tokens must be positive")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatService{llm: llm, settings: settings, logger: logger}, nil
}

// Chat validates the input, assembles the completion request and returns the
// trimmed reply. Every failure is a *Error.
func (s *ChatService) Chat(ctx context.Context, in ChatInput) (ChatOutput, error) {
	log := s.logger.With("correlation_id", in.CorrelationID)

	message := strings.TrimSpace(in.Message)
	if message == "" {
		log.Warn("empty message received")
		return ChatOutput{}, newError(ErrorValidation, ReasonEmptyMessage, nil)
	}
	window := recentHistory(in.History)
	if err := validateHistory(window, len(in.History)-len(window)); err != nil {
		log.Warn("invalid history received", "err", err)
		e := newError(ErrorValidation, ReasonInvalidHistory, err)
		e.Details = err.Error()
		return ChatOutput{}, e
	}
	if !s.llm.HasAPIKey() {
		log.Error("azure api key not configured")
		return ChatOutput{}, newError(ErrorConfiguration, ReasonAPIKeyMissing, nil)
	}

	req := domain.CompletionRequest{
		Messages:            buildPromptMessages(s.settings.SystemPrompt, in.History, message),
		MaxCompletionTokens: s.settings.MaxCompletionTokens,
		Temperature:         s.settings.Temperature,
	}

	log.Info("calling azure openai", "message", preview(message), "history", len(window))
	raw, err := s.llm.Complete(ctx, req)
	if err != nil {
		return ChatOutput{}, s.translate(log, err)
	}

	log.Info("generated ai response")
	return ChatOutput{Response: strings.TrimSpace(raw)}, nil
}

func (s *ChatService) translate(log *slog.Logger, err error) *Error {
	if isTimeout(err) {
		log.Error("request to azure openai timed out", "err", err)
		return newError(ErrorUpstreamTimeout, ReasonProviderTimeout, err)
	}
	if status, ok := upstreamStatusCode(err); ok {
		e := newError(ErrorUpstream, ReasonProviderStatus, err)
		e.Status = status
		e.Details = upstreamBody(err)
		log.Error("azure openai error", "status", status, "body", e.Details)
		return e
	}
	log.Error("error in chat", "err", err)
	e := newError(ErrorInternal, ReasonProviderFailure, err)
	e.Details = err.Error()
	return e
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var t timeouter
	return errors.As(err, &t) && t.Timeout()
}

func upstreamStatusCode(err error) (int, bool) {
	var statusErr httpStatusCoder
	if !errors.As(err, &statusErr) {
		return 0, false
	}
	return statusErr.HTTPStatusCode(), true
}

func upstreamBody(err error) string {
	var b responseBodier
	if !errors.As(err, &b) {
		return ""
	}
	return b.ResponseBody()
}
