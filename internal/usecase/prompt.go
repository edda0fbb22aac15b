package usecase

import (
	"bytes"
	"encoding/json"
	"fmt"

	"cloudnerve-chat/internal/domain"
)

const (
	// historyWindow is how many trailing history entries are forwarded.
	historyWindow = 6
	previewRunes  = 50
)

// chatRequestBody is the inbound /chat payload.
type chatRequestBody struct {
	Message string               `json:"message"`
	History []domain.ChatMessage `json:"history"`
}

// ParseChatRequest decodes a raw /chat body. A missing body, malformed JSON,
// a non-object, an empty object, or fields of the wrong type all fail with
// ReasonNoData.
func ParseChatRequest(raw []byte) (ChatInput, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ChatInput{}, newError(ErrorValidation, ReasonNoData, nil)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return ChatInput{}, newError(ErrorValidation, ReasonNoData, err)
	}
	if len(fields) == 0 {
		return ChatInput{}, newError(ErrorValidation, ReasonNoData, nil)
	}

	var body chatRequestBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return ChatInput{}, newError(ErrorValidation, ReasonNoData, err)
	}
	return ChatInput{Message: body.Message, History: body.History}, nil
}

// recentHistory returns the last historyWindow entries, oldest first.
func recentHistory(history []domain.ChatMessage) []domain.ChatMessage {
	if len(history) <= historyWindow {
		return history
	}
	return history[len(history)-historyWindow:]
}

// validateHistory checks the roles of the forwarded window. offset is the
// index of window[0] in the caller's history, used in the error detail.
func validateHistory(window []domain.ChatMessage, offset int) error {
	for i, m := range window {
		if !domain.ValidRole(m.Role) {
			return fmt.Errorf("history[%d]: unsupported role %q", offset+i, m.Role)
		}
	}
	return nil
}

func buildPromptMessages(systemPrompt string, history []domain.ChatMessage, message string) []domain.ChatMessage {
	window := recentHistory(history)
	messages := make([]domain.ChatMessage, 0, len(window)+2)
	messages = append(messages, domain.ChatMessage{Role: domain.RoleSystem, Content: systemPrompt})
	messages = append(messages, window...)
	messages = append(messages, domain.ChatMessage{Role: domain.RoleUser, Content: message})
	return messages
}

func preview(s string) string {
	r := []rune(s)
	if len(r) > previewRunes {
		r = r[:previewRunes]
	}
	return string(r) + "..."
}
