package domain

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is the role-tagged message shape shared by the inbound chat
// payload and the outbound completion request.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ValidRole reports whether role is one the completion endpoint accepts.
func ValidRole(role string) bool {
	switch role {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// CompletionRequest is the body posted to the chat completions deployment.
type CompletionRequest struct {
	Messages            []ChatMessage `json:"messages"`
	MaxCompletionTokens int           `json:"max_completion_tokens"`
	Temperature         float64       `json:"temperature"`
	FrequencyPenalty    float64       `json:"frequency_penalty"`
	PresencePenalty     float64       `json:"presence_penalty"`
}
