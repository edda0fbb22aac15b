package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"cloudnerve-chat/internal/usecase"
)

const (
	serviceName    = "CloudNerve Chat API"
	serviceVersion = "1.0"

	headerCorrelationID = "X-Correlation-Id"
)

type ChatUseCase interface {
	Chat(ctx context.Context, in usecase.ChatInput) (usecase.ChatOutput, error)
}

type chatResponse struct {
	Response string `json:"response"`
	Status   string `json:"status"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type statusResponse struct {
	Status  string `json:"status"`
	Service string `json:"service,omitempty"`
	Version string `json:"version,omitempty"`
}

// Result is a transport-neutral response. The chi router and the API Gateway
// adapter both render it.
type Result struct {
	StatusCode int
	Body       any
	Headers    map[string]string
}

type Handler struct {
	chat   ChatUseCase
	logger *slog.Logger
}

func NewHandler(chat ChatUseCase, logger *slog.Logger) (*Handler, error) {
	if chat == nil {
		return nil, errors.New("handler: chat use case must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{chat: chat, logger: logger}, nil
}

func (h *Handler) Index() Result {
	return Result{
		StatusCode: http.StatusOK,
		Body:       statusResponse{Status: "running", Service: serviceName, Version: serviceVersion},
		Headers:    baseHeaders(),
	}
}

func (h *Handler) Health() Result {
	return Result{
		StatusCode: http.StatusOK,
		Body:       statusResponse{Status: "healthy", Service: serviceName},
		Headers:    baseHeaders(),
	}
}

// HandleChat serves POST and OPTIONS /chat. Every result carries the CORS
// headers and the correlation id.
func (h *Handler) HandleChat(ctx context.Context, method string, raw []byte, origin, correlationID string) Result {
	if correlationID == "" {
		correlationID = newUUID()
	}
	res := h.chatResult(ctx, method, raw, origin, correlationID)
	res.Headers = chatHeaders(correlationID)
	return res
}

func (h *Handler) chatResult(ctx context.Context, method string, raw []byte, origin, correlationID string) Result {
	switch method {
	case http.MethodOptions:
		return Result{StatusCode: http.StatusOK, Body: statusResponse{Status: "ok"}}
	case http.MethodPost:
	default:
		return Result{StatusCode: http.StatusMethodNotAllowed, Body: errorResponse{Error: "Method not allowed"}}
	}

	log := h.logger.With("correlation_id", correlationID)
	if origin == "" {
		origin = "Unknown"
	}
	log.Info("chat request", "origin", origin)

	in, err := usecase.ParseChatRequest(raw)
	if err != nil {
		log.Warn("no data provided in request", "err", err)
		return errorResult(err)
	}
	in.CorrelationID = correlationID

	out, err := h.chat.Chat(ctx, in)
	if err != nil {
		return errorResult(err)
	}
	return Result{StatusCode: http.StatusOK, Body: chatResponse{Response: out.Response, Status: "success"}}
}

func errorResult(err error) Result {
	var ucErr *usecase.Error
	if !errors.As(err, &ucErr) {
		return Result{
			StatusCode: http.StatusInternalServerError,
			Body:       errorResponse{Error: "Internal server error", Details: err.Error()},
		}
	}

	switch ucErr.Code {
	case usecase.ErrorValidation:
		return Result{StatusCode: http.StatusBadRequest, Body: errorResponse{Error: validationMessage(ucErr.Reason), Details: ucErr.Details}}
	case usecase.ErrorConfiguration:
		return Result{StatusCode: http.StatusInternalServerError, Body: errorResponse{Error: "Server configuration error"}}
	case usecase.ErrorUpstreamTimeout:
		return Result{StatusCode: http.StatusGatewayTimeout, Body: errorResponse{Error: "Request timed out"}}
	case usecase.ErrorUpstream:
		return Result{StatusCode: upstreamStatus(ucErr.Status), Body: errorResponse{Error: "AI service error", Details: ucErr.Details}}
	default:
		return Result{StatusCode: http.StatusInternalServerError, Body: errorResponse{Error: "Internal server error", Details: ucErr.Details}}
	}
}

func validationMessage(reason string) string {
	switch reason {
	case usecase.ReasonNoData:
		return "No data provided"
	case usecase.ReasonInvalidHistory:
		return "Invalid history"
	default:
		return "Message is required"
	}
}

// upstreamStatus forwards the provider's status, guarding against values
// net/http refuses to write.
func upstreamStatus(status int) int {
	if status < 100 || status > 999 {
		return http.StatusBadGateway
	}
	return status
}

func notFound() Result {
	return Result{StatusCode: http.StatusNotFound, Body: errorResponse{Error: "Not found"}, Headers: baseHeaders()}
}

func methodNotAllowed() Result {
	return Result{StatusCode: http.StatusMethodNotAllowed, Body: errorResponse{Error: "Method not allowed"}, Headers: baseHeaders()}
}

func baseHeaders() map[string]string {
	return map[string]string{
		"Content-Type":                "application/json",
		"Access-Control-Allow-Origin": "*",
	}
}

func chatHeaders(correlationID string) map[string]string {
	headers := baseHeaders()
	headers["Access-Control-Allow-Methods"] = "POST, OPTIONS"
	headers["Access-Control-Allow-Headers"] = "Content-Type"
	headers[headerCorrelationID] = correlationID
	return headers
}

// lookupHeader finds key in a plain header map regardless of case.
func lookupHeader(headers map[string]string, key string) string {
	if v, ok := headers[key]; ok {
		return strings.TrimSpace(v)
	}
	for k, v := range headers {
		if strings.EqualFold(k, key) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

var newUUID = func() string {
	return uuid.NewString()
}
