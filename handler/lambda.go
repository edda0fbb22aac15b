package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
)

// Handle serves API Gateway proxy events with the same routes as NewRouter.
func (h *Handler) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	path := strings.TrimRight(event.Path, "/")
	method := strings.ToUpper(event.HTTPMethod)

	var res Result
	switch {
	case path == "" && method == http.MethodGet:
		res = h.Index()
	case path == "/health" && method == http.MethodGet:
		res = h.Health()
	case path == "/chat":
		res = h.HandleChat(ctx, method, eventBody(event),
			lookupHeader(event.Headers, "Origin"),
			lookupHeader(event.Headers, headerCorrelationID))
	case path == "" || path == "/health":
		res = methodNotAllowed()
	default:
		res = notFound()
	}
	return toProxyResponse(res)
}

func eventBody(event events.APIGatewayProxyRequest) []byte {
	if !event.IsBase64Encoded {
		return []byte(event.Body)
	}
	decoded, err := base64.StdEncoding.DecodeString(event.Body)
	if err != nil {
		return nil
	}
	return decoded
}

func toProxyResponse(res Result) (events.APIGatewayProxyResponse, error) {
	body, err := json.Marshal(res.Body)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	return events.APIGatewayProxyResponse{
		StatusCode: res.StatusCode,
		Headers:    res.Headers,
		Body:       string(body),
	}, nil
}
