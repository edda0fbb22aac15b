package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

const maxBodyBytes = 1 << 20

// NewRouter exposes the relay over HTTP.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(allowAnyOrigin)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeResult(w, h.Index())
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeResult(w, h.Health())
	})
	r.Post("/chat", h.serveChat)
	r.Options("/chat", h.serveChat)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeResult(w, notFound())
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeResult(w, methodNotAllowed())
	})

	return r
}

func (h *Handler) serveChat(w http.ResponseWriter, r *http.Request) {
	correlationID := r.Header.Get(headerCorrelationID)
	if correlationID == "" {
		correlationID = newUUID()
	}

	var raw []byte
	if r.Method == http.MethodPost {
		var err error
		raw, err = io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.logger.Warn("request body too large", "correlation_id", correlationID, "limit", tooLarge.Limit)
			writeResult(w, Result{
				StatusCode: http.StatusRequestEntityTooLarge,
				Body:       errorResponse{Error: "Request body too large"},
				Headers:    chatHeaders(correlationID),
			})
			return
		}
		if err != nil {
			// An unreadable body is treated like a missing one.
			h.logger.Warn("failed to read request body", "correlation_id", correlationID, "err", err)
			raw = nil
		}
	}
	res := h.HandleChat(r.Context(), r.Method, raw, r.Header.Get("Origin"), correlationID)
	writeResult(w, res)
}

// allowAnyOrigin makes every response, including router-level 404 and 405,
// readable by browser clients.
func allowAnyOrigin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		next.ServeHTTP(w, r)
	})
}

func writeResult(w http.ResponseWriter, res Result) {
	for k, v := range res.Headers {
		w.Header().Set(k, v)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(res.StatusCode)
	_ = json.NewEncoder(w).Encode(res.Body)
}
