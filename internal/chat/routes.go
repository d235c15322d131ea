package chat

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts the chat API on the given router.
func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/", handleIndex)
	r.Post("/chat", handleChat(svc))
	r.Get("/health", handleHealth(svc))
	r.Post("/reload-context", handleReload(svc))
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, http.StatusNotFound, ErrCodeNotFound, "Endpoint not found.")
	})
}

func handleIndex(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service": "university admissions chatbot",
		"endpoints": map[string]string{
			"POST /chat":           "answer an admissions question",
			"GET /health":          "service status",
			"POST /reload-context": "re-read knowledge sources",
		},
	})
}

func handleChat(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, ErrCodeInvalidJSON, "Request body must be valid JSON.")
			return
		}

		resp, err := svc.Chat(r.Context(), req)
		if err != nil {
			var chatErr *ChatError
			if errors.As(err, &chatErr) {
				writeError(w, chatErr.Status, chatErr.Code, chatErr.Message)
				return
			}
			writeError(w, http.StatusInternalServerError, ErrCodeInternal, "Internal server error.")
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func handleHealth(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, svc.HealthSnapshot())
	}
}

func handleReload(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		size, report, err := svc.Reload(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, ErrCodeReload, "Failed to reload knowledge sources.")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success":            true,
			"message":            fmt.Sprintf("Reloaded %d files and %d scraped pages.", report.Loaded, report.ScrapedPages),
			"context_size_chars": size,
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: true, ErrorCode: code, Message: message})
}
