package common

import (
	"context"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"personafeed/internal/logger"
)

// MessageResponse is the body shape for acknowledgements and errors.
type MessageResponse struct {
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(body)
}

// WriteError maps err onto a status and a public message. Server-side
// failures are logged with the full cause.
func WriteError(ctx context.Context, w http.ResponseWriter, log logger.Logger, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError && log != nil {
		log.Error(ctx, "request failed", logger.Err(err))
	}
	WriteJSON(w, status, MessageResponse{
		Message:   PublicMessage(err),
		RequestID: logger.RequestIDFromContext(ctx),
	})
}

const maxBodyBytes = 1 << 20

// DecodeJSON reads a bounded request body; malformed input is a ValidationError.
func DecodeJSON(r *http.Request, dst interface{}) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return NewValidationError("read body: %v", err)
	}
	if len(body) > maxBodyBytes {
		return NewValidationError("request body too large")
	}
	if len(body) == 0 {
		return NewValidationError("request body is required")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return NewValidationError("malformed JSON: %v", err)
	}
	return nil
}
