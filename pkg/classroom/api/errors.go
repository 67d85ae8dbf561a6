package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/tendant/simple-classroom/pkg/classroom"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// statusFor maps library errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, classroom.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, classroom.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, classroom.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, classroom.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	resp := ErrorResponse{Error: err.Error()}

	var ve *classroom.ValidationError
	if errors.As(err, &ve) {
		resp.Field = ve.Field
	}
	if status >= http.StatusInternalServerError {
		h.log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(err))
		if status == http.StatusInternalServerError {
			resp.Error = http.StatusText(status)
		}
	}

	render.Status(r, status)
	render.JSON(w, r, resp)
}
