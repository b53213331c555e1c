package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"gestorcloud/internal/core"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type errorResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := errorResponse{
		Message:   message,
		Code:      code,
		RequestID: requestIDFromContext(r.Context()),
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeServiceError maps a domain or storage error to its HTTP status and code.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validation *core.ValidationError
		fieldErrs  validator.ValidationErrors
		duplicate  *core.DuplicateEmailError
		hasSales   *core.CustomerHasSalesError
		notFound   *core.CustomerNotFoundError
	)
	switch {
	case errors.As(err, &validation):
		writeError(w, r, validation.Error(), "VALIDATION_ERROR", http.StatusBadRequest)
	case errors.As(err, &fieldErrs):
		writeError(w, r, describeFieldErrors(fieldErrs), "VALIDATION_ERROR", http.StatusBadRequest)
	case errors.As(err, &duplicate):
		writeError(w, r, duplicate.Error(), "DUPLICATE_EMAIL", http.StatusConflict)
	case errors.As(err, &hasSales):
		writeError(w, r, hasSales.Error(), "CUSTOMER_HAS_SALES", http.StatusConflict)
	case errors.As(err, &notFound):
		writeError(w, r, notFound.Error(), "NOT_FOUND", http.StatusNotFound)
	case errors.Is(err, core.ErrMigrationTarget):
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
	case errors.Is(err, core.ErrMigrationLocked):
		writeError(w, r, err.Error(), "CONFLICT", http.StatusConflict)
	default:
		h.logger.Error("request failed",
			zap.String("request_id", requestIDFromContext(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeError(w, r, "internal server error", "INTERNAL_ERROR", http.StatusInternalServerError)
	}
}

func describeFieldErrors(errs validator.ValidationErrors) string {
	fe := errs[0]
	switch fe.Tag() {
	case "required":
		return "invalid " + fe.Field() + ": is required"
	case "email":
		return "invalid " + fe.Field() + ": malformed email address"
	case "oneof":
		return "invalid " + fe.Field() + ": must be one of " + fe.Param()
	case "min", "max", "gt":
		return "invalid " + fe.Field() + ": out of range (" + fe.Tag() + "=" + fe.Param() + ")"
	case "datetime":
		return "invalid " + fe.Field() + ": must match " + fe.Param()
	}
	return "invalid " + fe.Field()
}
