package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
)

func RespondJSON(w http.ResponseWriter, logger *slog.Logger, status int, payload any) {
	if payload == nil {
		w.WriteHeader(status)
		return
	}

	response, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Error encoding response to JSON", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(response)
}

func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, message string) {
	RespondJSON(w, logger, status, map[string]string{"error": message})
}

// ValidationErrors maps each failed field to the rule it failed on.
// It returns false when err is not a validator.ValidationErrors.
func ValidationErrors(err error) (map[string]string, bool) {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil, false
	}
	errorResponse := make(map[string]string, len(validationErrors))
	for _, fieldErr := range validationErrors {
		errorResponse[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
	}
	return errorResponse, true
}

// RespondValidationError writes the field errors of a failed validation as a 400 response.
func RespondValidationError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	fieldErrors, ok := ValidationErrors(err)
	if !ok {
		logger.ErrorContext(r.Context(), "Error validating request body", "error", err)
		RespondError(w, logger, http.StatusBadRequest, "Invalid request body")
		return
	}
	logger.WarnContext(r.Context(), "Validation errors occurred", "errors", fieldErrors)
	RespondJSON(w, logger, http.StatusBadRequest, map[string]any{"validation_errors": fieldErrors})
}
