package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "hospital-ops/internal/common/errors"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError renders err as a StandardError with the matching status.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	stdErr := apperrors.Normalize(err)
	status := apperrors.HTTPStatus(stdErr)

	fields := map[string]interface{}{
		"path":   r.URL.Path,
		"method": r.Method,
		"code":   stdErr.Code,
	}
	if status >= http.StatusInternalServerError {
		fields["error"] = err
		h.logger.Error("request failed", fields)
	} else {
		h.logger.Debug("request rejected", fields)
	}

	writeJSON(w, status, map[string]interface{}{"error": stdErr})
}

// decode validates the body against a registry template, then unmarshals
// it into dst.
func (h *Handler) decode(r *http.Request, templateID string, dst interface{}) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return apperrors.NewValidationError("unreadable request body", nil)
	}

	result, err := h.validator.ValidateInput(templateID, body)
	if err != nil {
		return apperrors.NewValidationError(fmt.Sprintf("invalid JSON: %v", err), nil)
	}
	if !result.Valid {
		return apperrors.NewValidationError("request does not match "+templateID, result.GetErrorMessages())
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return apperrors.NewValidationError(fmt.Sprintf("invalid JSON: %v", err), nil)
	}
	return nil
}
