package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/envboard/envboard/pkg/apperrors"
)

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// WriteErrorMessage writes a JSON error response with a custom message
func WriteErrorMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}

// WriteAppError maps an application error to its HTTP status. Kinds map to
// 400/409/403/404; anything untyped becomes a 500 with a generic message so
// storage internals never reach the client.
func WriteAppError(w http.ResponseWriter, err error) {
	switch apperrors.KindOf(err) {
	case apperrors.KindValidation:
		WriteErrorMessage(w, http.StatusBadRequest, err.Error())
	case apperrors.KindConflict:
		WriteErrorMessage(w, http.StatusConflict, err.Error())
	case apperrors.KindPermissionDenied:
		WriteErrorMessage(w, http.StatusForbidden, err.Error())
	case apperrors.KindNotFound:
		WriteErrorMessage(w, http.StatusNotFound, err.Error())
	default:
		WriteErrorMessage(w, http.StatusInternalServerError, "internal server error")
	}
}

// WriteCreated writes a successful creation response (201 Created) with JSON data
func WriteCreated(w http.ResponseWriter, data interface{}) error {
	return WriteJSON(w, http.StatusCreated, data)
}

// WriteSuccess writes a successful response (200 OK) with JSON data
func WriteSuccess(w http.ResponseWriter, data interface{}) error {
	return WriteJSON(w, http.StatusOK, data)
}

// WriteNoContent writes a successful response with no content (204 No Content)
func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// MessageResponse is the standard success payload for lifecycle actions
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// WriteMessage writes a MessageResponse with the given status
func WriteMessage(w http.ResponseWriter, status int, message string) error {
	return WriteJSON(w, status, MessageResponse{Success: status < 400, Message: message})
}
