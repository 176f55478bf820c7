package proxy

import (
	"encoding/json"
	"fmt"
	"net/http"

	"hypedigitaly/claude-relay/pkg/proxy/types"
)

// WriteJSONResponse writes a JSON response to the HTTP response writer.
func WriteJSONResponse(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON response: %w", err)
	}
	return nil
}

// WriteErrorResponse writes the JSON error body for err.
func WriteErrorResponse(w http.ResponseWriter, err error) error {
	status, body := HandleError(err)
	return WriteJSONResponse(w, status, body)
}

// WriteError writes an error body with an explicit status.
func WriteError(w http.ResponseWriter, statusCode int, message string) error {
	return WriteJSONResponse(w, statusCode, types.NewErrorResponse(message, ""))
}
