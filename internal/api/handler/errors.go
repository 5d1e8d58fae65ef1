package handler

import (
	"encoding/json"
	"net/http"

	"github.com/mcoot/partygame/internal/api/apierr"
)

// maxBodyBytes bounds request bodies; challenge pools with settings payloads are the largest
const maxBodyBytes = 1 << 20

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return apierr.NewInvalidRequestError(message)
}

func missingField(name string) error {
	return apierr.NewInvalidRequestError(name + " is required")
}

// decodeJSON reads a JSON request body into dst
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return NewInvalidRequestError("Invalid request body")
	}
	return nil
}
