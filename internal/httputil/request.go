package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// maxBodyBytes bounds JSON request bodies. Uploads go through multipart
// parsing with their own limit.
const maxBodyBytes = 1 << 20

// ParseJSON decodes JSON from the request body into the given destination.
// It limits the request body size to prevent abuse and provides clear error messages.
func ParseJSON(w http.ResponseWriter, r *http.Request, dest interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	return nil
}
