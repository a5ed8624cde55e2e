package shared

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// maxRequestBody caps JSON request bodies. Import payloads are the
// largest legitimate request and stay well under this.
const maxRequestBody = 4 << 20 // 4 MiB

// DecodeJSON decodes the request body into the given struct, rejecting
// bodies over the size cap.
func DecodeJSON(r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode request body: %w", err)
	}
	return nil
}
