package decode

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// maxBodyBytes bounds order payloads; 50 burgers with toppings fit with
// plenty of headroom.
const maxBodyBytes = 1 << 20

// JSON decodes a single strict JSON object from the request body. Unknown
// fields are rejected so malformed requests fail deterministically instead
// of being silently accepted with fields dropped.
func JSON(r *http.Request, dest any) error {
	if r.Body == nil {
		return errors.New("empty request body")
	}

	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty request body")
		}
		return fmt.Errorf("invalid JSON: %w", err)
	}

	if dec.More() {
		return errors.New("request body must contain a single JSON object")
	}

	return nil
}
