// Package httpx holds the JSON envelope shared by every handler: each response
// carries "success", failures carry a human-readable "message".
package httpx

import (
	"encoding/json"
	"log"
	"net/http"
)

// H is a response body fragment.
type H map[string]any

// OK writes 200 with success=true merged into body.
func OK(w http.ResponseWriter, body H) {
	Write(w, http.StatusOK, true, body)
}

// Fail writes 200 with success=false. Used for outcomes that are not errors
// on the wire, such as a duplicate save.
func Fail(w http.ResponseWriter, msg string) {
	Write(w, http.StatusOK, false, H{"message": msg})
}

// Error writes code with success=false and msg.
func Error(w http.ResponseWriter, msg string, code int) {
	Write(w, code, false, H{"message": msg})
}

// Write encodes the envelope.
func Write(w http.ResponseWriter, code int, success bool, body H) {
	out := make(H, len(body)+1)
	for k, v := range body {
		out[k] = v
	}
	out["success"] = success

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(out); err != nil {
		log.Printf("[httpx] encode response: %v", err)
	}
}

// DecodeJSON decodes a request body into v, rejecting trailing data.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return &json.SyntaxError{Offset: dec.InputOffset()}
	}
	return nil
}
