package utils

import (
	"errors"
	"io"
	"net/http"

	"github.com/goccy/go-json"
)

// Envelope is the response body shape: success, optional message, payload keys at the top level.
type Envelope map[string]interface{}

func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// WriteSuccess writes {success: true, message?, ...payload}.
func WriteSuccess(w http.ResponseWriter, status int, message string, payload Envelope) {
	body := Envelope{"success": true}
	if message != "" {
		body["message"] = message
	}
	for k, v := range payload {
		body[k] = v
	}
	WriteJSON(w, status, body)
}

// WriteError writes {success: false, message}.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteErrorWith(w, status, message, nil)
}

// WriteErrorWith writes a failure envelope with extra payload keys.
func WriteErrorWith(w http.ResponseWriter, status int, message string, payload Envelope) {
	body := Envelope{"success": false, "message": message}
	for k, v := range payload {
		body[k] = v
	}
	WriteJSON(w, status, body)
}

// DecodeJSON reads a JSON body into dst. An empty body leaves dst untouched.
func DecodeJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
