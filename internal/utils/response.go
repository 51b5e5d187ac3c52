package utils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"ms-restaurant/internal/apperr"
)

// WriteJSON encodes data with the given status.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// OK writes {ok:true} merged with fields.
func OK(w http.ResponseWriter, fields map[string]any) {
	body := map[string]any{"ok": true}
	for k, v := range fields {
		body[k] = v
	}
	WriteJSON(w, http.StatusOK, body)
}

// WriteError renders err through the apperr taxonomy.
func WriteError(w http.ResponseWriter, err error) {
	WriteJSON(w, apperr.StatusOf(err), apperr.Body(err))
}

// Fail writes {ok:false} with status.
func Fail(w http.ResponseWriter, status int) {
	WriteJSON(w, status, map[string]any{"ok": false})
}

// DecodeJSON reads a JSON object body. An empty body decodes to the zero value.
func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return apperr.BadRequest("Invalid JSON body.").Wrap(err)
	}
	return nil
}
