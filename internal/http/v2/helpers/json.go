package helpers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	httperrors "github.com/nitheshb/caco-Marketing-tool-sub001/internal/http/v2/errors"
)

// MaxBodyBytes limita los bodies JSON de la API.
const MaxBodyBytes = 1 << 20

// ReadJSON decodifica JSON de forma tolerante (no falla por campos desconocidos).
// Valida Content-Type y limita el body a MaxBodyBytes.
// Devuelve false si ya escribió error HTTP.
func ReadJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := strings.ToLower(r.Header.Get("Content-Type"))
	if !strings.Contains(ct, "application/json") {
		httperrors.WriteError(w, httperrors.ErrInvalidJSON.WithDetail("Content-Type must be application/json"))
		return false
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httperrors.WriteError(w, httperrors.ErrBodyTooLarge)
			return false
		}
		httperrors.WriteError(w, httperrors.ErrInvalidJSON)
		return false
	}
	return true
}

// WriteJSON escribe una respuesta JSON estándar.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
