package errors

import (
	"encoding/json"
	"net/http"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// WriteError serializa err como {"error": code, "message", "detail"}.
func WriteError(w http.ResponseWriter, err error) {
	appErr := FromError(err)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(appErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Error:   appErr.Code,
		Message: appErr.Message,
		Detail:  appErr.Detail,
	})
}
