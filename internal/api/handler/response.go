package handler

import (
	"encoding/json"
	"net/http"
)

// JSON writes v as a JSON body with the given status. The body is
// marshaled before any header is written so an encoding failure cannot
// leave a half-written success response on the wire.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")

	if v == nil {
		w.WriteHeader(status)
		return
	}

	body, err := json.Marshal(v)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"encoding_failed"}`))
		return
	}

	w.WriteHeader(status)
	w.Write(body)
}

// ErrorResponse is the payload for every non-2xx response: a stable
// machine-readable code plus a human-readable detail.
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

func Error(w http.ResponseWriter, status int, code, detail string) {
	JSON(w, status, ErrorResponse{
		Error:  code,
		Detail: detail,
	})
}
