package api

import (
	"encoding/json"
	"net/http"
)

// errorBody：错误响应统一结构
type errorBody struct {
	ErrorMessage string `json:"errorMessage"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorBody{ErrorMessage: msg})
}

func writeBody(w http.ResponseWriter, code int, contentType string, b []byte) {
	w.Header().Set("content-type", contentType)
	w.WriteHeader(code)
	_, _ = w.Write(b)
}
