package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
)

func (s *server) renderJSON(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	err := json.NewEncoder(w).Encode(data)
	if err != nil {
		slog.Error("serving json", "error", err)
	}
}

func (s *server) renderError(w http.ResponseWriter, code int, reqErr error) {
	data := map[string]interface{}{
		"title":  fmt.Sprintf("%d %s", code, http.StatusText(code)),
		"status": code,
	}

	if reqErr != nil {
		if code >= http.StatusInternalServerError {
			slog.Error("serving request", "error", reqErr)
		}
		data["message"] = reqErr.Error()
	}

	s.renderJSON(w, code, data)
}

// renderStoreError maps a storage error to not found or internal error.
func (s *server) renderStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrNotFound) {
		s.renderError(w, http.StatusNotFound, err)
		return
	}
	s.renderError(w, http.StatusInternalServerError, err)
}
