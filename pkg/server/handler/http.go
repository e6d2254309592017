package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

type ErrorMessage struct {
	Error string `json:"error"`
}

func HttpError(w http.ResponseWriter, message string, statusCode int, logger *zap.Logger) {
	writeJson(w, ErrorMessage{Error: message}, statusCode, logger)
}

func writeJson(w http.ResponseWriter, body interface{}, statusCode int, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Failed to encode response body", zap.Error(err))
	}
}
