package utils

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"print-shop-mis/models"
)

// WriteJSON writes v as a JSON body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.S().Errorf("❌ Error encoding response: %v", err)
	}
}

// WriteError writes an ErrorResponse. detail is omitted when nil.
func WriteError(w http.ResponseWriter, status int, message string, detail error) {
	body := models.ErrorResponse{Message: message}
	if detail != nil {
		body.Error = detail.Error()
	}
	WriteJSON(w, status, body)
}
