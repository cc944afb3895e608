package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/opmeter/opmeter/internal/handler/dto"
)

// writeError writes an error response in the API's flat envelope,
// matching the shape handlers produce.
func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error: message,
		Code:  code,
	}); err != nil {
		// Headers are already sent; nothing useful left to do.
		_ = err
	}
}
