package receiver

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ErrorResponse is the error body the upload widget reads its message from.
type ErrorResponse struct {
	Message string `json:"message"`
}

type Receipt struct {
	Files []StoredFile `json:"files"`
}

func WriteHttpError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(ErrorResponse{
		Message: message,
	})

	if err != nil {
		http.Error(w, fmt.Errorf("Error: %q; additionally, an error was encountered while writing error response: %w", message, err).Error(), http.StatusInternalServerError)
	}
}

func WriteCreated(w http.ResponseWriter, receipt Receipt) {
	if len(receipt.Files) > 0 {
		w.Header().Set("Location", receipt.Files[0].Location)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(receipt); err != nil {
		http.Error(w, fmt.Sprintf("Failed to write standard HTTP response: %v", err), http.StatusInternalServerError)
	}
}
