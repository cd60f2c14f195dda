package receiver

import (
	"fmt"
	"mime"
	"net/http"
)

// RequireMultipart writes a 415 and returns false unless the request is
// multipart/form-data.
func RequireMultipart(w http.ResponseWriter, r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		WriteHttpError(
			w,
			http.StatusUnsupportedMediaType,
			"Content-Type must be specified",
		)

		return false
	}

	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		WriteHttpError(
			w,
			http.StatusUnsupportedMediaType,
			fmt.Errorf("Invalid Content-Type: %w", err).Error(),
		)

		return false
	}

	if mediaType != "multipart/form-data" {
		WriteHttpError(
			w,
			http.StatusUnsupportedMediaType,
			"Invalid Content-Type: only multipart/form-data allowed",
		)

		return false
	}

	return true
}
