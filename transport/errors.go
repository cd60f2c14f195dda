package transport

import (
	"encoding/json"
	"errors"
	"fmt"
)

// maxErrorBody caps how much of a failed response is kept.
const maxErrorBody = 1 << 20

var ErrNoFiles = errors.New("no files to upload")

// ResponseError is returned for any non-2xx response.
type ResponseError struct {
	StatusCode int
	Status     string
	Body       []byte
}

func (e *ResponseError) Error() string {
	if msg := e.Message(); msg != "" {
		return fmt.Sprintf("upload rejected: %s: %s", e.Status, msg)
	}
	return fmt.Sprintf("upload rejected: %s", e.Status)
}

// Message returns the "message" string of a JSON error body, or "".
func (e *ResponseError) Message() string {
	if e == nil || len(e.Body) == 0 {
		return ""
	}

	var body map[string]any
	if err := json.Unmarshal(e.Body, &body); err != nil {
		return ""
	}

	msg, _ := body["message"].(string)
	return msg
}

// MessageOf extracts the server-provided message from err, falling back
// when err carries no response or the response has no usable message.
func MessageOf(err error, fallback string) string {
	var re *ResponseError
	if errors.As(err, &re) {
		if msg := re.Message(); msg != "" {
			return msg
		}
	}
	return fallback
}
