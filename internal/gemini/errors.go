package gemini

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNoAudio indicates a successful response that carried no audio.
	ErrNoAudio = errors.New("response contained no audio")

	// ErrNoAPIKey indicates the client was built without credentials.
	ErrNoAPIKey = errors.New("no Gemini API key configured")
)

// APIError is a non-2xx reply from the service.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("gemini: %d %s", e.StatusCode, e.Status)
	}
	return fmt.Sprintf("gemini: %d %s: %s", e.StatusCode, e.Status, e.Message)
}

// Temporary reports whether retrying later may succeed.
func (e *APIError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}
