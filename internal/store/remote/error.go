package remote

import (
	"errors"
	"fmt"
	"net/http"

	"foodzz/internal/auth"
)

var ErrNotLoggedIn = errors.New("admin login required")

// APIError is a non-2xx reply from the backend.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("api: %d %s", e.StatusCode, e.Message)
}

// statusErrors maps reply codes to the sentinel a caller checks with
// errors.Is. The APIError stays in the chain.
type statusErrors map[int]error

func (m statusErrors) wrap(err error) error {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	if sentinel, ok := m[apiErr.StatusCode]; ok {
		return fmt.Errorf("%w: %w", sentinel, apiErr)
	}
	if apiErr.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%w: %w", auth.ErrInvalidToken, apiErr)
	}
	return err
}
