package netx

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// maxErrorBody bounds how much of a failed response body is kept in errors.
const maxErrorBody = 512

// StatusError is returned for non-2xx HTTP responses.
type StatusError struct {
	StatusCode int
	Status     string
	Body       string
	Header     http.Header
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return "http error: " + e.Status
	}
	return fmt.Sprintf("http error: %s; body: %s", e.Status, e.Body)
}

// DecodeJSON closes resp.Body, turns non-2xx responses into *StatusError
// and otherwise decodes the body into v (skipped when v is nil).
func DecodeJSON(resp *http.Response, v any) error {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{StatusCode: resp.StatusCode, Status: resp.Status, Body: string(b), Header: resp.Header}
	}
	if v == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
