package connection

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxErrorBody bounds how much of an error body is read.
const maxErrorBody = 64 << 10

// ErrEmptyBody is returned when a 2xx response has no body to decode.
var ErrEmptyBody = errors.New("empty response body")

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *StatusError) Error() string {
	switch {
	case e.Code != "" && e.Message != "":
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	case e.Message != "":
		return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, e.Message)
	default:
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
}

// IsNotFound reports whether err is a 404 StatusError.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}

// newStatusError reads an error body. Both {code, message} and the
// FastAPI {detail} shapes are understood.
func newStatusError(resp *http.Response) *StatusError {
	se := &StatusError{StatusCode: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(data) == 0 {
		return se
	}

	var body struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Detail  json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return se
	}

	se.Code = body.Code
	se.Message = body.Message
	if se.Message == "" && len(body.Detail) > 0 {
		se.Message = parseDetail(body.Detail)
	}
	return se
}

// parseDetail handles a plain string detail and the validation error list.
func parseDetail(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var items []struct {
		Loc []any  `json:"loc"`
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return strings.TrimSpace(string(raw))
	}

	msgs := make([]string, 0, len(items))
	for _, it := range items {
		if len(it.Loc) > 0 {
			msgs = append(msgs, fmt.Sprintf("%v: %s", it.Loc[len(it.Loc)-1], it.Msg))
		} else {
			msgs = append(msgs, it.Msg)
		}
	}
	return strings.Join(msgs, "; ")
}
