package apierror

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// Status code the backend uses for CSRF token expiry. Outside the IANA
// registry but fixed by the API contract.
const statusCSRFExpired = 419

// errorBody mirrors the backend error payload shape.
type errorBody struct {
	Message    string              `json:"message"`
	Errors     map[string][]string `json:"errors"`
	RetryAfter int64               `json:"retryAfter"`
}

// Classify maps an HTTP failure response onto the closed taxonomy. It is
// deterministic, never panics, and always produces a value: unrecognized
// statuses and undecodable bodies degrade to KindUnknown or an empty detail
// set, never to an error.
func Classify(status int, header http.Header, body []byte) *Error {
	parsed := decodeErrorBody(body)

	message := parsed.Message
	if message == "" {
		message = statusText(status)
	}

	switch status {
	case http.StatusUnprocessableEntity:
		return &Error{Kind: KindValidation, Status: status, Message: message, FieldErrors: parsed.Errors}
	case http.StatusUnauthorized:
		return &Error{Kind: KindSessionExpired, Status: status, Message: message}
	case statusCSRFExpired:
		return &Error{Kind: KindCsrfExpired, Status: status, Message: message}
	case http.StatusConflict:
		return &Error{Kind: KindConcurrencyConflict, Status: status, Message: message}
	case http.StatusTooManyRequests:
		return &Error{Kind: KindRateLimited, Status: status, Message: message, RetryAfter: retryAfter(header, parsed)}
	case http.StatusNotFound:
		return &Error{Kind: KindNotFound, Status: status, Message: message}
	default:
		return &Error{Kind: KindUnknown, Status: status, Message: message}
	}
}

// ClassifyTransport maps a network-level failure (dial error, timeout, body
// read error) onto the taxonomy. Transport failures are always KindUnknown
// with status 500 and are never retried by the client core.
func ClassifyTransport(err error) *Error {
	message := "request failed"
	if err != nil {
		message = err.Error()
	}

	return &Error{Kind: KindUnknown, Status: http.StatusInternalServerError, Message: message}
}

// decodeErrorBody tolerates empty and malformed payloads.
func decodeErrorBody(body []byte) errorBody {
	var parsed errorBody

	if len(body) == 0 {
		return parsed
	}

	_ = json.Unmarshal(body, &parsed)

	return parsed
}

// retryAfter extracts the rate-limit wait from the Retry-After header,
// falling back to the body hint. Supports delta-seconds and HTTP dates.
func retryAfter(header http.Header, parsed errorBody) time.Duration {
	raw := strings.TrimSpace(header.Get("Retry-After"))
	if raw != "" {
		if secs, err := strconv.Atoi(raw); err == nil && secs >= 0 {
			return time.Duration(secs) * time.Second
		}

		if at, err := http.ParseTime(raw); err == nil {
			if wait := time.Until(at); wait > 0 {
				return wait
			}

			return 0
		}
	}

	if parsed.RetryAfter > 0 {
		return time.Duration(parsed.RetryAfter) * time.Second
	}

	return 0
}
