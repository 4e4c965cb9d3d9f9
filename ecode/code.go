package ecode

import "net/http"

// Business codes. Zero is success, negatives mirror the closest HTTP status.
const (
	OK               = 0
	NoLogin          = -101
	RequestErr       = -400
	AccessDenied     = -403
	NothingFound     = -404
	MethodNotAllowed = -405
	Conflict         = -409
	ServerErr        = -500
	BadGateway       = -502
)

var texts = map[int]string{
	OK:               "ok",
	NoLogin:          "Account not logged in",
	RequestErr:       "Invalid request",
	AccessDenied:     "Access denied",
	NothingFound:     "Not found",
	MethodNotAllowed: "Method not allowed",
	Conflict:         "Conflict",
	ServerErr:        "Internal server error",
	BadGateway:       "Upstream service failed",
}

// Text returns the default message of a code.
func Text(code int) string {
	if t, ok := texts[code]; ok {
		return t
	}
	return texts[ServerErr]
}

// HTTPStatus maps a code to its HTTP status.
func HTTPStatus(code int) int {
	switch code {
	case OK:
		return http.StatusOK
	case NoLogin:
		return http.StatusUnauthorized
	case RequestErr:
		return http.StatusBadRequest
	case AccessDenied:
		return http.StatusForbidden
	case NothingFound:
		return http.StatusNotFound
	case MethodNotAllowed:
		return http.StatusMethodNotAllowed
	case Conflict:
		return http.StatusConflict
	case BadGateway:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
