package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "inkwell/pkg/domain-errors"
)

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; an encoding failure cannot change the status.
	_ = json.NewEncoder(w).Encode(response)
}

// WriteError translates a domain error into an HTTP response.
// Internal and store errors never expose their message to the client.
func WriteError(w http.ResponseWriter, err error) {
	var domainErr *dErrors.Error
	if !errors.As(err, &domainErr) {
		WriteJSON(w, http.StatusInternalServerError, ErrorResponse{Error: DomainCodeToHTTPCode(dErrors.CodeInternal)})
		return
	}

	resp := ErrorResponse{Error: DomainCodeToHTTPCode(domainErr.Code)}
	switch domainErr.Code {
	case dErrors.CodeInternal, dErrors.CodeStoreUnavailable, dErrors.CodeTimeout:
	case dErrors.CodeInvalidToken, dErrors.CodeExpiredToken, dErrors.CodeWrongCredentialKind, dErrors.CodeSubjectNotFound:
		resp.ErrorDescription = "Invalid or expired credentials"
	default:
		resp.ErrorDescription = domainErr.Message
	}
	WriteJSON(w, DomainCodeToHTTPStatus(domainErr.Code), resp)
}

// DomainCodeToHTTPStatus translates domain error codes to HTTP status codes.
func DomainCodeToHTTPStatus(code dErrors.Code) int {
	switch code {
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeBadRequest, dErrors.CodeValidation, dErrors.CodeMaliciousInputDetected:
		return http.StatusBadRequest
	case dErrors.CodeConflict:
		return http.StatusConflict
	case dErrors.CodeUnauthorized, dErrors.CodeInvalidToken, dErrors.CodeExpiredToken,
		dErrors.CodeWrongCredentialKind, dErrors.CodeSubjectNotFound:
		return http.StatusUnauthorized
	case dErrors.CodeForbidden, dErrors.CodeBlocked:
		return http.StatusForbidden
	case dErrors.CodeRateLimitExceeded:
		return http.StatusTooManyRequests
	case dErrors.CodeStoreUnavailable:
		return http.StatusServiceUnavailable
	case dErrors.CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// DomainCodeToHTTPCode translates domain error codes to the "error" field of the JSON body.
// Credential failures collapse to one code so clients cannot tell them apart.
func DomainCodeToHTTPCode(code dErrors.Code) string {
	switch code {
	case dErrors.CodeNotFound:
		return "not_found"
	case dErrors.CodeBadRequest, dErrors.CodeMaliciousInputDetected:
		return "bad_request"
	case dErrors.CodeValidation:
		return "validation_error"
	case dErrors.CodeConflict:
		return "conflict"
	case dErrors.CodeUnauthorized, dErrors.CodeInvalidToken, dErrors.CodeExpiredToken,
		dErrors.CodeWrongCredentialKind, dErrors.CodeSubjectNotFound:
		return "unauthorized"
	case dErrors.CodeForbidden, dErrors.CodeBlocked:
		return "forbidden"
	case dErrors.CodeRateLimitExceeded:
		return "rate_limit_exceeded"
	case dErrors.CodeStoreUnavailable:
		return "service_unavailable"
	case dErrors.CodeTimeout:
		return "timeout"
	default:
		return "internal_error"
	}
}
