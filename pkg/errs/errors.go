package errs

import (
	"errors"
	"net/http"
)

const (
	ErrStatusInternalServer = http.StatusInternalServerError
	ErrStatusClient         = http.StatusBadRequest
	ErrStatusNotLoggedIn    = http.StatusUnauthorized
	ErrStatusNotFound       = http.StatusNotFound
	ErrStatusConflict       = http.StatusConflict
)

var (
	ErrInternalServer      = errors.New("Internal server error")
	ErrClient              = errors.New("Bad request")
	ErrNotLoggedIn         = errors.New("Unauthorized access")
	ErrNotFound            = errors.New("Resource not found")
	ErrConflict            = errors.New("Conflicting record found")
	ErrSignatureMismatch   = errors.New("Notification signature does not match")
	ErrMalformedPayload    = errors.New("Notification payload is malformed")
	ErrTransactionNotFound = errors.New("Transaction not found")
	ErrGatewayUnavailable  = errors.New("Payment gateway is unavailable")
)

var errorMap = map[error]int{
	ErrInternalServer:      ErrStatusInternalServer,
	ErrClient:              ErrStatusClient,
	ErrNotLoggedIn:         ErrStatusNotLoggedIn,
	ErrNotFound:            ErrStatusNotFound,
	ErrConflict:            ErrStatusConflict,
	ErrSignatureMismatch:   ErrStatusClient,
	ErrMalformedPayload:    ErrStatusClient,
	ErrTransactionNotFound: ErrStatusNotFound,
	ErrGatewayUnavailable:  ErrStatusInternalServer,
}

func GetErrorStatusCode(err error) int {
	errStatusCode, ok := errorMap[err]
	if !ok {
		errStatusCode = errorMap[ErrInternalServer]
	}
	return errStatusCode
}
