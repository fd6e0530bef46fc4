package model

import (
	"errors"
	"fmt"

	"github.com/sikdanlog/sikdan-go/internal/constant"
)

type ValidationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Param   string `json:"param"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

// TransportError is any failure that happened at or beyond the network
// boundary. Transient failures (unreachable, timeout) are eligible for the
// upload retry budget; server rejections never are.
type TransportError struct {
	Code      string
	Message   string
	Transient bool
	Err       error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func NewTransientError(message string, err error) *TransportError {
	return &TransportError{
		Code:      constant.ERR_TRANSIENT_CODE,
		Message:   message,
		Transient: true,
		Err:       err,
	}
}

func NewServerRejectedError(message string) *TransportError {
	if message == "" {
		message = constant.ERR_SERVER_REJECTED_MESSAGE
	}
	return &TransportError{
		Code:    constant.ERR_SERVER_REJECTED_CODE,
		Message: message,
	}
}

func IsTransient(err error) bool {
	var te *TransportError
	if errors.As(err, &te) {
		return te.Transient
	}
	return false
}

func IsUnauthenticated(err error) bool {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Code == constant.ERR_UNAUTHENTICATED_CODE
	}
	return false
}

func IsValidation(err error) bool {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Code == constant.ERR_VALIDATION_CODE
	}
	return false
}
