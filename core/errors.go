package core

import (
	"context"
	"errors"

	"twislave/protocol"
)

// Transaction errors. Every one of them ends the current call with the
// controller disarmed; none is fatal to the driver.
var (
	ErrBufferOverflow                  = errors.New("twi: buffer overflow")
	ErrArbitrationLost                 = errors.New("twi: arbitration lost")
	ErrNotExpectedTransactionDirection = errors.New("twi: not expected transaction direction")
	ErrNotImplemented                  = errors.New("twi: not implemented")
)

// Driver lifecycle errors.
var (
	ErrInvalidAddress = errors.New("twi: invalid slave address")
	ErrNotConfigured  = errors.New("twi: slave not configured")
	ErrReleased       = errors.New("twi: slave released")
	ErrBusy           = errors.New("twi: transaction already running")
)

// UnknownStateError reports a status code the transaction has no handling
// for, including the bus error code 0x00.
type UnknownStateError struct {
	Code protocol.Status
}

func (e *UnknownStateError) Error() string {
	return "twi: unknown state " + e.Code.String()
}

// ErrorCode maps a transaction result to its report code.
func ErrorCode(err error) protocol.Code {
	var unknown *UnknownStateError
	switch {
	case err == nil:
		return protocol.CodeOK
	case errors.Is(err, ErrBufferOverflow):
		return protocol.CodeBufferOverflow
	case errors.Is(err, ErrArbitrationLost):
		return protocol.CodeArbitrationLost
	case errors.Is(err, ErrNotExpectedTransactionDirection):
		return protocol.CodeNotExpectedTransactionDirection
	case errors.As(err, &unknown):
		return protocol.CodeUnknownState
	case errors.Is(err, ErrNotImplemented):
		return protocol.CodeNotImplemented
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return protocol.CodeCanceled
	}
	return protocol.CodeOther
}

// errorStatus returns the status code carried by err, if any.
func errorStatus(err error) protocol.Status {
	var unknown *UnknownStateError
	if errors.As(err, &unknown) {
		return unknown.Code
	}
	return 0
}
