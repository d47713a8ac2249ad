package event

import "errors"

var (
	// ErrBufferFull is returned when the channel buffer is full.
	ErrBufferFull = errors.New("event buffer is full")

	// ErrTransportClosed is returned when dispatching to a closed transport.
	ErrTransportClosed = errors.New("event transport is closed")

	// ErrProcessorAlreadyStarted is returned when attempting to start a processor that is already running.
	ErrProcessorAlreadyStarted = errors.New("processor already started")

	// ErrProcessorNotStarted is returned when attempting to stop a processor that is not running.
	ErrProcessorNotStarted = errors.New("processor not started")

	ErrUnexpectedPayload = errors.New("unexpected payload type")
	ErrHandlerPanic      = errors.New("event handler panicked")
)
