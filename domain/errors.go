package domain

import "errors"

// Sentinel errors for the failure classes the chat surface distinguishes.
// Everything else is wrapped transport or provider detail.
var (
	// ErrMissingCredential means no API credential is configured. Fatal,
	// detected before any connection attempt.
	ErrMissingCredential = errors.New("missing API credential")

	// ErrPermissionDenied means the user declined microphone access.
	ErrPermissionDenied = errors.New("microphone permission denied")

	// ErrDeviceUnavailable means no usable audio input device exists.
	ErrDeviceUnavailable = errors.New("audio device unavailable")

	// ErrConnectionFailed means the realtime transport failed or closed
	// abnormally. The session does not retry on its own.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrInvalidToolArgument marks a tool call with out-of-range or
	// conflicting arguments. Recovered locally by returning a failure
	// result to the model.
	ErrInvalidToolArgument = errors.New("invalid tool argument")

	// ErrSessionNotOpen means a send was attempted on a session that is
	// not accepting traffic.
	ErrSessionNotOpen = errors.New("session is not open")
)
