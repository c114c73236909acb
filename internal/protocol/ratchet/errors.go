package ratchet

import "errors"

var (
	// ErrNotInitialized is returned when an operation runs before the
	// handshake has completed. Fatal to the call, not to the session.
	ErrNotInitialized = errors.New("ratchet: session not initialized")

	// ErrAuthenticationFailure is returned on an AEAD tag mismatch.
	// Retrying never succeeds; the message should be discarded.
	ErrAuthenticationFailure = errors.New("ratchet: message authentication failed")

	// ErrTooManySkippedMessages is returned when a header implies a gap
	// larger than MaxSkip chain steps.
	ErrTooManySkippedMessages = errors.New("ratchet: too many skipped messages")

	// ErrUnsupportedExportVersion is returned by Import for a session
	// export with an unknown version tag.
	ErrUnsupportedExportVersion = errors.New("ratchet: unsupported session export version")

	errChainUninitialized = errors.New("ratchet: chain key uninitialized")
)
