package identity

import "errors"

var (
	// ErrNoIdentity is returned when an operation needs an identity and
	// none has been generated or imported.
	ErrNoIdentity = errors.New("identity: no identity present")

	// ErrBackupVersionMismatch is returned by Import for a backup with
	// an unknown version tag. Permanent; retrying cannot help.
	ErrBackupVersionMismatch = errors.New("identity: unsupported backup version")

	// ErrBackupAuthenticationFailure is returned when a backup fails to
	// decrypt. Deliberately generic: wrong password and corruption are
	// indistinguishable.
	ErrBackupAuthenticationFailure = errors.New("identity: wrong password or corrupted backup")
)
