// Package commands implements the vortex CLI: identity management,
// pre-key bundle issuance, X3DH handshakes and Double Ratchet
// messaging, exchanging wire documents through files so two --home
// directories can play both sides of a conversation.
package commands
