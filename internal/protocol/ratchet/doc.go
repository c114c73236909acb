// Package ratchet implements the Double Ratchet session: an X3DH
// handshake followed by a DH ratchet (per new key pair observed) and a
// per-message symmetric ratchet, giving forward secrecy and break-in
// recovery for a two-party conversation.
//
// A Session is single-writer: at most one Encrypt or Decrypt may be in
// flight at a time. Sessions for different peers are independent.
// Decrypt stages every state mutation on a copy and commits only after
// the AEAD tag verifies, so a failed call never leaves the ratchet
// partially advanced.
package ratchet
