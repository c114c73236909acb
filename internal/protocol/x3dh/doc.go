// Package x3dh derives the initial shared secret for a Double Ratchet
// session via Extended Triple Diffie–Hellman.
//
// The initiator combines its identity and a fresh ephemeral key with the
// responder's published identity, signed pre-key and optional one-time
// pre-key; the responder mirrors the computation with roles swapped and
// arrives at the same 32-byte secret.
package x3dh
