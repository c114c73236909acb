// Package identity implements the Identity & PreKey Manager: the local
// party's long-term trust anchor and handshake material.
//
// The manager owns an X25519 identity pair, a separate Ed25519 signing
// pair used only to sign pre-keys, a rotating signed pre-key, a pool of
// single-use one-time pre-keys and a registration id. It issues pre-key
// bundles, verifies bundles received from peers, computes fingerprints
// and safety numbers, and exports/imports passworded backups.
//
// All state is guarded by an internal mutex so bundle issuance and
// one-time pre-key consumption cannot race.
package identity
