// Package store is the persistence collaborator for the crypto core. It
// keeps opaque export blobs on disk: identity backups (already
// self-encrypting) and per-peer session exports, the latter sealed in a
// passphrase-derived envelope. The core itself never touches the
// filesystem.
package store
