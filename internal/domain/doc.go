// Package domain defines the core data models shared across the module:
// fixed-size key types, pre-key material, the wire format for pre-key
// bundles and ratchet messages, and the local identity store.
//
// All byte-valued wire fields marshal to URL-safe unpadded base64 so the
// JSON documents stay compatible across independent implementations.
package domain
