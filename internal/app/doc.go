// Package app wires application dependencies for the CLI.
//
// It builds the identity manager and the file-backed stores from
// Config, exposing them via the Wire struct for commands to use. All
// components are constructor-injected; there are no package-level
// singletons.
package app
