// Package orchestrator wires configuration into the agent directory, ledger
// submitter, payload builder, renderers and HTTP server, providing a single
// entry point for the CLI and for embedding applications.
package orchestrator
