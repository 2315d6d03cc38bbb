// Package config loads the asset form server and CLI settings from JSON or
// YAML files, applies defaults, and lets environment variables override the
// ledger connection.
package config
