// Package payload maps form state onto ledger payloads. A declarative table
// of property mappings drives a single loop; one rule decides whether an
// optional value is present (non-empty string, non-zero number), and the
// table order is the order properties appear in the record.
package payload
