// Package transaction submits built payloads to the ledger as a single batch
// and routes the user to the new asset once the batch is committed.
//
// Dispatcher guards a form instance against double submission: while a batch
// is in flight further Submit calls fail with ErrSubmissionInFlight. Client is
// a Submitter for the ledger REST API and PrometheusObserver exports
// submission and directory metrics.
package transaction
