// Package agents provides read-only access to the ledger's agent directory:
// the Directory contract, exact-match resolution of reporter input, an HTTP
// client for the REST ledger API, a TTL cache in front of any Directory, and a
// small net/http handler returning search options for reporter inputs.
//
// The search handler responds to GET and HEAD requests and supports query and
// limit parameters. The current user's own key is never offered.
package agents
