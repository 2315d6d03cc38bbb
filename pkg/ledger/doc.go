// Package ledger defines the payloads handed to the asset ledger: record
// creation payloads carrying typed properties, and proposal payloads granting
// roles to other agents. The Encoder interface is the seam between the form
// and whatever encoding/signing stack the ledger client uses; NewEncoder
// provides the plain JSON-friendly implementation used by the HTTP submitter.
package ledger
