// Package render defines the renderer contract shared by the HTML and terminal
// front ends of the asset form, plus helpers for hidden fields and for mapping
// ledger error payloads onto form fields.
package render
