// Package server exposes the asset form over HTTP: the HTML form flow at
// /assets, a JSON endpoint at /api/assets, reporter autocomplete at
// /api/agents, plus health, metrics and static assets.
package server
