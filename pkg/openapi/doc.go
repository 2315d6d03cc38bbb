// Package openapi embeds the asset form's HTTP API description and validates
// JSON request bodies against it with kin-openapi.
package openapi
