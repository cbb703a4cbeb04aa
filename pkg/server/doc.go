// Package server exposes the template store and the generation pipeline as a
// JSON HTTP API. Requests are validated against the embedded OpenAPI document
// before they reach the handlers.
package server
