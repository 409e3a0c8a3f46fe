// Package api provides the HTTP handlers for the review scheduling API:
// card lifecycle endpoints, the due-card listing, and the session flow.
// Handlers translate between JSON requests and the review service, map
// internal errors to safe HTTP responses, and never leak raw error text
// to clients.
package api
