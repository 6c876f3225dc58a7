// Package openai is a minimal client for OpenAI-compatible chat-completions
// endpoints.
//
// Each call sends one user-role message and asks for exactly one choice.
// Failures come back as *errors.Error values tagged with a kind derived from
// the HTTP status (auth, not_found, rate_limit, server_error) or from the
// transport (network) and decoding (parsing) steps. The API key is only ever
// sent as a bearer token.
package openai
