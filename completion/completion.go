// Package completion defines the text-completion collaborator boundary. The
// pipeline's stages build a prompt, call Complete and parse the returned
// JSON document; every transport, timeout or malformed-payload error is
// handled by the calling stage's fallback policy, never by this package.
package completion

import "context"

// Request is one prompt for the collaborator. SchemaHint is an example JSON
// document describing the expected response shape; adapters attach it to the
// system prompt so providers without a structured-output mode still return
// parseable JSON.
type Request struct {
	System     string
	User       string
	SchemaHint string
}

// SystemWithHint returns the system prompt with the schema hint attached.
func (r Request) SystemWithHint() string {
	if r.SchemaHint == "" {
		return r.System
	}
	return r.System + "\n\nRespond in JSON format:\n" + r.SchemaHint
}

// Result is a successful collaborator reply.
type Result struct {
	// JSON is the raw JSON document produced by the collaborator.
	JSON []byte
	// Units is the provider-reported usage (tokens); 0 when unknown.
	Units int
}

// Info describes a client implementation.
type Info struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

// Client is the minimal interface stages use to drive generation. Complete
// blocks until the provider replies, the context is cancelled, or the
// provider-side timeout fires.
type Client interface {
	Complete(ctx context.Context, req Request) (*Result, error)
	Info() Info
}
