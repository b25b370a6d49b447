// Package kit holds the transport-neutral plumbing shared by the HTTP API
// and the MCP tools: the Endpoint abstraction, middleware chaining, and
// request-scoped context keys. A handler written once as an Endpoint is
// served unchanged over both transports.
package kit

import "context"

// Endpoint is one operation: typed request in, typed response out.
// Transports adapt their wire format to this signature.
type Endpoint func(ctx context.Context, req any) (any, error)

// Middleware wraps an Endpoint with cross-cutting behaviour.
type Middleware func(Endpoint) Endpoint

// Chain composes middlewares outermost-first: Chain(a, b, c)(e) runs
// a → b → c → e.
func Chain(mws ...Middleware) Middleware {
	return func(e Endpoint) Endpoint {
		for i := len(mws) - 1; i >= 0; i-- {
			e = mws[i](e)
		}
		return e
	}
}
