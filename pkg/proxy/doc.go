// Package proxy contains the HTTP-facing pieces of the relay: request
// parsing, error mapping and JSON responses. Handlers live in
// proxy/handlers and middleware in proxy/middleware.
//
// Errors are split by when they happen. Anything that fails before the
// stream is committed is turned into a status code and a JSON body by
// HandleError:
//
//	*RequestError             400 (413 for oversized bodies)
//	*upstream.StatusError     502
//	*upstream.ConnectionError 502
//	*upstream.TimeoutError    504
//
// Once the stream is committed, failures are reported in-band by the relay
// and never reach HandleError.
package proxy
