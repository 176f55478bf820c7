// Package upstream opens streaming calls to the Anthropic Messages API.
//
// A Client makes exactly one HTTP request per Open and never retries. Each
// call gets its own connection: keep-alives are disabled so no state is
// shared between client requests. Open returns once upstream has answered
// 2xx with its headers; the returned Stream is then read by the relay.
//
// Failures are typed so callers can map them with errors.As:
//
//   - *StatusError: upstream answered non-2xx
//   - *ConnectionError: upstream could not be reached
//   - *TimeoutError: connect or response-header limit exceeded
//   - *StreamError: an established stream broke
package upstream
