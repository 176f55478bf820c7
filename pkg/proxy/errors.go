package proxy

import (
	"context"
	"errors"
	"net/http"

	"hypedigitaly/claude-relay/pkg/proxy/types"
	"hypedigitaly/claude-relay/pkg/upstream"
)

// HandleError maps an error raised before the stream is committed to an HTTP
// status and JSON body. Upstream failures become 5xx; the upstream status is
// never passed through, so a rejected credential surfaces as 502 rather than
// looking like the client's own authentication failed.
func HandleError(err error) (int, *types.ErrorResponse) {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Status(), types.NewInvalidRequestError(reqErr.Error())
	}

	var timeoutErr *upstream.TimeoutError
	if errors.As(err, &timeoutErr) {
		return http.StatusGatewayTimeout, types.NewGatewayTimeoutError(timeoutErr.Error())
	}

	var statusErr *upstream.StatusError
	if errors.As(err, &statusErr) {
		return http.StatusBadGateway, types.NewBadGatewayError(statusErr.Error())
	}

	var connErr *upstream.ConnectionError
	if errors.As(err, &connErr) {
		return http.StatusBadGateway, types.NewBadGatewayError(connErr.Error())
	}

	var streamErr *upstream.StreamError
	if errors.As(err, &streamErr) {
		return http.StatusBadGateway, types.NewBadGatewayError(streamErr.Error())
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout, types.NewGatewayTimeoutError(err.Error())
	}

	return http.StatusInternalServerError, types.NewServerError()
}

// UpstreamErrorKind returns a low-cardinality label for an upstream failure.
func UpstreamErrorKind(err error) string {
	var statusErr *upstream.StatusError
	var timeoutErr *upstream.TimeoutError
	var connErr *upstream.ConnectionError
	var streamErr *upstream.StreamError

	switch {
	case errors.As(err, &statusErr):
		switch {
		case statusErr.IsAuth():
			return "auth"
		case statusErr.IsRateLimit():
			return "rate_limit"
		case statusErr.StatusCode >= 500:
			return "server"
		}
		return "client"
	case errors.As(err, &timeoutErr):
		return "timeout_" + timeoutErr.Phase
	case errors.As(err, &connErr):
		return "connection"
	case errors.As(err, &streamErr):
		return "stream"
	}
	return "other"
}
