// Package retry retries idempotent HTTP requests used to fetch images and to
// report results back to the controller.
package retry

import (
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"syscall"

	"golang.org/x/xerrors"
)

type condition uint8

const (
	on5xx condition = 1 << iota
	onGatewayError
	onConnectFailure
	onRetriable4xx
)

// On decides which responses and transport errors are worth another attempt.
// The vocabulary follows envoy's x-envoy-retry-on header.
type On struct {
	conditions  condition
	statusCodes map[int]struct{}
}

func NewDefaultRetryOn() *On {
	return &On{
		conditions: onGatewayError | onConnectFailure | onRetriable4xx,
	}
}

// NewRetryOnFromString parses a comma separated list such as
// "5xx,connect-failure,429".
func NewRetryOnFromString(s string) (*On, error) {
	o := &On{}
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		switch field {
		case "":
		case "5xx":
			o.conditions |= on5xx
		case "gateway-error":
			o.conditions |= onGatewayError
		case "connect-failure":
			o.conditions |= onConnectFailure
		case "retriable-4xx":
			o.conditions |= onRetriable4xx
		default:
			code, err := strconv.Atoi(field)
			if err != nil || code < 100 || code > 599 {
				return nil, xerrors.Errorf("invalid retry condition %q", field)
			}
			if o.statusCodes == nil {
				o.statusCodes = make(map[int]struct{})
			}
			o.statusCodes[code] = struct{}{}
		}
	}
	return o, nil
}

func (o *On) has(c condition) bool {
	return o.conditions&c != 0
}

func (o *On) CheckResponse(response *http.Response) bool {
	code := response.StatusCode
	switch {
	case o.has(on5xx) && code >= 500 && code <= 599:
		return true
	case o.has(onGatewayError) && (code == http.StatusBadGateway || code == http.StatusServiceUnavailable || code == http.StatusGatewayTimeout):
		return true
	case o.has(onRetriable4xx) && code == http.StatusConflict:
		return true
	}
	_, ok := o.statusCodes[code]
	return ok
}

// CheckError reports whether err looks like the upstream never answered:
// refused or reset connections, timeouts and truncated responses.
func (o *On) CheckError(err error) bool {
	if !o.has(onConnectFailure) && !o.has(on5xx) {
		return false
	}
	var netErr net.Error
	switch {
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return true
	case errors.Is(err, syscall.ECONNREFUSED), errors.Is(err, syscall.ECONNRESET):
		return true
	case errors.As(err, &netErr) && netErr.Timeout():
		return true
	}
	type temporary interface{ Temporary() bool }
	var terr temporary
	return errors.As(err, &terr) && terr.Temporary()
}
