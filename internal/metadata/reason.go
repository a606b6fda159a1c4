package metadata

import (
	"context"
	"errors"
	"net"

	"github.com/sony/gobreaker/v2"

	"cinemind/internal/services"
	"cinemind/internal/services/omdb"
)

// Reason classifies why a lookup fell back to placeholders.
type Reason string

const (
	ReasonTimeout      Reason = "timeout"
	ReasonNetwork      Reason = "network"
	ReasonHTTPStatus   Reason = "http_status"
	ReasonDecode       Reason = "decode"
	ReasonNotFound     Reason = "not_found"
	ReasonBreakerOpen  Reason = "breaker_open"
	ReasonRateLimited  Reason = "rate_limited"
	ReasonCanceled     Reason = "canceled"
	ReasonDisabled     Reason = "disabled"
	ReasonInvalidTitle Reason = "invalid_title"
)

var errRateLimited = errors.New("metadata rate limit exceeded")

// Classify maps a lookup error to its fallback reason.
func Classify(err error) Reason {
	var statusErr *omdb.StatusError
	var netErr net.Error
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return ReasonBreakerOpen
	case errors.Is(err, errRateLimited):
		return ReasonRateLimited
	case errors.Is(err, services.ErrValidation):
		return ReasonInvalidTitle
	case errors.Is(err, services.ErrNotFound):
		return ReasonNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return ReasonTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		return ReasonTimeout
	case errors.Is(err, context.Canceled):
		return ReasonCanceled
	case errors.As(err, &statusErr):
		return ReasonHTTPStatus
	case errors.Is(err, omdb.ErrDecode):
		return ReasonDecode
	default:
		return ReasonNetwork
	}
}

func (r Reason) hint() string {
	switch r {
	case ReasonTimeout, ReasonNetwork:
		return "check network connectivity to the OMDb API"
	case ReasonHTTPStatus:
		return "verify omdb.api_key and the OMDb service status"
	case ReasonDecode:
		return "check omdb.base_url points at the OMDb API"
	case ReasonNotFound:
		return "the catalog title has no exact OMDb match"
	case ReasonBreakerOpen:
		return "OMDb failed repeatedly; lookups resume after the breaker cooldown"
	case ReasonRateLimited:
		return "raise omdb.requests_per_second or omdb.burst"
	case ReasonDisabled:
		return "set omdb.api_key or OMDB_API_KEY"
	default:
		return "check logs for details"
	}
}

// countsAsFailure reports whether the breaker should count err. Misses and
// bad input say nothing about OMDb health.
func countsAsFailure(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, services.ErrNotFound) && !errors.Is(err, services.ErrValidation)
}
