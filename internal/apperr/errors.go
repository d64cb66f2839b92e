package apperr

import "errors"

// ErrInvalidInput is returned when an input string is not an IP address,
// CIDR block or ASN. Use errors.Is(err, apperr.ErrInvalidInput) to detect it.
var ErrInvalidInput = errors.New("invalid input")

// ErrRequestFailed is the root of every classified registry error, whether
// the request failed at the transport level or the registry answered with
// an error status. Use errors.Is(err, apperr.ErrRequestFailed) to detect
// request failures regardless of their kind.
var ErrRequestFailed = errors.New("request failed")
