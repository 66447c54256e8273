// Package errors defines the failure taxonomy of call-site resolution and
// rendering. None of these errors ever reach the instrumented program: they
// select which piece of output is replaced by a placeholder.
package errors

import "errors"

var (
	// ErrLocationUnavailable reports that no file-backed caller frame exists.
	ErrLocationUnavailable = errors.New("caller location unavailable")

	// ErrParseFailure reports that the caller's source could not be read or parsed.
	ErrParseFailure = errors.New("source parse failure")

	// ErrMatchNotFound reports that no call node fits the observed invocation.
	ErrMatchNotFound = errors.New("no matching call")

	// ErrMatchAmbiguous reports that several call nodes fit and none could be preferred.
	ErrMatchAmbiguous = errors.New("ambiguous call match")

	// ErrRenderFailure reports that a value's textual form could not be computed.
	ErrRenderFailure = errors.New("value render failure")

	// ErrStyleUnknown reports a palette name missing from the style registry.
	ErrStyleUnknown = errors.New("unknown style")
)
