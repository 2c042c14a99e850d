package domain

import (
	"errors"
	"fmt"
)

// Kind classifies pipeline failures so callers can branch without parsing messages.
type Kind int

const (
	// KindUnknown is reported for errors that did not originate in this module.
	KindUnknown Kind = iota
	// KindInvalidAngle marks a bearing or coordinate outside its valid range.
	KindInvalidAngle
	// KindNonConvergence marks an iterative solution that did not settle (advisory).
	KindNonConvergence
	// KindUnsupportedLocation marks a center too close to (or beyond) the elevation data coverage edge.
	KindUnsupportedLocation
	// KindRadiusTooLarge marks a radius that crosses the coverage edge; a corrected radius is attached.
	KindRadiusTooLarge
	// KindOriginOutsideTerrain marks a placement origin that does not project onto the sampled terrain.
	KindOriginOutsideTerrain
	// KindDownloadFailed marks an elevation asset that could not be retrieved.
	KindDownloadFailed
	// KindServiceUnavailable marks an elevation service that is temporarily down.
	KindServiceUnavailable
	// KindInvalidRadius marks a radius outside [MinRadiusM, MaxRadiusM].
	KindInvalidRadius
	// KindInvalidRequest marks any other malformed caller input.
	KindInvalidRequest
)

var kindNames = map[Kind]string{
	KindUnknown:              "Unknown",
	KindInvalidAngle:         "InvalidAngle",
	KindNonConvergence:       "NonConvergence",
	KindUnsupportedLocation:  "UnsupportedLocation",
	KindRadiusTooLarge:       "RadiusTooLarge",
	KindOriginOutsideTerrain: "OriginOutsideTerrain",
	KindDownloadFailed:       "DownloadFailed",
	KindServiceUnavailable:   "ServiceUnavailable",
	KindInvalidRadius:        "InvalidRadius",
	KindInvalidRequest:       "InvalidRequest",
}

// String returns the machine-checkable name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error is the single error type surfaced by the terrain pipeline.
type Error struct {
	Kind Kind
	Msg  string

	// CorrectedRadiusM is set for KindRadiusTooLarge: the largest radius the caller may retry with.
	CorrectedRadiusM int

	Err error
}

// Sentinels for errors.Is checks. Matching is by Kind only.
var (
	ErrInvalidAngle         = &Error{Kind: KindInvalidAngle}
	ErrNonConvergence       = &Error{Kind: KindNonConvergence}
	ErrUnsupportedLocation  = &Error{Kind: KindUnsupportedLocation}
	ErrRadiusTooLarge       = &Error{Kind: KindRadiusTooLarge}
	ErrOriginOutsideTerrain = &Error{Kind: KindOriginOutsideTerrain}
	ErrDownloadFailed       = &Error{Kind: KindDownloadFailed}
	ErrServiceUnavailable   = &Error{Kind: KindServiceUnavailable}
	ErrInvalidRadius        = &Error{Kind: KindInvalidRadius}
	ErrInvalidRequest       = &Error{Kind: KindInvalidRequest}
)

// NewError creates an Error of the given kind with a formatted message.
func NewError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// WrapError creates an Error of the given kind around an underlying cause.
func WrapError(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
