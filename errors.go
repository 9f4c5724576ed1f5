package rsapad

import (
	"errors"
	"fmt"
)

var (
	// ErrEncoding is wrapped by every failure to produce an encoded representative.
	// These are programming or configuration mistakes on the signing side and are never
	// returned from verification.
	ErrEncoding = errors.New("encoding error")

	// ErrInvalidArgument is wrapped when a scheme or hash cannot be built from otherwise valid names
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrMessageTooLong is returned when an encoded representative does not fit below the RSA modulus
	ErrMessageTooLong = errors.New("rsapad: message too long for RSA key size")

	// ErrVerification is returned when a freshly produced signature fails its own consistency check
	ErrVerification = errors.New("rsapad: verification error")
)

// A LookupError reports an algorithm specification that names nothing known to the registry.
// Its message is stable and may be matched on.
type LookupError struct {
	Spec string
}

func (e *LookupError) Error() string {
	return `Could not find any algorithm named "` + e.Spec + `"`
}

func encodingError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrEncoding, fmt.Sprintf(format, args...))
}

func invalidArgument(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
