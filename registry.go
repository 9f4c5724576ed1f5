package rsapad

import (
	"errors"
	"fmt"
)

// A SchemeConstructor builds a Scheme from a parsed specification whose Name it was registered under.
// It returns errUnsupportedArgs when the arguments do not describe anything it can build
type SchemeConstructor func(spec *AlgorithmSpec) (Scheme, error)

var errUnsupportedArgs = errors.New("unsupported arguments")

// populated by init and only read afterwards, so lookups need no locking
var registry = map[string]SchemeConstructor{}

// Register makes a scheme constructor available to Create under name.
// It must only be called during package initialization and panics on duplicate names
func Register(name string, ctor SchemeConstructor) {
	if ctor == nil {
		panic("rsapad: Register constructor is nil")
	}
	if _, dup := registry[name]; dup {
		panic("rsapad: Register called twice for scheme " + name)
	}
	registry[name] = ctor
}

func init() {
	for _, name := range []string{"PKCS1v15", "EMSA_PKCS1", "EMSA-PKCS1-v1_5", "EMSA3"} {
		Register(name, newPKCS1v15FromSpec)
	}
	Register("ISO_9796_DS2", newISO9796DS2FromSpec)
	Register("ISO_9796_DS3", newISO9796DS3FromSpec)
	Register("Raw", newRawFromSpec)
}

// Create returns the scheme described by spec, or nil if it cannot be built for any reason
func Create(spec string) Scheme {
	scheme, err := CreateOrError(spec)
	if err != nil {
		return nil
	}
	return scheme
}

// CreateOrError returns the scheme described by spec.
//
// Unknown scheme names, unknown hashes and argument lists no constructor accepts produce a *LookupError.
// A known hash that the scheme cannot use (for instance one without a PKCS #1 identifier)
// produces an error wrapping ErrInvalidArgument
func CreateOrError(spec string) (Scheme, error) {
	parsed, err := ParseAlgorithmSpec(spec)
	if err != nil {
		return nil, &LookupError{Spec: spec}
	}

	ctor, ok := registry[parsed.Name]
	if !ok {
		return nil, &LookupError{Spec: spec}
	}

	scheme, err := ctor(parsed)
	if err != nil {
		var lookupErr *LookupError
		if errors.As(err, &lookupErr) || errors.Is(err, errUnsupportedArgs) {
			return nil, &LookupError{Spec: spec}
		}
		return nil, fmt.Errorf("failed to create %s: %w", spec, err)
	}

	return scheme, nil
}
