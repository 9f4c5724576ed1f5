package rsapad

import (
	"fmt"
	"strconv"
	"strings"
)

// AlgorithmSpec is a parsed algorithm specification string of the form
// Name, Name(Arg) or Name(Arg,Arg,...). Arguments may themselves contain
// parenthesized specifications, as in "PKCS1v15(Raw,SHA-3(256))"
type AlgorithmSpec struct {
	Name string
	Args []string
}

// ParseAlgorithmSpec splits an algorithm specification into its name and top-level arguments
func ParseAlgorithmSpec(spec string) (*AlgorithmSpec, error) {
	open := strings.IndexByte(spec, '(')
	if open < 0 {
		if spec == "" || strings.ContainsAny(spec, "),") {
			return nil, fmt.Errorf("malformed algorithm specification %q", spec)
		}
		return &AlgorithmSpec{Name: spec}, nil
	}

	if open == 0 || !strings.HasSuffix(spec, ")") {
		return nil, fmt.Errorf("malformed algorithm specification %q", spec)
	}

	parsed := &AlgorithmSpec{Name: spec[:open]}
	inner := spec[open+1 : len(spec)-1]

	depth := 0
	start := 0
	for i := 0; i < len(inner); i++ {
		switch inner[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("unbalanced parentheses in %q", spec)
			}
		case ',':
			if depth == 0 {
				parsed.Args = append(parsed.Args, inner[start:i])
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("unbalanced parentheses in %q", spec)
	}
	parsed.Args = append(parsed.Args, inner[start:])

	for _, arg := range parsed.Args {
		if arg == "" {
			return nil, fmt.Errorf("empty argument in %q", spec)
		}
	}

	return parsed, nil
}

// ArgCount returns the number of top-level arguments
func (as *AlgorithmSpec) ArgCount() int {
	return len(as.Args)
}

// Arg returns argument i, or def when there are not enough arguments
func (as *AlgorithmSpec) Arg(i int, def string) string {
	if i < len(as.Args) {
		return as.Args[i]
	}
	return def
}

// ArgAsInt returns argument i parsed as a non-negative integer, or def when there are not enough arguments
func (as *AlgorithmSpec) ArgAsInt(i int, def int) (int, error) {
	if i >= len(as.Args) {
		return def, nil
	}
	n, err := strconv.Atoi(as.Args[i])
	if err != nil || n < 0 {
		return 0, fmt.Errorf("argument %d of %s is not a valid size: %q", i, as.Name, as.Args[i])
	}
	return n, nil
}

func (as *AlgorithmSpec) String() string {
	if len(as.Args) == 0 {
		return as.Name
	}
	return as.Name + "(" + strings.Join(as.Args, ",") + ")"
}
