package retention

import (
	"regexp"
	"slices"
	"strings"

	"radsweep-hq/radsweep/pkg/accounting"
)

// unspecifiedToken names accounting.MethodUnspecified in exclusion lists,
// where an empty item would be ambiguous.
const unspecifiedToken = "unspecified"

var methodPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// MethodSet is the closed set of registration methods accepted in exclusion
// lists: the built-in methods plus any configured extras.
type MethodSet struct {
	known map[accounting.Method]struct{}
}

// NewMethodSet creates a MethodSet with the built-in methods and extra.
// Extras must be lower-case identifiers.
func NewMethodSet(extra ...string) (*MethodSet, error) {
	set := &MethodSet{known: make(map[accounting.Method]struct{})}
	set.known[accounting.MethodUnspecified] = struct{}{}
	for _, m := range accounting.KnownMethods() {
		set.known[m] = struct{}{}
	}

	for _, raw := range extra {
		name := strings.TrimSpace(raw)
		if !methodPattern.MatchString(name) || name == unspecifiedToken {
			return nil, NewInvalidArgumentError("extra_methods", raw, "must be a lower-case identifier")
		}
		set.known[accounting.Method(name)] = struct{}{}
	}

	return set, nil
}

// DefaultMethodSet returns a MethodSet with only the built-in methods.
func DefaultMethodSet() *MethodSet {
	set, _ := NewMethodSet()
	return set
}

// Contains reports whether m is a recognised method.
func (s *MethodSet) Contains(m accounting.Method) bool {
	_, ok := s.known[m]
	return ok
}

// Parse splits a comma-separated exclusion list. Items are trimmed, empty
// items are dropped and duplicates collapse. "unspecified" names the empty
// method.
func (s *MethodSet) Parse(raw string) ([]accounting.Method, error) {
	return s.ParseList(strings.Split(raw, ","))
}

// ParseList validates an exclusion list given as separate items.
func (s *MethodSet) ParseList(items []string) ([]accounting.Method, error) {
	var methods []accounting.Method
	for _, item := range items {
		name := strings.TrimSpace(item)
		if name == "" {
			continue
		}

		m := accounting.Method(name)
		if name == unspecifiedToken {
			m = accounting.MethodUnspecified
		}
		if !s.Contains(m) {
			return nil, NewInvalidArgumentError(ParamExcludedMethods, item, "unknown registration method")
		}
		if !slices.Contains(methods, m) {
			methods = append(methods, m)
		}
	}
	return methods, nil
}

// Validate checks that every method in methods is recognised.
func (s *MethodSet) Validate(methods []accounting.Method) error {
	for _, m := range methods {
		if !s.Contains(m) {
			return NewInvalidArgumentError(ParamExcludedMethods, string(m), "unknown registration method")
		}
	}
	return nil
}

// Names returns the recognised methods, sorted, with the empty method shown
// as "unspecified".
func (s *MethodSet) Names() []string {
	names := make([]string, 0, len(s.known))
	for m := range s.known {
		names = append(names, methodName(m))
	}
	slices.Sort(names)
	return names
}

func methodName(m accounting.Method) string {
	if m == accounting.MethodUnspecified {
		return unspecifiedToken
	}
	return string(m)
}

// FormatMethods renders an exclusion list the way Parse accepts it.
func FormatMethods(methods []accounting.Method) string {
	names := make([]string, len(methods))
	for i, m := range methods {
		names[i] = methodName(m)
	}
	return strings.Join(names, ",")
}
