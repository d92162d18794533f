// Package name implements component names: immutable
// (prefix, unique, isAnchor) records, validated against the reserved
// '!' (anchor marker) and '#' (ID-suffix separator) characters.
package name

import (
	"fmt"
	"strings"

	"github.com/openzl-go/openzl/pkg/zlerror"
)

// MaxPrefixLen is the length bound on a Name's prefix.
const MaxPrefixLen = 63

// standardPrefix is reserved for library-provided standard names.
const standardPrefix = "!zl."

// Name is an immutable record with three fields.
type Name struct {
	prefix   string
	unique   string
	isAnchor bool
}

// Prefix returns the user-chosen, printable prefix.
func (n Name) Prefix() string { return n.prefix }

// Unique returns the globally unique text identifying this name.
func (n Name) Unique() string { return n.unique }

// IsAnchor reports whether this name is a stable, globally-unique anchor.
func (n Name) IsAnchor() bool { return n.isAnchor }

func (n Name) String() string { return n.unique }

func validatePrefix(prefix string, isStandard bool) error {
	hasStandardPrefix := strings.HasPrefix(prefix, standardPrefix)
	if isStandard {
		if !hasStandardPrefix {
			return zlerror.New(zlerror.InvalidName,
				"standard name %q doesn't start with %q", prefix, standardPrefix)
		}
	} else if hasStandardPrefix {
		return zlerror.New(zlerror.InvalidName,
			"user defined anchor name %q cannot start with the standard prefix %q",
			prefix, standardPrefix)
	}

	body := prefix
	if strings.HasPrefix(body, "!") {
		body = body[1:]
	}
	for _, r := range body {
		switch r {
		case '!':
			return zlerror.New(zlerror.InvalidName,
				"name %q contains '!', which denotes that a name is an anchor, "+
					"and is only allowed in the first byte of the name", prefix)
		case '#':
			return zlerror.New(zlerror.InvalidName,
				"name %q contains '#', which is not allowed in names", prefix)
		}
	}
	if len(body) > MaxPrefixLen {
		return zlerror.New(zlerror.InvalidName,
			"name %q is too long: names must be no more than %d characters",
			prefix, MaxPrefixLen)
	}
	return nil
}

// New validates prefix and builds a Name for a user-registered
// component with the given id. Non-anchor names are disambiguated as
// "prefix#id"; a prefix beginning with '!' is treated as a user anchor
// and its unique form is the prefix sans the leading '!'.
func New(prefix string, id uint32) (Name, error) {
	if err := validatePrefix(prefix, false); err != nil {
		return Name{}, err
	}

	if strings.HasPrefix(prefix, "!") {
		body := prefix[1:]
		return Name{prefix: body, unique: body, isAnchor: true}, nil
	}

	return Name{
		prefix:   prefix,
		unique:   fmt.Sprintf("%s#%d", prefix, id),
		isAnchor: false,
	}, nil
}

// WrapStandard wraps a compile-time-known standard name verbatim,
// bypassing id suffixing. cstr must carry the "!zl." prefix.
func WrapStandard(cstr string) Name {
	if err := validatePrefix(cstr, true); err != nil {
		panic(err)
	}
	body := cstr[1:]
	return Name{prefix: body, unique: body, isAnchor: true}
}

// NewStandard validates prefix as a standard ("!zl."-prefixed) name and
// builds its Name, the error-returning counterpart to WrapStandard for
// call sites (node/graph standard registration) that take a prefix at
// runtime rather than a compile-time string literal.
func NewStandard(prefix string) (Name, error) {
	if err := validatePrefix(prefix, true); err != nil {
		return Name{}, err
	}
	body := prefix[1:]
	return Name{prefix: body, unique: body, isAnchor: true}, nil
}

// IsValidNonAnchorUnique reports whether unique has the
// "<prefix>#<digits>" shape a non-anchor name's Unique() must have.
func IsValidNonAnchorUnique(unique string) bool {
	idx := strings.LastIndexByte(unique, '#')
	if idx < 0 || idx == len(unique)-1 {
		return false
	}
	for _, r := range unique[idx+1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
