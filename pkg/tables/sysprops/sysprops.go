// Package sysprops encodes the server managed system properties (creation
// timestamp, update timestamp, version token) the way they travel on the
// wire, and reads or strips them from items.
package sysprops

import (
	"fmt"
	"strings"

	"github.com/iancoleman/strcase"

	"github.com/appdata/tables-client/pkg/tables"
	"github.com/appdata/tables-client/pkg/tables/types"
)

// Prefix marks a field as a system property.
const Prefix = "__"

// QueryParameterName is the query string parameter that selects which
// system properties the service should include. It is matched case
// insensitively on read and always emitted in this spelling.
const QueryParameterName = "__systemproperties"

type Property int

const (
	CreatedAt Property = iota
	UpdatedAt
	Version
)

// known holds the full property domain in canonical wire order.
var known = []Property{CreatedAt, UpdatedAt, Version}

func (p Property) String() string {
	switch p {
	case CreatedAt:
		return "CreatedAt"
	case UpdatedAt:
		return "UpdatedAt"
	case Version:
		return "Version"
	default:
		return fmt.Sprintf("Property(%d)", int(p))
	}
}

// WireName renders the prefixed lower camel form, e.g. "__createdAt".
func (p Property) WireName() string {
	return Prefix + strcase.ToLowerCamel(p.String())
}

// VersionPropertyName is the full wire name of the version property.
var VersionPropertyName = Version.WireName()

// Parse resolves a property from either its enum name or its wire name,
// case insensitively.
func Parse(name string) (Property, error) {
	trimmed := strings.TrimPrefix(strings.ToLower(name), Prefix)

	for _, p := range known {
		if strings.ToLower(p.String()) == trimmed {
			return p, nil
		}
	}

	return Property(-1), fmt.Errorf("unknown system property %q", name)
}

type Set map[Property]struct{}

func NewSet(properties ...Property) Set {
	s := Set{}

	for _, p := range properties {
		s[p] = struct{}{}
	}

	return s
}

// All returns the full known property domain.
func All() Set {
	return NewSet(known...)
}

func (s Set) Contains(p Property) bool {
	_, ok := s[p]
	return ok
}

// Encode renders the set as the query parameter value: ok is false for an
// empty or nil set (omit the parameter entirely), the value is "*" when the
// set covers the full domain, and otherwise a comma joined list of wire
// names in canonical order.
func (s Set) Encode() (string, bool) {
	if len(s) == 0 {
		return "", false
	}

	if len(s) == len(known) {
		return "*", true
	}

	names := make([]string, 0, len(s))

	for _, p := range known {
		if s.Contains(p) {
			names = append(names, p.WireName())
		}
	}

	return strings.Join(names, ","), true
}

// MergeIntoParameters appends the encoded set as a query parameter unless
// the caller already supplied one whose name matches case insensitively, in
// which case the explicit override wins and the parameters are returned
// untouched.
func (s Set) MergeIntoParameters(parameters []tables.Parameter) []tables.Parameter {
	for _, p := range parameters {
		if strings.EqualFold(p.Name, QueryParameterName) {
			return parameters
		}
	}

	encoded, ok := s.Encode()
	if !ok {
		return parameters
	}

	merged := make([]tables.Parameter, 0, len(parameters)+1)
	merged = append(merged, parameters...)

	return append(merged, tables.NewParameter(QueryParameterName, encoded))
}

// Strip returns the item with every system property field removed. The
// caller's item is never altered: the first matching field triggers a single
// deep clone, and an item without system properties is returned as is.
func Strip(item types.Item) types.Item {
	result := item
	cloned := false

	item.ForEachField(func(name string, value any) {
		if strings.HasPrefix(name, Prefix) {
			if !cloned {
				result = item.Clone()
				cloned = true
			}

			result.Remove(name)
		}
	})

	return result
}

// VersionOf reads the version system property from an item, matching the
// field name case insensitively.
func VersionOf(item types.Item) (string, bool) {
	version := ""
	found := false

	item.ForEachField(func(name string, value any) {
		if strings.EqualFold(name, VersionPropertyName) {
			if s, ok := value.(string); ok {
				version = s
				found = true
			}
		}
	})

	return version, found
}
