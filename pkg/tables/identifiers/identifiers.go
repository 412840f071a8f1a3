// Package identifiers normalizes the many accepted id representations
// (primitive values and structured items) into a single tagged Identifier
// value and enforces the validity rules the table service requires.
package identifiers

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/appdata/tables-client/pkg/tables/errors"
	"github.com/appdata/tables-client/pkg/tables/types"
)

// canonicalKey is the only spelling of the id field the service accepts.
// Mixed case variants found on items are rewritten to it.
const canonicalKey = "id"

const maxStringIDLength = 255

// The reserved code points: "(U+0022), +(U+002B), /(U+002F), ?(U+003F),
// \(U+005C) and `(U+0060).
const reservedCharacters = "\"+/?\\`"

type Kind int

const (
	KindUnset Kind = iota
	KindString
	KindNumeric
)

// Identifier is a tagged union holding either a string or a numeric table
// row id. The zero value carries no id at all.
type Identifier struct {
	kind Kind
	str  string
	num  int64
}

func NewString(value string) Identifier {
	return Identifier{kind: KindString, str: value}
}

func NewNumeric(value int64) Identifier {
	return Identifier{kind: KindNumeric, num: value}
}

func (i Identifier) Kind() Kind      { return i.kind }
func (i Identifier) IsString() bool  { return i.kind == KindString }
func (i Identifier) IsNumeric() bool { return i.kind == KindNumeric }

func (i Identifier) StringValue() string { return i.str }
func (i Identifier) NumericValue() int64 { return i.num }

// IsDefault reports whether the identifier holds the unassigned sentinel
// ("" or 0) that insert style operations accept.
func (i Identifier) IsDefault() bool {
	switch i.kind {
	case KindString:
		return IsDefaultString(i.str)
	case KindNumeric:
		return IsDefaultNumeric(i.num)
	default:
		return true
	}
}

// String renders the identifier the way it appears as the final path
// segment of a request URI: string ids verbatim, numeric ids in decimal.
func (i Identifier) String() string {
	if i.kind == KindNumeric {
		return strconv.FormatInt(i.num, 10)
	}

	return i.str
}

// Validate checks raw validity. The default sentinel passes.
func (i Identifier) Validate() error {
	switch i.kind {
	case KindString:
		if !IsValidString(i.str) {
			return errors.NewInvalidStringIDError("the string id is invalid")
		}
	case KindNumeric:
		if !IsValidNumeric(i.num) {
			return errors.NewInvalidNumericIDError("the numeric id is invalid")
		}
	default:
		return errors.NewMissingIDError("element or id cannot be nil")
	}

	return nil
}

// ValidateConcrete layers the second tier check used by lookup, update and
// delete on top of Validate: the default sentinel passes raw validity but
// does not name a row, so it is rejected here.
func (i Identifier) ValidateConcrete() error {
	if err := i.Validate(); err != nil {
		return err
	}

	if i.IsDefault() {
		if i.kind == KindNumeric {
			return errors.NewInvalidNumericIDError("the numeric id is invalid")
		}

		return errors.NewInvalidStringIDError("the string id is invalid")
	}

	return nil
}

var stringIDRules = []validation.Rule{
	validation.RuneLength(0, maxStringIDLength),
	validation.NotIn(".", ".."),
	validation.By(containsNoControlCharacters),
	validation.By(containsNoReservedCharacters),
}

// IsValidString reports whether id is the default sentinel or satisfies all
// of: at most 255 code points, no ISO control code point, not "." or "..",
// and none of the six reserved characters.
func IsValidString(id string) bool {
	if IsDefaultString(id) {
		return true
	}

	return validation.Validate(id, stringIDRules...) == nil
}

func IsDefaultString(id string) bool {
	return id == ""
}

// IsValidNumeric reports whether id is the default sentinel 0 or strictly
// positive. Negative ids are never valid.
func IsValidNumeric(id int64) bool {
	return IsDefaultNumeric(id) || id > 0
}

func IsDefaultNumeric(id int64) bool {
	return id == 0
}

func containsNoControlCharacters(value any) error {
	s, _ := value.(string)

	for _, r := range s {
		if unicode.IsControl(r) {
			return errors.ErrInvalidStringID
		}
	}

	return nil
}

func containsNoReservedCharacters(value any) error {
	s, _ := value.(string)

	if strings.ContainsAny(s, reservedCharacters) {
		return errors.ErrInvalidStringID
	}

	return nil
}

// Normalize collapses any accepted input shape into an Identifier: strings
// and integer values are taken as is, decoded JSON numbers are accepted when
// integral, and items are routed through the id field lookup. The result is
// checked for raw validity only; callers that require a concrete id must
// also call ValidateConcrete.
func Normalize(elementOrID any) (Identifier, error) {
	if elementOrID == nil {
		return Identifier{}, errors.NewMissingIDError("element or id cannot be nil")
	}

	if item, ok := elementOrID.(types.Item); ok {
		return FromItem(item)
	}

	ident, err := fromPrimitive(elementOrID)
	if err != nil {
		return Identifier{}, err
	}

	if err := ident.Validate(); err != nil {
		return Identifier{}, err
	}

	return ident, nil
}

// FromItem locates the item's id field and returns it as an Identifier,
// rewriting a mixed case key to the canonical spelling. Items without an id
// field fail with a missing id error.
func FromItem(item types.Item) (Identifier, error) {
	ident, found, err := Canonicalize(item)
	if err != nil {
		return Identifier{}, err
	}

	if !found {
		return Identifier{}, errors.NewMissingIDError("an item must specify an id property with a valid value")
	}

	if err := ident.Validate(); err != nil {
		return Identifier{}, err
	}

	return ident, nil
}

// Canonicalize looks up the id field case insensitively and, when its key is
// not spelled exactly "id", rewrites the item in place: the old key is
// removed and a canonical "id" key holding the same value is inserted. The
// mutation is visible to the caller, so operations that must preserve the
// original clone it first. Numeric values are canonicalized to int64.
func Canonicalize(item types.Item) (Identifier, bool, error) {
	if item == nil {
		return Identifier{}, false, errors.NewMissingIDError("element or id cannot be nil")
	}

	foundKey := ""
	found := false

	item.ForEachField(func(name string, value any) {
		if !found && strings.ToLower(name) == canonicalKey {
			foundKey = name
			found = true
		}
	})

	if !found {
		return Identifier{}, false, nil
	}

	value, _ := item.Value(foundKey)

	ident, err := fromPrimitive(value)
	if err != nil {
		return Identifier{}, true, err
	}

	if foundKey != canonicalKey {
		item.Remove(foundKey)

		if ident.IsNumeric() {
			item.SetValue(canonicalKey, ident.NumericValue())
		} else {
			item.SetValue(canonicalKey, ident.StringValue())
		}
	}

	return ident, true, nil
}

func fromPrimitive(value any) (Identifier, error) {
	switch v := value.(type) {
	case string:
		return NewString(v), nil
	case int:
		return NewNumeric(int64(v)), nil
	case int32:
		return NewNumeric(int64(v)), nil
	case int64:
		return NewNumeric(v), nil
	case float64:
		// decoded JSON numbers arrive as float64; the id wire type is a
		// 64 bit integer, so fractional values are not identifiers
		if v != math.Trunc(v) {
			return Identifier{}, errors.NewInvalidIDTypeError("the id must be numeric or string")
		}

		return NewNumeric(int64(v)), nil
	case nil:
		return Identifier{}, errors.NewMissingIDError("element or id cannot be nil")
	default:
		return Identifier{}, errors.NewInvalidIDTypeError("the id must be numeric or string")
	}
}
