package items

import (
	"encoding/json"
	"fmt"

	"github.com/appdata/tables-client/pkg/tables/types"
	"github.com/google/uuid"
)

type ItemDecoratorFunc func(i *ItemImpl)

// New creates an item from the supplied field decorators.
func New(decorators ...ItemDecoratorFunc) *ItemImpl {
	i := &ItemImpl{
		fields: map[string]any{},
	}

	for _, decorator := range decorators {
		decorator(i)
	}

	return i
}

func NewFromJSON(body []byte) (types.Item, error) {
	i := &ItemImpl{}
	err := json.Unmarshal(body, i)

	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal item: %w", err)
	}

	return i, nil
}

func NewFromSlice(body []byte) ([]types.Item, error) {
	impls := []ItemImpl{}
	err := json.Unmarshal(body, &impls)
	if err != nil {
		return nil, err
	}

	arr := make([]types.Item, 0, len(impls))

	for idx := range impls {
		arr = append(arr, &impls[idx])
	}

	return arr, nil
}

// Patch deep clones the original item and overwrites it with every field
// present in the response. Fields only present in the original are kept and
// the original is never mutated.
func Patch(original types.Item, response types.ItemFragment) types.Item {
	patched := original.Clone()

	response.ForEachField(func(name string, value any) {
		patched.SetValue(name, value)
	})

	return patched
}

type ItemImpl struct {
	fields map[string]any
}

func (i *ItemImpl) Value(name string) (any, bool) {
	v, ok := i.fields[name]
	return v, ok
}

func (i *ItemImpl) SetValue(name string, value any) {
	if i.fields == nil {
		i.fields = map[string]any{}
	}

	i.fields[name] = value
}

func (i *ItemImpl) Remove(name string) {
	delete(i.fields, name)
}

// Clone returns a deep copy created via a JSON round trip, so that nested
// values never share storage with the original.
func (i *ItemImpl) Clone() types.Item {
	body, _ := i.MarshalJSON()

	clone := &ItemImpl{}
	json.Unmarshal(body, clone)

	return clone
}

func (i *ItemImpl) ForEachField(callback func(name string, value any)) error {
	for k, v := range i.fields {
		callback(k, v)
	}

	return nil
}

func (i *ItemImpl) MarshalJSON() ([]byte, error) {
	if i.fields == nil {
		return []byte("{}"), nil
	}

	return json.Marshal(i.fields)
}

func (i *ItemImpl) UnmarshalJSON(data []byte) error {
	var contents map[string]any

	err := json.Unmarshal(data, &contents)
	if err != nil {
		return fmt.Errorf("failed to unmarshal item: %w", err)
	}

	i.fields = contents

	return nil
}

func Field(name string, value any) ItemDecoratorFunc {
	return func(i *ItemImpl) { i.fields[name] = value }
}

func ID(value any) ItemDecoratorFunc {
	return func(i *ItemImpl) { i.fields["id"] = value }
}

// WithGeneratedID assigns a fresh string id, for use with insert style
// operations where the caller wants to choose the id client side.
func WithGeneratedID() ItemDecoratorFunc {
	return func(i *ItemImpl) { i.fields["id"] = uuid.NewString() }
}
