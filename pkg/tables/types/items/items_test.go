package items

import (
	"encoding/json"
	"testing"

	"github.com/matryer/is"
)

func TestJSONRoundTrip(t *testing.T) {
	is := is.New(t)

	item, err := NewFromJSON([]byte(`{"id":"abc123","name":"x","count":3}`))
	is.NoErr(err)

	v, ok := item.Value("name")
	is.True(ok)
	is.Equal(v, "x")

	b, err := json.Marshal(item)
	is.NoErr(err)
	is.Equal(string(b), `{"count":3,"id":"abc123","name":"x"}`)
}

func TestNewFromSlice(t *testing.T) {
	is := is.New(t)

	arr, err := NewFromSlice([]byte(`[{"id":"a"},{"id":"b"}]`))
	is.NoErr(err)
	is.Equal(len(arr), 2)

	v, _ := arr[1].Value("id")
	is.Equal(v, "b")
}

func TestCloneIsDeep(t *testing.T) {
	is := is.New(t)

	item, err := NewFromJSON([]byte(`{"id":"abc123","nested":{"a":1}}`))
	is.NoErr(err)

	clone := item.Clone()

	nested, ok := clone.Value("nested")
	is.True(ok)

	nested.(map[string]any)["a"] = float64(2)

	original, _ := item.Value("nested")
	is.Equal(original.(map[string]any)["a"], float64(1)) // the original must not share nested storage
}

func TestPatchAppliesResponseFieldsOnAClone(t *testing.T) {
	is := is.New(t)

	original := New(ID(1), Field("name", "old"), Field("extra", "keep"))
	response := New(Field("name", "new"))

	patched := Patch(original, response)

	v, _ := patched.Value("name")
	is.Equal(v, "new") // the server response wins on conflict

	v, _ = patched.Value("extra")
	is.Equal(v, "keep")

	_, ok := patched.Value("id")
	is.True(ok)

	v, _ = original.Value("name")
	is.Equal(v, "old") // the original must never be mutated
}

func TestWithGeneratedID(t *testing.T) {
	is := is.New(t)

	item := New(WithGeneratedID(), Field("name", "x"))

	v, ok := item.Value("id")
	is.True(ok)

	id, ok := v.(string)
	is.True(ok)
	is.Equal(len(id), 36)
}

func TestRemove(t *testing.T) {
	is := is.New(t)

	item := New(Field("name", "x"))
	item.Remove("name")

	_, ok := item.Value("name")
	is.True(!ok)
}
