package sysprops

import (
	"testing"

	"github.com/matryer/is"

	"github.com/appdata/tables-client/pkg/tables"
	"github.com/appdata/tables-client/pkg/tables/types/items"
)

func TestEmptySetEncodesToNothing(t *testing.T) {
	is := is.New(t)

	_, ok := NewSet().Encode()
	is.True(!ok)

	_, ok = Set(nil).Encode()
	is.True(!ok)
}

func TestFullSetEncodesToWildcard(t *testing.T) {
	is := is.New(t)

	encoded, ok := All().Encode()
	is.True(ok)
	is.Equal(encoded, "*")
}

func TestSingletonSetEncoding(t *testing.T) {
	is := is.New(t)

	encoded, ok := NewSet(Version).Encode()
	is.True(ok)
	is.Equal(encoded, "__version")
}

func TestEncodingUsesCanonicalOrder(t *testing.T) {
	is := is.New(t)

	encoded, ok := NewSet(UpdatedAt, CreatedAt).Encode()
	is.True(ok)
	is.Equal(encoded, "__createdAt,__updatedAt")
}

func TestMergeAppendsEncodedSet(t *testing.T) {
	is := is.New(t)

	params := []tables.Parameter{tables.NewParameter("fields", "name")}
	merged := NewSet(Version).MergeIntoParameters(params)

	is.Equal(len(merged), 2)
	is.Equal(merged[1], tables.NewParameter(QueryParameterName, "__version"))
}

func TestMergeLeavesCallerOverrideUntouched(t *testing.T) {
	is := is.New(t)

	params := []tables.Parameter{tables.NewParameter("__SystemProperties", "__createdAt")}
	merged := All().MergeIntoParameters(params)

	is.Equal(len(merged), 1) // explicit caller override wins
	is.Equal(merged[0].Value, "__createdAt")
}

func TestMergeOfEmptySetAddsNothing(t *testing.T) {
	is := is.New(t)

	merged := NewSet().MergeIntoParameters(nil)
	is.Equal(len(merged), 0)
}

func TestStripRemovesSystemPropertiesWithoutMutatingInput(t *testing.T) {
	is := is.New(t)

	item := items.New(
		items.ID(1),
		items.Field("__version", "AAA"),
		items.Field("name", "x"),
	)

	stripped := Strip(item)

	_, ok := stripped.Value("__version")
	is.True(!ok)

	v, ok := stripped.Value("name")
	is.True(ok)
	is.Equal(v, "x")

	v, ok = item.Value("__version")
	is.True(ok) // the original must keep its system properties
	is.Equal(v, "AAA")
}

func TestStripReturnsOriginalWhenNothingMatches(t *testing.T) {
	is := is.New(t)

	item := items.New(items.ID("abc123"), items.Field("name", "x"))

	stripped := Strip(item)

	impl, ok := stripped.(*items.ItemImpl)
	is.True(ok)
	is.True(impl == item) // zero copy fast path
}

func TestVersionOfMatchesCaseInsensitively(t *testing.T) {
	is := is.New(t)

	item := items.New(items.Field("__Version", "AAA"))

	version, ok := VersionOf(item)
	is.True(ok)
	is.Equal(version, "AAA")
}

func TestVersionOfAbsentProperty(t *testing.T) {
	is := is.New(t)

	_, ok := VersionOf(items.New(items.Field("name", "x")))
	is.True(!ok)
}

func TestParse(t *testing.T) {
	is := is.New(t)

	p, err := Parse("createdAt")
	is.NoErr(err)
	is.Equal(p, CreatedAt)

	p, err = Parse("__version")
	is.NoErr(err)
	is.Equal(p, Version)

	_, err = Parse("bogus")
	is.True(err != nil)
}

func TestWireNames(t *testing.T) {
	is := is.New(t)

	is.Equal(CreatedAt.WireName(), "__createdAt")
	is.Equal(UpdatedAt.WireName(), "__updatedAt")
	is.Equal(Version.WireName(), "__version")
	is.Equal(VersionPropertyName, "__version")
}
