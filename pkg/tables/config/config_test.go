package config

import (
	"strings"
	"testing"

	"github.com/matryer/is"

	"github.com/appdata/tables-client/pkg/tables/sysprops"
)

func TestLoadConfiguration(t *testing.T) {
	is := is.New(t)

	cfg, err := LoadConfiguration(strings.NewReader(configYAML))
	is.NoErr(err)

	is.Equal(cfg.Endpoint, "https://tables.example.com")
	is.Equal(cfg.ApplicationKey, "app-key-123")
	is.Equal(len(cfg.Tables), 2)
}

func TestTableLookup(t *testing.T) {
	is := is.New(t)

	cfg, err := LoadConfiguration(strings.NewReader(configYAML))
	is.NoErr(err)

	info, ok := cfg.Table("todo")
	is.True(ok)

	set, err := info.SystemPropertySet()
	is.NoErr(err)
	is.Equal(set, sysprops.NewSet(sysprops.CreatedAt, sysprops.Version))

	_, ok = cfg.Table("unknown")
	is.True(!ok)
}

func TestWildcardSystemProperties(t *testing.T) {
	is := is.New(t)

	cfg, err := LoadConfiguration(strings.NewReader(configYAML))
	is.NoErr(err)

	info, ok := cfg.Table("notes")
	is.True(ok)

	set, err := info.SystemPropertySet()
	is.NoErr(err)
	is.Equal(set, sysprops.All())
}

func TestUnknownSystemPropertyIsRejected(t *testing.T) {
	is := is.New(t)

	info := TableInfo{Name: "x", SystemProperties: []string{"bogus"}}

	_, err := info.SystemPropertySet()
	is.True(err != nil)
}

const configYAML string = `
endpoint: https://tables.example.com
applicationKey: app-key-123
tables:
  - name: todo
    systemProperties:
      - createdAt
      - version
  - name: notes
    systemProperties:
      - "*"
`
