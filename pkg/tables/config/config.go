package config

import (
	"io"

	yaml "gopkg.in/yaml.v2"

	"github.com/appdata/tables-client/pkg/tables/sysprops"
)

type TableInfo struct {
	Name             string   `yaml:"name"`
	SystemProperties []string `yaml:"systemProperties"`
}

// SystemPropertySet resolves the configured property names ("createdAt",
// "version", ... or the "*" wildcard) into a property set.
func (t TableInfo) SystemPropertySet() (sysprops.Set, error) {
	properties := make([]sysprops.Property, 0, len(t.SystemProperties))

	for _, name := range t.SystemProperties {
		if name == "*" {
			return sysprops.All(), nil
		}

		p, err := sysprops.Parse(name)
		if err != nil {
			return nil, err
		}

		properties = append(properties, p)
	}

	return sysprops.NewSet(properties...), nil
}

type Config struct {
	Endpoint       string      `yaml:"endpoint"`
	ApplicationKey string      `yaml:"applicationKey"`
	Tables         []TableInfo `yaml:"tables"`
}

func (c Config) Table(name string) (TableInfo, bool) {
	for _, t := range c.Tables {
		if t.Name == name {
			return t, true
		}
	}

	return TableInfo{}, false
}

func LoadConfiguration(data io.Reader) (*Config, error) {

	buf, err := io.ReadAll(data)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	err = yaml.Unmarshal(buf, &cfg)

	return cfg, err
}
