package config

import (
	"bytes"
	"io"
	"path/filepath"

	"github.com/a8m/envsubst"
	"github.com/pkg/errors"
	"github.com/yosuke-furukawa/json5/encoding/json5"
)

// Read reads a config from the given file. Environment variables in the file are expanded.
func Read(filePath string) (*Config, error) {
	buf, err := envsubst.ReadFile(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config %q", filePath)
	}
	return FromReader(filePath, bytes.NewReader(buf))
}

// FromReader reads a config from the given reader and specifies
// where, if applicable, the file the reader originated from. Relative
// paths in the config are relative to that file's directory. The config
// is JSON5, so comments and trailing commas are allowed.
func FromReader(originalPath string, r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading config")
	}
	cfg := Config{}
	if err := json5.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to decode Config from json")
	}
	cfg.ConfigFilePath = originalPath
	cfg.applyDefaults()
	if err := cfg.Validate(""); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Topic == "" {
		c.Topic = DefaultTopic
	}
	if c.Confirm == "" {
		c.Confirm = ConfirmConsole
	}
	if c.Source.Topic == "" {
		c.Source.Topic = c.Topic
	}

	base := ""
	if c.ConfigFilePath != "" {
		base = filepath.Dir(c.ConfigFilePath)
	}
	c.Source.Path = resolveRelative(base, c.Source.Path)
	c.Log.File = resolveRelative(base, c.Log.File)
	for name, dir := range c.Packages {
		c.Packages[name] = resolveRelative(base, dir)
	}
}

func resolveRelative(base, path string) string {
	if base == "" || path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}
