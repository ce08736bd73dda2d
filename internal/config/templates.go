package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Template renders cfg as a config file.
func Template(cfg Config) (string, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(cfg); err != nil {
		return "", fmt.Errorf("config render failed: %w", err)
	}
	return buf.String(), nil
}

// WriteTemplate writes the default config to path.
func WriteTemplate(path string, overwrite bool) error {
	template, err := Template(DefaultConfig())
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

// CheckStrict decodes data over the defaults, rejecting keys Config does
// not have. Load only warns about them.
func CheckStrict(data []byte) error {
	cfg := DefaultConfig()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return fmt.Errorf("config parse failed: %w", err)
	}
	return Validate(cfg)
}
