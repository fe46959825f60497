// Package config loads build settings for the command-line tools.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/naoina/toml"
)

// Output formats.
const (
	FormatELF = "elf"
	FormatBin = "bin"
)

var (
	ErrFormat  = errors.New("unknown output format")
	ErrExtern  = errors.New("invalid extern")
	ErrAddress = errors.New("invalid address")
)

// Address is a 16-bit address. In TOML it may be a decimal integer or a
// string in "$0600", "0x0600" or decimal notation.
type Address uint16

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(text []byte) error {
	v, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// ParseAddress reads a 16-bit address.
func ParseAddress(s string) (Address, error) {
	s = strings.TrimSpace(s)
	base := 10
	switch {
	case strings.HasPrefix(s, "$"):
		s, base = s[1:], 16
	case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"):
		s, base = s[2:], 16
	}
	v, err := strconv.ParseUint(s, base, 16)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrAddress, s)
	}
	return Address(v), nil
}

// Extern is an absolute symbol supplied at link time.
type Extern struct {
	Name  string
	Value Address
}

// Config holds the settings for one build.
type Config struct {
	Origin  Address
	Format  string
	Output  string   `toml:",omitempty"`
	Externs []Extern `toml:"extern"`
}

// tomlSettings matches keys case-insensitively and ignoring underscores, and
// rejects unknown keys.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return strings.ReplaceAll(strings.ToLower(key), "_", "")
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return strings.ToLower(field)
	},
	MissingField: func(rt reflect.Type, field string) error {
		return fmt.Errorf("field '%s' is not defined in %s", field, rt.String())
	},
}

// Default returns the settings used without a configuration file.
func Default() *Config {
	return &Config{
		Origin: 0x0600,
		Format: FormatELF,
	}
}

// Load reads a TOML file on top of the defaults.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg := Default()
	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the format and extern table.
func (c *Config) Validate() error {
	switch c.Format {
	case FormatELF, FormatBin:
	default:
		return fmt.Errorf("%w: %q", ErrFormat, c.Format)
	}

	seen := make(map[string]bool, len(c.Externs))
	for _, e := range c.Externs {
		if e.Name == "" {
			return fmt.Errorf("%w: empty name", ErrExtern)
		}
		if seen[e.Name] {
			return fmt.Errorf("%w: %s declared twice", ErrExtern, e.Name)
		}
		seen[e.Name] = true
	}
	return nil
}

// ExternMap returns the extern table keyed by name.
func (c *Config) ExternMap() map[string]uint16 {
	m := make(map[string]uint16, len(c.Externs))
	for _, e := range c.Externs {
		m[e.Name] = uint16(e.Value)
	}
	return m
}
