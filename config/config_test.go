package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kylelemons/godebug/pretty"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Urethramancer/asm6502/config"
)

func writeConfig(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "build.toml")
	require.NoError(t, os.WriteFile(path, []byte(text), 0644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
origin = "$C000"
format = "bin"
output = "rom.bin"

[[extern]]
name = "CHROUT"
value = "$FFD2"

[[extern]]
name = "screen"
value = 1024
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	want := &config.Config{
		Origin: 0xC000,
		Format: config.FormatBin,
		Output: "rom.bin",
		Externs: []config.Extern{
			{Name: "CHROUT", Value: 0xFFD2},
			{Name: "screen", Value: 1024},
		},
	}
	if diff := pretty.Compare(want, cfg); diff != "" {
		t.Errorf("Load() diff (-want +got):\n%s", diff)
	}
	assert.Equal(t, map[string]uint16{"CHROUT": 0xFFD2, "screen": 1024}, cfg.ExternMap())
}

func TestLoadKeepsDefaults(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, `output = "a.out"`))
	require.NoError(t, err)
	assert.Equal(t, config.Address(0x0600), cfg.Origin)
	assert.Equal(t, config.FormatELF, cfg.Format)
	assert.Empty(t, cfg.ExternMap())
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
		err  error
	}{
		{"bad format", `format = "hex"`, config.ErrFormat},
		{"empty extern", "[[extern]]\nvalue = 1", config.ErrExtern},
		{"duplicate extern", "[[extern]]\nname = \"a\"\n[[extern]]\nname = \"a\"", config.ErrExtern},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, tt.text))
			assert.ErrorIs(t, err, tt.err)
		})
	}

	// Decoder errors carry the line number but not the cause.
	_, err := config.Load(writeConfig(t, `origin = "$10000"`))
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), config.ErrAddress.Error())
	}

	_, err = config.Load(writeConfig(t, `speed = 3`))
	assert.Error(t, err, "unknown keys are rejected")

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseAddress(t *testing.T) {
	tests := []struct {
		in   string
		want config.Address
	}{
		{"$0600", 0x0600},
		{"0xFFFC", 0xFFFC},
		{"1536", 0x0600},
		{" $ff ", 0xFF},
	}
	for _, tt := range tests {
		got, err := config.ParseAddress(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	for _, in := range []string{"", "$", "$G0", "-1", "70000"} {
		_, err := config.ParseAddress(in)
		assert.ErrorIs(t, err, config.ErrAddress, in)
	}
}
