package main

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestSplitCSV(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"a,b,c", []string{"a", "b", "c"}},
		{" a , b , c ", []string{"a", "b", "c"}},
		{"a,,c", []string{"a", "c"}},
		{"", nil},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, splitCSV(c.in), c.in)
	}
}

func TestEnvOr(t *testing.T) {
	t.Setenv("SALESD_TEST_VAR", "")
	assert.Equal(t, "fallback", envOr("SALESD_TEST_VAR", "fallback"))
	t.Setenv("SALESD_TEST_VAR", " :9000 ")
	assert.Equal(t, ":9000", envOr("SALESD_TEST_VAR", "fallback"))
}

func TestNewLoggerLevels(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, newLogger("json", "DEBUG").GetLevel())
	assert.Equal(t, zerolog.Disabled, newLogger("console", "off").GetLevel())
	assert.Equal(t, zerolog.InfoLevel, newLogger("", "whatever").GetLevel())
}
