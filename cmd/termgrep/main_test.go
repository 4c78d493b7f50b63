package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withFlags(t *testing.T, path, m string) {
	t.Helper()
	oldTerms, oldMode, oldFloor, oldAt := *termsFile, *mode, *floor, *at
	t.Cleanup(func() {
		*termsFile, *mode, *floor, *at = oldTerms, oldMode, oldFloor, oldAt
	})
	*termsFile, *mode = path, m
}

func writeTerms(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "terms.txt")
	require.Nil(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRun(t *testing.T) {
	path := writeTerms(t, "good\nfood\nfoo\nfoods\nbar\nhello\n")

	tests := []struct {
		mode  string
		query string
		want  string
	}{
		{"regexp", "fo+d?", "foo\nfood\n"},
		{"fuzzy", "food", "foo\nfood\nfoods\ngood\n"},
		{"wildcard", "*oo?", "food\ngood\n"},
		{"prefix", "foo", "foo\nfood\nfoods\n"},
		{"regexp", "#", ""},
	}
	for _, tt := range tests {
		t.Run(tt.mode+"/"+tt.query, func(t *testing.T) {
			withFlags(t, path, tt.mode)
			var out bytes.Buffer
			require.Nil(t, run(tt.query, &out))
			assert.Equal(t, tt.want, out.String())
		})
	}
}

func TestRun_Floor(t *testing.T) {
	withFlags(t, "", "regexp")
	*floor = true

	*at = "bobbz"
	var out bytes.Buffer
	require.Nil(t, run("bob|bobby|cat", &out))
	assert.Equal(t, "bobby\n", out.String())

	*at = "a"
	assert.NotNil(t, run("bob|bobby|cat", &bytes.Buffer{}))
}

func TestRun_Errors(t *testing.T) {
	path := writeTerms(t, "a\n")

	withFlags(t, path, "bogus")
	assert.ErrorContains(t, run("a", &bytes.Buffer{}), "unknown mode")

	withFlags(t, path, "regexp")
	assert.NotNil(t, run("ab(c", &bytes.Buffer{}))

	withFlags(t, filepath.Join(t.TempDir(), "missing.txt"), "regexp")
	assert.ErrorIs(t, run("a", &bytes.Buffer{}), os.ErrNotExist)
}
