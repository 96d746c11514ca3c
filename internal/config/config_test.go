package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jcorbin/goforth/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	want := config.Default()
	want.Trace = true
	want.Timeout = config.Duration{Duration: 5 * time.Second}
	want.Stack = 64
	want.Prelude = false
	want.Image = config.Image{Path: "images.db", Save: "work"}

	for _, tc := range []struct {
		name, content string
	}{
		{"goforth.toml", `
trace = true
timeout = "5s"
stack = 64
prelude = false

[image]
path = "images.db"
save = "work"
`},
		{"goforth.yaml", `
trace: true
timeout: 5s
stack: 64
prelude: false
image:
  path: images.db
  save: work
`},
	} {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := config.Load(writeFile(t, tc.name, tc.content))
			require.NoError(t, err)
			assert.Equal(t, want, *cfg)
		})
	}
}

func TestLoad_errors(t *testing.T) {
	_, err := config.Load(writeFile(t, "goforth.ini", "trace=1"))
	assert.Error(t, err)

	_, err = config.Load(writeFile(t, "bad.toml", `timeout = "soon"`))
	assert.Error(t, err)

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
