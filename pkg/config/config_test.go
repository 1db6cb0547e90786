package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitIsIndependentCopy(t *testing.T) {
	a := Init()
	a.Selectors[SelectorEditor] = "textarea"
	a.Routes[0].Pattern = "/changed"

	b := Init()
	assert.Equal(t, "#brace-editor textarea", b.Selector(SelectorEditor))
	assert.Equal(t, "/superset/sql_json/", b.Routes[0].Pattern)
	assert.Equal(t, 4*time.Second, b.Timeouts.Command.Duration)
	assert.Equal(t, 10, b.MaxRenderedRows)
	assert.NoError(t, b.Validate())
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sqllab.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
max-rendered-rows = 20

[target]
base-url = "https://superset.example.com"

[timeouts]
wait = "45s"

[selectors]
editor = ".ace_text-input"

[[routes]]
alias = "sqlLabQuery"
method = "POST"
pattern = "/api/v1/sqllab/execute/"
`), 0644))

	c := Init()
	require.NoError(t, c.Load(path))
	assert.Equal(t, "https://superset.example.com", c.Target.BaseURL)
	assert.Equal(t, "admin", c.Target.Username)
	assert.Equal(t, 45*time.Second, c.Timeouts.Wait.Duration)
	assert.Equal(t, 4*time.Second, c.Timeouts.Command.Duration)
	assert.Equal(t, ".ace_text-input", c.Selector(SelectorEditor))
	assert.Equal(t, "#js-sql-toolbar button", c.Selector(SelectorToolbarButton))
	require.Len(t, c.Routes, 1)
	assert.Equal(t, "/api/v1/sqllab/execute/", c.Routes[0].Pattern)
	assert.Equal(t, 20, c.MaxRenderedRows)
}

func TestLoadBadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[timeouts]\nwait = \"soon\"\n"), 0644))
	assert.Error(t, Init().Load(path))
}

func TestApplyEnv(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("SQLLAB_USERNAME=alice\nSQLLAB_ORACLE_DSN=file:examples.db\n"), 0644))
	t.Setenv(EnvBaseURL, "http://superset:8088")
	t.Setenv(EnvUsername, "bob")
	t.Cleanup(func() { os.Unsetenv(EnvOracleDSN) })

	c := Init()
	require.NoError(t, c.ApplyEnv(envFile))
	assert.Equal(t, "http://superset:8088", c.Target.BaseURL)
	// godotenv never overrides variables that are already set
	assert.Equal(t, "bob", c.Target.Username)
	assert.Equal(t, "file:examples.db", c.Oracle.DSN)
}

func TestValidate(t *testing.T) {
	cases := []func(c *Config){
		func(c *Config) { c.Target.BaseURL = "localhost:8088" },
		func(c *Config) { c.Target.BaseURL = "ftp://superset" },
		func(c *Config) { c.MaxRenderedRows = 0 },
		func(c *Config) { c.Oracle.DSN = "dsn" },
		func(c *Config) { c.Artifacts.Minio.Endpoint = "minio:9000" },
		func(c *Config) { c.Routes = append(c.Routes, c.Routes[0]) },
		func(c *Config) { c.Timeouts.Wait.Duration = 0 },
	}
	for i, mutate := range cases {
		c := Init()
		mutate(c)
		assert.True(t, errors.IsNotValid(c.Validate()), "case %d", i)
	}
}

func TestDurationText(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("1m30s")))
	assert.Equal(t, 90*time.Second, d.Duration)
	text, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "1m30s", string(text))
}
