package config_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/drewfead/watchlist/internal/config"
	"github.com/drewfead/watchlist/internal/omdb"
)

func resolve(t *testing.T, args ...string) config.Config {
	t.Helper()
	var cfg config.Config
	app := &cli.App{
		Name:  "test",
		Flags: config.Flags(),
		Action: func(c *cli.Context) error {
			cfg = config.FromContext(c)
			return nil
		},
	}
	require.NoError(t, app.Run(append([]string{"test"}, args...)))
	return cfg
}

// unsetenv removes key for the duration of the test. An empty but present
// variable would count as a value.
func unsetenv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func Test_Unit_FromEnvironment(t *testing.T) {
	t.Setenv("OMDB_API_KEY", "omdb")
	unsetenv(t, "OMDB_BASE_URL")
	t.Setenv("NOTION_API_KEY", "notion")
	t.Setenv("NOTION_DATABASE_ID", "db")
	unsetenv(t, "LOG_LEVEL")
	t.Setenv("LOG_ENCODING", "json")

	cfg := resolve(t)

	assert.Equal(t, config.Config{
		OMDbAPIKey:       "omdb",
		OMDbBaseURL:      omdb.DefaultBaseURL,
		NotionAPIKey:     "notion",
		NotionDatabaseID: "db",
		LogLevel:         "info",
		LogEncoding:      "json",
	}, cfg)
}

func Test_Unit_FlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("NOTION_DATABASE_ID", "from-env")

	cfg := resolve(t, "--notion-database-id", "from-flag", "--verbosity", "debug")

	assert.Equal(t, "from-flag", cfg.NotionDatabaseID)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func Test_Unit_MissingKeysAreNotRejected(t *testing.T) {
	unsetenv(t, "OMDB_API_KEY")
	unsetenv(t, "NOTION_API_KEY")
	unsetenv(t, "NOTION_DATABASE_ID")

	cfg := resolve(t)

	assert.Empty(t, cfg.OMDbAPIKey)
	assert.Empty(t, cfg.NotionAPIKey)
	assert.Empty(t, cfg.NotionDatabaseID)
}
