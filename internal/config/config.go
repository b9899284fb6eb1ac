package config

import (
	"github.com/urfave/cli/v2"

	"github.com/drewfead/watchlist/internal/omdb"
)

// Config holds the credentials and endpoints resolved once per process.
// Missing keys are not rejected here; the providers report them.
type Config struct {
	OMDbAPIKey       string
	OMDbBaseURL      string
	NotionAPIKey     string
	NotionDatabaseID string
	LogLevel         string
	LogEncoding      string
}

const (
	OMDbAPIKeyFlag       = "omdb-api-key"
	OMDbBaseURLFlag      = "omdb-base-url"
	NotionAPIKeyFlag     = "notion-api-key"
	NotionDatabaseIDFlag = "notion-database-id"
	VerbosityFlag        = "verbosity"
	LogEncodingFlag      = "log-encoding"
)

// Flags returns new flag instances on every call. urfave/cli writes values
// read from the environment back into the flag, so instances are not shared
// between apps.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    OMDbAPIKeyFlag,
			Usage:   "API key for the OMDb movie metadata API",
			EnvVars: []string{"OMDB_API_KEY"},
		},
		&cli.StringFlag{
			Name:    OMDbBaseURLFlag,
			Usage:   "Base URL of the OMDb API",
			EnvVars: []string{"OMDB_BASE_URL"},
			Value:   omdb.DefaultBaseURL,
		},
		&cli.StringFlag{
			Name:    NotionAPIKeyFlag,
			Usage:   "Notion integration token",
			EnvVars: []string{"NOTION_API_KEY"},
		},
		&cli.StringFlag{
			Name:    NotionDatabaseIDFlag,
			Usage:   "ID of the Notion database new movies are added to",
			EnvVars: []string{"NOTION_DATABASE_ID"},
		},
		&cli.StringFlag{
			Name:    VerbosityFlag,
			Usage:   "Set the verbosity of the logger",
			EnvVars: []string{"LOG_LEVEL"},
			Value:   "info",
		},
		&cli.StringFlag{
			Name:    LogEncodingFlag,
			Usage:   "Set the log encoding (console or json)",
			EnvVars: []string{"LOG_ENCODING"},
			Value:   "console",
		},
	}
}

func FromContext(c *cli.Context) Config {
	return Config{
		OMDbAPIKey:       c.String(OMDbAPIKeyFlag),
		OMDbBaseURL:      c.String(OMDbBaseURLFlag),
		NotionAPIKey:     c.String(NotionAPIKeyFlag),
		NotionDatabaseID: c.String(NotionDatabaseIDFlag),
		LogLevel:         c.String(VerbosityFlag),
		LogEncoding:      c.String(LogEncodingFlag),
	}
}
