package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/pprof"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/urfave/cli/v2"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"

	"github.com/drewfead/watchlist/internal/config"
	"github.com/drewfead/watchlist/internal/core"
	"github.com/drewfead/watchlist/internal/handler"
	"github.com/drewfead/watchlist/internal/notion"
	"github.com/drewfead/watchlist/internal/omdb"
)

var (
	profileFlag = &cli.BoolFlag{
		Name:  "profile",
		Usage: "Enable pprof profiling for this run",
		Value: false,
	}

	outputFormatFlag = &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Set the output format",
		Value:   "json",
	}

	eventFlag = &cli.StringFlag{
		Name:  "event",
		Usage: "Read the API Gateway proxy event from this file instead of stdin",
	}
)

func flags(extra ...cli.Flag) []cli.Flag {
	return append(config.Flags(), extra...)
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	switch cfg.LogEncoding {
	case "json":
		zapCfg = zap.NewProductionConfig()
	case "console", "":
		zapCfg = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("unsupported log encoding %s", cfg.LogEncoding)
	}
	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to parse log level: %w", err)
	}
	zapCfg.Level = level
	return zapCfg.Build()
}

func setup(ctx *cli.Context) ([]func(), error) {
	logger, err := newLogger(config.FromContext(ctx))
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)
	if _, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
		zap.L().Debug(fmt.Sprintf(format, args...))
	})); err != nil {
		zap.L().Warn("Failed to set GOMAXPROCS", zap.Error(err))
	}

	out := []func(){
		func() { _ = logger.Sync() },
	}

	if ctx.Bool(profileFlag.Name) {
		cpuProfile, err := os.Create("/tmp/cpu_profile.prof")
		if err != nil {
			return out, err
		}
		if err := pprof.StartCPUProfile(cpuProfile); err != nil {
			return out, err
		}
		out = append(out, func() {
			pprof.StopCPUProfile()
			cpuProfile.Close()
		})

		memProfile, err := os.Create("/tmp/memory_profile.prof")
		if err != nil {
			return out, err
		}
		out = append(out, func() {
			defer memProfile.Close()
			runtime.GC()
			if err := pprof.WriteHeapProfile(memProfile); err != nil {
				zap.L().Error("Failed to write heap profile", zap.Error(err))
			}
		})
	}

	return out, nil
}

func cleanup(steps ...func()) {
	for i := len(steps) - 1; i >= 0; i-- {
		steps[i]()
	}
}

// run wraps a command action with setup and cleanup.
func run(action func(c *cli.Context) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		cleanupSteps, err := setup(c)
		defer cleanup(cleanupSteps...)
		if err != nil {
			return err
		}
		return action(c)
	}
}

func results(ctx *cli.Context, v any) error {
	switch ctx.String(outputFormatFlag.Name) {
	case "json":
		enc := json.NewEncoder(ctx.App.Writer)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(v)
	default:
		return fmt.Errorf("unsupported output format %s", ctx.String(outputFormatFlag.Name))
	}
}

func newFetcher(cfg config.Config) *omdb.Client {
	return &omdb.Client{
		BaseURL: cfg.OMDbBaseURL,
		APIKey:  cfg.OMDbAPIKey,
	}
}

// NewHandler wires the process-lifetime clients into a request handler.
func NewHandler(cfg config.Config) *handler.Handler {
	return &handler.Handler{
		Fetcher: newFetcher(cfg),
		Writer:  notion.NewWriter(cfg.NotionAPIKey, cfg.NotionDatabaseID),
	}
}

type invokeResult struct {
	StatusCode int `json:"statusCode"`
	Body       any `json:"body"`
}

func invokeResultFrom(resp events.APIGatewayProxyResponse) invokeResult {
	var body any
	if err := json.Unmarshal([]byte(resp.Body), &body); err != nil {
		body = resp.Body
	}
	return invokeResult{StatusCode: resp.StatusCode, Body: body}
}

func readEvent(c *cli.Context) (events.APIGatewayProxyRequest, error) {
	var r io.Reader = c.App.Reader
	if path := c.String(eventFlag.Name); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return events.APIGatewayProxyRequest{}, err
		}
		defer f.Close()
		r = f
	}
	var req events.APIGatewayProxyRequest
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return events.APIGatewayProxyRequest{}, fmt.Errorf("failed to read event: %w", err)
	}
	return req, nil
}

func titleEvent(title string) (events.APIGatewayProxyRequest, error) {
	body, err := json.Marshal(core.MovieQuery{Title: title})
	if err != nil {
		return events.APIGatewayProxyRequest{}, err
	}
	return events.APIGatewayProxyRequest{
		HTTPMethod: "POST",
		Body:       string(body),
	}, nil
}

var Watchlist = []*cli.Command{
	{
		Name:      "add",
		Usage:     "Look a movie up on OMDb and add it to the Notion database",
		ArgsUsage: "[movie title]",
		Flags:     flags(outputFormatFlag, profileFlag),
		Action: run(func(c *cli.Context) error {
			req, err := titleEvent(strings.Join(c.Args().Slice(), " "))
			if err != nil {
				return err
			}
			resp, err := NewHandler(config.FromContext(c)).Handle(c.Context, req)
			if err != nil {
				return err
			}
			return results(c, invokeResultFrom(resp))
		}),
	},
	{
		Name:      "lookup",
		Usage:     "Look a movie up on OMDb without writing anything",
		ArgsUsage: "[movie title]",
		Flags:     flags(outputFormatFlag, profileFlag),
		Action: run(func(c *cli.Context) error {
			movie, err := newFetcher(config.FromContext(c)).Lookup(c.Context, strings.Join(c.Args().Slice(), " "))
			if err != nil {
				return err
			}
			if movie == nil {
				return cli.Exit("movie not found", 1)
			}
			return results(c, movie)
		}),
	},
	{
		Name:  "invoke",
		Usage: "Run the handler on an API Gateway proxy event read from stdin or --event",
		Flags: flags(outputFormatFlag, profileFlag, eventFlag),
		Action: run(func(c *cli.Context) error {
			req, err := readEvent(c)
			if err != nil {
				return err
			}
			resp, err := NewHandler(config.FromContext(c)).Handle(c.Context, req)
			if err != nil {
				return err
			}
			return results(c, invokeResultFrom(resp))
		}),
	},
}

// StartLambda resolves the configuration once and hands the handler to the
// Lambda runtime. It does not return while the runtime is serving.
func StartLambda(c *cli.Context) error {
	if _, err := setup(c); err != nil {
		return err
	}
	h := NewHandler(config.FromContext(c))
	zap.L().Info("starting lambda handler")
	lambda.Start(h.Handle)
	return nil
}

// LambdaFlags are read from the function's environment.
func LambdaFlags() []cli.Flag {
	return config.Flags()
}
