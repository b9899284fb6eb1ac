package omdb

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/drewfead/watchlist/internal/core"
	"github.com/drewfead/watchlist/internal/fetch"
)

const DefaultBaseURL = "http://www.omdbapi.com/"

type Client struct {
	BaseURL string
	APIKey  string
}

// Lookup fetches a movie by exact title. A nil record with a nil error means
// the provider had no data: either it answered Response=False or it answered
// with a non-success status. Transport failures and undecodable bodies are
// returned as errors.
func (c *Client) Lookup(ctx context.Context, title string) (*core.MovieRecord, error) {
	ctx, span := otel.Tracer("omdb.client").Start(ctx, "lookup")
	defer span.End()
	span.SetAttributes(attribute.String("movie.title", title))

	lookupURL, err := c.lookupURL(title)
	if err != nil {
		return nil, err
	}

	resp, err := fetch.JSON[response](ctx, lookupURL, map[string]string{
		"Accept": "application/json",
	})
	var statusErr *fetch.StatusError
	if errors.As(err, &statusErr) {
		zap.L().Info("omdb lookup rejected",
			zap.String("title", title),
			zap.Int("status", statusErr.StatusCode),
		)
		span.SetAttributes(attribute.Bool("movie.found", false))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("omdb lookup for %q: %w", title, err)
	}

	if !resp.found() {
		zap.L().Info("omdb has no match", zap.String("title", title), zap.String("reason", resp.Error))
		span.SetAttributes(attribute.Bool("movie.found", false))
		return nil, nil
	}

	span.SetAttributes(attribute.Bool("movie.found", true))
	return &core.MovieRecord{
		Title:       core.OrNotAvailable(resp.Title),
		Director:    core.OrNotAvailable(resp.Director),
		RunningTime: core.OrNotAvailable(resp.Runtime),
		Genre:       core.OrNotAvailable(resp.Genre),
		ReleaseYear: core.OrNotAvailable(resp.Year),
		Plot:        core.OrNotAvailable(resp.Plot),
		ImdbRating:  core.OrNotAvailable(resp.ImdbRating),
	}, nil
}

func (c *Client) lookupURL(title string) (string, error) {
	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid omdb base url %q: %w", base, err)
	}
	q := u.Query()
	q.Set("t", title)
	q.Set("apikey", c.APIKey)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
