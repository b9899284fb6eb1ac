package notion

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/jomei/notionapi"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/drewfead/watchlist/internal/core"
)

// Property names of the target database. They must match its schema exactly.
const (
	PropertyName        = "Name"
	PropertyDirector    = "Director"
	PropertyRunningTime = "Running Time"
	PropertyGenre       = "Genre"
	PropertyReleaseYear = "Release Year"
	PropertyPlot        = "Plot"
	PropertyImdbRating  = "IMDB Rating"
)

type Writer struct {
	DatabaseID string
	client     *notionapi.Client
}

type Option func(*options)

type options struct {
	httpClient *http.Client
}

// WithHTTPClient overrides the HTTP client used to reach the Notion API.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

func NewWriter(apiKey, databaseID string, opts ...Option) *Writer {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	var clientOpts []notionapi.ClientOption
	if o.httpClient != nil {
		clientOpts = append(clientOpts, notionapi.WithHTTPClient(o.httpClient))
	}
	return &Writer{
		DatabaseID: databaseID,
		client:     notionapi.NewClient(notionapi.Token(apiKey), clientOpts...),
	}
}

// Create adds one page for movie to the database and returns its ID. Nothing
// is checked beforehand, so calling it twice creates two pages.
func (w *Writer) Create(ctx context.Context, movie core.MovieRecord) (string, error) {
	ctx, span := otel.Tracer("notion.writer").Start(ctx, "create")
	defer span.End()
	span.SetAttributes(attribute.String("movie.title", movie.Title))

	props, err := Properties(movie)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	page, err := w.client.Page.Create(ctx, &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: notionapi.DatabaseID(w.DatabaseID),
		},
		Properties: props,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", fmt.Errorf("failed to create notion page for %q: %w", movie.Title, err)
	}
	return page.ID.String(), nil
}

// Properties maps movie onto the database schema. A rating of "N/A" becomes a
// null number; any other rating must parse as a float.
func Properties(movie core.MovieRecord) (notionapi.Properties, error) {
	rating, err := ratingProperty(movie.ImdbRating)
	if err != nil {
		return nil, err
	}
	return notionapi.Properties{
		PropertyName: notionapi.TitleProperty{
			Title: richText(movie.Title),
		},
		PropertyDirector:    notionapi.RichTextProperty{RichText: richText(movie.Director)},
		PropertyRunningTime: notionapi.RichTextProperty{RichText: richText(movie.RunningTime)},
		PropertyGenre:       notionapi.RichTextProperty{RichText: richText(movie.Genre)},
		PropertyReleaseYear: notionapi.RichTextProperty{RichText: richText(movie.ReleaseYear)},
		PropertyPlot:        notionapi.RichTextProperty{RichText: richText(movie.Plot)},
		PropertyImdbRating:  rating,
	}, nil
}

func richText(content string) []notionapi.RichText {
	return []notionapi.RichText{
		{Text: &notionapi.Text{Content: content}},
	}
}

func ratingProperty(rating string) (notionapi.Property, error) {
	if rating == core.NotAvailable {
		return nullNumberProperty{}, nil
	}
	n, err := strconv.ParseFloat(rating, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid imdb rating %q: %w", rating, err)
	}
	return notionapi.NumberProperty{Number: n}, nil
}

// nullNumberProperty clears a number property. notionapi.NumberProperty
// cannot express null since its Number is a plain float64.
type nullNumberProperty struct {
	Number *float64 `json:"number"`
}

func (nullNumberProperty) GetID() string {
	return ""
}

func (nullNumberProperty) GetType() notionapi.PropertyType {
	return notionapi.PropertyTypeNumber
}
