package handler

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/drewfead/watchlist/internal/core"
)

var (
	ErrMissingBody   = errors.New("event body is missing or malformed")
	ErrTitleRequired = errors.New("movie title is required")
	ErrNotFound      = errors.New("movie not found")
)

type clientError struct {
	status  int
	message string
}

var clientErrors = map[error]clientError{
	ErrMissingBody:   {http.StatusBadRequest, "Event body is missing or malformed"},
	ErrTitleRequired: {http.StatusBadRequest, "Movie title is required"},
	ErrNotFound:      {http.StatusNotFound, "Movie not found or API error."},
}

// MovieFetcher looks a movie up by title. A nil record with a nil error means
// the provider had nothing for that title.
type MovieFetcher interface {
	Lookup(ctx context.Context, title string) (*core.MovieRecord, error)
}

type RecordWriter interface {
	Create(ctx context.Context, movie core.MovieRecord) (string, error)
}

// Handler adds a movie to the watchlist database for each request. Fetcher and
// Writer are built once per process and shared across invocations.
type Handler struct {
	Fetcher MovieFetcher
	Writer  RecordWriter
	Logger  *zap.Logger
}

var validate = validator.New()

const titleKey = "title"

// Handle serves one API Gateway proxy request. Client errors and unknown
// titles are answered with a 4xx response; anything else is returned as an
// error for the runtime to report.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	ctx, span := otel.Tracer("handler").Start(ctx, "handle")
	defer span.End()

	logger := h.logger().With(zap.String("invocation", invocationID(ctx)))
	logger.Debug("received event", zap.Any("event", req))

	title, err := h.add(ctx, logger, req)
	if ce, ok := asClientError(err); ok {
		logger.Info("request rejected", zap.Int("status", ce.status), zap.Error(err))
		return jsonResponse(ce.status, errorBody{Error: ce.message})
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Error("failed to add movie", zap.Error(err))
		return events.APIGatewayProxyResponse{}, err
	}

	return jsonResponse(http.StatusOK, messageBody{
		Message: fmt.Sprintf("Added '%s' to Notion.", title),
	})
}

func (h *Handler) add(ctx context.Context, logger *zap.Logger, req events.APIGatewayProxyRequest) (string, error) {
	query, err := ParseQuery(req)
	if err != nil {
		return "", err
	}

	movie, err := h.Fetcher.Lookup(ctx, query.Title)
	if err != nil {
		return "", err
	}
	if movie == nil {
		return "", ErrNotFound
	}

	pageID, err := h.Writer.Create(ctx, *movie)
	if err != nil {
		return "", err
	}
	logger.Info("added movie", zap.String("title", query.Title), zap.String("page", pageID))
	return query.Title, nil
}

// ParseQuery extracts the movie query from the request body. The title is
// returned exactly as sent.
func ParseQuery(req events.APIGatewayProxyRequest) (core.MovieQuery, error) {
	body := []byte(req.Body)
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			return core.MovieQuery{}, fmt.Errorf("failed to decode base64 body: %w", err)
		}
		body = decoded
	}
	if len(body) == 0 {
		return core.MovieQuery{}, ErrMissingBody
	}

	// Decoded as a map so only the exact "title" key counts; struct decoding
	// would also accept "Title" or "TITLE".
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return core.MovieQuery{}, fmt.Errorf("failed to parse event body: %w", err)
	}
	var query core.MovieQuery
	if raw, ok := fields[titleKey]; ok {
		if err := json.Unmarshal(raw, &query.Title); err != nil {
			return core.MovieQuery{}, fmt.Errorf("failed to parse title: %w", err)
		}
	}
	if err := validate.Struct(query); err != nil {
		return core.MovieQuery{}, ErrTitleRequired
	}
	return query, nil
}

func (h *Handler) logger() *zap.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return zap.L()
}

func asClientError(err error) (clientError, bool) {
	if err == nil {
		return clientError{}, false
	}
	for known, ce := range clientErrors {
		if errors.Is(err, known) {
			return ce, true
		}
	}
	return clientError{}, false
}

func invocationID(ctx context.Context) string {
	if lc, ok := lambdacontext.FromContext(ctx); ok && lc.AwsRequestID != "" {
		return lc.AwsRequestID
	}
	return uuid.NewString()
}

type messageBody struct {
	Message string `json:"message"`
}

type errorBody struct {
	Error string `json:"error"`
}

func jsonResponse(status int, payload any) (events.APIGatewayProxyResponse, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		return events.APIGatewayProxyResponse{}, fmt.Errorf("failed to encode response: %w", err)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
		Body: string(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))),
	}, nil
}
