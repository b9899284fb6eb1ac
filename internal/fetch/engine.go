package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/gocolly/colly/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// StatusError is returned when the remote answered with a non-success status.
// URL never includes the query string, which may carry credentials.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("got status code %d from %s", e.StatusCode, e.URL)
}

// JSON issues a single GET to target and decodes the response body into OUT.
// Non-success responses are reported as *StatusError.
func JSON[OUT any](
	ctx context.Context,
	target string,
	requestHeaders map[string]string,
) (OUT, error) {
	ctx, span := otel.Tracer("fetch").Start(ctx, "json")
	defer span.End()

	var out OUT
	var fetchErr error

	c := colly.NewCollector()
	// colly defaults to a 10s client timeout; these requests carry none.
	c.SetRequestTimeout(0)
	c.OnRequest(InjectRequestHeaders(requestHeaders))
	c.OnRequest(AbortWhenDone(ctx))
	c.OnResponse(LogResponses())
	c.OnResponse(func(r *colly.Response) {
		span.SetAttributes(attribute.Int("http.status_code", r.StatusCode))
		if err := json.Unmarshal(r.Body, &out); err != nil {
			fetchErr = fmt.Errorf("failed to decode response from %s: %w", requestURL(r.Request), err)
		}
	})
	c.OnError(ReportBadResponses(&fetchErr))

	err := c.Visit(target)
	if fetchErr == nil {
		fetchErr = err
	}
	if fetchErr == nil && ctx.Err() != nil {
		fetchErr = ctx.Err()
	}
	if fetchErr != nil {
		span.RecordError(fetchErr)
		span.SetStatus(codes.Error, fetchErr.Error())
		var zero OUT
		return zero, fetchErr
	}
	return out, nil
}

// ReportBadResponses stores a *StatusError for responses colly rejected on
// status. Transport failures carry no status and are stored as they are.
func ReportBadResponses(target *error) func(r *colly.Response, err error) {
	return func(r *colly.Response, err error) {
		if r != nil && r.StatusCode != 0 {
			*target = &StatusError{URL: requestURL(r.Request), StatusCode: r.StatusCode}
			return
		}
		*target = err
	}
}

func LogResponses() func(r *colly.Response) {
	return func(r *colly.Response) {
		zap.L().Debug("response",
			zap.Int("status", r.StatusCode),
			zap.String("url", requestURL(r.Request)),
			zap.String("body", string(r.Body)),
		)
	}
}

func InjectRequestHeaders(headers map[string]string) func(r *colly.Request) {
	return func(r *colly.Request) {
		for k, v := range headers {
			r.Headers.Set(k, v)
		}
	}
}

// AbortWhenDone drops the request if ctx is already cancelled.
func AbortWhenDone(ctx context.Context) func(r *colly.Request) {
	return func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
		}
	}
}

func requestURL(r *colly.Request) string {
	if r == nil || r.URL == nil {
		return ""
	}
	return withoutQuery(r.URL)
}

func withoutQuery(u *url.URL) string {
	stripped := *u
	stripped.RawQuery = ""
	stripped.Fragment = ""
	return stripped.String()
}
