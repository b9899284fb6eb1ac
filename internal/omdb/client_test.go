package omdb_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drewfead/watchlist/internal/core"
	"github.com/drewfead/watchlist/internal/omdb"
)

const inception = `{
	"Response": "True",
	"Title": "Inception",
	"Director": "Christopher Nolan",
	"Runtime": "148 min",
	"Genre": "Action, Sci-Fi",
	"Year": "2010",
	"Plot": "A thief who steals corporate secrets.",
	"imdbRating": "8.8"
}`

func fakeOMDb(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func Test_Unit_Lookup(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		expect *core.MovieRecord
	}{
		{
			name:   "found",
			status: http.StatusOK,
			body:   inception,
			expect: &core.MovieRecord{
				Title:       "Inception",
				Director:    "Christopher Nolan",
				RunningTime: "148 min",
				Genre:       "Action, Sci-Fi",
				ReleaseYear: "2010",
				Plot:        "A thief who steals corporate secrets.",
				ImdbRating:  "8.8",
			},
		},
		{
			name:   "absent fields default to N/A",
			status: http.StatusOK,
			body:   `{"Response":"True","Title":"Obscure"}`,
			expect: &core.MovieRecord{
				Title:       "Obscure",
				Director:    core.NotAvailable,
				RunningTime: core.NotAvailable,
				Genre:       core.NotAvailable,
				ReleaseYear: core.NotAvailable,
				Plot:        core.NotAvailable,
				ImdbRating:  core.NotAvailable,
			},
		},
		{
			name:   "empty fields are kept",
			status: http.StatusOK,
			body:   `{"Response":"True","Title":"Blank","Director":""}`,
			expect: &core.MovieRecord{
				Title:       "Blank",
				Director:    "",
				RunningTime: core.NotAvailable,
				Genre:       core.NotAvailable,
				ReleaseYear: core.NotAvailable,
				Plot:        core.NotAvailable,
				ImdbRating:  core.NotAvailable,
			},
		},
		{
			name:   "not found",
			status: http.StatusOK,
			body:   `{"Response":"False","Error":"Movie not found!"}`,
		},
		{
			name:   "invalid key",
			status: http.StatusUnauthorized,
			body:   `{"Response":"False","Error":"Invalid API key!"}`,
		},
		{
			name:   "server error",
			status: http.StatusInternalServerError,
			body:   `oops`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := fakeOMDb(t, tt.status, tt.body)
			client := &omdb.Client{BaseURL: srv.URL + "/", APIKey: "key"}

			actual, err := client.Lookup(context.Background(), "Inception")

			require.NoError(t, err)
			assert.Equal(t, tt.expect, actual)
		})
	}
}

func Test_Unit_Lookup_EncodesQuery(t *testing.T) {
	var gotTitle, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTitle = r.URL.Query().Get("t")
		gotKey = r.URL.Query().Get("apikey")
		_, _ = w.Write([]byte(`{"Response":"False"}`))
	}))
	defer srv.Close()

	client := &omdb.Client{BaseURL: srv.URL + "/", APIKey: "k&y"}
	_, err := client.Lookup(context.Background(), "Fast & Furious?")

	require.NoError(t, err)
	assert.Equal(t, "Fast & Furious?", gotTitle)
	assert.Equal(t, "k&y", gotKey)
}

func Test_Unit_Lookup_MalformedBody(t *testing.T) {
	srv := fakeOMDb(t, http.StatusOK, `not json`)
	client := &omdb.Client{BaseURL: srv.URL + "/", APIKey: "key"}

	actual, err := client.Lookup(context.Background(), "Inception")

	assert.Error(t, err)
	assert.Nil(t, actual)
}

func Test_Unit_Lookup_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL + "/"
	srv.Close()

	client := &omdb.Client{BaseURL: base, APIKey: "key"}
	actual, err := client.Lookup(context.Background(), "Inception")

	assert.Error(t, err)
	assert.Nil(t, actual)
}

func Test_Real_Lookup(t *testing.T) {
	key := os.Getenv("OMDB_API_KEY")
	if key == "" {
		t.Skip("OMDB_API_KEY not set")
	}
	client := &omdb.Client{APIKey: key}

	actual, err := client.Lookup(context.Background(), "The Matrix")
	require.NoError(t, err)
	require.NotNil(t, actual)
	assert.Equal(t, "The Matrix", actual.Title)
}
