package tmdb

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/user/filmy/internal/config"
	"github.com/user/filmy/internal/model"
	"github.com/user/filmy/internal/utils"
)

func testClient(baseURL string) *Client {
	return NewClient(&config.Config{
		TMDBToken:        "test-token",
		TMDBBaseURL:      baseURL,
		TMDBImageBaseURL: "https://image.test/w500",
	})
}

func TestSearchMoviesFormatsResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.URL.Query().Get("query"); got != "matrix" {
			t.Errorf("query = %q", got)
		}
		fmt.Fprint(w, `{"page":1,"results":[
			{"id":603,"title":"The Matrix","release_date":"1999-03-30",
			 "vote_average":8.2,"genre_ids":[28,878],"poster_path":"/matrix.jpg"},
			{"id":0,"title":"ghost row"}
		]}`)
	}))
	defer srv.Close()

	items, err := testClient(srv.URL).SearchMovies(context.Background(), "matrix", 1)
	if err != nil {
		t.Fatalf("SearchMovies: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1 (zero-id rows dropped)", len(items))
	}

	item := items[0]
	if item.Title != "The Matrix" || item.Type != model.TypeMovie {
		t.Errorf("item = %+v", item)
	}
	if len(item.Genres) != 2 || item.Genres[0] != "Action" {
		t.Errorf("Genres = %v, want mapped names", item.Genres)
	}
	if item.PosterURL != "https://image.test/w500/matrix.jpg" {
		t.Errorf("PosterURL = %q", item.PosterURL)
	}
}

func TestSearchTVUsesNameFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results":[{"id":1396,"name":"Breaking Bad","first_air_date":"2008-01-20","genre_ids":[18]}]}`)
	}))
	defer srv.Close()

	items, err := testClient(srv.URL).SearchTV(context.Background(), "breaking", 1)
	if err != nil {
		t.Fatalf("SearchTV: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d items", len(items))
	}
	if items[0].Title != "Breaking Bad" || items[0].ReleaseDate != "2008-01-20" || items[0].Type != model.TypeTV {
		t.Errorf("item = %+v", items[0])
	}
}

func TestListCaching(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		fmt.Fprint(w, `{"results":[{"id":1,"title":"Once"}]}`)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := c.PopularMovies(ctx, 1); err != nil {
			t.Fatalf("PopularMovies: %v", err)
		}
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("upstream hit %d times, want 1", got)
	}
}

func TestUpstreamFailureIsErrUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Trending(context.Background(), model.TypeMovie, "week")
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
}

func TestDiscoverOptionsDateFieldPerType(t *testing.T) {
	var lastQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lastQuery = r.URL.Query()
		fmt.Fprint(w, `{"results":[]}`)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	opts := DiscoverOptions{
		WithGenres:     "28",
		SortBy:         "vote_average.desc",
		VoteCountGTE:   100,
		ReleaseDateGTE: "2020-01-01",
	}

	if _, err := c.DiscoverMovies(context.Background(), opts); err != nil {
		t.Fatalf("DiscoverMovies: %v", err)
	}
	if got := lastQuery["primary_release_date.gte"]; len(got) == 0 || got[0] != "2020-01-01" {
		t.Errorf("movie date param = %v", lastQuery)
	}

	if _, err := c.DiscoverTV(context.Background(), opts); err != nil {
		t.Fatalf("DiscoverTV: %v", err)
	}
	if got := lastQuery["first_air_date.gte"]; len(got) == 0 || got[0] != "2020-01-01" {
		t.Errorf("tv date param = %v", lastQuery)
	}
}

func TestDetailsCached(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		fmt.Fprint(w, `{"id":603,"title":"The Matrix","genres":[{"id":28,"name":"Action"}]}`)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		item, err := c.Details(ctx, model.TypeMovie, 603)
		if err != nil {
			t.Fatalf("Details: %v", err)
		}
		if item.Title != "The Matrix" || len(item.Genres) != 1 {
			t.Errorf("item = %+v", item)
		}
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("upstream hit %d times, want 1", got)
	}
}

func TestTTLCacheExpiry(t *testing.T) {
	cache := utils.NewTTLCache[string](4, 10*time.Millisecond)
	cache.Set("k", "v")
	if got, ok := cache.Get("k"); !ok || got != "v" {
		t.Fatalf("Get = %q, %v", got, ok)
	}
	time.Sleep(20 * time.Millisecond)
	if _, ok := cache.Get("k"); ok {
		t.Error("entry survived past its TTL")
	}
}
