package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/user/filmy/internal/config"
	"github.com/user/filmy/internal/model"
	"github.com/user/filmy/internal/utils"
	"golang.org/x/sync/singleflight"
)

// ErrUnavailable marks catalog failures so callers can tell "empty
// because no data" apart from "empty because upstream failed".
var ErrUnavailable = errors.New("tmdb: upstream unavailable")

// Client is a typed TMDB v3 client. List responses are cached for an
// hour, details for a day; concurrent misses for the same endpoint are
// collapsed through singleflight.
type Client struct {
	token        string
	baseURL      string
	imageBaseURL string
	httpClient   *http.Client

	listCache   *utils.TTLCache[[]model.CandidateItem]
	detailCache *utils.TTLCache[model.CandidateItem]
	group       singleflight.Group
}

// NewClient creates a catalog client from configuration.
func NewClient(cfg *config.Config) *Client {
	return &Client{
		token:        cfg.TMDBToken,
		baseURL:      cfg.TMDBBaseURL,
		imageBaseURL: cfg.TMDBImageBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		listCache:   utils.NewTTLCache[[]model.CandidateItem](512, time.Hour),
		detailCache: utils.NewTTLCache[model.CandidateItem](1024, 24*time.Hour),
	}
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, target interface{}) error {
	u := c.baseURL + endpoint
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s returned %d", ErrUnavailable, endpoint, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode %s: %w", endpoint, err)
	}
	return nil
}

type listResponse struct {
	Page         int           `json:"page"`
	Results      []itemPayload `json:"results"`
	TotalPages   int           `json:"total_pages"`
	TotalResults int           `json:"total_results"`
}

// itemPayload covers both movie and TV shapes; list and detail
// responses differ only in genres (ids vs embedded objects).
type itemPayload struct {
	ID            int     `json:"id"`
	Title         string  `json:"title"`
	Name          string  `json:"name"`
	OriginalTitle string  `json:"original_title"`
	OriginalName  string  `json:"original_name"`
	Overview      string  `json:"overview"`
	ReleaseDate   string  `json:"release_date"`
	FirstAirDate  string  `json:"first_air_date"`
	VoteAverage   float64 `json:"vote_average"`
	VoteCount     int     `json:"vote_count"`
	Popularity    float64 `json:"popularity"`
	PosterPath    string  `json:"poster_path"`
	BackdropPath  string  `json:"backdrop_path"`
	GenreIDs      []int   `json:"genre_ids"`
	Genres        []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"genres"`
}

// ImageURL expands a TMDB image path into a full URL.
func (c *Client) ImageURL(path string) string {
	if path == "" {
		return ""
	}
	return c.imageBaseURL + path
}

func (c *Client) formatItem(p itemPayload, mediaType string) model.CandidateItem {
	item := model.CandidateItem{
		ID:          p.ID,
		Type:        mediaType,
		Overview:    p.Overview,
		VoteAverage: p.VoteAverage,
		VoteCount:   p.VoteCount,
		Popularity:  p.Popularity,
		PosterURL:   c.ImageURL(p.PosterPath),
		BackdropURL: c.ImageURL(p.BackdropPath),
	}

	if mediaType == model.TypeTV {
		item.Title = p.Name
		item.OriginalTitle = p.OriginalName
		item.ReleaseDate = p.FirstAirDate
		item.Genres = model.GenreNames(p.GenreIDs, model.TVGenres)
	} else {
		item.Title = p.Title
		item.OriginalTitle = p.OriginalTitle
		item.ReleaseDate = p.ReleaseDate
		item.Genres = model.GenreNames(p.GenreIDs, model.MovieGenres)
	}

	// Detail responses embed genre objects instead of ids.
	if len(item.Genres) == 0 && len(p.Genres) > 0 {
		for _, g := range p.Genres {
			item.Genres = append(item.Genres, g.Name)
		}
	}
	if item.Title == "" {
		item.Title = "Unknown Title"
	}
	return item
}

// fetchList fetches and formats a list endpoint through the cache and
// singleflight.
func (c *Client) fetchList(ctx context.Context, endpoint string, params url.Values, mediaType string) ([]model.CandidateItem, error) {
	key := endpoint
	if len(params) > 0 {
		key += "?" + params.Encode()
	}
	if cached, ok := c.listCache.Get(key); ok {
		return cached, nil
	}

	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		var resp listResponse
		if err := c.get(ctx, endpoint, params, &resp); err != nil {
			return nil, err
		}
		items := make([]model.CandidateItem, 0, len(resp.Results))
		for _, p := range resp.Results {
			if p.ID == 0 {
				continue
			}
			items = append(items, c.formatItem(p, mediaType))
		}
		c.listCache.Set(key, items)
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return val.([]model.CandidateItem), nil
}

// SearchMovies searches the movie catalog.
func (c *Client) SearchMovies(ctx context.Context, query string, page int) ([]model.CandidateItem, error) {
	return c.fetchList(ctx, "/search/movie", url.Values{
		"query": {query},
		"page":  {strconv.Itoa(page)},
	}, model.TypeMovie)
}

// SearchTV searches the TV catalog.
func (c *Client) SearchTV(ctx context.Context, query string, page int) ([]model.CandidateItem, error) {
	return c.fetchList(ctx, "/search/tv", url.Values{
		"query": {query},
		"page":  {strconv.Itoa(page)},
	}, model.TypeTV)
}

// PopularMovies returns the popular movie list.
func (c *Client) PopularMovies(ctx context.Context, page int) ([]model.CandidateItem, error) {
	return c.fetchList(ctx, "/movie/popular", pageParams(page), model.TypeMovie)
}

// PopularTV returns the popular TV list.
func (c *Client) PopularTV(ctx context.Context, page int) ([]model.CandidateItem, error) {
	return c.fetchList(ctx, "/tv/popular", pageParams(page), model.TypeTV)
}

// TopRatedMovies returns the top-rated movie list.
func (c *Client) TopRatedMovies(ctx context.Context, page int) ([]model.CandidateItem, error) {
	return c.fetchList(ctx, "/movie/top_rated", pageParams(page), model.TypeMovie)
}

// TopRatedTV returns the top-rated TV list.
func (c *Client) TopRatedTV(ctx context.Context, page int) ([]model.CandidateItem, error) {
	return c.fetchList(ctx, "/tv/top_rated", pageParams(page), model.TypeTV)
}

// Trending returns trending content for a media type ("movie"|"tv")
// over a time window ("day"|"week").
func (c *Client) Trending(ctx context.Context, mediaType, window string) ([]model.CandidateItem, error) {
	return c.fetchList(ctx, fmt.Sprintf("/trending/%s/%s", mediaType, window), nil, mediaType)
}

// SimilarMovies returns movies similar to the given one.
func (c *Client) SimilarMovies(ctx context.Context, movieID int) ([]model.CandidateItem, error) {
	return c.fetchList(ctx, fmt.Sprintf("/movie/%d/similar", movieID), nil, model.TypeMovie)
}

// SimilarTV returns shows similar to the given one.
func (c *Client) SimilarTV(ctx context.Context, tvID int) ([]model.CandidateItem, error) {
	return c.fetchList(ctx, fmt.Sprintf("/tv/%d/similar", tvID), nil, model.TypeTV)
}

// MovieRecommendations returns TMDB's own recommendations for a movie.
func (c *Client) MovieRecommendations(ctx context.Context, movieID int) ([]model.CandidateItem, error) {
	return c.fetchList(ctx, fmt.Sprintf("/movie/%d/recommendations", movieID), nil, model.TypeMovie)
}

// TVRecommendations returns TMDB's own recommendations for a show.
func (c *Client) TVRecommendations(ctx context.Context, tvID int) ([]model.CandidateItem, error) {
	return c.fetchList(ctx, fmt.Sprintf("/tv/%d/recommendations", tvID), nil, model.TypeTV)
}

// DiscoverOptions are the filters the recommendation core uses against
// the discover endpoints. Zero values are omitted from the query.
type DiscoverOptions struct {
	WithGenres     string
	SortBy         string
	VoteCountGTE   int
	VoteAverageGTE float64
	ReleaseDateGTE string
	ReleaseDateLTE string
	Page           int
}

func (o DiscoverOptions) params(mediaType string) url.Values {
	params := url.Values{}
	if o.WithGenres != "" {
		params.Set("with_genres", o.WithGenres)
	}
	if o.SortBy != "" {
		params.Set("sort_by", o.SortBy)
	}
	if o.VoteCountGTE > 0 {
		params.Set("vote_count.gte", strconv.Itoa(o.VoteCountGTE))
	}
	if o.VoteAverageGTE > 0 {
		params.Set("vote_average.gte", strconv.FormatFloat(o.VoteAverageGTE, 'f', -1, 64))
	}
	dateField := "primary_release_date"
	if mediaType == model.TypeTV {
		dateField = "first_air_date"
	}
	if o.ReleaseDateGTE != "" {
		params.Set(dateField+".gte", o.ReleaseDateGTE)
	}
	if o.ReleaseDateLTE != "" {
		params.Set(dateField+".lte", o.ReleaseDateLTE)
	}
	if o.Page > 0 {
		params.Set("page", strconv.Itoa(o.Page))
	}
	return params
}

// DiscoverMovies queries /discover/movie with the given filters.
func (c *Client) DiscoverMovies(ctx context.Context, opts DiscoverOptions) ([]model.CandidateItem, error) {
	return c.fetchList(ctx, "/discover/movie", opts.params(model.TypeMovie), model.TypeMovie)
}

// DiscoverTV queries /discover/tv with the given filters.
func (c *Client) DiscoverTV(ctx context.Context, opts DiscoverOptions) ([]model.CandidateItem, error) {
	return c.fetchList(ctx, "/discover/tv", opts.params(model.TypeTV), model.TypeTV)
}

// Details fetches full metadata for one item.
func (c *Client) Details(ctx context.Context, mediaType string, id int) (*model.CandidateItem, error) {
	key := fmt.Sprintf("/%s/%d", mediaType, id)
	if cached, ok := c.detailCache.Get(key); ok {
		return &cached, nil
	}

	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		var p itemPayload
		if err := c.get(ctx, key, nil, &p); err != nil {
			return nil, err
		}
		item := c.formatItem(p, mediaType)
		c.detailCache.Set(key, item)
		return item, nil
	})
	if err != nil {
		return nil, err
	}
	item := val.(model.CandidateItem)
	return &item, nil
}

func pageParams(page int) url.Values {
	if page <= 0 {
		page = 1
	}
	return url.Values{"page": {strconv.Itoa(page)}}
}
