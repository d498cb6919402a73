package tmdb

import (
	"context"
	"fmt"
)

// CastMember is one cast credit on an item.
type CastMember struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Character string `json:"character"`
	Order     int    `json:"order"`
}

// CrewMember is one crew credit on an item.
type CrewMember struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Job  string `json:"job"`
}

// Credits is the cast and crew of one item.
type Credits struct {
	ID   int          `json:"id"`
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}

// Directors returns the directing crew members.
func (c *Credits) Directors() []CrewMember {
	var directors []CrewMember
	for _, member := range c.Crew {
		if member.Job == "Director" {
			directors = append(directors, member)
		}
	}
	return directors
}

// PersonCredit is one item credited to a person.
type PersonCredit struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Job         string  `json:"job"`
	ReleaseDate string  `json:"release_date"`
	VoteAverage float64 `json:"vote_average"`
	VoteCount   int     `json:"vote_count"`
	Popularity  float64 `json:"popularity"`
	GenreIDs    []int   `json:"genre_ids"`
	Overview    string  `json:"overview"`
	PosterPath  string  `json:"poster_path"`
}

// PersonCredits is everything a person is credited on.
type PersonCredits struct {
	ID   int            `json:"id"`
	Cast []PersonCredit `json:"cast"`
	Crew []PersonCredit `json:"crew"`
}

// MovieCredits fetches cast and crew for a movie.
func (c *Client) MovieCredits(ctx context.Context, movieID int) (*Credits, error) {
	var credits Credits
	if err := c.get(ctx, fmt.Sprintf("/movie/%d/credits", movieID), nil, &credits); err != nil {
		return nil, err
	}
	return &credits, nil
}

// TVCredits fetches cast and crew for a show.
func (c *Client) TVCredits(ctx context.Context, tvID int) (*Credits, error) {
	var credits Credits
	if err := c.get(ctx, fmt.Sprintf("/tv/%d/credits", tvID), nil, &credits); err != nil {
		return nil, err
	}
	return &credits, nil
}

// PersonMovieCredits fetches a person's movie credits.
func (c *Client) PersonMovieCredits(ctx context.Context, personID int) (*PersonCredits, error) {
	var credits PersonCredits
	if err := c.get(ctx, fmt.Sprintf("/person/%d/movie_credits", personID), nil, &credits); err != nil {
		return nil, err
	}
	return &credits, nil
}
