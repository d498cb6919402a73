package service

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/user/filmy/internal/model"
	"github.com/user/filmy/internal/store"
	"github.com/user/filmy/internal/tmdb"
)

const (
	talentDirector = "director"
	talentActor    = "actor"
)

type talentRecord struct {
	personID int
	name     string
	kind     string
	ratings  []float64
}

func (t *talentRecord) average() float64 {
	var sum float64
	for _, r := range t.ratings {
		sum += r
	}
	return sum / float64(len(t.ratings))
}

// talentBased finds other work by directors and lead actors credited
// on the user's highly rated items. A person only qualifies when the
// user's average rating across their credited items is Good or better.
func (e *IntelligentEngine) talentBased(ctx context.Context, profile *store.Profile, limit int) []model.CandidateItem {
	talent := e.collectTalent(ctx, profile)

	qualified := make([]*talentRecord, 0, len(talent))
	for _, rec := range talent {
		if rec.average() >= model.RatingGood {
			qualified = append(qualified, rec)
		}
	}
	sort.SliceStable(qualified, func(i, j int) bool {
		return qualified[i].average() > qualified[j].average()
	})
	if len(qualified) > 3 {
		qualified = qualified[:3]
	}

	var recommendations []model.CandidateItem
	for _, person := range qualified {
		credits, err := e.catalog.PersonMovieCredits(ctx, person.personID)
		if err != nil {
			log.Printf("[Engine] person credits for %s failed: %v", person.name, err)
			continue
		}

		var credited []tmdb.PersonCredit
		var reason string
		if person.kind == talentDirector {
			for _, credit := range credits.Crew {
				if credit.Job == "Director" {
					credited = append(credited, credit)
				}
			}
			reason = fmt.Sprintf("Directed by %s", person.name)
		} else {
			credited = credits.Cast
			reason = fmt.Sprintf("Starring %s", person.name)
		}
		if len(credited) > 3 {
			credited = credited[:3]
		}

		for _, credit := range credited {
			if e.ratings.IsAlreadyRated(credit.ID, model.TypeMovie) {
				continue
			}
			item := e.creditToCandidate(credit)
			item.RecReason = reason
			item.RecScore = person.average() / model.RatingPerfect
			recommendations = append(recommendations, item)
		}
	}

	return top(recommendations, limit)
}

// collectTalent gathers directors (top 2) and lead cast (top 3) from
// the credits of the user's top liked movies. Credit lookups that fail
// are skipped; partial talent data still produces recommendations.
func (e *IntelligentEngine) collectTalent(ctx context.Context, profile *store.Profile) map[string]*talentRecord {
	talent := make(map[string]*talentRecord)

	// A person is tracked per role: directing and acting credits score
	// separately.
	record := func(personID int, name, kind string, rating float64) {
		key := fmt.Sprintf("%s_%d", kind, personID)
		rec, ok := talent[key]
		if !ok {
			rec = &talentRecord{personID: personID, name: name, kind: kind}
			talent[key] = rec
		}
		rec.ratings = append(rec.ratings, rating)
	}

	for _, item := range prioritizeLiked(profile.Liked, 5) {
		if item.Type != model.TypeMovie {
			continue
		}
		credits, err := e.catalog.MovieCredits(ctx, item.TMDBID)
		if err != nil {
			log.Printf("[Engine] credits for %q failed: %v", item.Title, err)
			continue
		}

		directors := credits.Directors()
		if len(directors) > 2 {
			directors = directors[:2]
		}
		for _, director := range directors {
			record(director.ID, director.Name, talentDirector, item.MyRating)
		}

		cast := credits.Cast
		if len(cast) > 3 {
			cast = cast[:3]
		}
		for _, actor := range cast {
			record(actor.ID, actor.Name, talentActor, item.MyRating)
		}
	}

	return talent
}

func (e *IntelligentEngine) creditToCandidate(credit tmdb.PersonCredit) model.CandidateItem {
	return model.CandidateItem{
		ID:          credit.ID,
		Title:       credit.Title,
		Type:        model.TypeMovie,
		ReleaseDate: credit.ReleaseDate,
		VoteAverage: credit.VoteAverage,
		VoteCount:   credit.VoteCount,
		Popularity:  credit.Popularity,
		Genres:      model.GenreNames(credit.GenreIDs, model.MovieGenres),
		Overview:    credit.Overview,
		PosterURL:   e.catalog.ImageURL(credit.PosterPath),
	}
}
