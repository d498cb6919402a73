package service

import (
	"context"
	"testing"

	"github.com/user/filmy/internal/model"
	"github.com/user/filmy/internal/store"
)

func coupleRate(t *testing.T, s *store.Store, id, toby, taz int) {
	t.Helper()
	if err := s.TrackViewing(movie(id, "Joint", "Drama"), model.ViewerBoth, ""); err != nil {
		t.Fatalf("TrackViewing: %v", err)
	}
	if _, err := s.AddCoupleRating(id, model.TypeMovie, toby, taz); err != nil {
		t.Fatalf("AddCoupleRating: %v", err)
	}
}

func TestCompatibilityZeroStates(t *testing.T) {
	s := testRatings(t)
	analyzer := NewCoupleAnalyzer(&fakeCatalog{}, s)

	got := analyzer.Compatibility()
	if got.Verdict != "No data yet" {
		t.Errorf("empty store verdict = %q", got.Verdict)
	}

	// A solo rating is data, but not joint data.
	if _, err := s.Add(movie(1, "Solo"), model.RatingGood, ""); err != nil {
		t.Fatal(err)
	}
	got = analyzer.Compatibility()
	if got.Verdict != "No joint ratings yet" {
		t.Errorf("no-joint verdict = %q", got.Verdict)
	}
	if got.CompatibilityScore != 0 {
		t.Errorf("CompatibilityScore = %v, want 0", got.CompatibilityScore)
	}
}

func TestCompatibilityScoring(t *testing.T) {
	s := testRatings(t)
	analyzer := NewCoupleAnalyzer(&fakeCatalog{}, s)

	coupleRate(t, s, 1, 3, 3) // 3.5, perfect agreement
	coupleRate(t, s, 2, 1, 4) // 2.5

	got := analyzer.Compatibility()
	if got.JointRatings != 2 {
		t.Errorf("JointRatings = %d, want 2", got.JointRatings)
	}
	if got.PerfectAgreements != 1 {
		t.Errorf("PerfectAgreements = %d, want 1", got.PerfectAgreements)
	}
	if got.AverageCoupleScore != 3.0 {
		t.Errorf("AverageCoupleScore = %v, want 3.0", got.AverageCoupleScore)
	}
	if got.CompatibilityScore != 75 {
		t.Errorf("CompatibilityScore = %v, want 75", got.CompatibilityScore)
	}
}

func TestVerdictThresholds(t *testing.T) {
	tests := []struct {
		mean float64
		want string
	}{
		{3.8, "Movie soulmates"},
		{3.5, "Movie soulmates"},
		{3.2, "Great taste match"},
		{2.7, "Mostly compatible"},
		{2.1, "Room to negotiate"},
		{1.5, "Opposites attract"},
	}
	for _, tt := range tests {
		if got := verdict(tt.mean); got != tt.want {
			t.Errorf("verdict(%v) = %q, want %q", tt.mean, got, tt.want)
		}
	}
}

func TestRecommendationStrategySelection(t *testing.T) {
	catalog := &fakeCatalog{
		popularMovies: makeItems(1000, 20),
		discover:      makeItems(2000, 20),
		similar: map[int][]model.CandidateItem{
			1: makeItems(3000, 5),
			2: makeItems(3100, 5),
		},
	}

	tests := []struct {
		name       string
		toby, taz  int
		wantedPick string
	}{
		{"aligned couple gets similar taste", 4, 4, "similar_taste"},
		{"middling couple gets balanced", 1, 4, "balanced"},
		{"divergent couple gets compromise", 1, 1, "compromise"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testRatings(t)
			analyzer := NewCoupleAnalyzer(catalog, s)
			coupleRate(t, s, 1, tt.toby, tt.taz)
			coupleRate(t, s, 2, tt.toby, tt.taz)

			items, strategy := analyzer.Recommendations(context.Background(), 10)
			if strategy != tt.wantedPick {
				t.Errorf("strategy = %q, want %q", strategy, tt.wantedPick)
			}
			if len(items) == 0 {
				t.Error("no recommendations returned")
			}
			for _, item := range items {
				if s.IsAlreadyRated(item.ID, item.Type) {
					t.Errorf("already rated item %d served", item.ID)
				}
			}
		})
	}
}
