package service

import (
	"context"
	"testing"

	"github.com/user/filmy/internal/model"
)

func TestRecommendationMix(t *testing.T) {
	tests := []struct {
		name         string
		totalRatings int
		count        int
		want         map[string]int
	}{
		{
			name:         "new user leans on generic pools",
			totalRatings: 0,
			count:        20,
			want: map[string]int{
				PoolPopular:     8,
				PoolTrending:    6,
				PoolDiscovery:   4,
				PoolIntelligent: 2,
			},
		},
		{
			name:         "some history shifts toward personalized",
			totalRatings: 10,
			count:        20,
			want: map[string]int{
				PoolIntelligent:   6,
				PoolPopular:       5,
				PoolDiscovery:     5,
				PoolTrending:      3,
				PoolGenreDeepDive: 1,
			},
		},
		{
			name:         "heavy rater gets mostly personalized",
			totalRatings: 50,
			count:        20,
			want: map[string]int{
				PoolIntelligent:   10,
				PoolGenreDeepDive: 4,
				PoolDiscovery:     3,
				PoolTrending:      2,
				PoolPopular:       1,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := recommendationMix(tt.totalRatings, tt.count)
			for pool, want := range tt.want {
				if got[pool] != want {
					t.Errorf("%s share = %d, want %d", pool, got[pool], want)
				}
			}
		})
	}
}

func makeItems(base int, n int) []model.CandidateItem {
	items := make([]model.CandidateItem, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, model.CandidateItem{
			ID:          base + i,
			Title:       "Item",
			Type:        model.TypeMovie,
			VoteAverage: 7.5,
		})
	}
	return items
}

func testPoolManager(t *testing.T) *PoolManager {
	t.Helper()
	catalog := &fakeCatalog{
		popularMovies: makeItems(1000, 30),
		popularTV:     makeItems(2000, 30),
		discover:      makeItems(3000, 30),
		trending: map[string][]model.CandidateItem{
			model.TypeMovie: makeItems(4000, 15),
			model.TypeTV:    makeItems(5000, 15),
		},
	}
	ratings := testRatings(t)
	engine := NewIntelligentEngine(catalog, ratings)
	return NewPoolManager(catalog, ratings, engine)
}

func TestEndlessRecommendationsNeverRepeats(t *testing.T) {
	pm := testPoolManager(t)
	ctx := context.Background()

	seen := make(map[model.Key]struct{})
	for i := 0; i < 3; i++ {
		batch := pm.EndlessRecommendations(ctx, 10)
		if len(batch) == 0 {
			t.Fatalf("batch %d came back empty", i)
		}
		for _, item := range batch {
			if _, dup := seen[item.Key()]; dup {
				t.Errorf("item %d/%s repeated across batches", item.ID, item.Type)
			}
			seen[item.Key()] = struct{}{}
		}
	}
}

func TestEndlessRecommendationsSkipsRated(t *testing.T) {
	pm := testPoolManager(t)
	ctx := context.Background()

	// Rate a handful of the popular candidates before drawing.
	for id := 1000; id < 1005; id++ {
		if _, err := pm.ratings.Add(movie(id, "Item"), model.RatingOK, ""); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	batch := pm.EndlessRecommendations(ctx, 30)
	for _, item := range batch {
		if item.ID >= 1000 && item.ID < 1005 && item.Type == model.TypeMovie {
			t.Errorf("already rated item %d served", item.ID)
		}
	}
}

func TestEndlessRecommendationsRespectsCount(t *testing.T) {
	pm := testPoolManager(t)

	batch := pm.EndlessRecommendations(context.Background(), 12)
	if len(batch) > 12 {
		t.Errorf("batch size = %d, want at most 12", len(batch))
	}
}

func TestClearUsedRestartsStream(t *testing.T) {
	pm := testPoolManager(t)
	ctx := context.Background()

	first := pm.EndlessRecommendations(ctx, 10)
	if len(first) == 0 {
		t.Fatal("first batch empty")
	}
	stats := pm.PoolStats()
	if stats["used"] != len(first) {
		t.Errorf("used = %d, want %d", stats["used"], len(first))
	}

	pm.ClearUsed()
	stats = pm.PoolStats()
	if stats["used"] != 0 {
		t.Error("used history survived ClearUsed")
	}
	for _, pool := range []string{PoolIntelligent, PoolTrending, PoolPopular, PoolDiscovery, PoolGenreDeepDive} {
		if stats[pool] != 0 {
			t.Errorf("pool %s still holds %d items after reset", pool, stats[pool])
		}
	}

	// The stream starts over: a fresh draw refills and can serve the
	// same items again.
	second := pm.EndlessRecommendations(ctx, 10)
	if len(second) == 0 {
		t.Fatal("batch after reset came back empty")
	}
}

func TestPoolStatsReportsDepths(t *testing.T) {
	pm := testPoolManager(t)
	pm.EndlessRecommendations(context.Background(), 5)

	stats := pm.PoolStats()
	for _, pool := range []string{PoolIntelligent, PoolTrending, PoolPopular, PoolDiscovery, PoolGenreDeepDive} {
		if _, ok := stats[pool]; !ok {
			t.Errorf("stats missing pool %s", pool)
		}
	}
}
