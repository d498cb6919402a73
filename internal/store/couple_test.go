package store

import (
	"testing"

	"github.com/user/filmy/internal/model"
)

func TestCoupleScore(t *testing.T) {
	tests := []struct {
		name string
		a, b int
		want float64
	}{
		{"agreement adds the bonus", 3, 3, 3.5},
		{"perfect agreement caps at 4.5", 4, 4, 4.5},
		{"disagreement is the plain average", 1, 4, 2.5},
		{"adjacent scores", 2, 3, 2.5},
		{"low agreement still gets the bonus", 1, 1, 1.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CoupleScore(tt.a, tt.b); got != tt.want {
				t.Errorf("CoupleScore(%d, %d) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestTrackViewingNewItem(t *testing.T) {
	s := testStore(t)

	item := candidate(550, model.TypeMovie, "Fight Club", "Drama")
	if err := s.TrackViewing(item, model.ViewerToby, "trending"); err != nil {
		t.Fatalf("TrackViewing: %v", err)
	}

	rec, ok := s.Get(550, model.TypeMovie)
	if !ok {
		t.Fatal("record not created")
	}
	if !rec.TobySeen || rec.TazSeen || rec.BothSeen {
		t.Errorf("seen flags = %v/%v/%v, want true/false/false", rec.TobySeen, rec.TazSeen, rec.BothSeen)
	}
	if rec.MyRating != float64(model.RatingWantToSee) {
		t.Errorf("MyRating = %v, want want-to-see", rec.MyRating)
	}
	if rec.RecommendationType != "trending" {
		t.Errorf("RecommendationType = %q", rec.RecommendationType)
	}
}

func TestTrackViewingSecondViewerRaisesBothSeen(t *testing.T) {
	s := testStore(t)

	item := candidate(550, model.TypeMovie, "Fight Club")
	if err := s.TrackViewing(item, model.ViewerToby, ""); err != nil {
		t.Fatalf("first TrackViewing: %v", err)
	}
	if err := s.TrackViewing(item, model.ViewerTaz, ""); err != nil {
		t.Fatalf("second TrackViewing: %v", err)
	}

	rec, _ := s.Get(550, model.TypeMovie)
	if !rec.BothSeen {
		t.Error("BothSeen not raised after both viewers tracked")
	}
}

func TestAddCoupleRating(t *testing.T) {
	s := testStore(t)

	found, err := s.AddCoupleRating(550, model.TypeMovie, 3, 3)
	if err != nil {
		t.Fatalf("AddCoupleRating: %v", err)
	}
	if found {
		t.Error("couple rating succeeded without a tracked record")
	}

	if err := s.TrackViewing(candidate(550, model.TypeMovie, "Fight Club"), model.ViewerBoth, ""); err != nil {
		t.Fatalf("TrackViewing: %v", err)
	}
	found, err = s.AddCoupleRating(550, model.TypeMovie, 3, 3)
	if err != nil {
		t.Fatalf("AddCoupleRating: %v", err)
	}
	if !found {
		t.Fatal("couple rating did not find the tracked record")
	}

	rec, _ := s.Get(550, model.TypeMovie)
	if rec.CoupleScore != 3.5 || rec.MyRating != 3.5 {
		t.Errorf("scores = %v/%v, want 3.5 both", rec.CoupleScore, rec.MyRating)
	}
	if rec.TobyRating != 3 || rec.TazRating != 3 {
		t.Errorf("individual ratings = %d/%d, want 3/3", rec.TobyRating, rec.TazRating)
	}
	if rec.WhoRated != model.ViewerBoth {
		t.Errorf("WhoRated = %q", rec.WhoRated)
	}
	if rec.MyRatingLabel != "Toby:Good, Taz:Good" {
		t.Errorf("MyRatingLabel = %q", rec.MyRatingLabel)
	}
}

func TestJointRatings(t *testing.T) {
	s := testStore(t)

	// Jointly rated.
	if err := s.TrackViewing(candidate(1, model.TypeMovie, "A"), model.ViewerBoth, ""); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddCoupleRating(1, model.TypeMovie, 4, 3); err != nil {
		t.Fatal(err)
	}
	// Seen together but not rated yet.
	if err := s.TrackViewing(candidate(2, model.TypeMovie, "B"), model.ViewerBoth, ""); err != nil {
		t.Fatal(err)
	}
	// Solo rating.
	if _, err := s.Add(candidate(3, model.TypeMovie, "C"), model.RatingGood, ""); err != nil {
		t.Fatal(err)
	}

	joint := s.JointRatings()
	if len(joint) != 1 || joint[0].TMDBID != 1 {
		t.Errorf("JointRatings = %+v, want only item 1", joint)
	}
}

func TestViewingPatterns(t *testing.T) {
	s := testStore(t)

	track := func(id int, viewer string) {
		t.Helper()
		if err := s.TrackViewing(candidate(id, model.TypeMovie, "m"), viewer, ""); err != nil {
			t.Fatal(err)
		}
	}
	track(1, model.ViewerToby)
	track(2, model.ViewerToby)
	track(3, model.ViewerTaz)
	track(4, model.ViewerBoth)

	p := s.ViewingPatterns()
	if p.TobySolo != 2 || p.TazSolo != 1 || p.JointViewing != 1 {
		t.Errorf("patterns = %+v", p)
	}
	if p.SyncPercentage != 25 {
		t.Errorf("SyncPercentage = %v, want 25", p.SyncPercentage)
	}
}
