package credibility

import (
	"testing"

	"NewsCredibility/internal/domain"
)

func records(category string, pairs ...[2]float64) []domain.UserRatingRecord {
	out := make([]domain.UserRatingRecord, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, domain.UserRatingRecord{Category: category, Value: p[0], ArticleOverall: p[1]})
	}
	return out
}

func TestRecomputeUserCredibility(t *testing.T) {
	t.Parallel()

	few := records("Politics", [2]float64{50, 50}, [2]float64{60, 60})
	if score, ok := RecomputeUserCredibility(few); ok || score != 50 {
		t.Fatalf("below threshold = (%v, %v), want (50, false)", score, ok)
	}

	// Three of five within 10 points: 40 + 60*0.4.
	history := records("Politics",
		[2]float64{50, 55},
		[2]float64{80, 71},
		[2]float64{30, 30},
		[2]float64{90, 40},
		[2]float64{20, 30},
	)
	score, ok := RecomputeUserCredibility(history)
	if !ok || !almostEqual(score, 64) {
		t.Fatalf("RecomputeUserCredibility = (%v, %v), want (64, true)", score, ok)
	}

	allWrong := records("Politics",
		[2]float64{0, 90}, [2]float64{0, 90}, [2]float64{0, 90}, [2]float64{0, 90}, [2]float64{0, 90},
	)
	if score, _ := RecomputeUserCredibility(allWrong); score != 40 {
		t.Fatalf("floor should be 40, got %v", score)
	}
}

func TestCategoryCredibility(t *testing.T) {
	t.Parallel()

	history := append(
		records("Science",
			[2]float64{50, 50}, [2]float64{50, 50}, [2]float64{50, 50}, [2]float64{50, 50}, [2]float64{50, 50},
		),
		records("Sports", [2]float64{10, 90})...,
	)
	history = append(history, records("", [2]float64{10, 10})...)

	got := CategoryCredibility(history)
	if len(got) != 1 {
		t.Fatalf("only Science has enough ratings, got %v", got)
	}
	if got["Science"] != 80 {
		t.Fatalf("Science = %v, want 80", got["Science"])
	}
}
