package credibility

import (
	"reflect"
	"testing"
	"time"

	"NewsCredibility/internal/domain"
)

var detectorNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func rating(value float64, age time.Duration) domain.RatingSnapshot {
	return domain.RatingSnapshot{
		Value:         value,
		Weight:        1,
		CreatedAt:     detectorNow.Add(-age),
		UserCreatedAt: detectorNow.Add(-60 * 24 * time.Hour),
	}
}

func TestDetectorInsufficientRatings(t *testing.T) {
	t.Parallel()

	d := NewDetector(DefaultDetectorParams())
	// Two identical fresh ratings from one IP would trip rules if evaluated.
	ratings := []domain.RatingSnapshot{rating(100, time.Minute), rating(100, time.Minute)}
	got := d.Evaluate(ratings, detectorNow)
	if got.Suspicious || got.Reason != domain.ReasonInsufficientRatings {
		t.Fatalf("unexpected verdict %+v", got)
	}
}

func TestDetectorExtremitySkew(t *testing.T) {
	t.Parallel()

	var ratings []domain.RatingSnapshot
	for i := 0; i < 9; i++ {
		r := rating(95, 48*time.Hour)
		r.IPAddress = "10.0.0." + string(rune('1'+i))
		ratings = append(ratings, r)
	}
	low := rating(5, 48*time.Hour)
	low.IPAddress = "10.0.1.1"
	ratings = append(ratings, low)

	got := NewDetector(DefaultDetectorParams()).Evaluate(ratings, detectorNow)
	if !got.Suspicious || got.Reason != domain.ReasonExtremitySkew {
		t.Fatalf("unexpected verdict %+v", got)
	}
	if !reflect.DeepEqual(got.Triggered, []domain.ReasonCode{domain.ReasonExtremitySkew}) {
		t.Fatalf("unexpected triggered rules %v", got.Triggered)
	}
}

func TestDetectorTemporalSpike(t *testing.T) {
	t.Parallel()

	values := []float64{10, 30, 50, 70, 90, 20}
	var ratings []domain.RatingSnapshot
	for i, v := range values {
		ratings = append(ratings, rating(v, time.Duration(i+1)*5*time.Minute))
	}
	ratings = append(ratings, rating(60, 72*time.Hour))

	got := NewDetector(DefaultDetectorParams()).Evaluate(ratings, detectorNow)
	if !got.Suspicious || got.Reason != domain.ReasonTemporalSpike {
		t.Fatalf("unexpected verdict %+v", got)
	}
	if len(got.Triggered) != 1 {
		t.Fatalf("only the spike rule should fire, got %v", got.Triggered)
	}
}

func TestDetectorRules(t *testing.T) {
	t.Parallel()

	spread := []float64{10, 30, 50, 70, 90, 40}

	cases := []struct {
		name    string
		ratings func() []domain.RatingSnapshot
		want    domain.ReasonCode
	}{
		{
			name: "clean",
			ratings: func() []domain.RatingSnapshot {
				var out []domain.RatingSnapshot
				for _, v := range spread {
					out = append(out, rating(v, 48*time.Hour))
				}
				return out
			},
			want: domain.ReasonNone,
		},
		{
			name: "new accounts",
			ratings: func() []domain.RatingSnapshot {
				var out []domain.RatingSnapshot
				for i, v := range spread {
					r := rating(v, 48*time.Hour)
					if i < 4 {
						r.UserCreatedAt = detectorNow.Add(-2 * time.Hour)
					}
					out = append(out, r)
				}
				return out
			},
			want: domain.ReasonNewAccounts,
		},
		{
			name: "low variance",
			ratings: func() []domain.RatingSnapshot {
				var out []domain.RatingSnapshot
				for _, v := range []float64{60, 62, 58, 61, 59} {
					out = append(out, rating(v, 48*time.Hour))
				}
				return out
			},
			want: domain.ReasonLowVariance,
		},
		{
			name: "ip concentration",
			ratings: func() []domain.RatingSnapshot {
				var out []domain.RatingSnapshot
				for i, v := range spread {
					r := rating(v, 48*time.Hour)
					r.IPAddress = "192.168.0.9"
					if i >= 3 {
						r.IPAddress = "192.168.0." + string(rune('1'+i))
					}
					out = append(out, r)
				}
				return out
			},
			want: domain.ReasonIPConcentration,
		},
		{
			name: "ip rule ignores ratings without address",
			ratings: func() []domain.RatingSnapshot {
				var out []domain.RatingSnapshot
				for i, v := range spread {
					r := rating(v, 48*time.Hour)
					if i < 3 {
						r.IPAddress = "192.168.0.9"
					}
					out = append(out, r)
				}
				return out
			},
			want: domain.ReasonNone,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := NewDetector(DefaultDetectorParams()).Evaluate(tc.ratings(), detectorNow)
			if got.Reason != tc.want {
				t.Fatalf("reason = %s, want %s (%+v)", got.Reason, tc.want, got)
			}
			if got.Suspicious != (tc.want != domain.ReasonNone) {
				t.Fatalf("suspicious = %v for reason %s", got.Suspicious, got.Reason)
			}
		})
	}
}

func TestDetectorFirstRuleTagsVerdict(t *testing.T) {
	t.Parallel()

	// Identical fresh ratings trip the spike and the variance rules.
	var ratings []domain.RatingSnapshot
	for i := 0; i < 5; i++ {
		ratings = append(ratings, rating(80, time.Minute))
	}

	got := NewDetector(DefaultDetectorParams()).Evaluate(ratings, detectorNow)
	if got.Reason != domain.ReasonTemporalSpike {
		t.Fatalf("reason = %s, want temporal spike", got.Reason)
	}
	want := []domain.ReasonCode{domain.ReasonTemporalSpike, domain.ReasonLowVariance}
	if !reflect.DeepEqual(got.Triggered, want) {
		t.Fatalf("triggered = %v, want %v", got.Triggered, want)
	}
}
