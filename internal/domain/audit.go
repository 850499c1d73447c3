package domain

import "time"

// AuditEntry records one score mutation. Entries are append-only.
type AuditEntry struct {
	ID            string
	ArticleID     string
	OldScore      float64
	NewScore      float64
	Reason        string
	IsAdminAction bool
	ActorID       string
	CreatedAt     time.Time
}

// ReasonCode names the anomaly rule that flagged a rating stream.
type ReasonCode string

const (
	ReasonNone                ReasonCode = "none"
	ReasonInsufficientRatings ReasonCode = "insufficient_ratings"
	ReasonTemporalSpike       ReasonCode = "temporal_spike"
	ReasonNewAccounts         ReasonCode = "new_account_concentration"
	ReasonLowVariance         ReasonCode = "low_variance_clustering"
	ReasonExtremitySkew       ReasonCode = "extremity_skew"
	ReasonIPConcentration     ReasonCode = "ip_concentration"
)

// ManipulationVerdict is derived per pass and drives the soft-lock flag.
type ManipulationVerdict struct {
	Suspicious bool
	Reason     ReasonCode
	Triggered  []ReasonCode
}

// Label is the binary output of the text classifier.
type Label string

const (
	LabelCredible   Label = "credible"
	LabelUnreliable Label = "unreliable"
)

// Classification is a classifier answer; Confidence is for the predicted label.
type Classification struct {
	Label      Label
	Confidence float64
}
