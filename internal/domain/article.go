package domain

import (
	"errors"
	"time"
)

// Sentinel errors shared by the storage collaborator and the score manager.
var (
	ErrArticleNotFound    = errors.New("article not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidScore       = errors.New("score must be within [0, 100]")
	ErrEmptyJustification = errors.New("override justification is required")
)

// CredibilityStatus is the badge derived from the overall score.
type CredibilityStatus string

const (
	StatusWidelyCorroborated CredibilityStatus = "Widely Corroborated"
	StatusUnderReview        CredibilityStatus = "Under Review"
	StatusHighRisk           CredibilityStatus = "High Risk"
)

// ArticleSnapshot is the read-only view of an article for one scoring pass.
type ArticleSnapshot struct {
	ID        string
	Title     string
	Content   string
	Category  string
	Source    *SourceProfile
	Ratings   []RatingSnapshot
	Claims    []Claim
	Existing  ScoreBreakdown
	Lock      LockState
	Override  *Override
	Scored    bool
	CreatedAt time.Time
}

// ScoreBreakdown is the full output of a scoring pass. It replaces the prior breakdown.
type ScoreBreakdown struct {
	SourceTrust      float64
	NLPScore         float64
	CommunityScore   float64
	CrossSourceScore float64
	Overall          float64
	Status           CredibilityStatus
	FactOpinionRatio float64
	HypeSentences    []string
	FactualSentences []string
}

// SourceProfile carries the publisher reputation inputs.
type SourceProfile struct {
	ID                string
	Name              string
	CredibilityScore  float64
	ArticlesPublished int
	CorroborationRate float64
}

// ClaimKind tells quotes and statistics apart.
type ClaimKind string

const (
	ClaimQuote     ClaimKind = "quote"
	ClaimStatistic ClaimKind = "statistic"
)

// Claim is a short assertion tracked for corroboration by other sources.
type Claim struct {
	ID                 string
	Kind               ClaimKind
	Text               string
	CorroborationCount int
}

// LockState mirrors the soft-lock columns of an article.
type LockState struct {
	SoftLocked         bool
	Reason             string
	SuspiciousActivity bool
}

// Override is an operator-pinned score that automatic passes must not replace.
type Override struct {
	Score         float64
	Status        CredibilityStatus
	Justification string
	ActorID       string
}

// ScoreResult is what the engine hands back to its caller for one pass.
type ScoreResult struct {
	Breakdown ScoreBreakdown
	Verdict   ManipulationVerdict
	NewClaims []Claim
}

// ScoreUpdate is the write-back unit applied atomically by the repository.
type ScoreUpdate struct {
	ArticleID string
	Breakdown ScoreBreakdown
	Lock      LockState
	NewClaims []Claim
	Audit     AuditEntry
}
