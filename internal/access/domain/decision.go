// Package domain holds the values produced by the access decision pipeline.
package domain

import (
	"github.com/felixgeelhaar/reelgate/internal/access/token"
	entitlementDomain "github.com/felixgeelhaar/reelgate/internal/entitlement/domain"
	sharedDomain "github.com/felixgeelhaar/reelgate/internal/shared/domain"
)

// ErrStoreUnavailable marks persistence failures. It is retryable and is
// never turned into one of the business denials.
var ErrStoreUnavailable = sharedDomain.ErrStoreUnavailable

// DenialReason is a business-level refusal.
type DenialReason string

const (
	ReasonBadRequest         DenialReason = "bad_request"
	ReasonMembershipRequired DenialReason = "membership_required"
	ReasonNotFound           DenialReason = "not_found"
	ReasonQuotaExceeded      DenialReason = "quota_exceeded"
)

// Outcome is the terminal state of a request.
type Outcome string

const (
	OutcomeGranted Outcome = "granted"
	OutcomePreview Outcome = "preview"
	OutcomeDenied  Outcome = "denied"
)

// ChapterLink points at a sibling chapter.
type ChapterLink struct {
	Index int    `json:"index"`
	Token string `json:"token"`
}

// Navigation carries the chapter siblings that exist.
type Navigation struct {
	Previous *ChapterLink `json:"previous,omitempty"`
	Next     *ChapterLink `json:"next,omitempty"`
}

// Grant is the payload of a delivered unit.
type Grant struct {
	MediaRef    string      `json:"media_ref"`
	Caption     string      `json:"caption,omitempty"`
	Forwardable bool        `json:"forwardable"`
	Navigation  *Navigation `json:"navigation,omitempty"`
	// ConsumedToday is the counter value after this grant was committed.
	ConsumedToday int    `json:"consumed_today"`
	Day           string `json:"day"`
}

// Preview carries what a renderer needs to show a synopsis.
type Preview struct {
	Title    string `json:"title,omitempty"`
	CoverRef string `json:"cover_ref,omitempty"`
	Caption  string `json:"caption,omitempty"`
	// PlayToken is set for package previews.
	PlayToken string `json:"play_token,omitempty"`
	// ChapterTokens are set for series previews, one per chapter in order.
	ChapterTokens []string `json:"chapter_tokens,omitempty"`
}

// Decision is the result of one request through the pipeline.
type Decision struct {
	Outcome Outcome                    `json:"outcome"`
	Reason  DenialReason               `json:"reason,omitempty"`
	Token   string                     `json:"token"`
	Intent  token.Intent               `json:"intent"`
	Tier    entitlementDomain.PlanTier `json:"tier,omitempty"`
	Grant   *Grant                     `json:"grant,omitempty"`
	Preview *Preview                   `json:"preview,omitempty"`
	// MissingGroups lists the groups to join when Reason is membership_required.
	MissingGroups []string `json:"missing_groups,omitempty"`
}

// Denied builds a denial.
func Denied(raw string, intent token.Intent, reason DenialReason) Decision {
	return Decision{Outcome: OutcomeDenied, Reason: reason, Token: raw, Intent: intent}
}

// IsGranted reports whether content was delivered.
func (d Decision) IsGranted() bool {
	return d.Outcome == OutcomeGranted
}

// IsDenied reports whether the request was refused.
func (d Decision) IsDenied() bool {
	return d.Outcome == OutcomeDenied
}
