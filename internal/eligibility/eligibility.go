// Package eligibility turns contractor profile data and the backend's
// contract-size verdicts into render-ready figures. All judgments are
// made server-side; this package only projects them for display.
package eligibility

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"time"
)

// RatingFloor is the display threshold below which a contractor rating
// is banded as at-risk. Suspension itself is a server decision.
const RatingFloor = 3.8

// Tier is a contract-size band.
type Tier string

const (
	TierSmall  Tier = "SMALL"
	TierMedium Tier = "MEDIUM"
	TierLarge  Tier = "LARGE"
)

var tierOrder = []Tier{TierSmall, TierMedium, TierLarge}

// Rating decodes the backend's decimal fields, which arrive either as
// JSON numbers or as quoted strings depending on the serializer.
type Rating struct {
	Value float64
	Valid bool
}

func (r *Rating) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*r = Rating{}
		return nil
	}
	if data[0] == '"' {
		unquoted, err := strconv.Unquote(string(data))
		if err != nil {
			return fmt.Errorf("eligibility: malformed rating %s: %w", data, err)
		}
		if unquoted == "" {
			*r = Rating{}
			return nil
		}
		data = []byte(unquoted)
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("eligibility: malformed rating %s: %w", data, err)
	}
	*r = Rating{Value: v, Valid: true}
	return nil
}

func (r Rating) MarshalJSON() ([]byte, error) {
	if !r.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(r.Value, 'f', -1, 64)), nil
}

// ContractorProfile is a read-only projection from the backend.
type ContractorProfile struct {
	ID                     int64         `json:"id"`
	Username               string        `json:"user_username,omitempty"`
	Rating                 Rating        `json:"rating"`
	TotalProjectsCompleted int           `json:"total_projects_completed"`
	TotalProjectsFailed    int           `json:"total_projects_failed"`
	YearsOfExperience      int           `json:"years_of_experience"`
	IsSuspended            bool          `json:"is_suspended"`
	SuspensionReason       string        `json:"suspension_reason,omitempty"`
	SuspendedAt            *time.Time    `json:"suspended_at,omitempty"`
	Certificates           []Certificate `json:"certificates,omitempty"`
	Skills                 []Skill       `json:"skills,omitempty"`
}

// Certificate is a qualification document attached to a contractor.
type Certificate struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	IssuingAuthority string `json:"issuing_authority"`
	IssueDate        string `json:"issue_date"`
	ExpiryDate       string `json:"expiry_date,omitempty"`
	Verified         bool   `json:"verified"`
}

// Skill is a self-declared proficiency, optionally verified.
type Skill struct {
	ID               int64  `json:"id"`
	SkillName        string `json:"skill_name"`
	ProficiencyLevel int    `json:"proficiency_level"`
	YearsOfPractice  int    `json:"years_of_practice"`
	Verified         bool   `json:"verified"`
}

// Verdict is the server's opaque judgment for one tier.
type Verdict struct {
	Eligible bool   `json:"eligible"`
	Reason   string `json:"reason"`
}

// TierEligibility is one row of the eligibility display.
type TierEligibility struct {
	Tier     Tier
	Eligible bool
	Reason   string
}

// Project orders the backend's per-tier verdicts for rendering:
// SMALL, MEDIUM, LARGE first, then any tier the server added that the
// client does not know, alphabetically. Verdicts are passed through
// unchanged; the client never recomputes eligibility.
func Project(verdicts map[Tier]Verdict) []TierEligibility {
	out := make([]TierEligibility, 0, len(verdicts))
	seen := make(map[Tier]bool, len(verdicts))
	for _, tier := range tierOrder {
		if v, ok := verdicts[tier]; ok {
			out = append(out, TierEligibility{Tier: tier, Eligible: v.Eligible, Reason: v.Reason})
			seen[tier] = true
		}
	}
	var extra []Tier
	for tier := range verdicts {
		if !seen[tier] {
			extra = append(extra, tier)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	for _, tier := range extra {
		v := verdicts[tier]
		out = append(out, TierEligibility{Tier: tier, Eligible: v.Eligible, Reason: v.Reason})
	}
	return out
}

// FormatRating always renders two decimal places; a missing rating is
// shown as 0.00, never treated as an error.
func FormatRating(r Rating) string {
	if !r.Valid {
		return "0.00"
	}
	return strconv.FormatFloat(r.Value, 'f', 2, 64)
}

// BelowFloor reports whether the rating should be banded as at-risk in
// the rating bar. A missing rating counts as below the floor.
func BelowFloor(r Rating) bool {
	return !r.Valid || r.Value < RatingFloor
}

const genericSuspensionNotice = "This account is suspended. Contact the ministry for details."

// SuspensionNotice returns whether a suspension banner should be shown
// and its text. The server-provided reason is displayed verbatim; an
// absent reason degrades to a generic notice rather than hiding the
// banner or failing.
func SuspensionNotice(p ContractorProfile) (bool, string) {
	if !p.IsSuspended {
		return false, ""
	}
	if p.SuspensionReason == "" {
		return true, genericSuspensionNotice
	}
	return true, p.SuspensionReason
}

// CountVerifiedCertificates returns verified and total counts.
func CountVerifiedCertificates(certs []Certificate) (verified, total int) {
	for _, c := range certs {
		if c.Verified {
			verified++
		}
	}
	return verified, len(certs)
}

// CountVerifiedSkills returns verified and total counts.
func CountVerifiedSkills(skills []Skill) (verified, total int) {
	for _, s := range skills {
		if s.Verified {
			verified++
		}
	}
	return verified, len(skills)
}
