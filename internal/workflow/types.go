package workflow

import (
	"strings"
	"time"
)

// Role determines which screens a user may reach and which actions a
// record exposes to them.
type Role string

const (
	RolePublic     Role = "PUBLIC"
	RoleContractor Role = "CONTRACTOR"
	RoleGovernment Role = "GOVERNMENT"
	RoleAuditor    Role = "AUDITOR"
)

// ParseRole normalizes a stored role string. Unknown values are rejected
// so that a corrupted session entry never grants access.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RolePublic:
		return RolePublic, true
	case RoleContractor:
		return RoleContractor, true
	case RoleGovernment:
		return RoleGovernment, true
	case RoleAuditor:
		return RoleAuditor, true
	default:
		return "", false
	}
}

// ProgressStatus is the disposition of a contractor progress submission.
type ProgressStatus string

const (
	ProgressPending  ProgressStatus = "PENDING"
	ProgressApproved ProgressStatus = "APPROVED"
	ProgressRejected ProgressStatus = "REJECTED"
)

// IssueStatus values are backend-authoritative; the client must tolerate
// receiving any of them at any time.
type IssueStatus string

const (
	IssueReported    IssueStatus = "REPORTED"
	IssueUnderReview IssueStatus = "UNDER_REVIEW"
	IssueVerified    IssueStatus = "VERIFIED"
	IssueForgiven    IssueStatus = "FORGIVEN"
	IssuePenalized   IssueStatus = "PENALIZED"
	IssueResolved    IssueStatus = "RESOLVED"
	IssueClosed      IssueStatus = "CLOSED"
)

// IssueType categorizes the cause of a reported problem.
type IssueType string

const (
	IssueNaturalDisaster IssueType = "NATURAL_DISASTER"
	IssueContractorFault IssueType = "CONTRACTOR_FAULT"
	IssueDesignFlaw      IssueType = "DESIGN_FLAW"
	IssueMaterialDefect  IssueType = "MATERIAL_DEFECT"
	IssueVandalism       IssueType = "VANDALISM"
	IssueNormalWear      IssueType = "NORMAL_WEAR"
	IssueOther           IssueType = "OTHER"
)

// Severity ranks how badly an issue affects the project.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// Action is a user-triggerable transition on a record. The backend
// re-validates every one of them; these only gate what the UI offers.
type Action string

const (
	ActionApprove  Action = "approve"
	ActionReject   Action = "reject"
	ActionVerify   Action = "verify"
	ActionForgive  Action = "forgive"
	ActionPenalize Action = "penalize"
)

// ProgressRecord is a contractor-submitted completion report.
type ProgressRecord struct {
	ID                int64           `json:"id"`
	Project           int64           `json:"project"`
	PhysicalProgress  int             `json:"physical_progress"`
	FinancialProgress int             `json:"financial_progress"`
	Date              string          `json:"date"`
	SubmittedBy       string          `json:"submitted_by_username,omitempty"`
	Status            ProgressStatus  `json:"status"`
	ReviewedBy        string          `json:"reviewed_by_username,omitempty"`
	ReviewedAt        *time.Time      `json:"reviewed_at,omitempty"`
	Images            []ProgressImage `json:"images,omitempty"`
}

// ProgressImage is an evidence photo attached to a submission.
type ProgressImage struct {
	ID         int64     `json:"id"`
	URL        string    `json:"image"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// IssueRecord is a reported defect or problem against a project.
type IssueRecord struct {
	ID                int64       `json:"id"`
	Project           int64       `json:"project"`
	Title             string      `json:"title"`
	Description       string      `json:"description"`
	IssueType         IssueType   `json:"issue_type"`
	Severity          Severity    `json:"severity"`
	Status            IssueStatus `json:"status"`
	IsForgivable      *bool       `json:"is_forgivable,omitempty"`
	IsForgiven        bool        `json:"is_forgiven"`
	ForgivenessReason string      `json:"forgiveness_reason,omitempty"`
	RatingImpact      *float64    `json:"rating_impact,omitempty"`
	ReportedBy        string      `json:"reported_by_username,omitempty"`
	ReportedAt        *time.Time  `json:"reported_at,omitempty"`
	ForgivenAt        *time.Time  `json:"forgiven_at,omitempty"`
}
