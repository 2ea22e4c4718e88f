// Package workflow maps raw progress and issue records to their display
// state and to the set of actions the viewing role may trigger. Every
// screen must go through Classify; none may re-derive this from status
// switches of its own.
package workflow

// Classification is the render-ready view of one record for one viewer.
type Classification struct {
	Label       string
	ColorTag    string
	SeverityTag string
	Actions     []Action
}

// HasAction reports whether the viewer was offered the given action.
func (c Classification) HasAction(a Action) bool {
	for _, have := range c.Actions {
		if have == a {
			return true
		}
	}
	return false
}

const neutralColor = "#6b7280"

var progressColors = map[ProgressStatus]string{
	ProgressPending:  "#f59e0b",
	ProgressApproved: "#10b981",
	ProgressRejected: "#ef4444",
}

var progressLabels = map[ProgressStatus]string{
	ProgressPending:  "Pending",
	ProgressApproved: "Approved",
	ProgressRejected: "Rejected",
}

var issueColors = map[IssueStatus]string{
	IssueReported:    "#f59e0b",
	IssueUnderReview: "#3b82f6",
	IssueVerified:    "#8b5cf6",
	IssueForgiven:    "#10b981",
	IssuePenalized:   "#ef4444",
	IssueResolved:    "#10b981",
	IssueClosed:      "#6b7280",
}

var issueLabels = map[IssueStatus]string{
	IssueReported:    "Reported",
	IssueUnderReview: "Under Review",
	IssueVerified:    "Verified",
	IssueForgiven:    "Forgiven",
	IssuePenalized:   "Penalized",
	IssueResolved:    "Resolved",
	IssueClosed:      "Closed",
}

var severityColors = map[Severity]string{
	SeverityLow:      "#10b981",
	SeverityMedium:   "#f59e0b",
	SeverityHigh:     "#ef4444",
	SeverityCritical: "#7f1d1d",
}

// ClassifyProgress derives label, color and allowed actions for a
// progress submission. Approve/reject are offered only to GOVERNMENT
// while the record is still PENDING; an already dispositioned record
// exposes nothing.
func ClassifyProgress(rec ProgressRecord, viewer Role) Classification {
	c := Classification{
		Label:    progressLabels[rec.Status],
		ColorTag: progressColors[rec.Status],
	}
	if c.Label == "" {
		c.Label = string(rec.Status)
		c.ColorTag = neutralColor
	}
	if viewer == RoleGovernment && rec.Status == ProgressPending {
		c.Actions = []Action{ActionApprove, ActionReject}
	}
	return c
}

// ClassifyIssue derives label, color, severity tag and allowed actions
// for an issue report. FORGIVEN, PENALIZED and CLOSED are terminal: no
// actions are offered from them regardless of the other fields. Roles
// other than GOVERNMENT never get actions.
func ClassifyIssue(rec IssueRecord, viewer Role) Classification {
	c := Classification{
		Label:       issueLabels[rec.Status],
		ColorTag:    issueColors[rec.Status],
		SeverityTag: severityColors[rec.Severity],
	}
	if c.Label == "" {
		c.Label = string(rec.Status)
		c.ColorTag = neutralColor
	}
	if c.SeverityTag == "" {
		c.SeverityTag = neutralColor
	}
	if viewer != RoleGovernment || isTerminal(rec.Status) {
		return c
	}
	if rec.Status == IssueReported {
		c.Actions = append(c.Actions, ActionVerify)
	}
	if rec.Forgivable() && !rec.IsForgiven {
		c.Actions = append(c.Actions, ActionForgive)
	}
	if rec.IssueType == IssueContractorFault && !rec.IsForgiven {
		c.Actions = append(c.Actions, ActionPenalize)
	}
	return c
}

func isTerminal(s IssueStatus) bool {
	return s == IssueForgiven || s == IssuePenalized || s == IssueClosed
}

// IsPendingReview is the one shared definition of an issue awaiting
// government attention, used by every counter and filter.
func IsPendingReview(rec IssueRecord) bool {
	return rec.Status == IssueReported || rec.Status == IssueUnderReview
}

// DefaultForgivable is the fallback derivation used when the backend
// omits the is_forgivable flag: causes outside the contractor's control
// qualify for a no-penalty resolution.
func DefaultForgivable(t IssueType) bool {
	switch t {
	case IssueNaturalDisaster, IssueVandalism, IssueNormalWear:
		return true
	default:
		return false
	}
}

// Forgivable resolves the record's forgivability: the serialized flag
// when the backend sent one, the type-based fallback when it did not.
func (r IssueRecord) Forgivable() bool {
	if r.IsForgivable != nil {
		return *r.IsForgivable
	}
	return DefaultForgivable(r.IssueType)
}
