package api

import (
	"context"
	"fmt"
	"net/http"

	"fundtracker.org/internal/eligibility"
	"fundtracker.org/internal/workflow"
)

// GetProjects lists all projects with embedded funds and progress.
func (c *Client) GetProjects(ctx context.Context) ([]Project, error) {
	var out []Project
	if err := c.do(ctx, "get_projects", http.MethodGet, "/projects/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetProjectByID fetches one project in full.
func (c *Client) GetProjectByID(ctx context.Context, id int64) (*Project, error) {
	var out Project
	if err := c.do(ctx, "get_project", http.MethodGet, fmt.Sprintf("/projects/%d/", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetPendingProgress lists submissions awaiting government disposition.
func (c *Client) GetPendingProgress(ctx context.Context) ([]workflow.ProgressRecord, error) {
	var out []workflow.ProgressRecord
	if err := c.do(ctx, "get_pending_progress", http.MethodGet, "/progress/pending/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ApproveProgress accepts a pending submission.
func (c *Client) ApproveProgress(ctx context.Context, id int64) error {
	return c.do(ctx, "approve_progress", http.MethodPost, fmt.Sprintf("/progress/%d/approve/", id), nil, nil)
}

// RejectProgress declines a pending submission.
func (c *Client) RejectProgress(ctx context.Context, id int64) error {
	return c.do(ctx, "reject_progress", http.MethodPost, fmt.Sprintf("/progress/%d/reject/", id), nil, nil)
}

// ProgressDraft is a new completion report. Evidence images are
// uploaded separately and are outside this client's scope.
type ProgressDraft struct {
	PhysicalProgress  int `json:"physical_progress"`
	FinancialProgress int `json:"financial_progress"`
}

// SubmitProgress files a new report against a project.
func (c *Client) SubmitProgress(ctx context.Context, projectID int64, draft ProgressDraft) (*workflow.ProgressRecord, error) {
	var out workflow.ProgressRecord
	path := fmt.Sprintf("/projects/%d/progress/", projectID)
	if err := c.do(ctx, "submit_progress", http.MethodPost, path, draft, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetIssues lists all issue reports.
func (c *Client) GetIssues(ctx context.Context) ([]workflow.IssueRecord, error) {
	var out []workflow.IssueRecord
	if err := c.do(ctx, "get_issues", http.MethodGet, "/issues/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// IssueDraft is a new issue report.
type IssueDraft struct {
	Project     int64              `json:"project"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	IssueType   workflow.IssueType `json:"issue_type"`
	Severity    workflow.Severity  `json:"severity"`
}

// ReportIssue files a new issue.
func (c *Client) ReportIssue(ctx context.Context, draft IssueDraft) (*workflow.IssueRecord, error) {
	var out workflow.IssueRecord
	if err := c.do(ctx, "report_issue", http.MethodPost, "/issues/", draft, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyIssue confirms a reported issue. The backend decides the
// resulting status; the client renders whatever comes back.
func (c *Client) VerifyIssue(ctx context.Context, id int64) (*workflow.IssueRecord, error) {
	var out workflow.IssueRecord
	if err := c.do(ctx, "verify_issue", http.MethodPost, fmt.Sprintf("/issues/%d/verify/", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ForgiveIssue resolves an issue without penalty, with a reason.
func (c *Client) ForgiveIssue(ctx context.Context, id int64, reason string) (*workflow.IssueRecord, error) {
	body := map[string]string{"reason": reason}
	var out workflow.IssueRecord
	if err := c.do(ctx, "forgive_issue", http.MethodPost, fmt.Sprintf("/issues/%d/forgive/", id), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PenaltyResult reports the applied penalty and the contractor's
// server-computed new rating.
type PenaltyResult struct {
	Issue               workflow.IssueRecord `json:"issue"`
	PenaltyApplied      Money                `json:"penalty_applied"`
	NewContractorRating eligibility.Rating   `json:"new_contractor_rating"`
}

// PenalizeIssue applies a rating penalty to the contractor at fault.
func (c *Client) PenalizeIssue(ctx context.Context, id int64) (*PenaltyResult, error) {
	var out PenaltyResult
	if err := c.do(ctx, "penalize_issue", http.MethodPost, fmt.Sprintf("/issues/%d/penalize/", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetContractorProfiles lists contractor profiles visible to the caller.
func (c *Client) GetContractorProfiles(ctx context.Context) ([]eligibility.ContractorProfile, error) {
	var out []eligibility.ContractorProfile
	if err := c.do(ctx, "get_contractor_profiles", http.MethodGet, "/contractor-profiles/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetSuspendedContractors lists currently suspended contractors.
func (c *Client) GetSuspendedContractors(ctx context.Context) ([]eligibility.ContractorProfile, error) {
	var out []eligibility.ContractorProfile
	if err := c.do(ctx, "get_suspended_contractors", http.MethodGet, "/contractor-profiles/suspended/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// EligibilityResponse carries the backend's per-tier verdicts.
type EligibilityResponse struct {
	Rating      eligibility.Rating                       `json:"rating"`
	IsSuspended bool                                     `json:"is_suspended"`
	Eligibility map[eligibility.Tier]eligibility.Verdict `json:"eligibility"`
}

// CheckContractorEligibility asks the backend which contract sizes a
// contractor qualifies for. The verdicts are opaque to the client.
func (c *Client) CheckContractorEligibility(ctx context.Context, id int64) (*EligibilityResponse, error) {
	var out EligibilityResponse
	path := fmt.Sprintf("/contractor-profiles/%d/check_eligibility/", id)
	if err := c.do(ctx, "check_eligibility", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetContractorCertificates lists the caller's certificates.
func (c *Client) GetContractorCertificates(ctx context.Context) ([]eligibility.Certificate, error) {
	var out []eligibility.Certificate
	if err := c.do(ctx, "get_certificates", http.MethodGet, "/contractor-certificates/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetContractorSkills lists the caller's skills.
func (c *Client) GetContractorSkills(ctx context.Context) ([]eligibility.Skill, error) {
	var out []eligibility.Skill
	if err := c.do(ctx, "get_skills", http.MethodGet, "/contractor-skills/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetProjectMaterials lists materials registered against a project.
func (c *Client) GetProjectMaterials(ctx context.Context, projectID int64) ([]Material, error) {
	var out []Material
	path := fmt.Sprintf("/projects/%d/materials/", projectID)
	if err := c.do(ctx, "get_project_materials", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// VerifyMaterial marks a material as inspected.
func (c *Client) VerifyMaterial(ctx context.Context, id int64) error {
	return c.do(ctx, "verify_material", http.MethodPost, fmt.Sprintf("/materials/%d/verify/", id), nil, nil)
}

// GetAuditLogs reads the backend's activity trail.
func (c *Client) GetAuditLogs(ctx context.Context) ([]AuditEntry, error) {
	var out []AuditEntry
	if err := c.do(ctx, "get_audit_logs", http.MethodGet, "/audit-logs/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
