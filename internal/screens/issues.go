package screens

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"fundtracker.org/internal/api"
	"fundtracker.org/internal/audit"
	"fundtracker.org/internal/eligibility"
	"fundtracker.org/internal/guard"
	"fundtracker.org/internal/workflow"
)

// IssueManagement lists every issue with its classification for the
// viewing role. Any logged-in role may look; the classification decides
// who gets action hints.
func IssueManagement(ctx context.Context, e *Env) error {
	if err := e.requireRole(guard.Authenticated()); err != nil {
		return err
	}
	return renderIssueList(ctx, e)
}

func renderIssueList(ctx context.Context, e *Env) error {
	issues, err := e.API.GetIssues(ctx)
	if err != nil {
		e.degradeRead("issues", err)
	}
	if stale(ctx) {
		return ctx.Err()
	}

	pendingReview := 0
	for _, rec := range issues {
		if workflow.IsPendingReview(rec) {
			pendingReview++
		}
	}

	heading(e.Out, "Issue Management")
	fmt.Fprintf(e.Out, "total: %d, pending review: %d\n", len(issues), pendingReview)
	if len(issues) == 0 {
		fmt.Fprintln(e.Out, "No issues reported.")
		return nil
	}
	viewer := e.viewerRole()
	for _, rec := range issues {
		c := workflow.ClassifyIssue(rec, viewer)
		fmt.Fprintf(e.Out, "#%d [%s/%s] %s (%s)%s\n",
			rec.ID, c.Label, rec.Severity, rec.Title, rec.IssueType, actionHint(c))
		if rec.IsForgiven && rec.ForgivenessReason != "" {
			fmt.Fprintf(e.Out, "    forgiven: %s\n", rec.ForgivenessReason)
		}
		if rec.RatingImpact != nil {
			fmt.Fprintf(e.Out, "    rating impact: -%.2f\n", *rec.RatingImpact)
		}
	}
	return nil
}

// ReportIssue files a new issue against a project.
func ReportIssue(ctx context.Context, e *Env, draft api.IssueDraft) error {
	if err := e.requireRole(guard.Authenticated()); err != nil {
		return err
	}
	rec, err := e.API.ReportIssue(ctx, draft)
	if err != nil {
		return writeFailure("report issue", err)
	}
	audit.LogAction(ctx, "report_issue",
		zap.Int64("issue_id", rec.ID),
		zap.String("issue_type", string(rec.IssueType)))
	fmt.Fprintf(e.Out, "Issue #%d reported\n", rec.ID)
	return renderIssueList(ctx, e)
}

// VerifyIssue confirms a reported issue. The status that comes back is
// the backend's call; the refreshed list renders whatever it is now.
func VerifyIssue(ctx context.Context, e *Env, id int64) error {
	if err := e.requireRole(guard.RoleIs(workflow.RoleGovernment)); err != nil {
		return err
	}
	rec, err := e.API.VerifyIssue(ctx, id)
	if err != nil {
		return writeFailure("verify", err)
	}
	audit.LogAction(ctx, "verify_issue",
		zap.Int64("issue_id", id),
		zap.String("status", string(rec.Status)))
	fmt.Fprintf(e.Out, "Issue #%d is now %s\n", id, rec.Status)
	return renderIssueList(ctx, e)
}

// ForgiveIssue resolves an issue without penalty. A reason is mandatory;
// a backend refusal (unforgivable type, already forgiven) is surfaced
// with the server's own message.
func ForgiveIssue(ctx context.Context, e *Env, id int64, reason string) error {
	if err := e.requireRole(guard.RoleIs(workflow.RoleGovernment)); err != nil {
		return err
	}
	if reason == "" {
		return fmt.Errorf("a forgiveness reason is required")
	}
	rec, err := e.API.ForgiveIssue(ctx, id, reason)
	if err != nil {
		return writeFailure("forgive", err)
	}
	audit.LogAction(ctx, "forgive_issue",
		zap.Int64("issue_id", id),
		zap.String("reason", reason))
	fmt.Fprintf(e.Out, "Issue #%d forgiven: %s\n", id, rec.ForgivenessReason)
	return renderIssueList(ctx, e)
}

// PenalizeIssue applies a contractor-fault penalty and reports the
// server-computed deduction and new rating.
func PenalizeIssue(ctx context.Context, e *Env, id int64) error {
	if err := e.requireRole(guard.RoleIs(workflow.RoleGovernment)); err != nil {
		return err
	}
	res, err := e.API.PenalizeIssue(ctx, id)
	if err != nil {
		return writeFailure("penalize", err)
	}
	audit.LogAction(ctx, "penalize_issue",
		zap.Int64("issue_id", id),
		zap.Float64("penalty", float64(res.PenaltyApplied)))
	fmt.Fprintf(e.Out, "Issue #%d penalized: -%.2f, contractor rating now %s\n",
		id, float64(res.PenaltyApplied), eligibility.FormatRating(res.NewContractorRating))
	return renderIssueList(ctx, e)
}
