package screens

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"fundtracker.org/internal/api"
	"fundtracker.org/internal/audit"
	"fundtracker.org/internal/guard"
	"fundtracker.org/internal/workflow"
)

// PublicDashboard is the open landing page: every project with its
// budget, released funds and latest progress. No guard.
func PublicDashboard(ctx context.Context, e *Env) error {
	projects, err := e.API.GetProjects(ctx)
	if err != nil {
		e.degradeRead("projects", err)
	}
	if stale(ctx) {
		return ctx.Err()
	}

	heading(e.Out, "Public Projects")
	if len(projects) == 0 {
		fmt.Fprintln(e.Out, "No projects to show.")
		return nil
	}
	viewer := e.viewerRole()
	for _, p := range projects {
		fmt.Fprintf(e.Out, "#%d %s (%s)\n", p.ID, p.Name, p.Location)
		fmt.Fprintf(e.Out, "    budget %.2f, released %.2f\n", float64(p.TotalBudget), float64(p.FundsReleased()))
		if latest, ok := p.LatestProgress(); ok {
			c := workflow.ClassifyProgress(latest, viewer)
			fmt.Fprintf(e.Out, "    latest progress: %d%% physical, %d%% financial (%s)\n",
				latest.PhysicalProgress, latest.FinancialProgress, c.Label)
		}
	}
	return nil
}

// ContractorDashboard shows the contractor's projects and the
// disposition of each of their submissions.
func ContractorDashboard(ctx context.Context, e *Env) error {
	if err := e.requireRole(guard.RoleIs(workflow.RoleContractor)); err != nil {
		return err
	}
	projects, err := e.API.GetProjects(ctx)
	if err != nil {
		e.degradeRead("projects", err)
	}
	if stale(ctx) {
		return ctx.Err()
	}

	heading(e.Out, "My Projects")
	if len(projects) == 0 {
		fmt.Fprintln(e.Out, "No projects assigned.")
		return nil
	}
	viewer := e.viewerRole()
	for _, p := range projects {
		fmt.Fprintf(e.Out, "#%d %s\n", p.ID, p.Name)
		for _, rec := range p.Progress {
			c := workflow.ClassifyProgress(rec, viewer)
			fmt.Fprintf(e.Out, "    %s: %d%% physical, %d%% financial [%s]\n",
				rec.Date, rec.PhysicalProgress, rec.FinancialProgress, c.Label)
		}
	}
	return nil
}

// GovernmentDashboard is the review console: headline counters, the
// pending-approval queue and the suspended-contractor list. Each section
// degrades independently when its read fails.
func GovernmentDashboard(ctx context.Context, e *Env) error {
	if err := e.requireRole(guard.RoleIs(workflow.RoleGovernment)); err != nil {
		return err
	}

	projects, err := e.API.GetProjects(ctx)
	if err != nil {
		e.degradeRead("projects", err)
	}
	pending, err := e.API.GetPendingProgress(ctx)
	if err != nil {
		e.degradeRead("pending progress", err)
	}
	issues, err := e.API.GetIssues(ctx)
	if err != nil {
		e.degradeRead("issues", err)
	}
	suspended, err := e.API.GetSuspendedContractors(ctx)
	if err != nil {
		e.degradeRead("suspended contractors", err)
	}
	if stale(ctx) {
		return ctx.Err()
	}

	pendingIssues := 0
	for _, rec := range issues {
		if workflow.IsPendingReview(rec) {
			pendingIssues++
		}
	}

	heading(e.Out, "Government Dashboard")
	fmt.Fprintf(e.Out, "projects: %d, pending approvals: %d, pending issues: %d, suspended contractors: %d\n",
		len(projects), len(pending), pendingIssues, len(suspended))

	heading(e.Out, "Pending Approvals")
	if len(pending) == 0 {
		fmt.Fprintln(e.Out, "Queue is empty.")
	}
	viewer := e.viewerRole()
	for _, rec := range pending {
		c := workflow.ClassifyProgress(rec, viewer)
		fmt.Fprintf(e.Out, "#%d project %d by %s: %d%% physical, %d%% financial [%s]%s\n",
			rec.ID, rec.Project, rec.SubmittedBy,
			rec.PhysicalProgress, rec.FinancialProgress, c.Label, actionHint(c))
	}

	heading(e.Out, "Suspended Contractors")
	if len(suspended) == 0 {
		fmt.Fprintln(e.Out, "None.")
	}
	for _, p := range suspended {
		reason := p.SuspensionReason
		if reason == "" {
			reason = "no reason recorded"
		}
		fmt.Fprintf(e.Out, "%s: %s\n", p.Username, reason)
	}
	return nil
}

// ApproveProgress accepts a pending submission and re-renders the queue
// from a fresh fetch.
func ApproveProgress(ctx context.Context, e *Env, id int64) error {
	return dispositionProgress(ctx, e, id, "approve", e.API.ApproveProgress)
}

// RejectProgress declines a pending submission and re-renders the queue
// from a fresh fetch.
func RejectProgress(ctx context.Context, e *Env, id int64) error {
	return dispositionProgress(ctx, e, id, "reject", e.API.RejectProgress)
}

func dispositionProgress(ctx context.Context, e *Env, id int64, action string, call func(context.Context, int64) error) error {
	if err := e.requireRole(guard.RoleIs(workflow.RoleGovernment)); err != nil {
		return err
	}
	if err := call(ctx, id); err != nil {
		return writeFailure(action, err)
	}
	audit.LogAction(ctx, action+"_progress", zap.Int64("progress_id", id))
	fmt.Fprintf(e.Out, "Submission #%d: %s recorded\n", id, action)
	return renderPendingQueue(ctx, e)
}

func renderPendingQueue(ctx context.Context, e *Env) error {
	pending, err := e.API.GetPendingProgress(ctx)
	if err != nil {
		e.degradeRead("pending progress", err)
	}
	if stale(ctx) {
		return ctx.Err()
	}
	heading(e.Out, "Pending Approvals")
	if len(pending) == 0 {
		fmt.Fprintln(e.Out, "Queue is empty.")
		return nil
	}
	viewer := e.viewerRole()
	for _, rec := range pending {
		c := workflow.ClassifyProgress(rec, viewer)
		fmt.Fprintf(e.Out, "#%d project %d by %s: %d%% physical, %d%% financial [%s]%s\n",
			rec.ID, rec.Project, rec.SubmittedBy,
			rec.PhysicalProgress, rec.FinancialProgress, c.Label, actionHint(c))
	}
	return nil
}

// SubmitProgress files a completion report against a project. Percentages
// are checked client-side only to avoid a pointless round trip; the
// backend validates again.
func SubmitProgress(ctx context.Context, e *Env, projectID int64, draft api.ProgressDraft) error {
	if err := e.requireRole(guard.RoleIs(workflow.RoleContractor)); err != nil {
		return err
	}
	if draft.PhysicalProgress < 0 || draft.PhysicalProgress > 100 ||
		draft.FinancialProgress < 0 || draft.FinancialProgress > 100 {
		return fmt.Errorf("progress values must be between 0 and 100")
	}
	rec, err := e.API.SubmitProgress(ctx, projectID, draft)
	if err != nil {
		return writeFailure("submit progress", err)
	}
	audit.LogAction(ctx, "submit_progress",
		zap.Int64("project_id", projectID),
		zap.Int64("progress_id", rec.ID))
	fmt.Fprintf(e.Out, "Submission #%d filed for project %d, awaiting review\n", rec.ID, projectID)
	return nil
}
