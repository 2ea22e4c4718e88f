package screens

import (
	"context"
	"fmt"

	"fundtracker.org/internal/workflow"
)

// ProjectDetail renders one project in full: header, released fund
// tranches and the progress history. Open to anonymous visitors like
// the public list.
func ProjectDetail(ctx context.Context, e *Env, id int64) error {
	project, err := e.API.GetProjectByID(ctx, id)
	if err != nil {
		e.degradeRead("project", err)
	}
	if stale(ctx) {
		return ctx.Err()
	}

	heading(e.Out, fmt.Sprintf("Project %d", id))
	if project == nil {
		fmt.Fprintln(e.Out, "Project not found.")
		return nil
	}

	fmt.Fprintf(e.Out, "%s (%s)\n", project.Name, project.Location)
	if project.Ministry != "" {
		fmt.Fprintf(e.Out, "ministry: %s\n", project.Ministry)
	}
	if project.Contractor != "" {
		fmt.Fprintf(e.Out, "contractor: %s\n", project.Contractor)
	}
	if project.StartDate != "" || project.EndDate != "" {
		fmt.Fprintf(e.Out, "schedule: %s to %s\n", project.StartDate, project.EndDate)
	}
	fmt.Fprintf(e.Out, "budget %.2f, released %.2f\n",
		float64(project.TotalBudget), float64(project.FundsReleased()))

	heading(e.Out, "Fund Releases")
	if len(project.Funds) == 0 {
		fmt.Fprintln(e.Out, "No funds released.")
	}
	for _, f := range project.Funds {
		fmt.Fprintf(e.Out, "%s  %.2f\n", f.ReleasedAt.Format("2006-01-02"), float64(f.Amount))
	}

	heading(e.Out, "Progress History")
	if len(project.Progress) == 0 {
		fmt.Fprintln(e.Out, "No progress reported.")
		return nil
	}
	viewer := e.viewerRole()
	for _, rec := range project.Progress {
		c := workflow.ClassifyProgress(rec, viewer)
		fmt.Fprintf(e.Out, "%s by %s: %d%% physical, %d%% financial [%s]%s\n",
			rec.Date, rec.SubmittedBy, rec.PhysicalProgress, rec.FinancialProgress,
			c.Label, actionHint(c))
	}
	return nil
}
