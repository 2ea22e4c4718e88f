package screens

import (
	"context"
	"fmt"

	"fundtracker.org/internal/guard"
	"fundtracker.org/internal/workflow"
)

// AuditTrail shows the backend's activity log. Auditor only.
func AuditTrail(ctx context.Context, e *Env) error {
	if err := e.requireRole(guard.RoleIs(workflow.RoleAuditor)); err != nil {
		return err
	}
	entries, err := e.API.GetAuditLogs(ctx)
	if err != nil {
		e.degradeRead("audit logs", err)
	}
	if stale(ctx) {
		return ctx.Err()
	}

	heading(e.Out, "Audit Trail")
	if len(entries) == 0 {
		fmt.Fprintln(e.Out, "No activity recorded.")
		return nil
	}
	for _, entry := range entries {
		fmt.Fprintf(e.Out, "%s %s %s %s#%d",
			entry.Timestamp.Format("2006-01-02 15:04"),
			entry.Username, entry.Action, entry.ModelName, entry.ObjectID)
		if entry.Description != "" {
			fmt.Fprintf(e.Out, " (%s)", entry.Description)
		}
		fmt.Fprintln(e.Out)
	}
	return nil
}
