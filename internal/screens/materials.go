package screens

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"fundtracker.org/internal/audit"
	"fundtracker.org/internal/guard"
	"fundtracker.org/internal/workflow"
)

// Materials lists the materials registered against one project.
func Materials(ctx context.Context, e *Env, projectID int64) error {
	if err := e.requireRole(guard.Authenticated()); err != nil {
		return err
	}
	return renderMaterials(ctx, e, projectID)
}

func renderMaterials(ctx context.Context, e *Env, projectID int64) error {
	materials, err := e.API.GetProjectMaterials(ctx, projectID)
	if err != nil {
		e.degradeRead("materials", err)
	}
	if stale(ctx) {
		return ctx.Err()
	}

	heading(e.Out, fmt.Sprintf("Materials for project %d", projectID))
	if len(materials) == 0 {
		fmt.Fprintln(e.Out, "No materials registered.")
		return nil
	}
	for _, m := range materials {
		status := "unverified"
		if m.Verified {
			status = "verified"
			if m.VerifiedBy != "" {
				status += " by " + m.VerifiedBy
			}
		}
		fmt.Fprintf(e.Out, "#%d %s from %s: %.2f units at %.2f (%s)\n",
			m.ID, m.Name, m.Supplier, float64(m.Quantity), float64(m.UnitCost), status)
	}
	return nil
}

// VerifyMaterial marks a material as inspected, then re-renders the
// project's material list from a fresh fetch.
func VerifyMaterial(ctx context.Context, e *Env, projectID, materialID int64) error {
	if err := e.requireRole(guard.RoleIs(workflow.RoleGovernment)); err != nil {
		return err
	}
	if err := e.API.VerifyMaterial(ctx, materialID); err != nil {
		return writeFailure("verify material", err)
	}
	audit.LogAction(ctx, "verify_material", zap.Int64("material_id", materialID))
	fmt.Fprintf(e.Out, "Material #%d verified\n", materialID)
	return renderMaterials(ctx, e, projectID)
}
