package screens

import (
	"context"
	"fmt"

	"fundtracker.org/internal/eligibility"
	"fundtracker.org/internal/guard"
	"fundtracker.org/internal/workflow"
)

// Profile is the contractor's own page: rating, suspension banner,
// contract-size eligibility, certificates and skills. Each section
// degrades independently when its read fails.
func Profile(ctx context.Context, e *Env) error {
	if err := e.requireRole(guard.RoleIs(workflow.RoleContractor)); err != nil {
		return err
	}

	profiles, err := e.API.GetContractorProfiles(ctx)
	if err != nil {
		e.degradeRead("contractor profile", err)
	}
	if stale(ctx) {
		return ctx.Err()
	}

	heading(e.Out, "Contractor Profile")
	if len(profiles) == 0 {
		fmt.Fprintln(e.Out, "No contractor profile found.")
		return nil
	}
	profile := profiles[0]

	if suspended, notice := eligibility.SuspensionNotice(profile); suspended {
		fmt.Fprintf(e.Out, "!! SUSPENDED: %s\n", notice)
	}

	fmt.Fprintf(e.Out, "%s, rating %s", profile.Username, eligibility.FormatRating(profile.Rating))
	if eligibility.BelowFloor(profile.Rating) {
		fmt.Fprintf(e.Out, " (below %.1f floor)", eligibility.RatingFloor)
	}
	fmt.Fprintln(e.Out)
	fmt.Fprintf(e.Out, "completed %d, failed %d, %d years of experience\n",
		profile.TotalProjectsCompleted, profile.TotalProjectsFailed, profile.YearsOfExperience)

	resp, err := e.API.CheckContractorEligibility(ctx, profile.ID)
	if err != nil {
		e.degradeRead("eligibility", err)
	}
	if stale(ctx) {
		return ctx.Err()
	}
	if resp != nil {
		heading(e.Out, "Contract Eligibility")
		for _, row := range eligibility.Project(resp.Eligibility) {
			mark := "no"
			if row.Eligible {
				mark = "yes"
			}
			fmt.Fprintf(e.Out, "%-8s %-3s %s\n", row.Tier, mark, row.Reason)
		}
	}

	certs := profile.Certificates
	if len(certs) == 0 {
		if fetched, err := e.API.GetContractorCertificates(ctx); err != nil {
			e.degradeRead("certificates", err)
		} else {
			certs = fetched
		}
	}
	skills := profile.Skills
	if len(skills) == 0 {
		if fetched, err := e.API.GetContractorSkills(ctx); err != nil {
			e.degradeRead("skills", err)
		} else {
			skills = fetched
		}
	}
	if stale(ctx) {
		return ctx.Err()
	}

	cv, ct := eligibility.CountVerifiedCertificates(certs)
	sv, st := eligibility.CountVerifiedSkills(skills)
	heading(e.Out, "Qualifications")
	fmt.Fprintf(e.Out, "certificates: %d verified of %d\n", cv, ct)
	for _, c := range certs {
		fmt.Fprintf(e.Out, "    %s (%s)%s\n", c.Name, c.IssuingAuthority, verifiedTag(c.Verified))
	}
	fmt.Fprintf(e.Out, "skills: %d verified of %d\n", sv, st)
	for _, s := range skills {
		fmt.Fprintf(e.Out, "    %s, level %d, %d years%s\n",
			s.SkillName, s.ProficiencyLevel, s.YearsOfPractice, verifiedTag(s.Verified))
	}
	return nil
}

func verifiedTag(v bool) string {
	if v {
		return " [verified]"
	}
	return ""
}
