package screens

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fundtracker.org/internal/api"
	"fundtracker.org/internal/guard"
	"fundtracker.org/internal/session"
	"fundtracker.org/internal/workflow"
)

func newEnv(t *testing.T, handler http.Handler) (*Env, *bytes.Buffer) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store := session.New(session.NewStateFile(filepath.Join(t.TempDir(), "session.json")), zap.NewNop())
	out := &bytes.Buffer{}
	env := &Env{
		Session: store,
		API:     api.New(srv.URL, store, api.WithLogger(zap.NewNop())),
		Out:     out,
		Log:     zap.NewNop(),
	}
	return env, out
}

func loginAs(t *testing.T, e *Env, role workflow.Role) {
	t.Helper()
	require.NoError(t, e.Session.Login(session.Identity{ID: 1, Username: "tester", Role: role}, "test-token"))
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestLoginScreenEstablishesSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, api.AuthResponse{
			User:   api.AuthUser{ID: 3, Username: "gov1", Role: workflow.RoleGovernment},
			Tokens: api.Tokens{Access: "acc-token"},
		})
	})
	env, out := newEnv(t, mux)

	require.NoError(t, Login(context.Background(), env, "gov1", "pw"))
	assert.True(t, env.Session.IsAuthenticated())
	role, ok := env.Session.Role()
	require.True(t, ok)
	assert.Equal(t, workflow.RoleGovernment, role)
	assert.Contains(t, out.String(), "Logged in as gov1 (GOVERNMENT)")
}

func TestLoginScreenBadCredentials(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		writeJSON(t, w, map[string]string{"error": "Invalid credentials"})
	})
	env, _ := newEnv(t, mux)

	err := Login(context.Background(), env, "gov1", "wrong")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid username or password")
	assert.False(t, env.Session.IsAuthenticated())
}

func verifiedContractorFaultIssue() workflow.IssueRecord {
	forgivable := true
	return workflow.IssueRecord{
		ID:           5,
		Project:      1,
		Title:        "Cracked foundation",
		IssueType:    workflow.IssueContractorFault,
		Severity:     workflow.SeverityHigh,
		Status:       workflow.IssueVerified,
		IsForgivable: &forgivable,
	}
}

func TestIssueManagementOffersGovernmentActions(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/issues/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, []workflow.IssueRecord{verifiedContractorFaultIssue()})
	})
	env, out := newEnv(t, mux)
	loginAs(t, env, workflow.RoleGovernment)

	require.NoError(t, IssueManagement(context.Background(), env))
	assert.Contains(t, out.String(), "[actions: forgive, penalize]")
	assert.Contains(t, out.String(), "Cracked foundation")
}

func TestIssueManagementHidesActionsFromContractor(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/issues/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, []workflow.IssueRecord{verifiedContractorFaultIssue()})
	})
	env, out := newEnv(t, mux)
	loginAs(t, env, workflow.RoleContractor)

	require.NoError(t, IssueManagement(context.Background(), env))
	assert.NotContains(t, out.String(), "[actions:")
}

func TestForgiveRefreshesListAndDropsActions(t *testing.T) {
	issue := verifiedContractorFaultIssue()
	mux := http.NewServeMux()
	mux.HandleFunc("/issues/5/forgive/", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		issue.Status = workflow.IssueForgiven
		issue.IsForgiven = true
		issue.ForgivenessReason = body["reason"]
		writeJSON(t, w, issue)
	})
	listFetches := 0
	mux.HandleFunc("/issues/", func(w http.ResponseWriter, r *http.Request) {
		listFetches++
		writeJSON(t, w, []workflow.IssueRecord{issue})
	})
	env, out := newEnv(t, mux)
	loginAs(t, env, workflow.RoleGovernment)

	require.NoError(t, ForgiveIssue(context.Background(), env, 5, "earthquake damage verified"))
	assert.Equal(t, 1, listFetches, "mutation must be followed by a fresh list fetch")
	assert.Contains(t, out.String(), "forgiven: earthquake damage verified")
	assert.Contains(t, out.String(), "[Forgiven/")
	assert.NotContains(t, out.String(), "[actions:", "terminal record must expose nothing")
}

func TestForgiveSurfacesBackendRefusal(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/issues/5/forgive/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		writeJSON(t, w, map[string]string{"error": "This issue type cannot be forgiven"})
	})
	env, _ := newEnv(t, mux)
	loginAs(t, env, workflow.RoleGovernment)

	err := ForgiveIssue(context.Background(), env, 5, "please")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "This issue type cannot be forgiven")
}

func TestPenalizeReportsPenaltyAndNewRating(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/issues/5/penalize/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"issue": {"id": 5, "status": "PENALIZED", "issue_type": "CONTRACTOR_FAULT"},
			"penalty_applied": "0.50",
			"new_contractor_rating": "3.30"
		}`))
	})
	mux.HandleFunc("/issues/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, []workflow.IssueRecord{{ID: 5, Status: workflow.IssuePenalized}})
	})
	env, out := newEnv(t, mux)
	loginAs(t, env, workflow.RoleGovernment)

	require.NoError(t, PenalizeIssue(context.Background(), env, 5))
	assert.Contains(t, out.String(), "-0.50")
	assert.Contains(t, out.String(), "rating now 3.30")
}

func TestApproveProgressRefetchesQueue(t *testing.T) {
	queueFetches := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/progress/9/approve/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/progress/pending/", func(w http.ResponseWriter, r *http.Request) {
		queueFetches++
		writeJSON(t, w, []workflow.ProgressRecord{})
	})
	env, out := newEnv(t, mux)
	loginAs(t, env, workflow.RoleGovernment)

	require.NoError(t, ApproveProgress(context.Background(), env, 9))
	assert.Equal(t, 1, queueFetches)
	assert.Contains(t, out.String(), "approve recorded")
	assert.Contains(t, out.String(), "Queue is empty.")
}

func TestApproveProgressDeniedForContractor(t *testing.T) {
	env, out := newEnv(t, http.NewServeMux())
	loginAs(t, env, workflow.RoleContractor)

	err := ApproveProgress(context.Background(), env, 9)
	assert.ErrorIs(t, err, guard.ErrLoginRequired)
	assert.Empty(t, out.String(), "denied screens render nothing")
}

func TestAuditTrailDeniedWithoutAuditorRole(t *testing.T) {
	env, out := newEnv(t, http.NewServeMux())
	loginAs(t, env, workflow.RoleContractor)

	err := AuditTrail(context.Background(), env)
	assert.ErrorIs(t, err, guard.ErrLoginRequired)
	assert.Empty(t, out.String())

	require.NoError(t, env.Session.Logout())
	err = AuditTrail(context.Background(), env)
	assert.ErrorIs(t, err, guard.ErrLoginRequired)
}

func TestProfileShowsSuspensionReasonVerbatim(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/contractor-profiles/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{
			"id": 7,
			"user_username": "builder1",
			"rating": "3.20",
			"is_suspended": true,
			"suspension_reason": "Rating dropped below 3.8 after verified contractor fault",
			"certificates": [{"id": 1, "name": "ISO 9001", "issuing_authority": "BSI", "verified": true}],
			"skills": [{"id": 1, "skill_name": "Masonry", "proficiency_level": 4, "years_of_practice": 6, "verified": false}]
		}]`))
	})
	mux.HandleFunc("/contractor-profiles/7/check_eligibility/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"rating": "3.20",
			"is_suspended": true,
			"eligibility": {
				"LARGE": {"eligible": false, "reason": "Requires rating 4.5+"},
				"SMALL": {"eligible": true, "reason": "Meets all criteria"}
			}
		}`))
	})
	env, out := newEnv(t, mux)
	loginAs(t, env, workflow.RoleContractor)

	require.NoError(t, Profile(context.Background(), env))
	text := out.String()
	assert.Contains(t, text, "SUSPENDED: Rating dropped below 3.8 after verified contractor fault")
	assert.Contains(t, text, "rating 3.20 (below 3.8 floor)")
	assert.Contains(t, text, "certificates: 1 verified of 1")
	assert.Contains(t, text, "skills: 0 verified of 1")
	// Known tiers render in size order regardless of map order.
	assert.Less(t, bytes.Index(out.Bytes(), []byte("SMALL")), bytes.Index(out.Bytes(), []byte("LARGE")))
}

func TestGovernmentDashboardCountsAndDegradedSections(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/projects/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, []api.Project{{ID: 1, Name: "Bridge"}})
	})
	mux.HandleFunc("/progress/pending/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, []workflow.ProgressRecord{{
			ID: 9, Project: 1, Status: workflow.ProgressPending, SubmittedBy: "builder1",
		}})
	})
	mux.HandleFunc("/issues/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, []workflow.IssueRecord{
			{ID: 1, Status: workflow.IssueReported},
			{ID: 2, Status: workflow.IssueUnderReview},
			{ID: 3, Status: workflow.IssueForgiven},
		})
	})
	// No suspended-contractors handler: that read fails and the section
	// renders empty without failing the screen.
	env, out := newEnv(t, mux)
	loginAs(t, env, workflow.RoleGovernment)

	require.NoError(t, GovernmentDashboard(context.Background(), env))
	text := out.String()
	assert.Contains(t, text, "projects: 1, pending approvals: 1, pending issues: 2, suspended contractors: 0")
	assert.Contains(t, text, "[actions: approve, reject]")
	assert.Contains(t, text, "None.")
}

func TestPublicDashboardDegradesWhenBackendDown(t *testing.T) {
	srv := httptest.NewServer(http.NewServeMux())
	srv.Close() // deliberately unreachable

	store := session.New(session.NewStateFile(filepath.Join(t.TempDir(), "session.json")), zap.NewNop())
	out := &bytes.Buffer{}
	env := &Env{
		Session: store,
		API:     api.New(srv.URL, store, api.WithLogger(zap.NewNop())),
		Out:     out,
		Log:     zap.NewNop(),
	}

	require.NoError(t, PublicDashboard(context.Background(), env))
	assert.Contains(t, out.String(), "No projects to show.")
}

func TestProjectDetailRendersFundsAndProgress(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/projects/3/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"id": 3,
			"name": "River Bridge",
			"location": "North District",
			"ministry": "Ministry of Works",
			"contractor": "builder1",
			"total_budget": "500000.00",
			"start_date": "2026-01-01",
			"end_date": "2026-12-31",
			"funds": [
				{"id": 1, "project": 3, "amount": "100000.00", "released_at": "2026-02-01T00:00:00Z"},
				{"id": 2, "project": 3, "amount": "50000.00", "released_at": "2026-04-01T00:00:00Z"}
			],
			"progress": [
				{"id": 9, "project": 3, "physical_progress": 40, "financial_progress": 30,
				 "date": "2026-05-01", "submitted_by_username": "builder1", "status": "APPROVED"},
				{"id": 10, "project": 3, "physical_progress": 55, "financial_progress": 45,
				 "date": "2026-06-01", "submitted_by_username": "builder1", "status": "PENDING"}
			]
		}`))
	})
	env, out := newEnv(t, mux)

	// Anonymous visitors get the full page, classified without actions.
	require.NoError(t, ProjectDetail(context.Background(), env, 3))
	text := out.String()
	assert.Contains(t, text, "River Bridge (North District)")
	assert.Contains(t, text, "budget 500000.00, released 150000.00")
	assert.Contains(t, text, "2026-02-01  100000.00")
	assert.Contains(t, text, "[Approved]")
	assert.Contains(t, text, "[Pending]")
	assert.NotContains(t, text, "[actions:")

	// A government viewer sees approve/reject on the pending entry.
	out.Reset()
	loginAs(t, env, workflow.RoleGovernment)
	require.NoError(t, ProjectDetail(context.Background(), env, 3))
	assert.Contains(t, out.String(), "[Pending] [actions: approve, reject]")
}

func TestProjectDetailDegradesWhenMissing(t *testing.T) {
	env, out := newEnv(t, http.NewServeMux())

	require.NoError(t, ProjectDetail(context.Background(), env, 99))
	assert.Contains(t, out.String(), "Project not found.")
}

func TestCanceledNavigationRendersNothing(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/projects/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, []api.Project{{ID: 1, Name: "Bridge"}})
	})
	env, out := newEnv(t, mux)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := PublicDashboard(ctx, env)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, out.String(), "a stale navigation must not render")
}

func TestSubmitProgressValidatesRange(t *testing.T) {
	env, _ := newEnv(t, http.NewServeMux())
	loginAs(t, env, workflow.RoleContractor)

	err := SubmitProgress(context.Background(), env, 1, api.ProgressDraft{PhysicalProgress: 150, FinancialProgress: 10})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "between 0 and 100")
}

func TestVerifyMaterialRefetchesProjectMaterials(t *testing.T) {
	verified := false
	mux := http.NewServeMux()
	mux.HandleFunc("/materials/4/verify/", func(w http.ResponseWriter, r *http.Request) {
		verified = true
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/projects/1/materials/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, []api.Material{{ID: 4, Project: 1, Name: "Cement", Verified: verified, VerifiedBy: "gov1"}})
	})
	env, out := newEnv(t, mux)
	loginAs(t, env, workflow.RoleGovernment)

	require.NoError(t, VerifyMaterial(context.Background(), env, 1, 4))
	assert.Contains(t, out.String(), "Material #4 verified")
	assert.Contains(t, out.String(), "verified by gov1")
}
