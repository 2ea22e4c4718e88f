package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fundtracker.org/internal/workflow"
)

type staticToken string

func (s staticToken) Token() (string, bool) { return string(s), s != "" }

func TestRequestHeaders(t *testing.T) {
	var got http.Header
	var method string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		method = r.Method
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := New(srv.URL, staticToken("tok-1"))
	_, err := client.GetIssues(context.Background())
	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, method)
	assert.Equal(t, "Bearer tok-1", got.Get("Authorization"))
	assert.NotEmpty(t, got.Get("X-Request-Id"))
	assert.Empty(t, got.Get("Idempotency-Key"), "reads carry no idempotency key")

	require.NoError(t, client.ApproveProgress(context.Background(), 9))
	assert.NotEmpty(t, got.Get("Idempotency-Key"), "mutations carry an idempotency key")
}

func TestUnauthenticatedRequestsOmitHeader(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := New(srv.URL, staticToken(""))
	_, err := client.GetProjects(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got.Get("Authorization"))
}

func TestLoginMapsUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "Invalid credentials"})
	}))
	defer srv.Close()

	client := New(srv.URL, nil)
	_, err := client.Login(context.Background(), Credentials{Username: "x", Password: "y"})
	assert.ErrorIs(t, err, ErrBadCredentials)
}

func TestLoginSuspendedContractorPassesReasonThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"error":   "Contractor suspended",
			"message": "Your account is suspended. Reason: repeated failures",
		})
	}))
	defer srv.Close()

	client := New(srv.URL, nil)
	_, err := client.Login(context.Background(), Credentials{Username: "c", Password: "p"})
	var srvErr *ServerError
	require.ErrorAs(t, err, &srvErr)
	assert.Equal(t, http.StatusForbidden, srvErr.StatusCode)
	assert.Equal(t, "Contractor suspended", srvErr.Reason)
}

func TestLoginSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/login/", r.URL.Path)
		var creds Credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "gov1", creds.Username)
		_ = json.NewEncoder(w).Encode(AuthResponse{
			User:   AuthUser{ID: 3, Username: "gov1", Role: workflow.RoleGovernment},
			Tokens: Tokens{Access: "acc-token"},
		})
	}))
	defer srv.Close()

	client := New(srv.URL, nil)
	resp, err := client.Login(context.Background(), Credentials{Username: "gov1", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, workflow.RoleGovernment, resp.User.Role)
	assert.Equal(t, "acc-token", resp.Tokens.Access)
}

func TestForgiveIssueSendsReasonAndSurfacesRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["reason"] == "" {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "This issue type cannot be forgiven"})
			return
		}
		_ = json.NewEncoder(w).Encode(workflow.IssueRecord{
			ID:                5,
			Status:            workflow.IssueForgiven,
			IsForgiven:        true,
			ForgivenessReason: body["reason"],
		})
	}))
	defer srv.Close()

	client := New(srv.URL, staticToken("t"))

	rec, err := client.ForgiveIssue(context.Background(), 5, "earthquake damage verified")
	require.NoError(t, err)
	assert.True(t, rec.IsForgiven)
	assert.Equal(t, workflow.IssueForgiven, rec.Status)

	_, err = client.ForgiveIssue(context.Background(), 5, "")
	assert.Equal(t, "This issue type cannot be forgiven", ReasonOf(err))
}

func TestPenalizeIssueDecodesStringDecimals(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"issue": {"id": 5, "status": "PENALIZED", "issue_type": "CONTRACTOR_FAULT"},
			"penalty_applied": "0.50",
			"new_contractor_rating": "3.30"
		}`))
	}))
	defer srv.Close()

	client := New(srv.URL, staticToken("t"))
	res, err := client.PenalizeIssue(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, Money(0.5), res.PenaltyApplied)
	assert.Equal(t, 3.3, res.NewContractorRating.Value)
	assert.Equal(t, workflow.IssuePenalized, res.Issue.Status)
}

func TestTransportErrorWhenBackendDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // deliberately unreachable

	client := New(srv.URL, nil)
	_, err := client.GetIssues(context.Background())
	var tr *TransportError
	assert.ErrorAs(t, err, &tr)
}

func TestCanceledContextAbortsCall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := New(srv.URL, nil)
	_, err := client.GetIssues(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCheckEligibilityDecodesVerdictMap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/contractor-profiles/7/check_eligibility/", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"rating": "4.10",
			"is_suspended": false,
			"eligibility": {
				"SMALL": {"eligible": true, "reason": "Meets all criteria"},
				"MEDIUM": {"eligible": true, "reason": "Meets all criteria"},
				"LARGE": {"eligible": false, "reason": "Requires rating 4.5+"}
			}
		}`))
	}))
	defer srv.Close()

	client := New(srv.URL, staticToken("t"))
	resp, err := client.CheckContractorEligibility(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, resp.Eligibility, 3)
	assert.False(t, resp.Eligibility["LARGE"].Eligible)
	assert.Equal(t, "Requires rating 4.5+", resp.Eligibility["LARGE"].Reason)
}

func TestServerErrorMessage(t *testing.T) {
	err := &ServerError{StatusCode: 400, Reason: "This issue has been forgiven"}
	assert.Contains(t, err.Error(), "This issue has been forgiven")

	bare := &ServerError{StatusCode: 409}
	assert.Contains(t, bare.Error(), "409")

	assert.Empty(t, ReasonOf(errors.New("plain")))
}
