// Package screens renders the client's pages. Every screen follows the
// same shape: guard check, single-shot fetches, classification through
// the workflow and eligibility models, plain-text render. Mutations are
// followed by a full re-fetch of the affected collection; local state
// is never patched.
package screens

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"fundtracker.org/internal/api"
	"fundtracker.org/internal/guard"
	"fundtracker.org/internal/session"
	"fundtracker.org/internal/workflow"
)

// Env carries the collaborators every screen needs. One Env is built at
// startup and shared; screens hold no state of their own.
type Env struct {
	Session *session.Store
	API     *api.Client
	Out     io.Writer
	Log     *zap.Logger
}

// viewerRole is the role classification runs under: the session's role,
// or PUBLIC for an anonymous visitor.
func (e *Env) viewerRole() workflow.Role {
	if role, ok := e.Session.Role(); ok {
		return role
	}
	return workflow.RolePublic
}

// degradeRead logs a failed read. Reads never fail a screen; the
// section renders empty instead.
func (e *Env) degradeRead(resource string, err error) {
	e.Log.Warn("read failed; rendering empty result",
		zap.String("resource", resource),
		zap.Error(err))
}

// stale reports whether this navigation is already gone. A response
// arriving after that is discarded, never rendered onto the next view.
func stale(ctx context.Context) bool {
	return ctx.Err() != nil
}

func heading(w io.Writer, text string) {
	fmt.Fprintf(w, "\n== %s ==\n", text)
}

func actionHint(c workflow.Classification) string {
	if len(c.Actions) == 0 {
		return ""
	}
	parts := make([]string, len(c.Actions))
	for i, a := range c.Actions {
		parts[i] = string(a)
	}
	return " [actions: " + strings.Join(parts, ", ") + "]"
}

// writeFailure turns a mutation error into the user-visible message,
// preferring the backend's own reason text when it sent one.
func writeFailure(action string, err error) error {
	if reason := api.ReasonOf(err); reason != "" {
		return fmt.Errorf("%s failed: %s", action, reason)
	}
	return fmt.Errorf("%s failed: the request could not be completed", action)
}

// requireRole is the guard hook every protected screen goes through.
func (e *Env) requireRole(pred guard.Predicate) error {
	return guard.Check(e.Session, pred)
}
