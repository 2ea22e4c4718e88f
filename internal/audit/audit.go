// Package audit emits a local diagnostic trail of the state-changing
// actions a user triggers. It is not the backend's audit log, which the
// auditor screen reads over the API; this exists so client-side
// incidents can be correlated with server records.
package audit

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"fundtracker.org/internal/obs"
)

type navKey struct{}

// WithNavigationID tags the context of one screen render so every call
// it makes shares an identifier.
func WithNavigationID(ctx context.Context, id string) context.Context {
	id = strings.TrimSpace(id)
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, navKey{}, id)
}

// NavigationIDFromContext returns the current navigation id, if any.
func NavigationIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(navKey{}).(string); ok {
		return v
	}
	return ""
}

// LogAction records one user-triggered mutation.
func LogAction(ctx context.Context, action string, fields ...zap.Field) {
	all := make([]zap.Field, 0, len(fields)+2)
	all = append(all, zap.String("action", action))
	if nav := NavigationIDFromContext(ctx); nav != "" {
		all = append(all, zap.String("navigation_id", nav))
	}
	all = append(all, fields...)
	obs.Logger().Info("user action", all...)
}
