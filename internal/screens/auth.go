package screens

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"fundtracker.org/internal/api"
	"fundtracker.org/internal/audit"
	"fundtracker.org/internal/session"
)

// Login exchanges credentials for a session. A suspended contractor's
// rejection reason is shown verbatim; bad credentials get a fixed
// message that does not echo backend internals.
func Login(ctx context.Context, e *Env, username, password string) error {
	resp, err := e.API.Login(ctx, api.Credentials{Username: username, Password: password})
	if err != nil {
		if errors.Is(err, api.ErrBadCredentials) {
			return errors.New("login failed: invalid username or password")
		}
		return writeFailure("login", err)
	}
	ident := session.Identity{
		ID:       resp.User.ID,
		Username: resp.User.Username,
		Email:    resp.User.Email,
		Role:     resp.User.Role,
	}
	if err := e.Session.Login(ident, resp.Tokens.Access); err != nil {
		return fmt.Errorf("login succeeded but the session could not be saved: %w", err)
	}
	audit.LogAction(ctx, "login", zap.String("username", ident.Username))
	fmt.Fprintf(e.Out, "Logged in as %s (%s)\n", ident.Username, ident.Role)
	return nil
}

// Register creates an account and, like the login page, signs the new
// user straight in when the backend returns tokens.
func Register(ctx context.Context, e *Env, req api.RegisterRequest) error {
	resp, err := e.API.Register(ctx, req)
	if err != nil {
		return writeFailure("registration", err)
	}
	fmt.Fprintf(e.Out, "Account %s created\n", resp.User.Username)
	if resp.Tokens.Access == "" {
		return nil
	}
	ident := session.Identity{
		ID:       resp.User.ID,
		Username: resp.User.Username,
		Email:    resp.User.Email,
		Role:     resp.User.Role,
	}
	if err := e.Session.Login(ident, resp.Tokens.Access); err != nil {
		return fmt.Errorf("account created but the session could not be saved: %w", err)
	}
	audit.LogAction(ctx, "register", zap.String("username", ident.Username))
	fmt.Fprintf(e.Out, "Logged in as %s (%s)\n", ident.Username, ident.Role)
	return nil
}

// Logout drops the session. Safe to call when not logged in.
func Logout(ctx context.Context, e *Env) error {
	if err := e.Session.Logout(); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}
	audit.LogAction(ctx, "logout")
	fmt.Fprintln(e.Out, "Logged out")
	return nil
}
