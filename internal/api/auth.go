package api

import (
	"context"
	"errors"
	"net/http"

	"fundtracker.org/internal/workflow"
)

// Credentials is a username/password pair for login.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest creates a new account with a role.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// AuthUser is the identity block of an auth response.
type AuthUser struct {
	ID       int64         `json:"id"`
	Username string        `json:"username"`
	Email    string        `json:"email,omitempty"`
	Role     workflow.Role `json:"role"`
}

// Tokens carries the bearer credentials issued by the backend. Only the
// access token is used client-side.
type Tokens struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

// AuthResponse is the shape of both login and register responses.
type AuthResponse struct {
	User   AuthUser `json:"user"`
	Tokens Tokens   `json:"tokens"`
}

// Login authenticates against the backend. A 401 maps to
// ErrBadCredentials; other rejections (for example a suspended
// contractor's 403 with its message) pass through as ServerError.
func (c *Client) Login(ctx context.Context, creds Credentials) (*AuthResponse, error) {
	var out AuthResponse
	err := c.do(ctx, "login", http.MethodPost, "/auth/login/", creds, &out)
	if err != nil {
		var srv *ServerError
		if errors.As(err, &srv) && srv.StatusCode == http.StatusUnauthorized {
			return nil, ErrBadCredentials
		}
		return nil, err
	}
	return &out, nil
}

// Register creates an account and returns the same shape as Login.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.do(ctx, "register", http.MethodPost, "/auth/register/", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
