package api

import (
	"context"
	"fmt"
	"net/http"

	"mattter-gateway/internal/domain"
)

// AuthResult is the decoded login/register response: an opaque token plus
// the basic identity the endpoint returned alongside it.
type AuthResult struct {
	Token string
	User  domain.UserRecord
}

type wireAuthResponse struct {
	Token string `json:"token"`
	User  struct {
		ID          int32       `json:"id"`
		Username    string      `json:"username"`
		Email       string      `json:"email"`
		IsStaff     bool        `json:"is_staff"`
		IsSuperuser bool        `json:"is_superuser"`
		Role        domain.Role `json:"role"`
	} `json:"user"`
}

func (w wireAuthResponse) record() domain.UserRecord {
	return domain.DeriveRole(domain.UserRecord{
		ID:          w.User.ID,
		Username:    w.User.Username,
		Email:       w.User.Email,
		IsStaff:     w.User.IsStaff,
		IsSuperuser: w.User.IsSuperuser,
		Role:        w.User.Role,
	})
}

// Authenticate exchanges credentials for a token. The returned record has
// the admin override already applied; its role may still be empty for staff
// accounts without a profile, which the session layer resolves via merge.
func (c *Client) Authenticate(ctx context.Context, username, password string) (AuthResult, error) {
	if username == "" || password == "" {
		return AuthResult{}, &ValidationError{Reason: "username and password are required"}
	}
	var resp wireAuthResponse
	err := c.do(ctx, http.MethodPost, "/api/login/", map[string]string{
		"username": username,
		"password": password,
	}, &resp)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{Token: resp.Token, User: resp.record()}, nil
}

// RegisterRequest carries the account-creation payload. Role defaults to
// SEEKER upstream when omitted.
type RegisterRequest struct {
	Username string      `json:"username"`
	Email    string      `json:"email,omitempty"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role,omitempty"`
	Gender   string      `json:"gender,omitempty"`
	Age      *int32      `json:"age,omitempty"`
}

// Register creates an account and returns the issued token with the basic
// identity. The registration response never carries staff flags or a role.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (AuthResult, error) {
	if req.Username == "" || req.Password == "" {
		return AuthResult{}, &ValidationError{Reason: "username and password are required"}
	}
	var resp wireAuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/register/", req, &resp); err != nil {
		return AuthResult{}, err
	}
	return AuthResult{Token: resp.Token, User: resp.record()}, nil
}

// CurrentProfile fetches the identity/profile of the token holder. The
// backend creates an empty profile on first call, so a missing profile only
// surfaces for accounts it refuses to profile at all.
func (c *Client) CurrentProfile(ctx context.Context) (domain.Profile, error) {
	var p domain.Profile
	if err := c.do(ctx, http.MethodGet, "/api/profiles/me/", nil, &p); err != nil {
		return domain.Profile{}, err
	}
	return p, nil
}

// FetchProfile fetches another user's public profile by profile id.
func (c *Client) FetchProfile(ctx context.Context, profileID int32) (domain.Profile, error) {
	var p domain.Profile
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/profiles/%d/", profileID), nil, &p)
	if err != nil {
		if IsNotFound(err) {
			return domain.Profile{}, &NotFoundError{Resource: "profile", ID: profileID}
		}
		return domain.Profile{}, err
	}
	return p, nil
}

// UpdateProfile applies a partial profile update and returns the new state.
func (c *Client) UpdateProfile(ctx context.Context, patch map[string]any) (domain.Profile, error) {
	var p domain.Profile
	if err := c.do(ctx, http.MethodPatch, "/api/profiles/me/", patch, &p); err != nil {
		return domain.Profile{}, err
	}
	return p, nil
}
