package api

import (
	"context"
	"net/http"

	"mattter-gateway/internal/domain"
)

type preferencesEnvelope struct {
	Success     bool                      `json:"success"`
	Message     string                    `json:"message"`
	Preferences domain.PreferenceSnapshot `json:"preferences"`
}

// FetchPreferences retrieves the caller's saved preference snapshot. The
// backend returns zero-valued defaults when none have been saved yet.
func (c *Client) FetchPreferences(ctx context.Context) (domain.PreferenceSnapshot, error) {
	var env preferencesEnvelope
	if err := c.do(ctx, http.MethodGet, "/api/profiles/get_preferences/", nil, &env); err != nil {
		return domain.PreferenceSnapshot{}, err
	}
	return env.Preferences, nil
}

// UpdatePreferences saves the snapshot. Selections are validated locally
// first so malformed sets never reach the wire.
func (c *Client) UpdatePreferences(ctx context.Context, prefs domain.PreferenceSnapshot) (domain.PreferenceSnapshot, error) {
	if err := prefs.Validate(); err != nil {
		return domain.PreferenceSnapshot{}, &ValidationError{Field: "preferences", Reason: err.Error()}
	}
	var env preferencesEnvelope
	if err := c.do(ctx, http.MethodPut, "/api/profiles/update_preferences/", prefs, &env); err != nil {
		return domain.PreferenceSnapshot{}, err
	}
	return env.Preferences, nil
}
