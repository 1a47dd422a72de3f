package domain

// Profile is the backend's profiles/me shape: a role plus the public fields
// a screen renders. The staff flags never appear here; they come from the
// login response and survive merges via MergeUserRecords.
type Profile struct {
	ID              int32              `json:"id"`
	User            UserRef            `json:"user"`
	Role            Role               `json:"role"`
	Gender          string             `json:"gender,omitempty"`
	Age             *int32             `json:"age,omitempty"`
	Bio             string             `json:"bio"`
	BioShort        string             `json:"bio_short"`
	IsActive        bool               `json:"is_active"`
	Address         string             `json:"address"`
	HourlyRate      string             `json:"hourly_rate,omitempty"`
	Specializations []string           `json:"specializations"`
	PortfolioImages []string           `json:"portfolio_images"`
	Preferences     PreferenceSnapshot `json:"preferences"`
}

// UserRecord projects the profile into the canonical user shape. Staff flags
// default to false here; callers holding a login response merge it in.
func (p Profile) UserRecord() UserRecord {
	return DeriveRole(UserRecord{
		ID:       p.User.ID,
		Username: p.User.Username,
		Email:    p.User.Email,
		Role:     p.Role,
	})
}
