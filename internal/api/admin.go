package api

import (
	"context"
	"fmt"
	"net/http"
)

// AdminUserSummary is one row of the moderation panel's user tables.
type AdminUserSummary struct {
	ID            int32   `json:"id"`
	UserID        int32   `json:"user_id"`
	Username      string  `json:"username"`
	Email         string  `json:"email"`
	BookingCount  int     `json:"booking_count"`
	AverageRating float64 `json:"average_rating"`
	RatingCount   int     `json:"rating_count"`
}

// AdminDashboard groups every user by role for the moderation panel.
type AdminDashboard struct {
	Catalysts []AdminUserSummary `json:"catalysts"`
	Seekers   []AdminUserSummary `json:"seekers"`
}

// AdminUserDetail is the drill-down view for one user.
type AdminUserDetail struct {
	UserID       int32             `json:"user_id"`
	Username     string            `json:"username"`
	Email        string            `json:"email"`
	Role         string            `json:"role"`
	Bio          string            `json:"bio"`
	Bookings     []AdminBookingRow `json:"bookings"`
	ReportsFiled int               `json:"reports_filed"`
}

// AdminBookingRow summarizes one booking inside the user drill-down.
type AdminBookingRow struct {
	ID        int32  `json:"id"`
	Status    string `json:"status"`
	With      string `json:"with"`
	CreatedAt string `json:"created_at"`
}

// FetchAdminDashboard loads the moderation panel's aggregate stats. Staff
// only; anyone else gets an AuthError or ServerRejection from upstream.
func (c *Client) FetchAdminDashboard(ctx context.Context) (AdminDashboard, error) {
	var stats AdminDashboard
	if err := c.do(ctx, http.MethodGet, "/api/admin-data/dashboard_stats/", nil, &stats); err != nil {
		return AdminDashboard{}, err
	}
	return stats, nil
}

// FetchAdminUserDetail loads the drill-down for one user.
func (c *Client) FetchAdminUserDetail(ctx context.Context, userID int32) (AdminUserDetail, error) {
	path := fmt.Sprintf("/api/admin-data/user_details/?user_id=%d", userID)
	var detail AdminUserDetail
	if err := c.do(ctx, http.MethodGet, path, nil, &detail); err != nil {
		if IsNotFound(err) {
			return AdminUserDetail{}, &NotFoundError{Resource: "user", ID: userID}
		}
		return AdminUserDetail{}, err
	}
	return detail, nil
}

// DeleteUser permanently removes a user account. Destructive: callers must
// have collected an explicit confirmation naming the target first.
func (c *Client) DeleteUser(ctx context.Context, userID int32) error {
	path := fmt.Sprintf("/api/admin-data/delete_user/?user_id=%d", userID)
	if err := c.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		if IsNotFound(err) {
			return &NotFoundError{Resource: "user", ID: userID}
		}
		return err
	}
	return nil
}
