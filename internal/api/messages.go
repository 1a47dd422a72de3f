package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"mattter-gateway/internal/domain"
)

// ListMessages fetches a booking's conversation, ordered by timestamp.
func (c *Client) ListMessages(ctx context.Context, bookingID int32) ([]domain.Message, error) {
	path := fmt.Sprintf("/api/messages/?booking_id=%d", bookingID)
	var msgs []domain.Message
	if err := c.do(ctx, http.MethodGet, path, nil, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// SendMessage posts a new message on a booking. Empty content is blocked
// locally before any network call.
func (c *Client) SendMessage(ctx context.Context, bookingID int32, content string) (domain.Message, error) {
	if strings.TrimSpace(content) == "" {
		return domain.Message{}, &ValidationError{Field: "content", Reason: "message text is required"}
	}
	var msg domain.Message
	err := c.do(ctx, http.MethodPost, "/api/messages/", map[string]any{
		"booking": bookingID,
		"content": strings.TrimSpace(content),
	}, &msg)
	if err != nil {
		return domain.Message{}, err
	}
	return msg, nil
}

// MarkMessagesRead flags the counterpart's unread messages on a booking as
// read, returning how many were flagged.
func (c *Client) MarkMessagesRead(ctx context.Context, bookingID int32) (int, error) {
	var resp struct {
		Success    bool `json:"success"`
		MarkedRead int  `json:"marked_read"`
	}
	err := c.do(ctx, http.MethodPost, "/api/messages/mark_as_read/", map[string]int32{
		"booking_id": bookingID,
	}, &resp)
	if err != nil {
		return 0, err
	}
	return resp.MarkedRead, nil
}
