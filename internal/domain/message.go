package domain

// Message is one entry in a booking's conversation. The backend orders
// messages by timestamp and expires them after a week; the client never
// reorders locally.
type Message struct {
	ID        int32   `json:"id"`
	BookingID int32   `json:"booking"`
	Sender    UserRef `json:"sender"`
	Content   string  `json:"content"`
	Timestamp string  `json:"timestamp"`
	IsRead    bool    `json:"is_read"`
}
