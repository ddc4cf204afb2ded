package storage

// PostRecord is the on-device form of a post under KeyItems. Timestamps are
// epoch milliseconds.
type PostRecord struct {
	ID        string `json:"id"`
	Content   string `json:"content"`
	Author    string `json:"author,omitempty"`
	AuthorID  string `json:"authorId,omitempty"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt,omitempty"`
}

// MarkRecord is the on-device form of a mark under KeyMarks.
type MarkRecord struct {
	PostID    string `json:"postId"`
	UserID    string `json:"userId,omitempty"`
	Type      string `json:"type"`
	CreatedAt int64  `json:"createdAt"`
}
