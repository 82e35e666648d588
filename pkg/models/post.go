package models

import "time"

// Post is a feed entry. Text and ImageURL are individually optional but a
// post always carries at least one of them. Likes is a set of user ids,
// membership not a count. The owner (User.ID) is immutable after creation.
type Post struct {
	ID        string    `json:"id"`
	User      Author    `json:"user"`
	Text      string    `json:"text,omitempty"`
	ImageURL  string    `json:"image_url,omitempty"`
	Likes     []string  `json:"likes"`
	Comments  []Comment `json:"comments"`
	CreatedAt time.Time `json:"created_at"`
}

// LikedBy reports whether userID is in the likes set.
func (p Post) LikedBy(userID string) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// Comment lives on exactly one post and dies with it. Comments are
// append-only; there is no edit or delete of an individual comment.
type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"-"`
	User      Author    `json:"user"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// LikesPayload is the like-toggle response body.
type LikesPayload struct {
	PostID string   `json:"post_id"`
	Likes  []string `json:"likes"`
}
