// Package feedstate holds a client's view of a feed between fetches and
// applies server responses to it as patches. It replaces ad hoc list
// splicing with named merge operations: replace wholesale on fetch, prepend
// on create, patch-by-id on like/comment/edit, remove-by-id on delete.
//
// A Feed has a single logical writer (the UI loop or one API client); it is
// not safe for concurrent use. Mutations from other users only become
// visible on the next Replace — staleness between fetches is expected.
package feedstate

import "linkup/pkg/models"

type Feed struct {
	posts []models.Post
}

func New() *Feed {
	return &Feed{posts: []models.Post{}}
}

// Replace discards the current state for a freshly fetched scope.
func (f *Feed) Replace(posts []models.Post) {
	f.posts = append([]models.Post{}, posts...)
}

// Prepend splices a newly created post to the front without a refetch.
func (f *Feed) Prepend(p models.Post) {
	f.posts = append([]models.Post{p}, f.posts...)
}

// ApplyPost overwrites the entry matching p.ID in place, preserving order.
// Reports whether a matching entry existed.
func (f *Feed) ApplyPost(p models.Post) bool {
	for i := range f.posts {
		if f.posts[i].ID == p.ID {
			f.posts[i] = p
			return true
		}
	}
	return false
}

// SetLikes patches the likes membership of the matching post.
func (f *Feed) SetLikes(postID string, likes []string) bool {
	for i := range f.posts {
		if f.posts[i].ID == postID {
			f.posts[i].Likes = append([]string{}, likes...)
			return true
		}
	}
	return false
}

// AppendComment appends a server-acknowledged comment to the matching post.
func (f *Feed) AppendComment(postID string, c models.Comment) bool {
	for i := range f.posts {
		if f.posts[i].ID == postID {
			f.posts[i].Comments = append(f.posts[i].Comments, c)
			return true
		}
	}
	return false
}

// Remove drops the matching post after a successful delete.
func (f *Feed) Remove(postID string) bool {
	for i := range f.posts {
		if f.posts[i].ID == postID {
			f.posts = append(f.posts[:i], f.posts[i+1:]...)
			return true
		}
	}
	return false
}

// Posts returns a copy of the current view, newest first.
func (f *Feed) Posts() []models.Post {
	return append([]models.Post{}, f.posts...)
}

func (f *Feed) Len() int {
	return len(f.posts)
}

// Get looks a post up by id.
func (f *Feed) Get(postID string) (models.Post, bool) {
	for _, p := range f.posts {
		if p.ID == postID {
			return p, true
		}
	}
	return models.Post{}, false
}
