package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"linkup/pkg/apperr"
	"linkup/pkg/models"

	"github.com/google/uuid"
)

// Memory implements PostRepository and AuthRepository in process. It backs
// the test suite and runs the server without a database. All mutations take
// the write lock, so the read-modify-write operations are atomic per store.
type Memory struct {
	mu     sync.RWMutex
	users  map[string]memUser
	emails map[string]string // email -> user id
	posts  map[string]*memPost
	seq    int64
}

type memUser struct {
	user models.User
	hash string
}

type memPost struct {
	id        string
	seq       int64
	ownerID   string
	text      string
	imageURL  string
	likes     []string // insertion-ordered set of user ids
	comments  []memComment
	createdAt time.Time
}

type memComment struct {
	id        string
	userID    string
	text      string
	createdAt time.Time
}

func NewMemory() *Memory {
	return &Memory{
		users:  make(map[string]memUser),
		emails: make(map[string]string),
		posts:  make(map[string]*memPost),
	}
}

// ── AuthRepository ──

func (m *Memory) CreateUser(ctx context.Context, name, email, passwordHash, avatar string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.emails[email]; exists {
		return models.User{}, apperr.Validationf("email already registered")
	}

	u := models.User{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Avatar:    avatar,
		CreatedAt: time.Now(),
	}
	m.users[u.ID] = memUser{user: u, hash: passwordHash}
	m.emails[email] = u.ID
	return u, nil
}

func (m *Memory) UserByEmail(ctx context.Context, email string) (models.User, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.emails[email]
	if !ok {
		return models.User{}, "", apperr.NotFoundf("user %s", email)
	}
	entry := m.users[id]
	return entry.user, entry.hash, nil
}

func (m *Memory) UserByID(ctx context.Context, id string) (models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.users[id]
	if !ok {
		return models.User{}, apperr.NotFoundf("user %s", id)
	}
	return entry.user, nil
}

// ── PostRepository ──

func (m *Memory) Create(ctx context.Context, ownerID, text, imageURL string) (models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[ownerID]; !ok {
		return models.Post{}, apperr.NotFoundf("owner %s does not exist", ownerID)
	}

	m.seq++
	p := &memPost{
		id:        uuid.NewString(),
		seq:       m.seq,
		ownerID:   ownerID,
		text:      text,
		imageURL:  imageURL,
		likes:     []string{},
		createdAt: time.Now(),
	}
	m.posts[p.id] = p
	return m.project(p), nil
}

func (m *Memory) GetByID(ctx context.Context, postID string) (models.Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.posts[postID]
	if !ok {
		return models.Post{}, apperr.NotFoundf("post %s", postID)
	}
	return m.project(p), nil
}

func (m *Memory) ListAll(ctx context.Context, limit, offset int) ([]models.Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listLocked(func(*memPost) bool { return true }, limit, offset), nil
}

func (m *Memory) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listLocked(func(p *memPost) bool { return p.ownerID == userID }, limit, offset), nil
}

func (m *Memory) listLocked(match func(*memPost) bool, limit, offset int) []models.Post {
	var selected []*memPost
	for _, p := range m.posts {
		if match(p) {
			selected = append(selected, p)
		}
	}

	// Newest first; creation order breaks timestamp ties.
	sort.SliceStable(selected, func(i, j int) bool {
		if selected[i].createdAt.Equal(selected[j].createdAt) {
			return selected[i].seq < selected[j].seq
		}
		return selected[i].createdAt.After(selected[j].createdAt)
	})

	if offset >= len(selected) {
		return []models.Post{}
	}
	selected = selected[offset:]
	if limit > 0 && limit < len(selected) {
		selected = selected[:limit]
	}

	posts := make([]models.Post, 0, len(selected))
	for _, p := range selected {
		posts = append(posts, m.project(p))
	}
	return posts
}

func (m *Memory) ToggleLike(ctx context.Context, postID, userID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.posts[postID]
	if !ok {
		return nil, apperr.NotFoundf("post %s", postID)
	}

	for i, id := range p.likes {
		if id == userID {
			p.likes = append(p.likes[:i], p.likes[i+1:]...)
			return append([]string{}, p.likes...), nil
		}
	}
	p.likes = append(p.likes, userID)
	return append([]string{}, p.likes...), nil
}

func (m *Memory) AddComment(ctx context.Context, postID, userID, text string) (models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.posts[postID]
	if !ok {
		return models.Comment{}, apperr.NotFoundf("post %s", postID)
	}

	c := memComment{
		id:        uuid.NewString(),
		userID:    userID,
		text:      text,
		createdAt: time.Now(),
	}
	p.comments = append(p.comments, c)
	return m.projectComment(postID, c), nil
}

func (m *Memory) UpdateText(ctx context.Context, postID, requesterID, newText string) (models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.posts[postID]
	if !ok {
		return models.Post{}, apperr.NotFoundf("post %s", postID)
	}
	if p.ownerID != requesterID {
		return models.Post{}, apperr.Unauthorizedf("post %s belongs to another user", postID)
	}
	p.text = newText
	return m.project(p), nil
}

func (m *Memory) Delete(ctx context.Context, postID, requesterID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.posts[postID]
	if !ok {
		return apperr.NotFoundf("post %s", postID)
	}
	if p.ownerID != requesterID {
		return apperr.Unauthorizedf("post %s belongs to another user", postID)
	}
	delete(m.posts, postID) // comments live inside the post, they go with it
	return nil
}

// project resolves author identities at read time, mirroring the SQL joins.
func (m *Memory) project(p *memPost) models.Post {
	post := models.Post{
		ID:        p.id,
		User:      m.authorOf(p.ownerID),
		Text:      p.text,
		ImageURL:  p.imageURL,
		Likes:     append([]string{}, p.likes...),
		Comments:  make([]models.Comment, 0, len(p.comments)),
		CreatedAt: p.createdAt,
	}
	for _, c := range p.comments {
		post.Comments = append(post.Comments, m.projectComment(p.id, c))
	}
	return post
}

func (m *Memory) projectComment(postID string, c memComment) models.Comment {
	return models.Comment{
		ID:        c.id,
		PostID:    postID,
		User:      m.authorOf(c.userID),
		Text:      c.text,
		CreatedAt: c.createdAt,
	}
}

func (m *Memory) authorOf(userID string) models.Author {
	if entry, ok := m.users[userID]; ok {
		return entry.user.Author()
	}
	return models.Author{ID: userID}
}
