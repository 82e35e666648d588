package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"linkup/pkg/apperr"
	"linkup/pkg/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// PostRepository owns the post entity: creation, the like/comment/edit/delete
// mutations and the feed reads. Existence and ownership checks live here;
// input validation lives in the services.
type PostRepository interface {
	Create(ctx context.Context, ownerID, text, imageURL string) (models.Post, error)
	GetByID(ctx context.Context, postID string) (models.Post, error)
	ListAll(ctx context.Context, limit, offset int) ([]models.Post, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Post, error)
	ToggleLike(ctx context.Context, postID, userID string) ([]string, error)
	AddComment(ctx context.Context, postID, userID, text string) (models.Comment, error)
	UpdateText(ctx context.Context, postID, requesterID, newText string) (models.Post, error)
	Delete(ctx context.Context, postID, requesterID string) error
}

type postRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) PostRepository {
	return &postRepository{db: db}
}

const postColumns = `
	p.id, p.text, p.image_url, p.created_at,
	u.id, u.name, u.avatar,
	COALESCE(ARRAY(
		SELECT pl.user_id::text FROM post_likes pl
		WHERE pl.post_id = p.id ORDER BY pl.created_at
	), '{}')`

func (r *postRepository) Create(ctx context.Context, ownerID, text, imageURL string) (models.Post, error) {
	var p models.Post
	err := r.db.QueryRowContext(ctx, `
		WITH new_post AS (
			INSERT INTO posts (user_id, text, image_url)
			VALUES ($1, $2, $3)
			RETURNING id, user_id, text, image_url, created_at
		)
		SELECT np.id, np.text, np.image_url, np.created_at, u.id, u.name, u.avatar
		FROM new_post np JOIN users u ON u.id = np.user_id
	`, ownerID, text, imageURL).Scan(
		&p.ID, &p.Text, &p.ImageURL, &p.CreatedAt,
		&p.User.ID, &p.User.Name, &p.User.Avatar,
	)
	if err != nil {
		if isForeignKeyViolation(err, "user_id") {
			return models.Post{}, apperr.NotFoundf("owner %s does not exist", ownerID)
		}
		return models.Post{}, apperr.Persistence(err)
	}

	p.Likes = []string{}
	p.Comments = []models.Comment{}
	return p, nil
}

func (r *postRepository) GetByID(ctx context.Context, postID string) (models.Post, error) {
	if _, err := uuid.Parse(postID); err != nil {
		return models.Post{}, apperr.NotFoundf("post %s", postID)
	}

	var p models.Post
	var likes []string
	err := r.db.QueryRowContext(ctx, `
		SELECT `+postColumns+`
		FROM posts p JOIN users u ON u.id = p.user_id
		WHERE p.id = $1
	`, postID).Scan(
		&p.ID, &p.Text, &p.ImageURL, &p.CreatedAt,
		&p.User.ID, &p.User.Name, &p.User.Avatar,
		pq.Array(&likes),
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Post{}, apperr.NotFoundf("post %s", postID)
	}
	if err != nil {
		return models.Post{}, apperr.Persistence(err)
	}

	p.Likes = likes
	comments, err := r.loadComments(ctx, []string{p.ID})
	if err != nil {
		return models.Post{}, err
	}
	p.Comments = comments[p.ID]
	if p.Comments == nil {
		p.Comments = []models.Comment{}
	}
	return p, nil
}

func (r *postRepository) ListAll(ctx context.Context, limit, offset int) ([]models.Post, error) {
	return r.list(ctx, `
		SELECT `+postColumns+`
		FROM posts p JOIN users u ON u.id = p.user_id
		ORDER BY p.created_at DESC, p.seq ASC
		LIMIT $1 OFFSET $2
	`, limit, offset)
}

func (r *postRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Post, error) {
	return r.list(ctx, `
		SELECT `+postColumns+`
		FROM posts p JOIN users u ON u.id = p.user_id
		WHERE p.user_id = $3
		ORDER BY p.created_at DESC, p.seq ASC
		LIMIT $1 OFFSET $2
	`, limit, offset, userID)
}

func (r *postRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.Post, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	defer rows.Close()

	posts := []models.Post{}
	var postIDs []string
	for rows.Next() {
		var p models.Post
		var likes []string
		if err := rows.Scan(
			&p.ID, &p.Text, &p.ImageURL, &p.CreatedAt,
			&p.User.ID, &p.User.Name, &p.User.Avatar,
			pq.Array(&likes),
		); err != nil {
			return nil, apperr.Persistence(err)
		}
		p.Likes = likes
		p.Comments = []models.Comment{}
		postIDs = append(postIDs, p.ID)
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence(err)
	}

	// Batch load comments for the whole page in one query (no N+1)
	if len(postIDs) > 0 {
		commentsMap, err := r.loadComments(ctx, postIDs)
		if err != nil {
			return nil, err
		}
		for i := range posts {
			if cs, ok := commentsMap[posts[i].ID]; ok {
				posts[i].Comments = cs
			}
		}
	}

	return posts, nil
}

func (r *postRepository) loadComments(ctx context.Context, postIDs []string) (map[string][]models.Comment, error) {
	result := make(map[string][]models.Comment, len(postIDs))

	rows, err := r.db.QueryContext(ctx, `
		SELECT c.id, c.post_id, c.text, c.created_at, u.id, u.name, u.avatar
		FROM comments c JOIN users u ON u.id = c.user_id
		WHERE c.post_id = ANY($1)
		ORDER BY c.created_at ASC, c.id
	`, pq.Array(postIDs))
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	defer rows.Close()

	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.Text, &c.CreatedAt, &c.User.ID, &c.User.Name, &c.User.Avatar); err != nil {
			return nil, apperr.Persistence(err)
		}
		result[c.PostID] = append(result[c.PostID], c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence(err)
	}
	return result, nil
}

// ToggleLike flips userID's membership in the post's likes set as a single
// conditional statement, so concurrent toggles by different users never lose
// each other's writes. Returns the membership after the toggle.
func (r *postRepository) ToggleLike(ctx context.Context, postID, userID string) ([]string, error) {
	if _, err := uuid.Parse(postID); err != nil {
		return nil, apperr.NotFoundf("post %s", postID)
	}

	var removed, added bool
	err := r.db.QueryRowContext(ctx, `
		WITH removed AS (
			DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2
			RETURNING user_id
		), added AS (
			INSERT INTO post_likes (post_id, user_id)
			SELECT $1, $2 WHERE NOT EXISTS (SELECT 1 FROM removed)
			ON CONFLICT (post_id, user_id) DO NOTHING
			RETURNING user_id
		)
		SELECT EXISTS(SELECT 1 FROM removed), EXISTS(SELECT 1 FROM added)
	`, postID, userID).Scan(&removed, &added)
	if err != nil {
		if isForeignKeyViolation(err, "post_id") {
			return nil, apperr.NotFoundf("post %s", postID)
		}
		return nil, apperr.Persistence(err)
	}

	var likes []string
	err = r.db.QueryRowContext(ctx, `
		SELECT COALESCE(ARRAY(
			SELECT user_id::text FROM post_likes
			WHERE post_id = $1 ORDER BY created_at
		), '{}')
	`, postID).Scan(pq.Array(&likes))
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	if likes == nil {
		likes = []string{}
	}
	return likes, nil
}

func (r *postRepository) AddComment(ctx context.Context, postID, userID, text string) (models.Comment, error) {
	if _, err := uuid.Parse(postID); err != nil {
		return models.Comment{}, apperr.NotFoundf("post %s", postID)
	}

	var c models.Comment
	err := r.db.QueryRowContext(ctx, `
		WITH new_comment AS (
			INSERT INTO comments (post_id, user_id, text)
			VALUES ($1, $2, $3)
			RETURNING id, post_id, user_id, text, created_at
		)
		SELECT nc.id, nc.post_id, nc.text, nc.created_at, u.id, u.name, u.avatar
		FROM new_comment nc JOIN users u ON u.id = nc.user_id
	`, postID, userID, text).Scan(
		&c.ID, &c.PostID, &c.Text, &c.CreatedAt,
		&c.User.ID, &c.User.Name, &c.User.Avatar,
	)
	if err != nil {
		if isForeignKeyViolation(err, "post_id") {
			return models.Comment{}, apperr.NotFoundf("post %s", postID)
		}
		return models.Comment{}, apperr.Persistence(err)
	}
	return c, nil
}

func (r *postRepository) UpdateText(ctx context.Context, postID, requesterID, newText string) (models.Post, error) {
	if _, err := uuid.Parse(postID); err != nil {
		return models.Post{}, apperr.NotFoundf("post %s", postID)
	}

	var id string
	err := r.db.QueryRowContext(ctx, `
		UPDATE posts SET text = $1 WHERE id = $2 AND user_id = $3
		RETURNING id
	`, newText, postID, requesterID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Post{}, r.missingOrForeign(ctx, postID)
	}
	if err != nil {
		return models.Post{}, apperr.Persistence(err)
	}

	return r.GetByID(ctx, postID)
}

func (r *postRepository) Delete(ctx context.Context, postID, requesterID string) error {
	if _, err := uuid.Parse(postID); err != nil {
		return apperr.NotFoundf("post %s", postID)
	}

	var id string
	err := r.db.QueryRowContext(ctx, `
		DELETE FROM posts WHERE id = $1 AND user_id = $2
		RETURNING id
	`, postID, requesterID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return r.missingOrForeign(ctx, postID)
	}
	if err != nil {
		return apperr.Persistence(err)
	}
	return nil
}

// missingOrForeign disambiguates a zero-row owner-guarded mutation: the post
// is either gone (404) or owned by someone else (401).
func (r *postRepository) missingOrForeign(ctx context.Context, postID string) error {
	var ownerID string
	err := r.db.QueryRowContext(ctx, `SELECT user_id FROM posts WHERE id = $1`, postID).Scan(&ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFoundf("post %s", postID)
	}
	if err != nil {
		return apperr.Persistence(err)
	}
	return apperr.Unauthorizedf("post %s belongs to another user", postID)
}

func isForeignKeyViolation(err error, column string) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) &&
		pqErr.Code == "23503" &&
		strings.Contains(pqErr.Constraint, column)
}
