// Package client is a typed Go client for the linkup API. It keeps the
// fetched feed in a feedstate.Feed and advances that state only after the
// server acknowledges a mutation, so a failed request never moves the view.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"linkup/pkg/apperr"
	"linkup/pkg/feedstate"
	"linkup/pkg/models"
)

type Client struct {
	baseURL string
	http    *http.Client
	token   string
	user    models.User
	feed    *feedstate.Feed
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
		feed:    feedstate.New(),
	}
}

// Feed exposes the client-held view. Same single-writer rule as feedstate.
func (c *Client) Feed() *feedstate.Feed {
	return c.feed
}

func (c *Client) User() models.User {
	return c.user
}

func (c *Client) Register(ctx context.Context, req models.RegisterRequest) error {
	var resp models.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", req, &resp); err != nil {
		return err
	}
	c.token = resp.Token
	c.user = resp.User
	return nil
}

func (c *Client) Login(ctx context.Context, email, password string) error {
	var resp models.AuthResponse
	req := models.LoginRequest{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", req, &resp); err != nil {
		return err
	}
	c.token = resp.Token
	c.user = resp.User
	return nil
}

// LoadFeed fetches the global feed and replaces the held state wholesale.
func (c *Client) LoadFeed(ctx context.Context) error {
	var posts []models.Post
	if err := c.do(ctx, http.MethodGet, "/posts", nil, &posts); err != nil {
		return err
	}
	c.feed.Replace(posts)
	return nil
}

// LoadUserFeed switches the held state to one user's feed.
func (c *Client) LoadUserFeed(ctx context.Context, userID string) error {
	var posts []models.Post
	if err := c.do(ctx, http.MethodGet, "/posts/user/"+url.PathEscape(userID), nil, &posts); err != nil {
		return err
	}
	c.feed.Replace(posts)
	return nil
}

func (c *Client) CreatePost(ctx context.Context, text, imageURL string) (models.Post, error) {
	body := map[string]string{"text": text, "image_url": imageURL}
	var p models.Post
	if err := c.do(ctx, http.MethodPost, "/posts", body, &p); err != nil {
		return models.Post{}, err
	}
	c.feed.Prepend(p)
	return p, nil
}

func (c *Client) ToggleLike(ctx context.Context, postID string) ([]string, error) {
	var payload models.LikesPayload
	if err := c.do(ctx, http.MethodPut, "/posts/like/"+url.PathEscape(postID), nil, &payload); err != nil {
		return nil, err
	}
	c.feed.SetLikes(payload.PostID, payload.Likes)
	return payload.Likes, nil
}

func (c *Client) AddComment(ctx context.Context, postID, text string) (models.Comment, error) {
	var comment models.Comment
	if err := c.do(ctx, http.MethodPost, "/posts/comment/"+url.PathEscape(postID), map[string]string{"text": text}, &comment); err != nil {
		return models.Comment{}, err
	}
	c.feed.AppendComment(postID, comment)
	return comment, nil
}

func (c *Client) EditPost(ctx context.Context, postID, text string) (models.Post, error) {
	var p models.Post
	if err := c.do(ctx, http.MethodPut, "/posts/"+url.PathEscape(postID), map[string]string{"text": text}, &p); err != nil {
		return models.Post{}, err
	}
	c.feed.ApplyPost(p)
	return p, nil
}

func (c *Client) DeletePost(ctx context.Context, postID string) error {
	if err := c.do(ctx, http.MethodDelete, "/posts/"+url.PathEscape(postID), nil, nil); err != nil {
		return err
	}
	c.feed.Remove(postID)
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body, dest interface{}) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return apperr.Persistence(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return statusError(resp.StatusCode, resp.Body)
	}
	if dest == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}

// statusError translates a failure response back into the error taxonomy.
func statusError(status int, body io.Reader) error {
	var payload struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(body).Decode(&payload)
	msg := payload.Error
	if msg == "" {
		msg = fmt.Sprintf("request failed with status %d", status)
	}

	switch status {
	case 400:
		return fmt.Errorf("%w: %s", apperr.ErrValidation, msg)
	case 401:
		return fmt.Errorf("%w: %s", apperr.ErrUnauthorized, msg)
	case 404:
		return fmt.Errorf("%w: %s", apperr.ErrNotFound, msg)
	default:
		return fmt.Errorf("%w: %s", apperr.ErrPersistence, msg)
	}
}
