package handlers

import (
	"os"
	"path/filepath"
	"strings"

	"linkup/pkg/apperr"
	"linkup/pkg/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type PostsHandler struct {
	posts     services.PostService
	feed      services.FeedService
	uploadDir string
}

func NewPosts(posts services.PostService, feed services.FeedService, uploadDir string) *PostsHandler {
	return &PostsHandler{posts: posts, feed: feed, uploadDir: uploadDir}
}

func requesterID(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}

// POST /posts — multipart (text + image file) or JSON (text + image_url)
func (h *PostsHandler) Create(c *fiber.Ctx) error {
	var text, imageURL, savedFile string

	if strings.HasPrefix(c.Get(fiber.HeaderContentType), "multipart/") {
		text = c.FormValue("text")
		if fh, err := c.FormFile("image"); err == nil && fh != nil {
			name := uuid.NewString() + filepath.Ext(fh.Filename)
			savedFile = filepath.Join(h.uploadDir, name)
			if err := c.SaveFile(fh, savedFile); err != nil {
				return fail(c, apperr.Persistence(err))
			}
			imageURL = "/uploads/" + name
		}
	} else {
		var req struct {
			Text     string `json:"text"`
			ImageURL string `json:"image_url"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
		}
		text, imageURL = req.Text, req.ImageURL
	}

	p, err := h.posts.Create(c.Context(), requesterID(c), text, imageURL)
	if err != nil {
		// the upload must not outlive a failed insert
		if savedFile != "" {
			os.Remove(savedFile)
		}
		return fail(c, err)
	}

	return c.Status(201).JSON(p)
}

// GET /posts?limit=50&offset=0
func (h *PostsHandler) List(c *fiber.Ctx) error {
	posts, err := h.feed.ListAll(c.Context(), c.QueryInt("limit", 50), c.QueryInt("offset", 0))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(posts)
}

// GET /posts/user/:userId
func (h *PostsHandler) ListByUser(c *fiber.Ctx) error {
	posts, err := h.feed.ListByUser(c.Context(), c.Params("userId"), c.QueryInt("limit", 50), c.QueryInt("offset", 0))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(posts)
}

// PUT /posts/like/:id
func (h *PostsHandler) ToggleLike(c *fiber.Ctx) error {
	payload, err := h.posts.ToggleLike(c.Context(), c.Params("id"), requesterID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(payload)
}

// POST /posts/comment/:id
func (h *PostsHandler) Comment(c *fiber.Ctx) error {
	var req struct {
		Text string `json:"text"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}

	comment, err := h.posts.AddComment(c.Context(), c.Params("id"), requesterID(c), req.Text)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(comment)
}

// PUT /posts/:id
func (h *PostsHandler) Edit(c *fiber.Ctx) error {
	var req struct {
		Text string `json:"text"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}

	p, err := h.posts.EditText(c.Context(), c.Params("id"), requesterID(c), req.Text)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(p)
}

// DELETE /posts/:id
func (h *PostsHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.posts.Delete(c.Context(), id, requesterID(c)); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"id": id, "status": "deleted"})
}
