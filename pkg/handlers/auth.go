package handlers

import (
	"linkup/pkg/models"
	"linkup/pkg/services"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	service services.AuthService
}

func NewAuth(service services.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// POST /auth/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req models.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}

	resp, err := h.service.Register(c.Context(), req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(resp)
}

// POST /auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}

	resp, err := h.service.Login(c.Context(), req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(resp)
}

// GET /auth/me
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, err := h.service.UserByID(c.Context(), requesterID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(user)
}
