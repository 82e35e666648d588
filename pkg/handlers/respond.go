package handlers

import (
	"log"

	"linkup/pkg/apperr"

	"github.com/gofiber/fiber/v2"
)

// fail maps a service error onto its HTTP status. Internal causes stay in
// the log, not in the response body.
func fail(c *fiber.Ctx, err error) error {
	status := apperr.Status(err)
	if status == 500 {
		log.Printf("[API] %s %s: %v", c.Method(), c.Path(), err)
		return c.Status(500).JSON(fiber.Map{"error": "internal error"})
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
