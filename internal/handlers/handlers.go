// Package handlers serves the HTML pages, operator login and health probes.
package handlers

import (
	"github.com/gofiber/fiber/v3"

	"outreach/internal/models"
)

// currentUser returns the user loaded by the auth middleware, or nil when
// login is disabled.
func currentUser(c fiber.Ctx) *models.User {
	user, _ := c.Locals("user").(*models.User)
	return user
}
