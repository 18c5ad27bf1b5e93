package main

import "github.com/gofiber/fiber/v2"

func handleHealth(up *upstream) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status := "down"
		if up.ping(c.UserContext()) {
			status = "up"
		}
		return c.JSON(fiber.Map{"status": "ok", "upstream": status})
	}
}
