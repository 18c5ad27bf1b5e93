package main

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"
)

type contextKey string

const (
	contextRequestIDKey contextKey = "request_id"
	requestIDHeader                = "X-Request-ID"
)

func requestIDMiddleware(c *fiber.Ctx) error {
	// fasthttp reuses header buffers; the id outlives the request on websockets
	id := utils.CopyString(c.Get(requestIDHeader))
	if id == "" {
		id = uuid.NewString()
	}
	c.Set(requestIDHeader, id)
	c.Locals(string(contextRequestIDKey), id)
	c.SetUserContext(context.WithValue(c.UserContext(), contextRequestIDKey, id))
	return c.Next()
}

func requestID(c *fiber.Ctx) string {
	id, _ := c.Locals(string(contextRequestIDKey)).(string)
	return id
}
