package main

import (
	"errors"
	"regexp"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

const (
	msgURLRequired   = "URL is required"
	msgInvalidEbay   = "Invalid eBay URL. Must contain ebay.com/itm/ or ebay.it/itm/"
	msgProductFailed = "Failed to get product info."
)

var ebayItemPattern = regexp.MustCompile(`ebay\.(com|it)/itm/`)

type productRequest struct {
	URL string `json:"url"`
}

func handleProduct(up *upstream) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req productRequest
		if err := decodeBody(c.Body(), &req); err != nil {
			return logWriteErr(c, err, msgInvalidJSON, fiber.StatusBadRequest)
		}
		if req.URL == "" {
			return logWriteErr(c, errors.New("missing url"), msgURLRequired, fiber.StatusBadRequest)
		}
		if !ebayItemPattern.MatchString(req.URL) {
			return logWriteErr(c, errors.New("not an ebay item url"), msgInvalidEbay, fiber.StatusBadRequest)
		}

		log.Info().Str("request_id", requestID(c)).Str("url", req.URL).Msg("Forwarding product lookup to AI service")
		data, err := up.post(c.UserContext(), "/api/product", req)
		if err != nil {
			return logWriteErr(c, err, msgProductFailed, fiber.StatusInternalServerError)
		}

		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Status(fiber.StatusOK).Send(asJSON(data))
	}
}
