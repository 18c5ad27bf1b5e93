package main

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

const (
	msgBusy             = "System is busy. Please try again later."
	msgQuestionRequired = "Question is required"
	msgInvalidJSON      = "Invalid JSON body"
	msgAskFailed        = "Failed to get answer from AI service."
)

var errBlankQuestion = errors.New("blank question")

type askRequest struct {
	Question json.RawMessage `json:"question"`
}

func handleAsk(up *upstream, busy *busyFlag) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := requestID(c)

		if busy.isBusy() {
			return logWriteErr(c, nil, msgBusy, fiber.StatusTooManyRequests)
		}

		var req askRequest
		if err := decodeBody(c.Body(), &req); err != nil {
			return logWriteErr(c, err, msgInvalidJSON, fiber.StatusBadRequest)
		}
		if isBlank(req.Question) {
			return logWriteErr(c, errBlankQuestion, msgQuestionRequired, fiber.StatusBadRequest)
		}

		// lost the race to another request between the check and now
		if !busy.tryAcquire() {
			return logWriteErr(c, nil, msgBusy, fiber.StatusTooManyRequests)
		}
		defer busy.release()

		timer := time.Now()
		log.Info().Str("request_id", id).Msg("Forwarding question to AI service")
		data, err := up.post(c.UserContext(), "/ask", req)
		if err != nil {
			return logWriteErr(c, err, msgAskFailed, fiber.StatusInternalServerError)
		}
		log.Info().Str("request_id", id).Dur("upstream_time", time.Since(timer)).Msg("Answer received")

		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Status(fiber.StatusOK).Send(asJSON(data))
	}
}

// decodeBody treats an empty body as an empty object.
func decodeBody(body []byte, v any) error {
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, v)
}

// isBlank reports whether a raw JSON value is absent or falsy.
func isBlank(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return true
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return true
	}
	return isFalsy(v)
}

// isFalsy reports whether a decoded JSON value counts as "not provided":
// null, false, zero or the empty string.
func isFalsy(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case bool:
		return !t
	case float64:
		return t == 0
	case string:
		return t == ""
	default:
		return false
	}
}
