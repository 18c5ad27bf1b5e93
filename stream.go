package main

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

const streamReadTimeout = 10 * time.Second

type streamEvent struct {
	Event   string          `json:"event"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func upgradeMiddleware(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

func handleStream(up *upstream, busy *busyFlag) fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		defer c.Close()

		id, _ := c.Locals(string(contextRequestIDKey)).(string)
		logger := log.With().Str("request_id", id).Str("remote_addr", c.RemoteAddr().String()).Logger()

		if err := c.SetReadDeadline(time.Now().Add(streamReadTimeout)); err != nil {
			logger.Err(err).Msg("failed to set read deadline")
			return
		}

		var req askRequest
		if err := c.ReadJSON(&req); err != nil {
			logBroadcastError(c, msgInvalidJSON, err)
			return
		}
		logger.Info().Msg("received question over websocket")

		if isBlank(req.Question) {
			logBroadcastError(c, msgQuestionRequired, errBlankQuestion)
			return
		}
		if !busy.tryAcquire() {
			logBroadcastError(c, msgBusy, nil)
			return
		}
		defer busy.release()

		ctx := context.WithValue(context.Background(), contextRequestIDKey, id)
		data, err := up.post(ctx, "/ask", req)
		if err != nil {
			logBroadcastError(c, msgAskFailed, err)
			return
		}

		if err := c.WriteJSON(streamEvent{Event: "answer", Data: asJSON(data)}); err != nil {
			logger.Err(err).Msg("failed to forward answer to client")
			return
		}
		logger.Info().Msg("answer delivered over websocket")
	})
}

func logBroadcastError(c *websocket.Conn, errMsg string, err error) {
	log.Err(err).Msg(errMsg)
	if werr := c.WriteJSON(streamEvent{Event: "error", Message: errMsg}); werr != nil {
		log.Err(werr).Msg("failed to send error event")
	}
}
