package main

import (
	"errors"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func setupLogger(level, format string, out io.Writer) {
	if out == nil {
		out = os.Stderr
	}
	zerolog.SetGlobalLevel(parseLevel(level))
	if format == "pretty" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}
	log.Logger = zerolog.New(out).With().Timestamp().Str("app", "ask-relay").Logger()
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// logWriteErr logs err against the request and replies with {"error": msg}.
func logWriteErr(c *fiber.Ctx, err error, msg string, status int) error {
	event := log.Error()
	if status < fiber.StatusInternalServerError {
		event = log.Warn()
	}
	event.
		Str("request_id", requestID(c)).
		Int("status", status).
		Err(err).
		Msg(msg)
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

func loggerMiddleware(c *fiber.Ctx) error {
	startTime := time.Now()

	logger := log.With().Str("request_id", requestID(c)).Logger()
	logger.Info().
		Str("method", c.Method()).
		Str("path", c.Path()).
		Str("remote_addr", c.IP()).
		Msg("received")

	err := c.Next()
	if err != nil {
		// run the error handler now so the logged status is the one sent
		if herr := errorHandler(c, err); herr != nil {
			_ = c.SendStatus(fiber.StatusInternalServerError)
		}
	}

	logger.Info().
		Int("status", c.Response().StatusCode()).
		Dur("response_time", time.Since(startTime)).
		Msg("completed")
	return nil
}

func errorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	msg := "Internal server error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
		msg = fe.Message
	}
	return logWriteErr(c, err, msg, status)
}
