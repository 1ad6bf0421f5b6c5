package httpapi

import (
	"crypto/subtle"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// logRequests logs one line per request through zap. Errors are rendered
// here so the logged status is the one the client sees.
func (s *Server) logRequests(c *fiber.Ctx) error {
	start := time.Now()
	if err := c.Next(); err != nil {
		if herr := c.App().ErrorHandler(c, err); herr != nil {
			_ = c.SendStatus(fiber.StatusInternalServerError)
		}
	}
	s.log.Info("request",
		zap.String("request_id", c.GetRespHeader(fiber.HeaderXRequestID)),
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Int("status", c.Response().StatusCode()),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}

// requireAdmin checks the bearer token. An empty configured token rejects
// every request.
func (s *Server) requireAdmin(c *fiber.Ctx) error {
	if !s.authorized(c) {
		c.Set(fiber.HeaderWWWAuthenticate, `Bearer realm="admin"`)
		return fiber.ErrUnauthorized
	}
	return c.Next()
}

func (s *Server) authorized(c *fiber.Ctx) bool {
	if s.adminToken == "" {
		return false
	}
	token, ok := strings.CutPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(strings.TrimSpace(token)), []byte(s.adminToken)) == 1
}
