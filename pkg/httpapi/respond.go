package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/marshallshelly/agroexport/pkg/related"
	"github.com/marshallshelly/agroexport/pkg/runtime"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error     string `json:"error"`
	Retryable bool   `json:"retryable"`
}

// itemsBody wraps related-item results.
type itemsBody[T any] struct {
	Items []T `json:"items"`
}

// nonNil keeps empty results rendering as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// strictUnmarshal is the app's JSON decoder; unknown fields are rejected.
func strictUnmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// statusFor maps an error to its HTTP status and whether a retry may help.
func statusFor(err error) (int, bool) {
	var (
		ferr *fiber.Error
		verr *runtime.ValidationError
	)
	switch {
	case errors.As(err, &ferr):
		return ferr.Code, ferr.Code == fiber.StatusServiceUnavailable
	case errors.As(err, &verr):
		return fiber.StatusBadRequest, false
	case errors.Is(err, runtime.ErrNotFound):
		return fiber.StatusNotFound, false
	case errors.Is(err, runtime.ErrDuplicateKey):
		return fiber.StatusConflict, false
	case errors.Is(err, runtime.ErrForeignKeyViolation):
		return fiber.StatusBadRequest, false
	case errors.Is(err, runtime.ErrStoreUnavailable), errors.Is(err, runtime.ErrNoConnection):
		return fiber.StatusServiceUnavailable, true
	default:
		return fiber.StatusInternalServerError, false
	}
}

// handleError is the app's ErrorHandler. Server-side failures are logged;
// the client only sees a generic message for them.
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	status, retryable := statusFor(err)
	msg := err.Error()
	switch {
	case status == fiber.StatusServiceUnavailable:
		s.log.Warn("store unavailable", zap.String("path", c.Path()), zap.Error(err))
		msg = "service temporarily unavailable"
	case status >= fiber.StatusInternalServerError:
		s.log.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
		msg = "internal error"
	case status == fiber.StatusNotFound:
		msg = "not found"
	case errors.Is(err, runtime.ErrDuplicateKey):
		msg = runtime.ErrDuplicateKey.Error()
	case errors.Is(err, runtime.ErrForeignKeyViolation):
		msg = "referenced record does not exist"
	}
	return c.Status(status).JSON(errorBody{Error: msg, Retryable: retryable})
}

// decode parses a JSON body into v.
func decode(c *fiber.Ctx, v any) error {
	if err := c.BodyParser(v); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid JSON body: "+err.Error())
	}
	return nil
}

// limitParam reads ?limit= for related and recent listings. A missing,
// unparsable or negative value yields fallback; an explicit 0 is kept and
// means no items. Values above related.MaxLimit are clamped.
func limitParam(c *fiber.Ctx, fallback int) int {
	n := c.QueryInt("limit", fallback)
	if n < 0 {
		n = fallback
	}
	return min(n, related.MaxLimit)
}

// intParam reads a non-negative integer query parameter, 0 when absent.
func intParam(c *fiber.Ctx, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, runtime.Invalid(name, "must be a non-negative integer, got %q", raw)
	}
	return n, nil
}

// boolParam reads an optional boolean query parameter. "all" and absence
// both yield nil.
func boolParam(c *fiber.Ctx, name string) (*bool, error) {
	raw := c.Query(name)
	if raw == "" || raw == "all" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, runtime.Invalid(name, "must be true, false or all, got %q", raw)
	}
	return &b, nil
}

// respond writes v with status, or returns err for the error handler.
func respond[T any](c *fiber.Ctx, status int, v T, err error) error {
	if err != nil {
		return err
	}
	return c.Status(status).JSON(v)
}

// noContent writes 204, or returns err for the error handler.
func noContent(c *fiber.Ctx, err error) error {
	if err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
