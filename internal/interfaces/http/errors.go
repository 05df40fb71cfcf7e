package http

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/inventario-ledger-api/internal/application/dto"
	"github.com/jhoicas/inventario-ledger-api/internal/domain"
)

// retryAfterSeconds valor de Retry-After ante un conflicto de concurrencia.
const retryAfterSeconds = "1"

// errorResponse traduce un error de aplicación a status HTTP y cuerpo.
func errorResponse(err error) (int, dto.ErrorResponse) {
	var insufficient *domain.InsufficientStockError
	if errors.As(err, &insufficient) {
		return fiber.StatusConflict, dto.ErrorResponse{
			Code:    "INSUFFICIENT_STOCK",
			Message: err.Error(),
			Details: map[string]any{
				"current_stock":      insufficient.Current,
				"requested_quantity": insufficient.Requested,
			},
		}
	}

	switch {
	case errors.Is(err, domain.ErrInvalidQuantity):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "INVALID_QUANTITY", Message: err.Error()}
	case errors.Is(err, domain.ErrNoOpAdjustment):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "NO_OP_ADJUSTMENT", Message: err.Error()}
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()}
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, dto.ErrorResponse{Code: "UNAUTHORIZED", Message: err.Error()}
	case errors.Is(err, domain.ErrInactiveUser):
		return fiber.StatusForbidden, dto.ErrorResponse{Code: "INACTIVE_USER", Message: err.Error()}
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, dto.ErrorResponse{Code: "FORBIDDEN", Message: err.Error()}
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()}
	case errors.Is(err, domain.ErrDuplicate):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "DUPLICATE", Message: err.Error()}
	case errors.Is(err, domain.ErrHasDependents):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "HAS_DEPENDENTS", Message: err.Error()}
	case errors.Is(err, domain.ErrConflictRetryable):
		return fiber.StatusServiceUnavailable, dto.ErrorResponse{Code: "CONFLICT_RETRY", Message: err.Error()}
	default:
		return fiber.StatusInternalServerError, dto.ErrorResponse{Code: "INTERNAL", Message: "error interno del servidor"}
	}
}

// handleError escribe la respuesta de error. Los 500 se registran con el error original.
func handleError(c *fiber.Ctx, err error) error {
	status, body := errorResponse(err)
	return writeError(c, status, body, err)
}

func writeError(c *fiber.Ctx, status int, body any, err error) error {
	switch status {
	case fiber.StatusServiceUnavailable:
		c.Set(fiber.HeaderRetryAfter, retryAfterSeconds)
	case fiber.StatusInternalServerError:
		log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error no controlado")
	}
	return c.Status(status).JSON(body)
}

func badRequest(c *fiber.Ctx, code, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: code, Message: message})
}

func invalidBody(c *fiber.Ctx) error {
	return badRequest(c, "INVALID_BODY", "cuerpo inválido")
}

// pageFromQuery lee page y page_size; los valores fuera de rango se normalizan en el caso de uso.
func pageFromQuery(c *fiber.Ctx) dto.PageRequest {
	return dto.PageRequest{
		Page:     c.QueryInt("page", 1),
		PageSize: c.QueryInt("page_size", dto.DefaultPageSize),
	}
}

// optionalBool interpreta un query param booleano; vacío devuelve nil.
func optionalBool(raw string) (*bool, error) {
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// parseDateParam acepta RFC3339 o YYYY-MM-DD. Una fecha sin hora se interpreta en la zona local,
// igual que las ventanas de estadísticas; con endOfDay cubre el día completo.
func parseDateParam(raw string, endOfDay bool) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.ParseInLocation(time.DateOnly, raw, time.Local)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
