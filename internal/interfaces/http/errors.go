package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/kardex/internal/application/dto"
	"github.com/jhoicas/kardex/internal/application/ledger"
	"github.com/jhoicas/kardex/internal/domain"
)

// writeError traduce los errores de dominio a HTTP.
//
//	400 → movimiento o entrada inválida
//	404 → variante, bodega o producto inexistente
//	409 → stock/asignación insuficiente, SKU duplicado, variante con stock, drift
//	503 → lock no obtenido a tiempo o fallo al escribir en el kardex (reintentable)
func writeError(c *fiber.Ctx, err error) error {
	if ledger.IsBusinessRejection(err) {
		requestLogger(c).Debug().Err(err).Str("path", c.Path()).Msg("rechazo de negocio")
	}
	var (
		stockErr *domain.InsufficientStockError
		allocErr *domain.InsufficientAllocationError
		driftErr *domain.DriftDetectedError
	)
	switch {
	case errors.As(err, &stockErr):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code: "INSUFFICIENT_STOCK", Message: err.Error(),
			Details: fiber.Map{
				"variant_id":   stockErr.VariantID,
				"warehouse_id": stockErr.WarehouseID,
				"requested":    stockErr.Requested,
				"available":    stockErr.Available,
			},
		})
	case errors.As(err, &allocErr):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code: "INSUFFICIENT_ALLOCATION", Message: err.Error(),
			Details: fiber.Map{
				"variant_id": allocErr.VariantID,
				"allocation": allocErr.Allocation,
				"requested":  allocErr.Requested,
				"available":  allocErr.Available,
			},
		})
	case errors.As(err, &driftErr):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code: "DRIFT_DETECTED", Message: "la proyección difiere del kardex",
			Details: dto.FromDrifts(driftErr.Drifts),
		})
	case errors.Is(err, domain.ErrInvalidMovement):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_MOVEMENT", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrUnknownEntity):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "UNKNOWN_ENTITY", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrDuplicateSKU):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE_SKU", Message: err.Error()})
	case errors.Is(err, domain.ErrVariantHasStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "VARIANT_HAS_STOCK", Message: err.Error()})
	case errors.Is(err, domain.ErrConcurrencyTimeout):
		c.Set(fiber.HeaderRetryAfter, "1")
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "CONCURRENCY_TIMEOUT", Message: err.Error()})
	case errors.Is(err, domain.ErrLogAppend):
		c.Set(fiber.HeaderRetryAfter, "1")
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "LOG_APPEND_FAILED", Message: "no se pudo registrar el movimiento, intente de nuevo"})
	default:
		requestLogger(c).Error().Err(err).Str("path", c.Path()).Msg("error interno")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
	}
}
