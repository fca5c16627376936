package http

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/kardex/internal/application/dto"
	"github.com/jhoicas/kardex/internal/application/inventory"
	"github.com/jhoicas/kardex/internal/domain"
)

// InventoryHandler movimientos, lecturas del inventario y mantenimiento del kardex.
type InventoryHandler struct {
	uc            *inventory.RegisterMovementUseCase
	reports       *inventory.ReportUseCase
	replenishment *inventory.ReplenishmentUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.RegisterMovementUseCase, reports *inventory.ReportUseCase, replenishment *inventory.ReplenishmentUseCase) *InventoryHandler {
	return &InventoryHandler{uc: uc, reports: reports, replenishment: replenishment}
}

// RegisterMovement godoc
// @Summary      Registrar movimiento de inventario
// @Description  Entrada (in), salida (out), ajuste (adjust), traslado (transfer) o cambio de asignación (warranty).
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        body  body      dto.RegisterMovementRequest  true  "Movimiento"
// @Success      201   {object}  dto.VariantResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) RegisterMovement(c *fiber.Ctx) error {
	var in dto.RegisterMovementRequest
	if err := bindAndValidate(c, &in); err != nil {
		return nil
	}
	out, err := h.uc.RegisterMovement(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetVariant godoc
// @Summary      Stock y costo de una variante
// @Tags         inventory
// @Produce      json
// @Param        id   path      string  true  "ID de la variante"
// @Success      200  {object}  dto.VariantResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/variants/{id} [get]
func (h *InventoryHandler) GetVariant(c *fiber.Ctx) error {
	out, err := h.reports.Variant(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Snapshot godoc
// @Summary      Inventario completo
// @Description  Productos con variantes, stock por bodega y costo promedio vigentes.
// @Tags         inventory
// @Produce      json
// @Success      200  {object}  dto.SnapshotResponse
// @Router       /api/inventory/snapshot [get]
func (h *InventoryHandler) Snapshot(c *fiber.Ctx) error {
	out, err := h.reports.Snapshot(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Valuation godoc
// @Summary      Valorización del inventario
// @Tags         inventory
// @Produce      json
// @Success      200  {object}  dto.ValuationResponse
// @Router       /api/inventory/valuation [get]
func (h *InventoryHandler) Valuation(c *fiber.Ctx) error {
	out, err := h.reports.Valuation(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetReplenishmentList godoc
// @Summary      Lista de reposición
// @Description  Variantes en o bajo su nivel de reorden con la cantidad sugerida de pedido.
// @Tags         inventory
// @Produce      json
// @Success      200  {array}   dto.ReplenishmentSuggestionDTO
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/inventory/replenishment-list [get]
func (h *InventoryHandler) GetReplenishmentList(c *fiber.Ctx) error {
	list, err := h.replenishment.GenerateReplenishmentList(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list)
}

// Kardex godoc
// @Summary      Kardex de una variante
// @Tags         inventory
// @Produce      json
// @Param        id     path   string  true   "ID de la variante"
// @Param        from   query  string  false  "Desde (YYYY-MM-DD)"
// @Param        to     query  string  false  "Hasta (YYYY-MM-DD, inclusive)"
// @Param        limit  query  int     false  "Últimos N renglones"
// @Success      200  {object}  dto.KardexResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/variants/{id}/kardex [get]
func (h *InventoryHandler) Kardex(c *fiber.Ctx) error {
	var q dto.KardexQuery
	if err := bindQuery(c, &q); err != nil {
		return nil
	}
	out, err := h.reports.Kardex(c.UserContext(), c.Params("id"), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// KardexPDF godoc
// @Summary      Kardex de una variante en PDF
// @Tags         inventory
// @Produce      application/pdf
// @Param        id     path   string  true   "ID de la variante"
// @Param        from   query  string  false  "Desde (YYYY-MM-DD)"
// @Param        to     query  string  false  "Hasta (YYYY-MM-DD, inclusive)"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/variants/{id}/kardex.pdf [get]
func (h *InventoryHandler) KardexPDF(c *fiber.Ctx) error {
	var q dto.KardexQuery
	if err := bindQuery(c, &q); err != nil {
		return nil
	}
	id := c.Params("id")
	pdf, err := h.reports.KardexPDF(c.UserContext(), id, q)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("inline; filename=\"kardex-%s.pdf\"", id))
	return c.Send(pdf)
}

// Rebuild godoc
// @Summary      Reconstruir proyección desde el kardex
// @Description  Reproduce los movimientos y compara con el estado vivo. Con diferencias responde 409 salvo force=true.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        body  body      dto.RebuildRequest  false  "Variante (vacío = todas), force, dry_run"
// @Success      200   {object}  dto.RebuildResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.RebuildResponse
// @Router       /api/inventory/rebuild [post]
func (h *InventoryHandler) Rebuild(c *fiber.Ctx) error {
	var in dto.RebuildRequest
	if len(c.Body()) > 0 {
		if err := bindAndValidate(c, &in); err != nil {
			return nil
		}
	}
	out, err := h.reports.Rebuild(c.UserContext(), in)
	var drift *domain.DriftDetectedError
	switch {
	case err == nil:
		return c.JSON(out)
	case errors.As(err, &drift) && out != nil:
		if out.Replaced {
			return c.JSON(out)
		}
		return c.Status(fiber.StatusConflict).JSON(out)
	default:
		return writeError(c, err)
	}
}
