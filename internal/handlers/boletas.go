package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/shopspring/decimal"
	"github.com/tramitesplus/cuadre-api/internal/models"
	"github.com/tramitesplus/cuadre-api/internal/utils"
)

// Boletas is the boleta payment service used by the handlers.
type Boletas interface {
	List(ctx context.Context) ([]models.BoletaPayment, error)
	Create(ctx context.Context, p models.BoletaPayment) (models.BoletaPayment, error)
	Delete(ctx context.Context, id string) error
}

type BoletaHandler struct {
	boletas Boletas
}

func NewBoletaHandler(boletas Boletas) *BoletaHandler {
	return &BoletaHandler{boletas: boletas}
}

// CreateBoletaRequest is the body of POST /api/boleta-payments.
type CreateBoletaRequest struct {
	Fecha         time.Time       `json:"fecha"`
	Monto         decimal.Decimal `json:"monto"`
	Boletas       int             `json:"boletas" validate:"gte=0"`
	Referencia    *string         `json:"referencia" validate:"omitempty,max=120"`
	Observaciones *string         `json:"observaciones"`
}

// GET /api/boleta-payments
func (h *BoletaHandler) GetBoletaPayments(c fiber.Ctx) error {
	payments, err := h.boletas.List(c.Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"payments": payments})
}

// POST /api/boleta-payments
func (h *BoletaHandler) CreateBoletaPayment(c fiber.Ctx) error {
	var req CreateBoletaRequest
	if err := bindJSON(c, &req); err != nil {
		return fail(c, err)
	}

	created, err := h.boletas.Create(c.Context(), models.BoletaPayment{
		Fecha:         req.Fecha,
		Monto:         req.Monto,
		Boletas:       req.Boletas,
		Referencia:    req.Referencia,
		Observaciones: req.Observaciones,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": created})
}

// DELETE /api/boleta-payments/:id
func (h *BoletaHandler) DeleteBoletaPayment(c fiber.Ctx) error {
	if err := h.boletas.Delete(c.Context(), c.Params("id")); err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, fiber.Map{"id": c.Params("id")})
}
