package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/tramitesplus/cuadre-api/internal/formulas"
	"github.com/tramitesplus/cuadre-api/internal/utils"
)

// SoatHandler exposes the SOAT price table.
type SoatHandler struct{}

func NewSoatHandler() *SoatHandler {
	return &SoatHandler{}
}

// GET /api/soat/tipos
func (h *SoatHandler) GetTipos(c fiber.Ctx) error {
	tipos := formulas.SoatVehicleTypes()
	banded := make(map[string]bool, len(tipos))
	for _, t := range tipos {
		banded[t] = formulas.IsBanded(t)
	}
	return c.JSON(fiber.Map{"tipos": tipos, "porCilindraje": banded})
}

// GetPrecio looks up a price. A zero price means no table entry.
// GET /api/soat/precio?tipo=MOTO&cilindraje=150
func (h *SoatHandler) GetPrecio(c fiber.Ctx) error {
	tipo := strings.TrimSpace(c.Query("tipo"))
	if tipo == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "tipo is required")
	}

	var cc *int
	if raw := strings.TrimSpace(c.Query("cilindraje")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "cilindraje must be a non-negative integer")
		}
		cc = &n
	}

	data := fiber.Map{
		"tipo":   tipo,
		"precio": formulas.SoatPrice(tipo, cc),
	}
	if cc != nil && formulas.IsBanded(tipo) {
		data["rango"] = formulas.CylinderBracket(*cc)
	}
	return utils.SuccessResponse(c, data)
}
