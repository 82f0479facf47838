package handlers

import (
	"context"

	"github.com/gofiber/fiber/v3"
	"github.com/tramitesplus/cuadre-api/internal/database/db"
	"github.com/tramitesplus/cuadre-api/internal/models"
	"github.com/tramitesplus/cuadre-api/internal/utils"
)

// Lookups is the dropdown-table service used by the handlers.
type Lookups interface {
	ListAsesores(ctx context.Context) ([]models.Asesor, error)
	CreateAsesor(ctx context.Context, name string) (models.Asesor, error)
	DeleteAsesor(ctx context.Context, id string) error
	ListColores(ctx context.Context) ([]models.Color, error)
	CreateColor(ctx context.Context, name, hex string) (models.Color, error)
	DeleteColor(ctx context.Context, id string) error
	ListOptions(ctx context.Context, kind db.OptionKind) ([]models.NamedOption, error)
	ListEmitidoPorWithColors(ctx context.Context) ([]models.OptionWithColor, error)
	CreateOption(ctx context.Context, kind db.OptionKind, nombre string, color *string) (models.NamedOption, error)
	DeleteOption(ctx context.Context, kind db.OptionKind, id string) error
}

// optionResponseKeys are the list keys of each option table.
var optionResponseKeys = map[db.OptionKind]string{
	db.OptionTramites:   "tramites",
	db.OptionNovedades:  "novedades",
	db.OptionEmitidoPor: "emitidoPor",
}

// LookupHandler serves asesores, colores and the nombre/color option tables.
type LookupHandler struct {
	lookups Lookups
}

func NewLookupHandler(lookups Lookups) *LookupHandler {
	return &LookupHandler{lookups: lookups}
}

type createAsesorRequest struct {
	Name string `json:"name" validate:"required,max=120"`
}

type createColorRequest struct {
	Name string `json:"name" validate:"required,max=60"`
	Hex  string `json:"hex" validate:"required,hexcolor"`
}

type createOptionRequest struct {
	Nombre string  `json:"nombre" validate:"required,max=120"`
	Color  *string `json:"color" validate:"omitempty,max=60"`
}

// GET /api/asesores
func (h *LookupHandler) GetAsesores(c fiber.Ctx) error {
	asesores, err := h.lookups.ListAsesores(c.Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"asesores": asesores})
}

// POST /api/asesores
func (h *LookupHandler) CreateAsesor(c fiber.Ctx) error {
	var req createAsesorRequest
	if err := bindJSON(c, &req); err != nil {
		return fail(c, err)
	}
	a, err := h.lookups.CreateAsesor(c.Context(), req.Name)
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, a)
}

// DELETE /api/asesores/:id
func (h *LookupHandler) DeleteAsesor(c fiber.Ctx) error {
	if err := h.lookups.DeleteAsesor(c.Context(), c.Params("id")); err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, fiber.Map{"id": c.Params("id")})
}

// GET /api/colores
func (h *LookupHandler) GetColores(c fiber.Ctx) error {
	colores, err := h.lookups.ListColores(c.Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"colores": colores})
}

// POST /api/colores
func (h *LookupHandler) CreateColor(c fiber.Ctx) error {
	var req createColorRequest
	if err := bindJSON(c, &req); err != nil {
		return fail(c, err)
	}
	color, err := h.lookups.CreateColor(c.Context(), req.Name, req.Hex)
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, color)
}

// DELETE /api/colores/:id
func (h *LookupHandler) DeleteColor(c fiber.Ctx) error {
	if err := h.lookups.DeleteColor(c.Context(), c.Params("id")); err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, fiber.Map{"id": c.Params("id")})
}

// GetOptions returns the handler listing one option table.
func (h *LookupHandler) GetOptions(kind db.OptionKind) fiber.Handler {
	key := optionResponseKeys[kind]
	return func(c fiber.Ctx) error {
		opts, err := h.lookups.ListOptions(c.Context(), kind)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{key: opts})
	}
}

// CreateOption returns the handler inserting into one option table.
func (h *LookupHandler) CreateOption(kind db.OptionKind) fiber.Handler {
	return func(c fiber.Ctx) error {
		var req createOptionRequest
		if err := bindJSON(c, &req); err != nil {
			return fail(c, err)
		}
		opt, err := h.lookups.CreateOption(c.Context(), kind, req.Nombre, req.Color)
		if err != nil {
			return fail(c, err)
		}
		return utils.SuccessResponse(c, opt)
	}
}

// DeleteOption returns the handler deleting from one option table.
func (h *LookupHandler) DeleteOption(kind db.OptionKind) fiber.Handler {
	return func(c fiber.Ctx) error {
		if err := h.lookups.DeleteOption(c.Context(), kind, c.Params("id")); err != nil {
			return fail(c, err)
		}
		return utils.SuccessResponse(c, fiber.Map{"id": c.Params("id")})
	}
}

// GET /api/emitidoPorWithColors
func (h *LookupHandler) GetEmitidoPorWithColors(c fiber.Ctx) error {
	opts, err := h.lookups.ListEmitidoPorWithColors(c.Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"emitidoPor": opts})
}

// RegisterRoutes mounts every lookup endpoint on r.
func (h *LookupHandler) RegisterRoutes(r fiber.Router) {
	r.Get("/asesores", h.GetAsesores)
	r.Post("/asesores", h.CreateAsesor)
	r.Delete("/asesores/:id", h.DeleteAsesor)

	r.Get("/colores", h.GetColores)
	r.Post("/colores", h.CreateColor)
	r.Delete("/colores/:id", h.DeleteColor)

	for kind, path := range map[db.OptionKind]string{
		db.OptionTramites:   "/tramites",
		db.OptionNovedades:  "/novedades",
		db.OptionEmitidoPor: "/emitidoPor",
	} {
		r.Get(path, h.GetOptions(kind))
		r.Post(path, h.CreateOption(kind))
		r.Delete(path+"/:id", h.DeleteOption(kind))
	}
	r.Get("/emitidoPorWithColors", h.GetEmitidoPorWithColors)
}
