package handlers

import (
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/tramitesplus/cuadre-api/internal/formulas"
)

func newSoatApp() *fiber.App {
	h := NewSoatHandler()
	app := fiber.New()
	app.Get("/soat/tipos", h.GetTipos)
	app.Get("/soat/precio", h.GetPrecio)
	return app
}

func TestGetTipos(t *testing.T) {
	app := newSoatApp()

	resp, result := doJSON(t, app, "GET", "/soat/tipos", nil)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, result["tipos"], len(formulas.SoatVehicleTypes()))
	assert.Len(t, result["porCilindraje"], len(formulas.SoatVehicleTypes()))
}

func TestGetPrecio(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantStatus int
	}{
		{"missing tipo", "", fiber.StatusBadRequest},
		{"bad cilindraje", "?tipo=MOTO&cilindraje=abc", fiber.StatusBadRequest},
		{"negative cilindraje", "?tipo=MOTO&cilindraje=-5", fiber.StatusBadRequest},
		{"flat type", "?tipo=MOTO&cilindraje=150", fiber.StatusOK},
		{"unknown type", "?tipo=NAVE", fiber.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := doJSON(t, newSoatApp(), "GET", "/soat/precio"+tt.query, nil)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestGetPrecio_MatchesTable(t *testing.T) {
	cc := 1600
	want := formulas.SoatPrice("AUTO FAMILIAR", &cc)

	_, result := doJSON(t, newSoatApp(), "GET", "/soat/precio?tipo=auto%20familiar&cilindraje=1600", nil)

	data := result["data"].(map[string]interface{})
	assert.Equal(t, want.String(), data["precio"])
	assert.Equal(t, formulas.Bracket1500To2500, data["rango"])

	_, result = doJSON(t, newSoatApp(), "GET", "/soat/precio?tipo=MOTO", nil)

	data = result["data"].(map[string]interface{})
	assert.Equal(t, "355500", data["precio"])
	assert.NotContains(t, data, "rango")
}
