package handlers

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v3"
	"github.com/tramitesplus/cuadre-api/internal/services"
)

// Reports uploads generated workbooks.
type Reports interface {
	Enabled() bool
	Publish(ctx context.Context, kind, name string, data []byte) (services.ReportLink, error)
}

// ExportHandler renders the ledger and cuadre views as XLSX, either as a
// download or uploaded to storage behind a temporary link.
type ExportHandler struct {
	ledger  Ledger
	cuadre  Cuadre
	reports Reports
}

func NewExportHandler(ledger Ledger, cuadre Cuadre, reports Reports) *ExportHandler {
	return &ExportHandler{ledger: ledger, cuadre: cuadre, reports: reports}
}

func (h *ExportHandler) ledgerWorkbook(c fiber.Ctx) ([]byte, string, error) {
	params, err := listParams(c)
	if err != nil {
		return nil, "", err
	}
	txns, err := h.ledger.List(c.Context(), params)
	if err != nil {
		return nil, "", err
	}
	data, err := services.LedgerWorkbook(txns)
	if err != nil {
		return nil, "", err
	}
	return data, services.ReportName(services.ReportLedger, c.Query("from"), c.Query("to")), nil
}

func (h *ExportHandler) cuadreWorkbook(c fiber.Ctx) ([]byte, string, error) {
	params, err := listParams(c)
	if err != nil {
		return nil, "", err
	}
	rows, err := h.cuadre.List(c.Context(), params)
	if err != nil {
		return nil, "", err
	}
	data, err := services.CuadreWorkbook(rows)
	if err != nil {
		return nil, "", err
	}
	return data, services.ReportName(services.ReportCuadre, c.Query("from"), c.Query("to")), nil
}

func sendWorkbook(c fiber.Ctx, data []byte, name string) error {
	c.Set(fiber.HeaderContentType, services.XLSXContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s.xlsx"`, name))
	return c.Send(data)
}

func (h *ExportHandler) storageEnabled() bool {
	return h.reports != nil && h.reports.Enabled()
}

func (h *ExportHandler) publish(c fiber.Ctx, kind string, data []byte, name string) error {
	link, err := h.reports.Publish(c.Context(), kind, name, data)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": link})
}

// GET /api/transactions/export?from=&to=
func (h *ExportHandler) DownloadLedger(c fiber.Ctx) error {
	data, name, err := h.ledgerWorkbook(c)
	if err != nil {
		return fail(c, err)
	}
	return sendWorkbook(c, data, name)
}

// POST /api/transactions/export?from=&to=
func (h *ExportHandler) PublishLedger(c fiber.Ctx) error {
	if !h.storageEnabled() {
		return fail(c, services.ErrStorageDisabled)
	}
	data, name, err := h.ledgerWorkbook(c)
	if err != nil {
		return fail(c, err)
	}
	return h.publish(c, services.ReportLedger, data, name)
}

// GET /api/cuadre/export?from=&to=
func (h *ExportHandler) DownloadCuadre(c fiber.Ctx) error {
	data, name, err := h.cuadreWorkbook(c)
	if err != nil {
		return fail(c, err)
	}
	return sendWorkbook(c, data, name)
}

// POST /api/cuadre/export?from=&to=
func (h *ExportHandler) PublishCuadre(c fiber.Ctx) error {
	if !h.storageEnabled() {
		return fail(c, services.ErrStorageDisabled)
	}
	data, name, err := h.cuadreWorkbook(c)
	if err != nil {
		return fail(c, err)
	}
	return h.publish(c, services.ReportCuadre, data, name)
}
