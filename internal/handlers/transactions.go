package handlers

import (
	"context"

	"github.com/gofiber/fiber/v3"
	"github.com/tramitesplus/cuadre-api/internal/autosave"
	"github.com/tramitesplus/cuadre-api/internal/database/db"
	"github.com/tramitesplus/cuadre-api/internal/models"
	"github.com/tramitesplus/cuadre-api/internal/services"
	"github.com/tramitesplus/cuadre-api/internal/utils"
)

// Ledger is the transaction service used by the handlers.
type Ledger interface {
	List(ctx context.Context, arg db.ListTransactionsParams) ([]models.Transaction, error)
	Get(ctx context.Context, id string) (models.Transaction, error)
	Create(ctx context.Context, t models.Transaction) (models.Transaction, error)
	SaveAll(ctx context.Context, txns []models.Transaction) ([]models.Transaction, error)
	Delete(ctx context.Context, ids []string) (int64, error)
	ApplyEdits(edits []autosave.Edit) error
	FlushEdits(ctx context.Context) error
	EditStatus() autosave.Status
	Recalculate(ctx context.Context) (int, error)
}

// TransactionHandler serves the ledger endpoints.
type TransactionHandler struct {
	ledger Ledger
}

func NewTransactionHandler(ledger Ledger) *TransactionHandler {
	return &TransactionHandler{ledger: ledger}
}

// GetTransactions lists the ledger.
// GET /api/transactions?from=YYYY-MM-DD&to=YYYY-MM-DD&asesor=&tramite=&q=
func (h *TransactionHandler) GetTransactions(c fiber.Ctx) error {
	params, err := listParams(c)
	if err != nil {
		return fail(c, err)
	}

	txns, err := h.ledger.List(c.Context(), params)
	if err != nil {
		return fail(c, err)
	}
	txns = services.Filter(txns, c.Query("q"))

	return c.JSON(fiber.Map{"transactions": txns})
}

// GetTransaction returns one row.
// GET /api/transactions/:id
func (h *TransactionHandler) GetTransaction(c fiber.Ctx) error {
	txn, err := h.ledger.Get(c.Context(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, txn)
}

// CreateTransaction adds one row.
// POST /api/transactions
func (h *TransactionHandler) CreateTransaction(c fiber.Ctx) error {
	var req models.Transaction
	if err := c.Bind().JSON(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "invalid request body")
	}

	created, err := h.ledger.Create(c.Context(), req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": created})
}

// SaveTransactionsRequest is the body of a bulk save.
type SaveTransactionsRequest struct {
	Transactions []models.Transaction `json:"transactions" validate:"required,min=1,dive"`
}

// SaveTransactions writes full records in one batch.
// PUT /api/transactions
func (h *TransactionHandler) SaveTransactions(c fiber.Ctx) error {
	var req SaveTransactionsRequest
	if err := bindJSON(c, &req); err != nil {
		return fail(c, err)
	}

	saved, err := h.ledger.SaveAll(c.Context(), req.Transactions)
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, saved)
}

// DeleteTransactionsRequest names the rows to delete.
type DeleteTransactionsRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,dive,uuid"`
}

// DeleteTransactions removes rows and their cuadre records.
// DELETE /api/transactions
func (h *TransactionHandler) DeleteTransactions(c fiber.Ctx) error {
	var req DeleteTransactionsRequest
	if err := bindJSON(c, &req); err != nil {
		return fail(c, err)
	}

	deleted, err := h.ledger.Delete(c.Context(), req.IDs)
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, fiber.Map{"deleted": deleted})
}

// EditsRequest carries cell edits from the grid.
type EditsRequest struct {
	Edits []autosave.Edit `json:"edits" validate:"required,min=1,dive"`
}

// ApplyEdits buffers cell edits; they are saved after the debounce delay.
// POST /api/transactions/edits
func (h *TransactionHandler) ApplyEdits(c fiber.Ctx) error {
	var req EditsRequest
	if err := bindJSON(c, &req); err != nil {
		return fail(c, err)
	}

	if err := h.ledger.ApplyEdits(req.Edits); err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"success": true, "data": h.ledger.EditStatus()})
}

// GetEdits reports retained edits and row save states.
// GET /api/transactions/edits
func (h *TransactionHandler) GetEdits(c fiber.Ctx) error {
	return utils.SuccessResponse(c, h.ledger.EditStatus())
}

// FlushEdits saves buffered edits immediately.
// POST /api/transactions/edits/flush
func (h *TransactionHandler) FlushEdits(c fiber.Ctx) error {
	if err := h.ledger.FlushEdits(c.Context()); err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, h.ledger.EditStatus())
}

// Recalculate rewrites drifted money fields.
// POST /api/transactions/recalculate
func (h *TransactionHandler) Recalculate(c fiber.Ctx) error {
	n, err := h.ledger.Recalculate(c.Context())
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, fiber.Map{"updated": n})
}

// GetSummary aggregates the range per Bogota day and per asesor.
// GET /api/transactions/summary?from=&to=
func (h *TransactionHandler) GetSummary(c fiber.Ctx) error {
	params, err := listParams(c)
	if err != nil {
		return fail(c, err)
	}

	txns, err := h.ledger.List(c.Context(), params)
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, services.Summarize(txns))
}
