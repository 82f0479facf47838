package handlers

import (
	"bytes"
	"context"
	"io"

	"github.com/gofiber/fiber/v3"
	"github.com/tramitesplus/cuadre-api/internal/database/db"
	"github.com/tramitesplus/cuadre-api/internal/logger"
	"github.com/tramitesplus/cuadre-api/internal/models"
	"github.com/tramitesplus/cuadre-api/internal/services"
	"github.com/tramitesplus/cuadre-api/internal/utils"
)

// Cuadre is the reconciliation service used by the handlers.
type Cuadre interface {
	List(ctx context.Context, arg db.ListTransactionsParams) ([]models.CuadreRow, error)
	Upsert(ctx context.Context, c models.CuadreData) (models.CuadreData, error)
	UpsertMany(ctx context.Context, records []models.CuadreData) ([]models.CuadreData, error)
	Delete(ctx context.Context, transactionIDs []string) (int64, error)
	Import(ctx context.Context, arg db.ListTransactionsParams, stmt *models.Statement) (services.ImportResult, error)
}

// StatementParser turns an uploaded statement into deposits.
type StatementParser interface {
	Parse(r io.Reader, fileType string) (*models.Statement, error)
}

// StatementArchive keeps a copy of imported statements.
type StatementArchive interface {
	GenerateStatementKey(bank, filename string) (string, error)
	Upload(ctx context.Context, key, contentType string, data []byte) error
}

// CuadreHandler serves the reconciliation endpoints.
type CuadreHandler struct {
	cuadre    Cuadre
	parser    StatementParser
	validator *services.UploadValidator
	archive   StatementArchive
}

// NewCuadreHandler creates the handler. archive may be nil.
func NewCuadreHandler(cuadre Cuadre, parser StatementParser, validator *services.UploadValidator, archive StatementArchive) *CuadreHandler {
	return &CuadreHandler{
		cuadre:    cuadre,
		parser:    parser,
		validator: validator,
		archive:   archive,
	}
}

// GetCuadre lists transactions with their reconciliation state.
// GET /api/cuadre?from=&to=
func (h *CuadreHandler) GetCuadre(c fiber.Ctx) error {
	params, err := listParams(c)
	if err != nil {
		return fail(c, err)
	}

	rows, err := h.cuadre.List(c.Context(), params)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"cuadre": rows})
}

// CuadreRequest is one reconciliation record from the client.
type CuadreRequest struct {
	models.CuadreData
	TransactionID string `json:"transactionId" validate:"required,uuid"`
}

func (r CuadreRequest) record() models.CuadreData {
	rec := r.CuadreData
	rec.TransactionID = r.TransactionID
	return rec
}

// UpsertCuadre stores one record.
// POST /api/cuadre
func (h *CuadreHandler) UpsertCuadre(c fiber.Ctx) error {
	var req CuadreRequest
	if err := bindJSON(c, &req); err != nil {
		return fail(c, err)
	}

	saved, err := h.cuadre.Upsert(c.Context(), req.record())
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, saved)
}

// BulkCuadreRequest carries debounced client saves.
type BulkCuadreRequest struct {
	Records []CuadreRequest `json:"records" validate:"required,min=1,dive"`
}

// UpsertCuadres stores several records in one batch.
// PUT /api/cuadre
func (h *CuadreHandler) UpsertCuadres(c fiber.Ctx) error {
	var req BulkCuadreRequest
	if err := bindJSON(c, &req); err != nil {
		return fail(c, err)
	}

	records := make([]models.CuadreData, len(req.Records))
	for i, r := range req.Records {
		records[i] = r.record()
	}
	saved, err := h.cuadre.UpsertMany(c.Context(), records)
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, saved)
}

// DeleteCuadreRequest names the transactions whose records are removed.
type DeleteCuadreRequest struct {
	TransactionIDs []string `json:"transactionIds" validate:"required,min=1,dive,uuid"`
}

// DeleteCuadre removes reconciliation records.
// DELETE /api/cuadre
func (h *CuadreHandler) DeleteCuadre(c fiber.Ctx) error {
	var req DeleteCuadreRequest
	if err := bindJSON(c, &req); err != nil {
		return fail(c, err)
	}

	deleted, err := h.cuadre.Delete(c.Context(), req.TransactionIDs)
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, fiber.Map{"deleted": deleted})
}

// ImportStatement matches a bank statement against pending rows.
// POST /api/cuadre/import?from=&to= (multipart field "file")
func (h *CuadreHandler) ImportStatement(c fiber.Ctx) error {
	params, err := listParams(c)
	if err != nil {
		return fail(c, err)
	}

	header, err := c.FormFile("file")
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "file is required")
	}
	file, err := header.Open()
	if err != nil {
		return fail(c, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return fail(c, err)
	}

	check := h.validator.Validate(data, header.Filename, header.Header.Get("Content-Type"))
	if !check.Valid {
		return fail(c, utils.NewBadRequestError(check.Err().Error(), check))
	}

	stmt, err := h.parser.Parse(bytes.NewReader(data), check.FileType)
	if err != nil {
		return fail(c, err)
	}

	result, err := h.cuadre.Import(c.Context(), params, stmt)
	if err != nil {
		return fail(c, err)
	}

	h.archiveStatement(c, stmt.Bank, header.Filename, header.Header.Get("Content-Type"), data)
	return utils.SuccessResponse(c, result)
}

// archiveStatement stores the original upload. Failures only get logged;
// the import itself already succeeded.
func (h *CuadreHandler) archiveStatement(c fiber.Ctx, bank, filename, contentType string, data []byte) {
	if h.archive == nil {
		return
	}
	log := logger.FromContext(c.Context())

	key, err := h.archive.GenerateStatementKey(bank, filename)
	if err == nil {
		err = h.archive.Upload(c.Context(), key, contentType, data)
	}
	if err != nil {
		log.Warn().Err(err).Str("bank", bank).Msg("failed to archive statement")
		return
	}
	log.Info().Str("key", key).Msg("archived statement")
}
