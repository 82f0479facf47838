package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tramitesplus/cuadre-api/internal/models"
)

const transactionColumns = `id, fecha, tramite, pagado, boleta, boletas_registradas, emitido_por, placa,
	tipo_documento, numero_documento, nombre, cilindraje, tipo_vehiculo, celular, ciudad,
	asesor, novedad, precio_neto, tarifa_servicio, impuesto_4x1000, ganancia_bruta,
	comision_extra, rappi, observaciones, banco, referencia, created_at, updated_at`

const upsertTransaction = `
INSERT INTO transactions (` + transactionColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
        $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, now(), now())
ON CONFLICT (id) DO UPDATE SET
	fecha = EXCLUDED.fecha,
	tramite = EXCLUDED.tramite,
	pagado = EXCLUDED.pagado,
	boleta = EXCLUDED.boleta,
	boletas_registradas = EXCLUDED.boletas_registradas,
	emitido_por = EXCLUDED.emitido_por,
	placa = EXCLUDED.placa,
	tipo_documento = EXCLUDED.tipo_documento,
	numero_documento = EXCLUDED.numero_documento,
	nombre = EXCLUDED.nombre,
	cilindraje = EXCLUDED.cilindraje,
	tipo_vehiculo = EXCLUDED.tipo_vehiculo,
	celular = EXCLUDED.celular,
	ciudad = EXCLUDED.ciudad,
	asesor = EXCLUDED.asesor,
	novedad = EXCLUDED.novedad,
	precio_neto = EXCLUDED.precio_neto,
	tarifa_servicio = EXCLUDED.tarifa_servicio,
	impuesto_4x1000 = EXCLUDED.impuesto_4x1000,
	ganancia_bruta = EXCLUDED.ganancia_bruta,
	comision_extra = EXCLUDED.comision_extra,
	rappi = EXCLUDED.rappi,
	observaciones = EXCLUDED.observaciones,
	banco = EXCLUDED.banco,
	referencia = EXCLUDED.referencia,
	updated_at = now()
RETURNING ` + transactionColumns

// ListTransactionsParams filters ListTransactions. Zero values disable a filter.
type ListTransactionsParams struct {
	From    time.Time
	To      time.Time
	Asesor  string
	Tramite string
}

func scanTransaction(row pgx.Row) (models.Transaction, error) {
	var t models.Transaction
	err := row.Scan(
		&t.ID,
		&t.Fecha,
		&t.Tramite,
		&t.Pagado,
		&t.Boleta,
		&t.BoletasRegistradas,
		&t.EmitidoPor,
		&t.Placa,
		&t.TipoDocumento,
		&t.NumeroDocumento,
		&t.Nombre,
		&t.Cilindraje,
		&t.TipoVehiculo,
		&t.Celular,
		&t.Ciudad,
		&t.Asesor,
		&t.Novedad,
		&t.PrecioNeto,
		&t.TarifaServicio,
		&t.Impuesto4x1000,
		&t.GananciaBruta,
		&t.ComisionExtra,
		&t.Rappi,
		&t.Observaciones,
		&t.Banco,
		&t.Referencia,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	return t, err
}

func collectTransactions(rows pgx.Rows) ([]models.Transaction, error) {
	defer rows.Close()
	out := []models.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func transactionArgs(t models.Transaction) ([]interface{}, error) {
	id, err := uuid.Parse(t.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid transaction id %q: %w", t.ID, err)
	}
	return []interface{}{
		id, t.Fecha, t.Tramite, t.Pagado, t.Boleta, t.BoletasRegistradas, t.EmitidoPor, t.Placa,
		t.TipoDocumento, t.NumeroDocumento, t.Nombre, t.Cilindraje, t.TipoVehiculo, t.Celular, t.Ciudad,
		t.Asesor, t.Novedad, t.PrecioNeto, t.TarifaServicio, t.Impuesto4x1000, t.GananciaBruta,
		t.ComisionExtra, t.Rappi, t.Observaciones, t.Banco, t.Referencia,
	}, nil
}

// ListTransactions returns transactions ordered by fecha, newest first.
func (q *Queries) ListTransactions(ctx context.Context, arg ListTransactionsParams) ([]models.Transaction, error) {
	var where []string
	var args []interface{}
	add := func(cond string, v interface{}) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}

	if !arg.From.IsZero() {
		add("fecha >= $%d", arg.From)
	}
	if !arg.To.IsZero() {
		add("fecha < $%d", arg.To)
	}
	if arg.Asesor != "" {
		add("asesor = $%d", arg.Asesor)
	}
	if arg.Tramite != "" {
		add("tramite = $%d", arg.Tramite)
	}

	query := "SELECT " + transactionColumns + " FROM transactions"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY fecha DESC, created_at DESC"

	rows, err := q.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return collectTransactions(rows)
}

// GetTransactionsByIDs returns the transactions with the given ids. Missing
// ids are skipped.
func (q *Queries) GetTransactionsByIDs(ctx context.Context, ids []string) ([]models.Transaction, error) {
	uuids, err := parseIDs(ids)
	if err != nil {
		return nil, err
	}
	rows, err := q.db.Query(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE id = ANY($1)", uuids)
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions: %w", err)
	}
	return collectTransactions(rows)
}

// GetTransaction returns a single transaction or ErrNotFound.
func (q *Queries) GetTransaction(ctx context.Context, id string) (models.Transaction, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return models.Transaction{}, ErrNotFound
	}
	t, err := scanTransaction(q.db.QueryRow(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE id = $1", uid))
	return t, notFound(err)
}

// CreateTransaction inserts t and returns the stored row.
func (q *Queries) CreateTransaction(ctx context.Context, t models.Transaction) (models.Transaction, error) {
	args, err := transactionArgs(t)
	if err != nil {
		return models.Transaction{}, err
	}
	created, err := scanTransaction(q.db.QueryRow(ctx, upsertTransaction, args...))
	if err != nil {
		return models.Transaction{}, fmt.Errorf("failed to create transaction: %w", err)
	}
	return created, nil
}

// SaveTransactions upserts every row in one batch and returns the stored rows
// in input order.
func (q *Queries) SaveTransactions(ctx context.Context, txns []models.Transaction) ([]models.Transaction, error) {
	if len(txns) == 0 {
		return []models.Transaction{}, nil
	}

	batch := &pgx.Batch{}
	for _, t := range txns {
		args, err := transactionArgs(t)
		if err != nil {
			return nil, err
		}
		batch.Queue(upsertTransaction, args...)
	}

	results := q.db.SendBatch(ctx, batch)
	defer results.Close()

	saved := make([]models.Transaction, 0, len(txns))
	for i := range txns {
		t, err := scanTransaction(results.QueryRow())
		if err != nil {
			return nil, fmt.Errorf("failed to save transaction %s: %w", txns[i].ID, err)
		}
		saved = append(saved, t)
	}
	return saved, nil
}

// UpdateTransactionMoney overwrites the derived money fields of each row.
func (q *Queries) UpdateTransactionMoney(ctx context.Context, txns []models.Transaction) error {
	if len(txns) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, t := range txns {
		id, err := uuid.Parse(t.ID)
		if err != nil {
			return fmt.Errorf("invalid transaction id %q: %w", t.ID, err)
		}
		batch.Queue(`UPDATE transactions
			SET impuesto_4x1000 = $2, ganancia_bruta = $3, updated_at = now()
			WHERE id = $1`, id, t.Impuesto4x1000, t.GananciaBruta)
	}

	results := q.db.SendBatch(ctx, batch)
	defer results.Close()
	for range txns {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to update money fields: %w", err)
		}
	}
	return nil
}

// DeleteTransactions removes the given rows and returns how many were deleted.
func (q *Queries) DeleteTransactions(ctx context.Context, ids []string) (int64, error) {
	uuids, err := parseIDs(ids)
	if err != nil {
		return 0, err
	}
	tag, err := q.db.Exec(ctx, "DELETE FROM transactions WHERE id = ANY($1)", uuids)
	if err != nil {
		return 0, fmt.Errorf("failed to delete transactions: %w", err)
	}
	return tag.RowsAffected(), nil
}
