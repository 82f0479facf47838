package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tramitesplus/cuadre-api/internal/models"
)

const cuadreColumns = `id, transaction_id, banco, banco2, monto, pagado, fecha_cliente, referencia, created_at`

const upsertCuadre = `
INSERT INTO cuadre (` + cuadreColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
ON CONFLICT (transaction_id) DO UPDATE SET
	banco = EXCLUDED.banco,
	banco2 = EXCLUDED.banco2,
	monto = EXCLUDED.monto,
	pagado = EXCLUDED.pagado,
	fecha_cliente = EXCLUDED.fecha_cliente,
	referencia = EXCLUDED.referencia
RETURNING ` + cuadreColumns

func scanCuadre(row pgx.Row) (models.CuadreData, error) {
	var c models.CuadreData
	err := row.Scan(
		&c.ID,
		&c.TransactionID,
		&c.Banco,
		&c.Banco2,
		&c.Monto,
		&c.Pagado,
		&c.FechaCliente,
		&c.Referencia,
		&c.CreatedAt,
	)
	return c, err
}

func cuadreArgs(c models.CuadreData) ([]interface{}, error) {
	txnID, err := uuid.Parse(c.TransactionID)
	if err != nil {
		return nil, fmt.Errorf("invalid transaction id %q: %w", c.TransactionID, err)
	}
	id := uuid.New()
	if c.ID != "" {
		if id, err = uuid.Parse(c.ID); err != nil {
			return nil, fmt.Errorf("invalid cuadre id %q: %w", c.ID, err)
		}
	}
	return []interface{}{id, txnID, c.Banco, c.Banco2, c.Monto, c.Pagado, c.FechaCliente, c.Referencia}, nil
}

// ListCuadre returns the cuadre records of the given transactions keyed by
// transaction id.
func (q *Queries) ListCuadre(ctx context.Context, transactionIDs []string) (map[string]models.CuadreData, error) {
	uuids, err := parseIDs(transactionIDs)
	if err != nil {
		return nil, err
	}
	rows, err := q.db.Query(ctx,
		"SELECT "+cuadreColumns+" FROM cuadre WHERE transaction_id = ANY($1)", uuids)
	if err != nil {
		return nil, fmt.Errorf("failed to list cuadre: %w", err)
	}
	defer rows.Close()

	out := make(map[string]models.CuadreData)
	for rows.Next() {
		c, err := scanCuadre(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cuadre: %w", err)
		}
		out[c.TransactionID] = c
	}
	return out, rows.Err()
}

// UpsertCuadre creates or replaces the record of c.TransactionID.
func (q *Queries) UpsertCuadre(ctx context.Context, c models.CuadreData) (models.CuadreData, error) {
	args, err := cuadreArgs(c)
	if err != nil {
		return models.CuadreData{}, err
	}
	saved, err := scanCuadre(q.db.QueryRow(ctx, upsertCuadre, args...))
	if err != nil {
		return models.CuadreData{}, fmt.Errorf("failed to upsert cuadre: %w", err)
	}
	return saved, nil
}

// UpsertCuadres upserts all records in one batch.
func (q *Queries) UpsertCuadres(ctx context.Context, records []models.CuadreData) ([]models.CuadreData, error) {
	if len(records) == 0 {
		return []models.CuadreData{}, nil
	}

	batch := &pgx.Batch{}
	for _, c := range records {
		args, err := cuadreArgs(c)
		if err != nil {
			return nil, err
		}
		batch.Queue(upsertCuadre, args...)
	}

	results := q.db.SendBatch(ctx, batch)
	defer results.Close()

	saved := make([]models.CuadreData, 0, len(records))
	for range records {
		c, err := scanCuadre(results.QueryRow())
		if err != nil {
			return nil, fmt.Errorf("failed to upsert cuadre: %w", err)
		}
		saved = append(saved, c)
	}
	return saved, nil
}

// DeleteCuadres removes the records of the given transactions.
func (q *Queries) DeleteCuadres(ctx context.Context, transactionIDs []string) (int64, error) {
	uuids, err := parseIDs(transactionIDs)
	if err != nil {
		return 0, err
	}
	tag, err := q.db.Exec(ctx, "DELETE FROM cuadre WHERE transaction_id = ANY($1)", uuids)
	if err != nil {
		return 0, fmt.Errorf("failed to delete cuadre: %w", err)
	}
	return tag.RowsAffected(), nil
}
