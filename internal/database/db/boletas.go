package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/tramitesplus/cuadre-api/internal/models"
)

const boletaColumns = `id, fecha, monto, boletas, referencia, observaciones, created_at`

// ListBoletaPayments returns payments newest first.
func (q *Queries) ListBoletaPayments(ctx context.Context) ([]models.BoletaPayment, error) {
	rows, err := q.db.Query(ctx, "SELECT "+boletaColumns+" FROM boleta_payments ORDER BY fecha DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to list boleta payments: %w", err)
	}
	defer rows.Close()

	out := []models.BoletaPayment{}
	for rows.Next() {
		var p models.BoletaPayment
		if err := rows.Scan(&p.ID, &p.Fecha, &p.Monto, &p.Boletas, &p.Referencia, &p.Observaciones, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// CreateBoletaPayment inserts p with a fresh id.
func (q *Queries) CreateBoletaPayment(ctx context.Context, p models.BoletaPayment) (models.BoletaPayment, error) {
	var out models.BoletaPayment
	err := q.db.QueryRow(ctx, `
		INSERT INTO boleta_payments (id, fecha, monto, boletas, referencia, observaciones)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+boletaColumns,
		uuid.New(), p.Fecha, p.Monto, p.Boletas, p.Referencia, p.Observaciones,
	).Scan(&out.ID, &out.Fecha, &out.Monto, &out.Boletas, &out.Referencia, &out.Observaciones, &out.CreatedAt)
	if err != nil {
		return models.BoletaPayment{}, fmt.Errorf("failed to create boleta payment: %w", err)
	}
	return out, nil
}

// DeleteBoletaPayment removes a payment by id.
func (q *Queries) DeleteBoletaPayment(ctx context.Context, id string) error {
	return q.deleteByID(ctx, "boleta_payments", id)
}
