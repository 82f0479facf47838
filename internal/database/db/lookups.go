package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/tramitesplus/cuadre-api/internal/models"
)

// OptionKind names a nombre/color lookup table.
type OptionKind string

const (
	OptionTramites   OptionKind = "tramites"
	OptionEmitidoPor OptionKind = "emitido_por"
	OptionNovedades  OptionKind = "novedades"
)

// Valid reports whether k is one of the known option tables. Table names are
// interpolated into SQL, so only these values may reach a query.
func (k OptionKind) Valid() bool {
	switch k {
	case OptionTramites, OptionEmitidoPor, OptionNovedades:
		return true
	}
	return false
}

// ListAsesores returns all advisors by name.
func (q *Queries) ListAsesores(ctx context.Context) ([]models.Asesor, error) {
	rows, err := q.db.Query(ctx, "SELECT id, name, created_at FROM asesores ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list asesores: %w", err)
	}
	defer rows.Close()

	out := []models.Asesor{}
	for rows.Next() {
		var a models.Asesor
		if err := rows.Scan(&a.ID, &a.Name, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// CreateAsesor inserts an advisor, returning the existing row on a name clash.
func (q *Queries) CreateAsesor(ctx context.Context, name string) (models.Asesor, error) {
	var a models.Asesor
	err := q.db.QueryRow(ctx, `
		INSERT INTO asesores (id, name) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name, created_at`, uuid.New(), name).Scan(&a.ID, &a.Name, &a.CreatedAt)
	if err != nil {
		return models.Asesor{}, fmt.Errorf("failed to create asesor: %w", err)
	}
	return a, nil
}

// DeleteAsesor removes an advisor by id.
func (q *Queries) DeleteAsesor(ctx context.Context, id string) error {
	return q.deleteByID(ctx, "asesores", id)
}

// ListColores returns all colors by name.
func (q *Queries) ListColores(ctx context.Context) ([]models.Color, error) {
	rows, err := q.db.Query(ctx, "SELECT id, name, hex, created_at FROM colores ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list colores: %w", err)
	}
	defer rows.Close()

	out := []models.Color{}
	for rows.Next() {
		var c models.Color
		if err := rows.Scan(&c.ID, &c.Name, &c.Hex, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CreateColor inserts a color or updates the hex of an existing name.
func (q *Queries) CreateColor(ctx context.Context, name, hex string) (models.Color, error) {
	var c models.Color
	err := q.db.QueryRow(ctx, `
		INSERT INTO colores (id, name, hex) VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET hex = EXCLUDED.hex
		RETURNING id, name, hex, created_at`, uuid.New(), name, hex).Scan(&c.ID, &c.Name, &c.Hex, &c.CreatedAt)
	if err != nil {
		return models.Color{}, fmt.Errorf("failed to create color: %w", err)
	}
	return c, nil
}

// DeleteColor removes a color by id.
func (q *Queries) DeleteColor(ctx context.Context, id string) error {
	return q.deleteByID(ctx, "colores", id)
}

// ListOptions returns the rows of an option table by nombre.
func (q *Queries) ListOptions(ctx context.Context, kind OptionKind) ([]models.NamedOption, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown option table %q", kind)
	}
	rows, err := q.db.Query(ctx, "SELECT id, nombre, color, created_at FROM "+string(kind)+" ORDER BY nombre")
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", kind, err)
	}
	defer rows.Close()

	out := []models.NamedOption{}
	for rows.Next() {
		var o models.NamedOption
		if err := rows.Scan(&o.ID, &o.Nombre, &o.Color, &o.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// ListEmitidoPorWithColors resolves each issuer's color name to its hex.
func (q *Queries) ListEmitidoPorWithColors(ctx context.Context) ([]models.OptionWithColor, error) {
	rows, err := q.db.Query(ctx, `
		SELECT e.id, e.nombre, e.color, e.created_at, c.hex
		FROM emitido_por e
		LEFT JOIN colores c ON c.name = e.color
		ORDER BY e.nombre`)
	if err != nil {
		return nil, fmt.Errorf("failed to list emitido_por with colors: %w", err)
	}
	defer rows.Close()

	out := []models.OptionWithColor{}
	for rows.Next() {
		var o models.OptionWithColor
		if err := rows.Scan(&o.ID, &o.Nombre, &o.Color, &o.CreatedAt, &o.Hex); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// CreateOption inserts into an option table, updating the color on a name clash.
func (q *Queries) CreateOption(ctx context.Context, kind OptionKind, nombre string, color *string) (models.NamedOption, error) {
	if !kind.Valid() {
		return models.NamedOption{}, fmt.Errorf("unknown option table %q", kind)
	}
	var o models.NamedOption
	err := q.db.QueryRow(ctx, `
		INSERT INTO `+string(kind)+` (id, nombre, color) VALUES ($1, $2, $3)
		ON CONFLICT (nombre) DO UPDATE SET color = COALESCE(EXCLUDED.color, `+string(kind)+`.color)
		RETURNING id, nombre, color, created_at`, uuid.New(), nombre, color).Scan(&o.ID, &o.Nombre, &o.Color, &o.CreatedAt)
	if err != nil {
		return models.NamedOption{}, fmt.Errorf("failed to create %s: %w", kind, err)
	}
	return o, nil
}

// DeleteOption removes a row of an option table by id.
func (q *Queries) DeleteOption(ctx context.Context, kind OptionKind, id string) error {
	if !kind.Valid() {
		return fmt.Errorf("unknown option table %q", kind)
	}
	return q.deleteByID(ctx, string(kind), id)
}

func (q *Queries) deleteByID(ctx context.Context, table, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	tag, err := q.db.Exec(ctx, "DELETE FROM "+table+" WHERE id = $1", uid)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
