package models

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tramitesplus/cuadre-api/internal/timeutil"
)

// ErrUnknownField is returned when an edit names a field that is not editable.
var ErrUnknownField = errors.New("unknown or read-only field")

// moneyPlaces matches the scale of the NUMERIC(14,2) columns.
const moneyPlaces = 2

type fieldAccessor struct {
	set func(t *Transaction, v any) error
	get func(t *Transaction) any
}

// editableFields maps JSON field names to accessors. Derived money fields are
// not editable; they are always recomputed.
var editableFields = map[string]fieldAccessor{
	"fecha": {
		set: func(t *Transaction, v any) (err error) { t.Fecha, err = toTime(v); return },
		get: func(t *Transaction) any { return t.Fecha },
	},
	"tramite":         stringField(func(t *Transaction) *string { return &t.Tramite }),
	"emitidoPor":      stringField(func(t *Transaction) *string { return &t.EmitidoPor }),
	"placa":           stringField(func(t *Transaction) *string { return &t.Placa }),
	"tipoDocumento":   stringField(func(t *Transaction) *string { return &t.TipoDocumento }),
	"numeroDocumento": stringField(func(t *Transaction) *string { return &t.NumeroDocumento }),
	"nombre":          stringField(func(t *Transaction) *string { return &t.Nombre }),
	"asesor":          stringField(func(t *Transaction) *string { return &t.Asesor }),
	"pagado":          boolField(func(t *Transaction) *bool { return &t.Pagado }),
	"boleta":          boolField(func(t *Transaction) *bool { return &t.Boleta }),
	"comisionExtra":   boolField(func(t *Transaction) *bool { return &t.ComisionExtra }),
	"rappi":           boolField(func(t *Transaction) *bool { return &t.Rappi }),
	"tipoVehiculo":    nullableStringField(func(t *Transaction) **string { return &t.TipoVehiculo }),
	"celular":         nullableStringField(func(t *Transaction) **string { return &t.Celular }),
	"ciudad":          nullableStringField(func(t *Transaction) **string { return &t.Ciudad }),
	"novedad":         nullableStringField(func(t *Transaction) **string { return &t.Novedad }),
	"observaciones":   nullableStringField(func(t *Transaction) **string { return &t.Observaciones }),
	"banco":           nullableStringField(func(t *Transaction) **string { return &t.Banco }),
	"referencia":      nullableStringField(func(t *Transaction) **string { return &t.Referencia }),

	"boletasRegistradas": decimalField(func(t *Transaction) *decimal.Decimal { return &t.BoletasRegistradas }),
	"precioNeto":         decimalField(func(t *Transaction) *decimal.Decimal { return &t.PrecioNeto }),
	"tarifaServicio":     decimalField(func(t *Transaction) *decimal.Decimal { return &t.TarifaServicio }),
	"cilindraje": {
		set: func(t *Transaction, v any) (err error) { t.Cilindraje, err = toIntPtr(v); return },
		get: func(t *Transaction) any { return t.Cilindraje },
	},
}

// IsEditableField reports whether field can be changed through Set.
func IsEditableField(field string) bool {
	_, ok := editableFields[field]
	return ok
}

// Set applies a single field edit using the field's JSON name.
func (t *Transaction) Set(field string, value any) error {
	acc, ok := editableFields[field]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	if err := acc.set(t, value); err != nil {
		return fmt.Errorf("field %s: %w", field, err)
	}
	return nil
}

// Matches reports whether the stored value of field equals value once value
// is coerced to the field's type.
func (t *Transaction) Matches(field string, value any) bool {
	acc, ok := editableFields[field]
	if !ok {
		return false
	}
	probe := *t
	if err := acc.set(&probe, value); err != nil {
		return false
	}
	return equalValues(acc.get(t), acc.get(&probe))
}

func equalValues(a, b any) bool {
	switch av := a.(type) {
	case decimal.Decimal:
		return av.Equal(b.(decimal.Decimal))
	case time.Time:
		return av.Equal(b.(time.Time))
	case *string:
		bv := b.(*string)
		if av == nil || bv == nil {
			return av == nil && bv == nil
		}
		return *av == *bv
	case *int:
		bv := b.(*int)
		if av == nil || bv == nil {
			return av == nil && bv == nil
		}
		return *av == *bv
	default:
		return a == b
	}
}

func stringField(ptr func(t *Transaction) *string) fieldAccessor {
	return fieldAccessor{
		set: func(t *Transaction, v any) error {
			s, err := toString(v)
			if err != nil {
				return err
			}
			*ptr(t) = s
			return nil
		},
		get: func(t *Transaction) any { return *ptr(t) },
	}
}

func nullableStringField(ptr func(t *Transaction) **string) fieldAccessor {
	return fieldAccessor{
		set: func(t *Transaction, v any) error {
			if v == nil {
				*ptr(t) = nil
				return nil
			}
			s, err := toString(v)
			if err != nil {
				return err
			}
			if s == "" {
				*ptr(t) = nil
				return nil
			}
			*ptr(t) = &s
			return nil
		},
		get: func(t *Transaction) any { return *ptr(t) },
	}
}

func boolField(ptr func(t *Transaction) *bool) fieldAccessor {
	return fieldAccessor{
		set: func(t *Transaction, v any) error {
			b, err := toBool(v)
			if err != nil {
				return err
			}
			*ptr(t) = b
			return nil
		},
		get: func(t *Transaction) any { return *ptr(t) },
	}
}

func decimalField(ptr func(t *Transaction) *decimal.Decimal) fieldAccessor {
	return fieldAccessor{
		set: func(t *Transaction, v any) error {
			d, err := ToDecimal(v)
			if err != nil {
				return err
			}
			*ptr(t) = d.Round(moneyPlaces)
			return nil
		},
		get: func(t *Transaction) any { return *ptr(t) },
	}
}

func toString(v any) (string, error) {
	switch s := v.(type) {
	case nil:
		return "", nil
	case string:
		return strings.TrimSpace(s), nil
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(s), nil
	default:
		return "", fmt.Errorf("expected string, got %T", v)
	}
}

func toBool(v any) (bool, error) {
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "si", "sí", "1":
			return true, nil
		case "false", "no", "0", "":
			return false, nil
		}
		return false, fmt.Errorf("invalid boolean %q", b)
	case float64:
		return b != 0, nil
	case nil:
		return false, nil
	default:
		return false, fmt.Errorf("expected boolean, got %T", v)
	}
}

// ToDecimal coerces JSON-decoded numbers and user-formatted strings
// ("$ 1.234.567", "20,000") into a decimal.
func ToDecimal(v any) (decimal.Decimal, error) {
	switch n := v.(type) {
	case nil:
		return decimal.Zero, nil
	case decimal.Decimal:
		return n, nil
	case float64:
		return decimal.NewFromFloat(n), nil
	case int:
		return decimal.NewFromInt(int64(n)), nil
	case int64:
		return decimal.NewFromInt(n), nil
	case string:
		return ParseAmount(n)
	default:
		return decimal.Zero, fmt.Errorf("expected number, got %T", v)
	}
}

// ParseAmount parses a peso amount written with either separator convention
// ("1.234.567,89", "1,234,567.89"). When both separators appear the last one
// is the decimal point. A lone separator is a thousands separator only when
// it splits the digits into groups of three.
func ParseAmount(s string) (decimal.Decimal, error) {
	clean := strings.TrimSpace(s)
	clean = strings.ReplaceAll(clean, "$", "")
	clean = strings.ReplaceAll(clean, "COP", "")
	clean = strings.ReplaceAll(clean, " ", "")
	if clean == "" || clean == "-" {
		return decimal.Zero, nil
	}

	dot, comma := strings.LastIndex(clean, "."), strings.LastIndex(clean, ",")
	switch {
	case dot >= 0 && comma >= 0:
		point, group := ".", ","
		if comma > dot {
			point, group = ",", "."
		}
		clean = strings.ReplaceAll(clean, group, "")
		clean = strings.Replace(clean, point, ".", 1)
	case comma >= 0:
		clean = normalizeSeparator(clean, ",")
	case dot >= 0:
		clean = normalizeSeparator(clean, ".")
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}
	return d, nil
}

func normalizeSeparator(s, sep string) string {
	parts := strings.Split(strings.TrimPrefix(s, "-"), sep)
	grouped := len(parts[0]) >= 1 && len(parts[0]) <= 3
	for _, p := range parts[1:] {
		grouped = grouped && len(p) == 3
	}
	switch {
	case grouped:
		return strings.ReplaceAll(s, sep, "")
	case len(parts) == 2:
		return strings.Replace(s, sep, ".", 1)
	}
	return s
}

func toIntPtr(v any) (*int, error) {
	switch n := v.(type) {
	case nil:
		return nil, nil
	case float64:
		if n != math.Trunc(n) {
			return nil, fmt.Errorf("invalid integer %v", n)
		}
		i := int(n)
		return &i, nil
	case int:
		return &n, nil
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return nil, nil
		}
		i, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", n)
		}
		return &i, nil
	default:
		return nil, fmt.Errorf("expected integer, got %T", v)
	}
}

// toTime parses an edited fecha at the microsecond precision timestamptz
// stores, so a saved edit matches the row read back.
func toTime(v any) (time.Time, error) {
	switch s := v.(type) {
	case time.Time:
		return s.Truncate(time.Microsecond), nil
	case string:
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return t.Truncate(time.Microsecond), nil
		}
		return timeutil.ParseDateKey(s)
	default:
		return time.Time{}, fmt.Errorf("expected date string, got %T", v)
	}
}
