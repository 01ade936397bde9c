package store

import (
	"errors"
	"fmt"

	"github.com/roach88/hitdata/internal/ir"
	"github.com/roach88/hitdata/internal/schema"
)

// ErrTypeMismatch is returned when a value's kind does not fit its column.
var ErrTypeMismatch = errors.New("type mismatch")

// bindColumns validates cols against the table and returns driver arguments
// in column order. The id column may only be bound when allowID is set.
func bindColumns(t schema.Table, cols ir.Columns, allowID bool) ([]any, error) {
	args := make([]any, 0, len(cols))
	seen := make(map[string]bool, len(cols))

	for _, p := range cols {
		if seen[p.Column] {
			return nil, fmt.Errorf("%s.%s assigned twice", t.Name, p.Column)
		}
		seen[p.Column] = true

		if p.Column == schema.IDColumn && !allowID {
			return nil, fmt.Errorf("%s.%s is assigned by the store", t.Name, p.Column)
		}

		col, ok := t.Column(p.Column)
		if !ok {
			return nil, fmt.Errorf("%w: %s.%s", schema.ErrUnknownColumn, t.Name, p.Column)
		}

		arg, err := bindValue(col, p.Value)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", t.Name, p.Column, err)
		}
		args = append(args, arg)
	}

	return args, nil
}

// bindValue converts a value to its driver representation for the column's declared type.
// Integers widen to reals; no other conversion is implicit.
func bindValue(col schema.Column, v ir.Value) (any, error) {
	if v == nil {
		return nil, nil
	}
	if _, isNull := v.(ir.Null); isNull {
		return nil, nil
	}

	switch col.Type {
	case ir.KindText:
		if s, ok := v.(ir.Text); ok {
			return ir.NormalizeText(string(s)), nil
		}
	case ir.KindInteger:
		if n, ok := v.(ir.Integer); ok {
			return int64(n), nil
		}
	case ir.KindReal:
		switch f := v.(type) {
		case ir.Real:
			return float64(f), nil
		case ir.Integer:
			return float64(f), nil
		}
	case ir.KindTimestamp:
		if ts, ok := v.(ir.Timestamp); ok {
			return ts.Time(), nil
		}
	}

	return nil, fmt.Errorf("%w: column is %s, value is %s", ErrTypeMismatch, col.Type, v.Kind())
}
