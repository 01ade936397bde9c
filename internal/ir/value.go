package ir

import (
	"fmt"
	"strconv"
	"time"
)

// Kind is the storage class of a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindText
	KindInteger
	KindReal
	KindTimestamp
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindText:
		return "text"
	case KindInteger:
		return "integer"
	case KindReal:
		return "real"
	case KindTimestamp:
		return "timestamp"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Value is a sealed interface representing a single column value.
// Only Null, Text, Integer, Real and Timestamp implement it.
type Value interface {
	Kind() Kind
	value() // Sealed
}

// Null represents SQL NULL.
type Null struct{}

func (Null) Kind() Kind { return KindNull }
func (Null) value() {}
func (Null) String() string {
	return "NULL"
}

// Text is a string column value.
type Text string

func (Text) Kind() Kind { return KindText }
func (Text) value() {}

// Integer is a 64-bit integer column value. Booleans are Integer 0/1.
type Integer int64

func (Integer) Kind() Kind { return KindInteger }
func (Integer) value() {}

// Real is a floating point column value.
type Real float64

func (Real) Kind() Kind { return KindReal }
func (Real) value() {}

// Timestamp is a point in time column value.
type Timestamp time.Time

func (Timestamp) Kind() Kind { return KindTimestamp }
func (Timestamp) value() {}

// Time returns the underlying time.Time.
func (t Timestamp) Time() time.Time { return time.Time(t) }

// NewText creates a Text value with NFC normalization applied.
func NewText(s string) Text {
	return Text(NormalizeText(s))
}

// NewInteger creates an Integer value.
func NewInteger[T ~int | ~int32 | ~int64](n T) Integer {
	return Integer(int64(n))
}

// NewReal creates a Real value.
func NewReal(f float64) Real {
	return Real(f)
}

// NewBool encodes a boolean as Integer 1 or 0.
func NewBool(b bool) Integer {
	if b {
		return 1
	}
	return 0
}

// NewTimestamp creates a Timestamp value.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp(t)
}

// Pair is one column assignment: a column name and the value bound to it.
type Pair struct {
	Column string
	Value  Value
}

// P is a shorthand for Pair.
// Example: Columns{P("level_hash", NewText(h)), P("note_count", NewInteger(n))}
func P(column string, v Value) Pair {
	return Pair{Column: column, Value: v}
}

// Columns is an ordered sequence of column assignments.
type Columns []Pair

// Names returns the column names in order.
func (c Columns) Names() []string {
	names := make([]string, len(c))
	for i, p := range c {
		names[i] = p.Column
	}
	return names
}

// Get returns the value assigned to column, if any.
func (c Columns) Get(column string) (Value, bool) {
	for _, p := range c {
		if p.Column == column {
			return p.Value, true
		}
	}
	return nil, false
}

// FormatValue renders a value for logs and snapshots.
func FormatValue(v Value) string {
	switch val := v.(type) {
	case nil, Null:
		return "NULL"
	case Text:
		return strconv.Quote(string(val))
	case Integer:
		return strconv.FormatInt(int64(val), 10)
	case Real:
		return strconv.FormatFloat(float64(val), 'g', -1, 64)
	case Timestamp:
		return val.Time().UTC().Format(time.RFC3339Nano)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// AsInt64 extracts an integer from an Integer value.
func AsInt64(v Value) (int64, bool) {
	n, ok := v.(Integer)
	return int64(n), ok
}

// AsString extracts a string from a Text value.
func AsString(v Value) (string, bool) {
	s, ok := v.(Text)
	return string(s), ok
}

// FromDriver converts a value scanned by database/sql into a Value.
// The declared column kind resolves ambiguous driver representations
// (e.g. []byte text, integer-typed reals, string timestamps).
func FromDriver(src any, declared Kind) (Value, error) {
	if src == nil {
		return Null{}, nil
	}

	switch declared {
	case KindText:
		switch s := src.(type) {
		case string:
			return Text(s), nil
		case []byte:
			return Text(string(s)), nil
		}
	case KindInteger:
		switch n := src.(type) {
		case int64:
			return Integer(n), nil
		case bool:
			return NewBool(n), nil
		}
	case KindReal:
		switch f := src.(type) {
		case float64:
			return Real(f), nil
		case int64:
			return Real(float64(f)), nil
		}
	case KindTimestamp:
		switch t := src.(type) {
		case time.Time:
			return Timestamp(t), nil
		case string:
			return parseTimestamp(t)
		case []byte:
			return parseTimestamp(string(t))
		}
	}

	return nil, fmt.Errorf("cannot convert %T to %s", src, declared)
}

// timestampLayouts are the layouts accepted when a timestamp comes back as text.
var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

func parseTimestamp(s string) (Value, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp(t), nil
		}
	}
	return nil, fmt.Errorf("unparseable timestamp %q", s)
}
