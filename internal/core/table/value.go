package table

import (
	"database/sql/driver"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Kind tags the type held by a Value
type Kind uint8

const (
	// KindMissing is an absent cell (NA)
	KindMissing Kind = iota
	// KindString is a text cell
	KindString
	// KindInt is an integer cell
	KindInt
	// KindFloat is a floating point cell
	KindFloat
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	default:
		return "missing"
	}
}

// Value is one untyped cell; the zero Value is missing
type Value struct {
	kind Kind
	s    string
	i    int64
	f    float64
}

// Missing returns the missing cell
func Missing() Value { return Value{} }

// String returns a text cell
func String(s string) Value { return Value{kind: KindString, s: s} }

// Int returns an integer cell
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float returns a float cell; NaN is missing
func Float(f float64) Value {
	if math.IsNaN(f) {
		return Value{}
	}
	return Value{kind: KindFloat, f: f}
}

// Kind reports the cell type
func (v Value) Kind() Kind { return v.kind }

// IsMissing reports whether the cell is absent
func (v Value) IsMissing() bool { return v.kind == KindMissing }

// Str returns the text and true for string cells
func (v Value) Str() (string, bool) { return v.s, v.kind == KindString }

// Int64 returns the integer and true for int cells
func (v Value) Int64() (int64, bool) { return v.i, v.kind == KindInt }

// Float64 returns the float and true for float cells
func (v Value) Float64() (float64, bool) { return v.f, v.kind == KindFloat }

// Format renders the cell the way it is written to a CSV file
// missing is empty, ints are base 10 and floats use the shortest round-trip form
func (v Value) Format() string {
	switch v.kind {
	case KindString:
		return v.s
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	default:
		return ""
	}
}

// GoString helps test failure output
func (v Value) GoString() string {
	if v.kind == KindMissing {
		return "<NA>"
	}
	return fmt.Sprintf("%s(%s)", v.kind, v.Format())
}

// naStrings is the set of cell texts that load as missing, matching the pandas defaults
var naStrings = map[string]struct{}{
	"": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {},
	"NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {}, "nan": {}, "null": {},
}

// IsNA reports whether s is one of the recognised missing-value markers
func IsNA(s string) bool {
	_, ok := naStrings[s]
	return ok
}

// ParseCell converts raw file text into a cell; NA markers become missing, the rest stays text
func ParseCell(s string) Value {
	if IsNA(s) {
		return Value{}
	}
	return String(s)
}

// FromAny converts a value decoded by a database driver into a cell
func FromAny(x any) Value {
	switch v := x.(type) {
	case nil:
		return Value{}
	case Value:
		return v
	case string:
		return String(v)
	case []byte:
		return String(string(v))
	case bool:
		if v {
			return String("True")
		}
		return String("False")
	case int:
		return Int(int64(v))
	case int8:
		return Int(int64(v))
	case int16:
		return Int(int64(v))
	case int32:
		return Int(int64(v))
	case int64:
		return Int(v)
	case uint8:
		return Int(int64(v))
	case uint16:
		return Int(int64(v))
	case uint32:
		return Int(int64(v))
	case uint64:
		if v > math.MaxInt64 {
			return String(strconv.FormatUint(v, 10))
		}
		return Int(int64(v))
	case float32:
		return Float(float64(v))
	case float64:
		return Float(v)
	case time.Time:
		return String(v.Format(time.RFC3339Nano))
	case [16]byte:
		// pgx decodes uuid columns to a bare array
		return String(uuid.UUID(v).String())
	case driver.Valuer:
		// pgtype wrappers such as Numeric render through their sql value
		dv, err := v.Value()
		if err != nil {
			return String(fmt.Sprint(v))
		}
		if _, again := dv.(driver.Valuer); again {
			return String(fmt.Sprint(dv))
		}
		return FromAny(dv)
	case fmt.Stringer:
		return String(v.String())
	default:
		return String(fmt.Sprint(v))
	}
}
