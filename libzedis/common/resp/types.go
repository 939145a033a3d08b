// Package resp implements the Redis Serialization Protocol (RESP)
// reply model and framing used by the zedis-go client.
//
// Both protocol revisions are covered by one Value union: the classic
// RESP2 shapes and the richer RESP3 shapes. The decoder dispatches on
// the leading type byte alone, so a connection never needs to know in
// advance which revision the server negotiated.
package resp

import (
	"errors"
	"math"
	"strconv"
)

// Reply type bytes.
const (
	// RESP2 types
	TypeSimpleString = '+'
	TypeError        = '-'
	TypeInteger      = ':'
	TypeBulkString   = '$'
	TypeArray        = '*'

	// RESP3 types
	TypeNull           = '_'
	TypeDouble         = ','
	TypeBoolean        = '#'
	TypeBlobError      = '!'
	TypeVerbatimString = '='
	TypeMap            = '%'
	TypeSet            = '~'
	TypeAttribute      = '|'
	TypePush           = '>'
	TypeBigNumber      = '('
)

// Common errors
var (
	ErrProtocol          = errors.New("resp: protocol error")
	ErrIncompleteMessage = errors.New("resp: incomplete message")
	ErrUnexpectedType    = errors.New("resp: unexpected type")
	ErrNil               = errors.New("resp: nil value")
)

// DataType identifies the reply shape of a Value.
type DataType byte

// MapItem is one key-value pair of a RESP3 Map or Attribute reply.
type MapItem struct {
	Key   Value
	Value Value
}

// Value is the decoded form of one protocol reply. Exactly one field
// group is meaningful per Type. IsNull marks the null bulk string, null
// array and RESP3 null; a null Value is never the same as an empty one.
type Value struct {
	Type   DataType
	Str    string    // SimpleString, Error, VerbatimString
	Int    int64     // Integer
	Bulk   []byte    // BulkString, BlobError
	Elems  []Value   // Array, Set, Push
	Pairs  []MapItem // Map, Attribute
	Double float64   // Double
	Bool   bool      // Boolean
	BigNum string    // BigNumber
	Format string    // VerbatimString format tag ("txt", "mkd", ...)
	IsNull bool
}

// NewSimpleString creates a simple string value.
func NewSimpleString(s string) Value {
	return Value{Type: TypeSimpleString, Str: s}
}

// NewError creates an error reply value.
func NewError(s string) Value {
	return Value{Type: TypeError, Str: s}
}

// NewInteger creates an integer value.
func NewInteger(i int64) Value {
	return Value{Type: TypeInteger, Int: i}
}

// NewBulkString creates a bulk string value. A nil slice produces the
// null bulk string.
func NewBulkString(b []byte) Value {
	if b == nil {
		return Value{Type: TypeBulkString, IsNull: true}
	}
	return Value{Type: TypeBulkString, Bulk: b}
}

// NewBulkStringString creates a bulk string value from a string.
func NewBulkStringString(s string) Value {
	return NewBulkString([]byte(s))
}

// NewArray creates an array value. A nil slice produces the null array.
func NewArray(values []Value) Value {
	if values == nil {
		return Value{Type: TypeArray, IsNull: true}
	}
	return Value{Type: TypeArray, Elems: values}
}

// NewNull creates a RESP3 null value.
func NewNull() Value {
	return Value{Type: TypeNull, IsNull: true}
}

// NewDouble creates a RESP3 double value.
func NewDouble(d float64) Value {
	return Value{Type: TypeDouble, Double: d}
}

// NewBoolean creates a RESP3 boolean value.
func NewBoolean(b bool) Value {
	return Value{Type: TypeBoolean, Bool: b}
}

// NewBlobError creates a RESP3 blob error value.
func NewBlobError(b []byte) Value {
	return Value{Type: TypeBlobError, Bulk: b}
}

// NewVerbatimString creates a RESP3 verbatim string value.
func NewVerbatimString(format, s string) Value {
	return Value{Type: TypeVerbatimString, Str: s, Format: format}
}

// NewMap creates a RESP3 map value.
func NewMap(items []MapItem) Value {
	if items == nil {
		return Value{Type: TypeMap, IsNull: true}
	}
	return Value{Type: TypeMap, Pairs: items}
}

// NewSet creates a RESP3 set value.
func NewSet(values []Value) Value {
	if values == nil {
		return Value{Type: TypeSet, IsNull: true}
	}
	return Value{Type: TypeSet, Elems: values}
}

// NewAttribute creates a RESP3 attribute value.
func NewAttribute(items []MapItem) Value {
	if items == nil {
		return Value{Type: TypeAttribute, IsNull: true}
	}
	return Value{Type: TypeAttribute, Pairs: items}
}

// NewPush creates a RESP3 push value.
func NewPush(values []Value) Value {
	if values == nil {
		return Value{Type: TypePush, IsNull: true}
	}
	return Value{Type: TypePush, Elems: values}
}

// NewBigNumber creates a RESP3 big number value.
func NewBigNumber(s string) Value {
	return Value{Type: TypeBigNumber, BigNum: s}
}

// IsNil reports whether the value is a null of any encoding: the RESP3
// null, the null bulk string or the null array.
func (v Value) IsNil() bool {
	return v.IsNull
}

// IsError reports whether the value is a server error reply (simple or
// blob form).
func (v Value) IsError() bool {
	return v.Type == TypeError || v.Type == TypeBlobError
}

// Text returns the value rendered as text. Integers, doubles, booleans
// and big numbers render the way the classic protocol would have sent
// them, so callers see one textual form regardless of the negotiated
// revision. Returns ErrNil for nulls and ErrUnexpectedType for
// aggregates.
func (v Value) Text() (string, error) {
	if v.IsNull {
		return "", ErrNil
	}
	switch v.Type {
	case TypeSimpleString, TypeError, TypeVerbatimString:
		return v.Str, nil
	case TypeBulkString, TypeBlobError:
		return string(v.Bulk), nil
	case TypeInteger:
		return strconv.FormatInt(v.Int, 10), nil
	case TypeDouble:
		return FormatDouble(v.Double), nil
	case TypeBigNumber:
		return v.BigNum, nil
	case TypeBoolean:
		if v.Bool {
			return "1", nil
		}
		return "0", nil
	default:
		return "", ErrUnexpectedType
	}
}

// IntValue returns the integer value.
func (v Value) IntValue() (int64, error) {
	if v.Type == TypeInteger {
		return v.Int, nil
	}
	return 0, ErrUnexpectedType
}

// DoubleValue returns the double value.
func (v Value) DoubleValue() (float64, error) {
	if v.Type == TypeDouble {
		return v.Double, nil
	}
	return 0, ErrUnexpectedType
}

// BoolValue returns the boolean value.
func (v Value) BoolValue() (bool, error) {
	if v.Type == TypeBoolean {
		return v.Bool, nil
	}
	return false, ErrUnexpectedType
}

// BulkValue returns the bulk string payload.
func (v Value) BulkValue() ([]byte, error) {
	if v.Type == TypeBulkString {
		if v.IsNull {
			return nil, ErrNil
		}
		return v.Bulk, nil
	}
	return nil, ErrUnexpectedType
}

// ArrayValue returns the elements of an Array, Set or Push reply. The
// three shapes are interchangeable for callers walking reply elements.
func (v Value) ArrayValue() ([]Value, error) {
	switch v.Type {
	case TypeArray, TypeSet, TypePush:
		if v.IsNull {
			return nil, ErrNil
		}
		return v.Elems, nil
	}
	return nil, ErrUnexpectedType
}

// MapValue returns the pairs of a Map or Attribute reply.
func (v Value) MapValue() ([]MapItem, error) {
	if v.Type == TypeMap || v.Type == TypeAttribute {
		if v.IsNull {
			return nil, ErrNil
		}
		return v.Pairs, nil
	}
	return nil, ErrUnexpectedType
}

// VerbatimStringValue returns the format tag and content of a verbatim
// string reply.
func (v Value) VerbatimStringValue() (format, content string, err error) {
	if v.Type == TypeVerbatimString {
		return v.Format, v.Str, nil
	}
	return "", "", ErrUnexpectedType
}

// BigNumberValue returns the big number text.
func (v Value) BigNumberValue() (string, error) {
	if v.Type == TypeBigNumber {
		return v.BigNum, nil
	}
	return "", ErrUnexpectedType
}

// FormatDouble renders a float the way the protocol does, using the
// symbolic forms for infinities and NaN.
func FormatDouble(d float64) string {
	switch {
	case math.IsInf(d, 1):
		return "inf"
	case math.IsInf(d, -1):
		return "-inf"
	case math.IsNaN(d):
		return "nan"
	}
	return strconv.FormatFloat(d, 'f', -1, 64)
}

// ParseDouble is the inverse of FormatDouble, accepting the symbolic
// spellings servers emit for special values.
func ParseDouble(s string) (float64, bool) {
	switch s {
	case "inf", "+inf", "Inf", "+Inf":
		return math.Inf(1), true
	case "-inf", "-Inf":
		return math.Inf(-1), true
	case "nan", "-nan", "NaN", "-NaN", "NAN", "-NAN":
		return math.NaN(), true
	}
	d, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return d, true
}
