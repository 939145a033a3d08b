package resp

import (
	"fmt"
	"strconv"
)

// Command frames are arrays of binary-safe bulk strings, the only
// request shape either protocol revision accepts. Every argument is
// length prefixed so payloads may contain arbitrary bytes; no argument
// count or size limit is enforced client side.

// EncodeCommand appends the request frame for verb and args to dst and
// returns the extended slice.
func EncodeCommand(dst []byte, verb string, args ...[]byte) []byte {
	dst = append(dst, TypeArray)
	dst = strconv.AppendInt(dst, int64(1+len(args)), 10)
	dst = append(dst, '\r', '\n')
	dst = appendBulk(dst, []byte(verb))
	for _, arg := range args {
		dst = appendBulk(dst, arg)
	}
	return dst
}

func appendBulk(dst, payload []byte) []byte {
	dst = append(dst, TypeBulkString)
	dst = strconv.AppendInt(dst, int64(len(payload)), 10)
	dst = append(dst, '\r', '\n')
	dst = append(dst, payload...)
	return append(dst, '\r', '\n')
}

// Arg renders a request argument of any supported Go type into its
// binary-safe wire form. Numeric arguments become decimal text; special
// doubles render with the symbolic inf/nan spellings.
func Arg(v interface{}) []byte {
	switch a := v.(type) {
	case []byte:
		return a
	case string:
		return []byte(a)
	case int:
		return strconv.AppendInt(nil, int64(a), 10)
	case int64:
		return strconv.AppendInt(nil, a, 10)
	case float64:
		return []byte(FormatDouble(a))
	case bool:
		if a {
			return []byte("1")
		}
		return []byte("0")
	default:
		return []byte(fmt.Sprintf("%v", a))
	}
}

// Args renders a verb-less argument list. Convenience for callers
// assembling frames piecewise.
func Args(vs ...interface{}) [][]byte {
	out := make([][]byte, len(vs))
	for i, v := range vs {
		out[i] = Arg(v)
	}
	return out
}
