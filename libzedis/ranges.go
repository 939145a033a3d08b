package libzedis

import (
	"math"
	"strings"

	"zedis-go/libzedis/common/resp"
)

// ScoreBound is one endpoint of a score range: a value, optionally
// exclusive, or one of the infinities. The zero value is an inclusive
// bound at score 0.
type ScoreBound struct {
	value float64
	excl  bool
	inf   int8
}

// Score returns an inclusive score bound.
func Score(v float64) ScoreBound {
	return ScoreBound{value: v}
}

// ScoreExcl returns an exclusive score bound.
func ScoreExcl(v float64) ScoreBound {
	return ScoreBound{value: v, excl: true}
}

// Unbounded score endpoints.
var (
	NegInf = ScoreBound{inf: -1}
	PosInf = ScoreBound{inf: 1}
)

// wire renders the bound the way range commands expect it.
func (b ScoreBound) wire() string {
	switch {
	case b.inf < 0:
		return "-inf"
	case b.inf > 0:
		return "+inf"
	case b.excl:
		return "(" + resp.FormatDouble(b.value)
	}
	return resp.FormatDouble(b.value)
}

// ParseScoreBound parses the textual forms used on the wire: a decimal
// score, "(score" for exclusive, or the infinities.
func ParseScoreBound(s string) (ScoreBound, error) {
	if s == "" {
		return ScoreBound{}, argErrorf("empty score bound")
	}
	switch s {
	case "-inf", "-Inf":
		return NegInf, nil
	case "+inf", "inf", "+Inf", "Inf":
		return PosInf, nil
	}
	excl := false
	if s[0] == '(' {
		excl = true
		s = s[1:]
	}
	v, ok := resp.ParseDouble(s)
	if !ok || math.IsNaN(v) {
		return ScoreBound{}, argErrorf("bad score bound %q", s)
	}
	if math.IsInf(v, 1) {
		return PosInf, nil
	}
	if math.IsInf(v, -1) {
		return NegInf, nil
	}
	return ScoreBound{value: v, excl: excl}, nil
}

// LexBound is one endpoint of a lexicographic range: an inclusive or
// exclusive member value, or the unbounded markers "-" and "+". The
// zero value is invalid and rejected before encoding.
type LexBound struct {
	raw string
}

// Lex returns an inclusive lex bound.
func Lex(v string) LexBound {
	return LexBound{raw: "[" + v}
}

// LexExcl returns an exclusive lex bound.
func LexExcl(v string) LexBound {
	return LexBound{raw: "(" + v}
}

// Unbounded lex endpoints.
var (
	LexMin = LexBound{raw: "-"}
	LexMax = LexBound{raw: "+"}
)

// ParseLexBound validates a wire-form lex bound: "-", "+", or a member
// value behind a leading "[" or "(" marker.
func ParseLexBound(s string) (LexBound, error) {
	switch {
	case s == "-" || s == "+":
		return LexBound{raw: s}, nil
	case strings.HasPrefix(s, "[") || strings.HasPrefix(s, "("):
		return LexBound{raw: s}, nil
	}
	return LexBound{}, argErrorf("bad lex bound %q: want -, +, [value or (value", s)
}

func (b LexBound) wire() (string, error) {
	if b.raw == "" {
		return "", argErrorf("empty lex bound")
	}
	return b.raw, nil
}
