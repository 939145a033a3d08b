package libzedis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreBoundWire(t *testing.T) {
	tests := []struct {
		bound ScoreBound
		want  string
	}{
		{Score(5), "5"},
		{Score(-2.5), "-2.5"},
		{ScoreExcl(1), "(1"},
		{ScoreExcl(-0.5), "(-0.5"},
		{NegInf, "-inf"},
		{PosInf, "+inf"},
		{ScoreBound{}, "0"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.bound.wire())
	}
}

func TestParseScoreBound(t *testing.T) {
	for _, s := range []string{"5", "-2.5", "(1", "(-0.5", "-inf", "+inf", "inf"} {
		b, err := ParseScoreBound(s)
		require.NoError(t, err, s)
		want := s
		if s == "inf" {
			want = "+inf"
		}
		assert.Equal(t, want, b.wire(), s)
	}

	for _, s := range []string{"", "abc", "(", "(abc", "nan", "(nan"} {
		_, err := ParseScoreBound(s)
		assert.ErrorIs(t, err, ErrArgument, "%q must be rejected", s)
	}
}

func TestLexBoundWire(t *testing.T) {
	tests := []struct {
		bound LexBound
		want  string
	}{
		{Lex("member"), "[member"},
		{LexExcl("member"), "(member"},
		{Lex(""), "["},
		{LexMin, "-"},
		{LexMax, "+"},
	}
	for _, tt := range tests {
		got, err := tt.bound.wire()
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	var zero LexBound
	_, err := zero.wire()
	assert.ErrorIs(t, err, ErrArgument)
}

func TestParseLexBound(t *testing.T) {
	for _, s := range []string{"-", "+", "[a", "(a", "["} {
		b, err := ParseLexBound(s)
		require.NoError(t, err, s)
		got, err := b.wire()
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	for _, s := range []string{"", "a", "*a"} {
		_, err := ParseLexBound(s)
		assert.ErrorIs(t, err, ErrArgument, "%q must be rejected", s)
	}
}
