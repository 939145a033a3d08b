package libzedis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZMapOrdersByMember(t *testing.T) {
	a := ZMap(map[string]float64{"b": 2, "a": 1, "c": 3})
	b := ZMap(map[string]float64{"c": 3, "a": 1, "b": 2})
	pairsA, err := a.entries()
	require.NoError(t, err)
	pairsB, err := b.entries()
	require.NoError(t, err)
	assert.Equal(t, pairsA, pairsB)
	assert.Equal(t, []MemberScore{
		{Member: "a", Score: 1},
		{Member: "b", Score: 2},
		{Member: "c", Score: 3},
	}, pairsA)
}

func TestZPairsKeepCallerOrder(t *testing.T) {
	in := ZPairs(
		MemberScore{Member: "z", Score: 1},
		MemberScore{Member: "a", Score: 2},
	)
	pairs, err := in.entries()
	require.NoError(t, err)
	assert.Equal(t, "z", pairs[0].Member)
	assert.Equal(t, "a", pairs[1].Member)
}

func TestZAddOptionsResolve(t *testing.T) {
	o, err := (*ZAddOptions)(nil).resolve()
	require.NoError(t, err)
	assert.Empty(t, o.flags())

	o, err = (&ZAddOptions{Mode: "nx", CH: true}).resolve()
	require.NoError(t, err)
	assert.True(t, o.NX)

	// Mode agreeing with the matching boolean is fine.
	o, err = (&ZAddOptions{XX: true, Mode: "XX"}).resolve()
	require.NoError(t, err)
	assert.True(t, o.XX)

	// XX composes with GT/LT; only NX excludes them.
	o, err = (&ZAddOptions{XX: true, GT: true}).resolve()
	require.NoError(t, err)
	assert.True(t, o.GT)

	_, err = (&ZAddOptions{Mode: "upsert"}).resolve()
	assert.ErrorIs(t, err, ErrArgument)
}

func TestZAddFlagOrder(t *testing.T) {
	o := ZAddOptions{XX: true, GT: true, CH: true}
	var got []string
	for _, f := range o.flags() {
		got = append(got, string(f))
	}
	assert.Equal(t, []string{"XX", "GT", "CH"}, got)
}

func TestZStoreKeysArgs(t *testing.T) {
	args, err := Keys("a", "b").args()
	require.NoError(t, err)
	var got []string
	for _, a := range args {
		got = append(got, string(a))
	}
	assert.Equal(t, []string{"2", "a", "b"}, got)

	args, err = WeightedKeys(
		WeightedKey{Key: "a", Weight: 2},
		WeightedKey{Key: "b", Weight: 0.5},
	).args()
	require.NoError(t, err)
	got = got[:0]
	for _, a := range args {
		got = append(got, string(a))
	}
	assert.Equal(t, []string{"2", "a", "b", "WEIGHTS", "2", "0.5"}, got)

	_, err = Keys().args()
	assert.ErrorIs(t, err, ErrArgument)
}

func TestAggregateArgs(t *testing.T) {
	args, err := aggregateArgs("min")
	require.NoError(t, err)
	require.Len(t, args, 2)
	assert.Equal(t, "AGGREGATE", string(args[0]))
	assert.Equal(t, "MIN", string(args[1]))

	args, err = aggregateArgs("")
	require.NoError(t, err)
	assert.Nil(t, args)

	_, err = aggregateArgs("AVG")
	assert.ErrorIs(t, err, ErrArgument)
}
