package libzedis

import (
	"sort"
	"strings"

	"zedis-go/libzedis/common/resp"
)

// MemberScore is one member with its score. Order is insignificant as
// add input but is rank order in range-query output.
type MemberScore struct {
	Member string
	Score  float64
}

// ZAddInput is the polymorphic member input of ZAdd. All three shapes
// normalize to one canonical ordered (score, member) list, so they
// produce identical wire frames for identical logical content.
type ZAddInput struct {
	pairs []MemberScore
}

// ZMap builds add input from a member to score mapping. Entries are
// ordered by member so equal mappings encode identically.
func ZMap(m map[string]float64) ZAddInput {
	members := make([]string, 0, len(m))
	for member := range m {
		members = append(members, member)
	}
	sort.Strings(members)
	pairs := make([]MemberScore, len(members))
	for i, member := range members {
		pairs[i] = MemberScore{Member: member, Score: m[member]}
	}
	return ZAddInput{pairs: pairs}
}

// ZPair builds add input from a single (score, member) pair.
func ZPair(score float64, member string) ZAddInput {
	return ZAddInput{pairs: []MemberScore{{Member: member, Score: score}}}
}

// ZPairs builds add input from an explicit ordered pair list.
func ZPairs(pairs ...MemberScore) ZAddInput {
	return ZAddInput{pairs: pairs}
}

func (in ZAddInput) entries() ([]MemberScore, error) {
	if len(in.pairs) == 0 {
		return nil, argErrorf("zadd needs at least one member")
	}
	return in.pairs, nil
}

// ZAddOptions modifies ZAdd and ZAddIncr.
//
// NX inserts only members that do not exist yet; XX updates only
// members that do. GT and LT update a score only when the new score is
// greater respectively less than the current one. CH reports added plus
// changed members instead of added only. Mode is the legacy spelling
// "NX" or "XX"; it is honored alongside the booleans, neither form
// supersedes the other.
type ZAddOptions struct {
	NX   bool
	XX   bool
	GT   bool
	LT   bool
	CH   bool
	Mode string
}

// resolve folds Mode into the boolean flags and enforces the mutual
// exclusion rules locally, before any bytes are written.
func (o *ZAddOptions) resolve() (ZAddOptions, error) {
	if o == nil {
		return ZAddOptions{}, nil
	}
	out := *o
	switch strings.ToUpper(out.Mode) {
	case "":
	case "NX":
		out.NX = true
	case "XX":
		out.XX = true
	default:
		return ZAddOptions{}, argErrorf("bad zadd mode %q: want NX or XX", out.Mode)
	}
	if out.NX && out.XX {
		return ZAddOptions{}, argErrorf("zadd: NX and XX are mutually exclusive")
	}
	if out.GT && out.LT {
		return ZAddOptions{}, argErrorf("zadd: GT and LT are mutually exclusive")
	}
	if out.NX && (out.GT || out.LT) {
		return ZAddOptions{}, argErrorf("zadd: GT/LT are mutually exclusive with NX")
	}
	return out, nil
}

// flags renders the option keywords in command order.
func (o ZAddOptions) flags() [][]byte {
	var out [][]byte
	if o.NX {
		out = append(out, resp.Arg("NX"))
	}
	if o.XX {
		out = append(out, resp.Arg("XX"))
	}
	if o.GT {
		out = append(out, resp.Arg("GT"))
	}
	if o.LT {
		out = append(out, resp.Arg("LT"))
	}
	if o.CH {
		out = append(out, resp.Arg("CH"))
	}
	return out
}

// Limit paginates score range queries.
type Limit struct {
	Offset int64
	Count  int64
}

// ZRangeOptions modifies the rank range queries.
type ZRangeOptions struct {
	// WithScores interleaves each member's score as text immediately
	// after the member.
	WithScores bool
}

// ZRangeByScoreOptions modifies the score range queries.
type ZRangeByScoreOptions struct {
	WithScores bool
	Limit      *Limit
}

// WeightedKey is one source key with its multiplication weight.
type WeightedKey struct {
	Key    string
	Weight float64
}

// ZStoreKeys is the polymorphic key input of the inter/union commands:
// either a plain key list (implicit weight 1) or an explicit weighted
// list.
type ZStoreKeys struct {
	keys     []string
	weights  []float64
	weighted bool
}

// Keys builds a plain key list.
func Keys(keys ...string) ZStoreKeys {
	return ZStoreKeys{keys: keys}
}

// WeightedKeys builds a weighted key list; WEIGHTS is emitted on the
// wire.
func WeightedKeys(pairs ...WeightedKey) ZStoreKeys {
	ks := ZStoreKeys{weighted: true}
	for _, p := range pairs {
		ks.keys = append(ks.keys, p.Key)
		ks.weights = append(ks.weights, p.Weight)
	}
	return ks
}

// args renders numkeys, the keys, and the optional WEIGHTS clause.
func (ks ZStoreKeys) args() ([][]byte, error) {
	if len(ks.keys) == 0 {
		return nil, argErrorf("at least one source key required")
	}
	out := [][]byte{resp.Arg(len(ks.keys))}
	for _, k := range ks.keys {
		out = append(out, resp.Arg(k))
	}
	if ks.weighted {
		out = append(out, resp.Arg("WEIGHTS"))
		for _, w := range ks.weights {
			out = append(out, resp.Arg(w))
		}
	}
	return out, nil
}

// ZStoreOptions modifies ZInterStore and ZUnionStore.
type ZStoreOptions struct {
	// Aggregate selects the score combiner: SUM, MIN or MAX. Empty
	// leaves the server default (SUM).
	Aggregate string
}

// ZSetOpOptions modifies the non-storing ZInter and ZUnion.
type ZSetOpOptions struct {
	Aggregate  string
	WithScores bool
}

func aggregateArgs(aggregate string) ([][]byte, error) {
	if aggregate == "" {
		return nil, nil
	}
	agg := strings.ToUpper(aggregate)
	switch agg {
	case "SUM", "MIN", "MAX":
		return [][]byte{resp.Arg("AGGREGATE"), resp.Arg(agg)}, nil
	}
	return nil, argErrorf("bad aggregate %q: want SUM, MIN or MAX", aggregate)
}

// ZScanOptions modifies ZScan.
type ZScanOptions struct {
	// Match filters members by glob pattern server side.
	Match string
	// Count hints the amount of work per scan step.
	Count int64
}

// ZPopEntry is the (key, member, score) result of a blocking pop.
type ZPopEntry struct {
	Key    string
	Member string
	Score  string
}
