package libzedis

import (
	"context"
	"errors"
	"time"

	"zedis-go/libzedis/common/resp"
)

// Sorted-set command façade. Each method issues exactly one request
// frame and decodes exactly one reply. Scores travel as text;
// extended-revision double replies are rendered back to the classic
// textual form. Results that are integer-or-null or text-or-null
// depending on flags and the negotiated revision use pointer returns
// and surface exactly what the decoder produced.

// ZAdd adds or updates members in the sorted set at key. The input is
// built with ZMap, ZPair or ZPairs; all three shapes encode
// identically for identical content. Returns the added count (added
// plus changed with CH), or nil where the active flag and revision
// combination yields a null reply.
func (c *Client) ZAdd(ctx context.Context, key string, in ZAddInput, opts *ZAddOptions) (*int64, error) {
	pairs, err := in.entries()
	if err != nil {
		return nil, err
	}
	o, err := opts.resolve()
	if err != nil {
		return nil, err
	}
	args := [][]byte{resp.Arg(key)}
	args = append(args, o.flags()...)
	for _, p := range pairs {
		args = append(args, resp.Arg(p.Score), resp.Arg(p.Member))
	}
	v, err := c.Do(ctx, "ZADD", args...)
	if err != nil {
		return nil, err
	}
	return optionalIntReply(v)
}

// ZAddIncr is the INCR form of ZAdd: it increments member by score and
// returns the resulting score as text, or nil when NX/XX suppressed
// the update.
func (c *Client) ZAddIncr(ctx context.Context, key string, score float64, member string, opts *ZAddOptions) (*string, error) {
	o, err := opts.resolve()
	if err != nil {
		return nil, err
	}
	args := [][]byte{resp.Arg(key)}
	args = append(args, o.flags()...)
	args = append(args, resp.Arg("INCR"), resp.Arg(score), resp.Arg(member))
	v, err := c.Do(ctx, "ZADD", args...)
	if err != nil {
		return nil, err
	}
	return optionalTextReply(v)
}

// BZPopMin pops the lowest-scored element from the first key holding
// one, blocking up to timeout. A zero timeout blocks indefinitely. nil
// means no element became available; the wire does not distinguish a
// server timeout from an empty result.
func (c *Client) BZPopMin(ctx context.Context, timeout time.Duration, keys ...string) (*ZPopEntry, error) {
	return c.bzpop(ctx, "BZPOPMIN", timeout, keys)
}

// BZPopMax is BZPopMin for the highest-scored element.
func (c *Client) BZPopMax(ctx context.Context, timeout time.Duration, keys ...string) (*ZPopEntry, error) {
	return c.bzpop(ctx, "BZPOPMAX", timeout, keys)
}

func (c *Client) bzpop(ctx context.Context, verb string, timeout time.Duration, keys []string) (*ZPopEntry, error) {
	if len(keys) == 0 {
		return nil, argErrorf("%s needs at least one key", verb)
	}
	if timeout < 0 {
		return nil, argErrorf("%s: negative timeout", verb)
	}
	args := make([][]byte, 0, len(keys)+1)
	for _, k := range keys {
		args = append(args, resp.Arg(k))
	}
	args = append(args, resp.Arg(timeout.Seconds()))
	v, err := c.DoBlocking(ctx, timeout, verb, args...)
	if errors.Is(err, ErrDeadline) {
		// The client-side deadline is advisory: expiry is the
		// documented null result, not a failure. The connection was
		// already discarded by the transport layer.
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return popEntryReply(v)
}

// ZRange returns members between the zero-based ranks start and stop
// inclusive; negative ranks count from the end. WithScores interleaves
// score text after each member.
func (c *Client) ZRange(ctx context.Context, key string, start, stop int64, opts *ZRangeOptions) ([]string, error) {
	return c.rankRange(ctx, "ZRANGE", key, start, stop, opts)
}

// ZRevRange is ZRange with rank 0 at the highest score.
func (c *Client) ZRevRange(ctx context.Context, key string, start, stop int64, opts *ZRangeOptions) ([]string, error) {
	return c.rankRange(ctx, "ZREVRANGE", key, start, stop, opts)
}

func (c *Client) rankRange(ctx context.Context, verb, key string, start, stop int64, opts *ZRangeOptions) ([]string, error) {
	args := [][]byte{resp.Arg(key), resp.Arg(start), resp.Arg(stop)}
	if opts != nil && opts.WithScores {
		args = append(args, resp.Arg("WITHSCORES"))
	}
	v, err := c.Do(ctx, verb, args...)
	if err != nil {
		return nil, err
	}
	return flatReply(v)
}

// ZRangeByScore returns members with min <= score <= max, ordered by
// score then member.
func (c *Client) ZRangeByScore(ctx context.Context, key string, min, max ScoreBound, opts *ZRangeByScoreOptions) ([]string, error) {
	return c.scoreRange(ctx, "ZRANGEBYSCORE", key, min, max, opts)
}

// ZRevRangeByScore is the full reversal of ZRangeByScore; max comes
// before min at the call boundary.
func (c *Client) ZRevRangeByScore(ctx context.Context, key string, max, min ScoreBound, opts *ZRangeByScoreOptions) ([]string, error) {
	return c.scoreRange(ctx, "ZREVRANGEBYSCORE", key, max, min, opts)
}

func (c *Client) scoreRange(ctx context.Context, verb, key string, first, second ScoreBound, opts *ZRangeByScoreOptions) ([]string, error) {
	args := [][]byte{resp.Arg(key), resp.Arg(first.wire()), resp.Arg(second.wire())}
	if opts != nil && opts.WithScores {
		args = append(args, resp.Arg("WITHSCORES"))
	}
	if opts != nil && opts.Limit != nil {
		args = append(args, resp.Arg("LIMIT"), resp.Arg(opts.Limit.Offset), resp.Arg(opts.Limit.Count))
	}
	v, err := c.Do(ctx, verb, args...)
	if err != nil {
		return nil, err
	}
	return flatReply(v)
}

// ZRangeByLex returns members between the lexicographic bounds min and
// max. Meaningful only when the compared members share one score.
func (c *Client) ZRangeByLex(ctx context.Context, key string, min, max LexBound) ([]string, error) {
	return c.lexRange(ctx, "ZRANGEBYLEX", key, min, max)
}

// ZRevRangeByLex is the reversed form; max comes before min.
func (c *Client) ZRevRangeByLex(ctx context.Context, key string, max, min LexBound) ([]string, error) {
	return c.lexRange(ctx, "ZREVRANGEBYLEX", key, max, min)
}

func (c *Client) lexRange(ctx context.Context, verb, key string, first, second LexBound) ([]string, error) {
	firstArg, err := first.wire()
	if err != nil {
		return nil, err
	}
	secondArg, err := second.wire()
	if err != nil {
		return nil, err
	}
	v, err := c.Do(ctx, verb, resp.Arg(key), resp.Arg(firstArg), resp.Arg(secondArg))
	if err != nil {
		return nil, err
	}
	return flatReply(v)
}

// ZRank returns the zero-based ascending rank of member, or nil when
// the member is absent.
func (c *Client) ZRank(ctx context.Context, key, member string) (*int64, error) {
	return c.rank(ctx, "ZRANK", key, member)
}

// ZRevRank is ZRank with rank 0 at the highest score.
func (c *Client) ZRevRank(ctx context.Context, key, member string) (*int64, error) {
	return c.rank(ctx, "ZREVRANK", key, member)
}

func (c *Client) rank(ctx context.Context, verb, key, member string) (*int64, error) {
	v, err := c.Do(ctx, verb, resp.Arg(key), resp.Arg(member))
	if err != nil {
		return nil, err
	}
	return optionalIntReply(v)
}

// ZRem removes members and returns the removed count.
func (c *Client) ZRem(ctx context.Context, key string, members ...string) (int64, error) {
	if len(members) == 0 {
		return 0, argErrorf("zrem needs at least one member")
	}
	args := [][]byte{resp.Arg(key)}
	for _, m := range members {
		args = append(args, resp.Arg(m))
	}
	v, err := c.Do(ctx, "ZREM", args...)
	if err != nil {
		return 0, err
	}
	return intReply(v)
}

// ZRemRangeByLex removes members within the lexicographic range and
// returns the removed count.
func (c *Client) ZRemRangeByLex(ctx context.Context, key string, min, max LexBound) (int64, error) {
	minArg, err := min.wire()
	if err != nil {
		return 0, err
	}
	maxArg, err := max.wire()
	if err != nil {
		return 0, err
	}
	v, err := c.Do(ctx, "ZREMRANGEBYLEX", resp.Arg(key), resp.Arg(minArg), resp.Arg(maxArg))
	if err != nil {
		return 0, err
	}
	return intReply(v)
}

// ZRemRangeByRank removes members within the rank range and returns
// the removed count.
func (c *Client) ZRemRangeByRank(ctx context.Context, key string, start, stop int64) (int64, error) {
	v, err := c.Do(ctx, "ZREMRANGEBYRANK", resp.Arg(key), resp.Arg(start), resp.Arg(stop))
	if err != nil {
		return 0, err
	}
	return intReply(v)
}

// ZRemRangeByScore removes members within the score range and returns
// the removed count.
func (c *Client) ZRemRangeByScore(ctx context.Context, key string, min, max ScoreBound) (int64, error) {
	v, err := c.Do(ctx, "ZREMRANGEBYSCORE", resp.Arg(key), resp.Arg(min.wire()), resp.Arg(max.wire()))
	if err != nil {
		return 0, err
	}
	return intReply(v)
}

// ZCount counts members with min <= score <= max without
// materializing them.
func (c *Client) ZCount(ctx context.Context, key string, min, max ScoreBound) (int64, error) {
	v, err := c.Do(ctx, "ZCOUNT", resp.Arg(key), resp.Arg(min.wire()), resp.Arg(max.wire()))
	if err != nil {
		return 0, err
	}
	return intReply(v)
}

// ZLexCount counts members within the lexicographic range.
func (c *Client) ZLexCount(ctx context.Context, key string, min, max LexBound) (int64, error) {
	minArg, err := min.wire()
	if err != nil {
		return 0, err
	}
	maxArg, err := max.wire()
	if err != nil {
		return 0, err
	}
	v, err := c.Do(ctx, "ZLEXCOUNT", resp.Arg(key), resp.Arg(minArg), resp.Arg(maxArg))
	if err != nil {
		return 0, err
	}
	return intReply(v)
}

// ZIncrBy increments member's score by delta, creating it at score
// delta when absent, and returns the new score as text.
func (c *Client) ZIncrBy(ctx context.Context, key string, delta float64, member string) (string, error) {
	v, err := c.Do(ctx, "ZINCRBY", resp.Arg(key), resp.Arg(delta), resp.Arg(member))
	if err != nil {
		return "", err
	}
	return textReply(v)
}

// ZScore returns member's score as text, or nil when the member or
// key is absent.
func (c *Client) ZScore(ctx context.Context, key, member string) (*string, error) {
	v, err := c.Do(ctx, "ZSCORE", resp.Arg(key), resp.Arg(member))
	if err != nil {
		return nil, err
	}
	return optionalTextReply(v)
}

// ZCard returns the cardinality of the sorted set at key.
func (c *Client) ZCard(ctx context.Context, key string) (int64, error) {
	v, err := c.Do(ctx, "ZCARD", resp.Arg(key))
	if err != nil {
		return 0, err
	}
	return intReply(v)
}

// ZPopMax pops up to count highest-scored members (one without count)
// as a flat rank-ordered sequence of alternating member, score.
func (c *Client) ZPopMax(ctx context.Context, key string, count ...int64) ([]string, error) {
	return c.zpop(ctx, "ZPOPMAX", key, count)
}

// ZPopMin is ZPopMax for the lowest-scored members.
func (c *Client) ZPopMin(ctx context.Context, key string, count ...int64) ([]string, error) {
	return c.zpop(ctx, "ZPOPMIN", key, count)
}

func (c *Client) zpop(ctx context.Context, verb, key string, count []int64) ([]string, error) {
	args := [][]byte{resp.Arg(key)}
	if len(count) > 1 {
		return nil, argErrorf("%s takes at most one count", verb)
	}
	if len(count) == 1 {
		args = append(args, resp.Arg(count[0]))
	}
	v, err := c.Do(ctx, verb, args...)
	if err != nil {
		return nil, err
	}
	return flatReply(v)
}

// ZInterStore intersects the source keys into dest, overwriting it,
// and returns the resulting cardinality.
func (c *Client) ZInterStore(ctx context.Context, dest string, keys ZStoreKeys, opts *ZStoreOptions) (int64, error) {
	return c.store(ctx, "ZINTERSTORE", dest, keys, opts)
}

// ZUnionStore unions the source keys into dest, overwriting it, and
// returns the resulting cardinality.
func (c *Client) ZUnionStore(ctx context.Context, dest string, keys ZStoreKeys, opts *ZStoreOptions) (int64, error) {
	return c.store(ctx, "ZUNIONSTORE", dest, keys, opts)
}

func (c *Client) store(ctx context.Context, verb, dest string, keys ZStoreKeys, opts *ZStoreOptions) (int64, error) {
	keyArgs, err := keys.args()
	if err != nil {
		return 0, err
	}
	args := append([][]byte{resp.Arg(dest)}, keyArgs...)
	if opts != nil {
		agg, err := aggregateArgs(opts.Aggregate)
		if err != nil {
			return 0, err
		}
		args = append(args, agg...)
	}
	v, err := c.Do(ctx, verb, args...)
	if err != nil {
		return 0, err
	}
	return intReply(v)
}

// ZInter returns the intersection of the source keys without writing
// any destination, optionally interleaved with scores.
func (c *Client) ZInter(ctx context.Context, keys ZStoreKeys, opts *ZSetOpOptions) ([]string, error) {
	return c.setOp(ctx, "ZINTER", keys, opts)
}

// ZUnion returns the union of the source keys without writing any
// destination.
func (c *Client) ZUnion(ctx context.Context, keys ZStoreKeys, opts *ZSetOpOptions) ([]string, error) {
	return c.setOp(ctx, "ZUNION", keys, opts)
}

func (c *Client) setOp(ctx context.Context, verb string, keys ZStoreKeys, opts *ZSetOpOptions) ([]string, error) {
	keyArgs, err := keys.args()
	if err != nil {
		return nil, err
	}
	args := keyArgs
	if opts != nil {
		agg, err := aggregateArgs(opts.Aggregate)
		if err != nil {
			return nil, err
		}
		args = append(args, agg...)
		if opts.WithScores {
			args = append(args, resp.Arg("WITHSCORES"))
		}
	}
	v, err := c.Do(ctx, verb, args...)
	if err != nil {
		return nil, err
	}
	return flatReply(v)
}

// ZScan advances one step of a cursor iteration over the set,
// returning the next cursor and a flat member/score sequence. A next
// cursor of "0" signals completion. Iteration is not atomic and may
// yield duplicates under concurrent mutation; callers loop until "0"
// for a complete pass.
func (c *Client) ZScan(ctx context.Context, key, cursor string, opts *ZScanOptions) (string, []string, error) {
	args := [][]byte{resp.Arg(key), resp.Arg(cursor)}
	if opts != nil && opts.Match != "" {
		args = append(args, resp.Arg("MATCH"), resp.Arg(opts.Match))
	}
	if opts != nil && opts.Count > 0 {
		args = append(args, resp.Arg("COUNT"), resp.Arg(opts.Count))
	}
	v, err := c.Do(ctx, "ZSCAN", args...)
	if err != nil {
		return "", nil, err
	}
	elems, err := v.ArrayValue()
	if err != nil || len(elems) != 2 {
		return "", nil, replyShapeError(v)
	}
	next, err := elems[0].Text()
	if err != nil {
		return "", nil, replyShapeError(v)
	}
	items, err := flatReply(elems[1])
	if err != nil {
		return "", nil, err
	}
	return next, items, nil
}
