package libzedis

import (
	"fmt"

	"zedis-go/libzedis/common/resp"
)

// Reply mapping helpers. The decoder hands back whichever shape the
// negotiated revision produced; these fold the revision differences
// into the documented result types without erasing null.

func replyShapeError(v resp.Value) error {
	return fmt.Errorf("%w: unexpected reply shape %q", resp.ErrProtocol, byte(v.Type))
}

func intReply(v resp.Value) (int64, error) {
	n, err := v.IntValue()
	if err != nil {
		return 0, replyShapeError(v)
	}
	return n, nil
}

// optionalIntReply admits the null replies some flag and revision
// combinations produce where classic behavior yields an integer.
func optionalIntReply(v resp.Value) (*int64, error) {
	if v.IsNil() {
		return nil, nil
	}
	n, err := v.IntValue()
	if err != nil {
		return nil, replyShapeError(v)
	}
	return &n, nil
}

func textReply(v resp.Value) (string, error) {
	s, err := v.Text()
	if err != nil {
		return "", replyShapeError(v)
	}
	return s, nil
}

func optionalTextReply(v resp.Value) (*string, error) {
	if v.IsNil() {
		return nil, nil
	}
	s, err := v.Text()
	if err != nil {
		return nil, replyShapeError(v)
	}
	return &s, nil
}

// flatReply renders an aggregate reply as a flat text sequence. The
// extended revision sends WITHSCORES results as nested (member, score)
// pairs where the classic one interleaves them; both land in the same
// flat member, score, member, score order here.
func flatReply(v resp.Value) ([]string, error) {
	if v.IsNil() {
		return nil, nil
	}
	elems, err := v.ArrayValue()
	if err != nil {
		return nil, replyShapeError(v)
	}
	out := make([]string, 0, len(elems))
	for _, e := range elems {
		if inner, err := e.ArrayValue(); err == nil {
			for _, ie := range inner {
				s, err := ie.Text()
				if err != nil {
					return nil, replyShapeError(ie)
				}
				out = append(out, s)
			}
			continue
		}
		s, err := e.Text()
		if err != nil {
			return nil, replyShapeError(e)
		}
		out = append(out, s)
	}
	return out, nil
}

// popEntryReply maps the 3-element blocking pop reply, treating any
// null the same whether it stood for a timeout or an empty set.
func popEntryReply(v resp.Value) (*ZPopEntry, error) {
	if v.IsNil() {
		return nil, nil
	}
	elems, err := v.ArrayValue()
	if err != nil || len(elems) != 3 {
		return nil, replyShapeError(v)
	}
	key, err := elems[0].Text()
	if err != nil {
		return nil, replyShapeError(v)
	}
	member, err := elems[1].Text()
	if err != nil {
		return nil, replyShapeError(v)
	}
	score, err := elems[2].Text()
	if err != nil {
		return nil, replyShapeError(v)
	}
	return &ZPopEntry{Key: key, Member: member, Score: score}, nil
}
