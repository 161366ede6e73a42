package budget

import (
	"encoding/json"
	"fmt"

	"github.com/yourorg/kyotransit/internal/debug"
)

// Budgeter guarantees a serialized payload never exceeds a caller's
// token budget, dropping trailing array elements and object fields (in
// original order) until it fits. The one documented exception: a single
// irreducible element that alone exceeds the budget is returned as the
// minimal possible payload rather than erroring.
type Budgeter struct {
	counter TokenCounter
	sink    debug.Sink
}

// New builds a budgeter over the given counter; sink may be nil.
func New(counter TokenCounter, sink debug.Sink) *Budgeter {
	return &Budgeter{counter: counter, sink: sink}
}

// CountTokens measures arbitrary text with the budgeter's counter, so
// callers wrapping a limited document can price their envelope.
func (b *Budgeter) CountTokens(text string) (int, error) {
	return b.counter.Count(text)
}

// Limit serializes payload and, if it exceeds maxTokens, rebuilds it to
// fit. truncated is true exactly when the returned document differs
// from the untruncated serialization; re-budgeting an already-fitting
// payload is a no-op with truncated=false.
func (b *Budgeter) Limit(payload any, maxTokens int) (json.RawMessage, bool, error) {
	if maxTokens <= 0 {
		return nil, false, fmt.Errorf("budget: max tokens must be positive, got %d", maxTokens)
	}

	original, err := json.Marshal(payload)
	if err != nil {
		return nil, false, fmt.Errorf("budget: marshal payload: %w", err)
	}
	total, err := b.counter.Count(string(original))
	if err != nil {
		return nil, false, err
	}
	if total <= maxTokens {
		return original, false, nil
	}

	root, err := parseDocument(original)
	if err != nil {
		return nil, false, err
	}
	trimmed, err := b.limitValue(root, maxTokens)
	if err != nil {
		return nil, false, err
	}

	out := serialize(trimmed)
	truncated := out != string(original)
	if b.sink != nil {
		final, _ := b.counter.Count(out)
		b.sink.Event("debug", "payload truncated to budget", map[string]interface{}{
			"original_tokens": total,
			"final_tokens":    final,
			"max_tokens":      maxTokens,
		})
	}
	return json.RawMessage(out), truncated, nil
}

func (b *Budgeter) limitValue(v value, budget int) (value, error) {
	switch v.kind {
	case kindArray:
		k, err := b.largestFittingPrefix(v, budget, func(k int) value { return prefix(v, k) })
		if err != nil {
			return value{}, err
		}
		return prefix(v, k), nil
	case kindObject:
		return b.limitObject(v, budget)
	default:
		// Irreducible. Returned as-is even over budget; documented edge
		// case, the caller's flag still reports the overflow path.
		return v, nil
	}
}

// limitObject admits fields in original order. The running baseline
// counts every array field as empty first; arrays are then filled
// greedily, earlier fields first, with whatever budget the admitted
// shape leaves over. Admission stops at the first field that does not
// fit — later fields are never admitted out of order.
func (b *Budgeter) limitObject(v value, budget int) (value, error) {
	type arraySlot struct {
		fieldIdx int
		original value
	}

	out := value{kind: kindObject}
	var slots []arraySlot

	for _, f := range v.fields {
		candidate := field{name: f.name, val: f.val}
		if f.val.kind == kindArray {
			candidate.val = value{kind: kindArray}
		}
		trial := value{kind: kindObject, fields: append(append([]field{}, out.fields...), candidate)}
		n, err := b.counter.Count(serialize(trial))
		if err != nil {
			return value{}, err
		}
		if n > budget {
			break
		}
		if f.val.kind == kindArray {
			slots = append(slots, arraySlot{fieldIdx: len(out.fields), original: f.val})
		}
		out.fields = append(out.fields, candidate)
	}

	for _, slot := range slots {
		slot := slot
		k, err := b.largestFittingPrefix(slot.original, budget, func(k int) value {
			out.fields[slot.fieldIdx].val = prefix(slot.original, k)
			return out
		})
		if err != nil {
			return value{}, err
		}
		out.fields[slot.fieldIdx].val = prefix(slot.original, k)
	}
	return out, nil
}

// largestFittingPrefix binary-searches the longest array prefix whose
// shape (as produced by shapeFor) serializes within budget. Token count
// is monotone in the prefix length, which is what makes the binary
// search valid. k=0 means even one element cannot fit: the array stays
// present but empty rather than the field being omitted.
func (b *Budgeter) largestFittingPrefix(arr value, budget int, shapeFor func(k int) value) (int, error) {
	fits := func(k int) (bool, error) {
		n, err := b.counter.Count(serialize(shapeFor(k)))
		if err != nil {
			return false, err
		}
		return n <= budget, nil
	}

	best := 0
	lo, hi := 0, len(arr.items)
	for lo <= hi {
		mid := (lo + hi) / 2
		ok, err := fits(mid)
		if err != nil {
			return 0, err
		}
		if ok {
			best = mid
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	return best, nil
}
