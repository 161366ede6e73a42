package budget

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runeCounter prices one rune as one token. The truncation algorithm
// only relies on the counter being monotone under concatenation, so the
// cheap counter pins behavior without loading BPE tables.
type runeCounter struct{}

func (runeCounter) Count(s string) (int, error) { return len([]rune(s)), nil }

func count(t *testing.T, raw json.RawMessage) int {
	t.Helper()
	n, err := runeCounter{}.Count(string(raw))
	require.NoError(t, err)
	return n
}

type candidatesDoc struct {
	Candidates []string `json:"candidates"`
}

func fiveCandidates() candidatesDoc {
	return candidatesDoc{Candidates: []string{
		"aaaaaaaaaa", "bbbbbbbbbb", "cccccccccc", "dddddddddd", "eeeeeeeeee",
	}}
}

func TestLimitFittingPayloadIsUntouched(t *testing.T) {
	b := New(runeCounter{}, nil)

	doc := fiveCandidates()
	original, err := json.Marshal(doc)
	require.NoError(t, err)

	out, truncated, err := b.Limit(doc, 1000)
	require.NoError(t, err)
	assert.False(t, truncated)
	assert.Equal(t, string(original), string(out))
}

func TestLimitDropsTrailingCandidates(t *testing.T) {
	b := New(runeCounter{}, nil)

	out, truncated, err := b.Limit(fiveCandidates(), 50)
	require.NoError(t, err)
	assert.True(t, truncated)
	assert.LessOrEqual(t, count(t, out), 50)

	var doc candidatesDoc
	require.NoError(t, json.Unmarshal(out, &doc))
	assert.Less(t, len(doc.Candidates), 5)
	assert.NotEmpty(t, doc.Candidates)
	assert.Equal(t, "aaaaaaaaaa", doc.Candidates[0], "elements must be dropped from the tail only")
}

func TestLimitIdempotent(t *testing.T) {
	b := New(runeCounter{}, nil)

	once, _, err := b.Limit(fiveCandidates(), 50)
	require.NoError(t, err)

	twice, truncated, err := b.Limit(once, 50)
	require.NoError(t, err)
	assert.False(t, truncated, "re-budgeting a fitting payload is a no-op")
	assert.Equal(t, string(once), string(twice))
}

func TestLimitMonotone(t *testing.T) {
	b := New(runeCounter{}, nil)

	small, _, err := b.Limit(fiveCandidates(), 30)
	require.NoError(t, err)
	large, _, err := b.Limit(fiveCandidates(), 50)
	require.NoError(t, err)

	assert.LessOrEqual(t, count(t, small), count(t, large))
}

func TestLimitKeepsEmptyArrayOverOmittingField(t *testing.T) {
	b := New(runeCounter{}, nil)

	// {"candidates":[]} is 17 runes; no element fits in the remainder.
	out, truncated, err := b.Limit(fiveCandidates(), 20)
	require.NoError(t, err)
	assert.True(t, truncated)
	assert.Equal(t, `{"candidates":[]}`, string(out))
}

func TestLimitObjectAdmissionStopsAtFirstOverflow(t *testing.T) {
	b := New(runeCounter{}, nil)

	doc := struct {
		A int    `json:"a"`
		B string `json:"b"`
		C int    `json:"c"`
	}{A: 1, B: "xxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxx", C: 2}

	// "b" overflows; "c" would fit but later fields are never admitted
	// out of order.
	out, truncated, err := b.Limit(doc, 20)
	require.NoError(t, err)
	assert.True(t, truncated)
	assert.Equal(t, `{"a":1}`, string(out))
}

func TestLimitArrayOfObjectsKeepsWholeElements(t *testing.T) {
	b := New(runeCounter{}, nil)

	type item struct {
		Name string `json:"name"`
	}
	items := []item{{"alpha"}, {"beta"}, {"gamma"}, {"delta"}}
	// [{"name":"alpha"},...] — 16+17+17+17+5 runes in total.
	out, truncated, err := b.Limit(items, 40)
	require.NoError(t, err)
	assert.True(t, truncated)

	var got []item
	require.NoError(t, json.Unmarshal(out, &got))
	assert.Equal(t, []item{{"alpha"}, {"beta"}}, got)
	assert.LessOrEqual(t, count(t, out), 40)
}

func TestLimitIrreducibleScalarReturnedWhole(t *testing.T) {
	b := New(runeCounter{}, nil)

	out, truncated, err := b.Limit("irreducible scalar payload", 5)
	require.NoError(t, err)
	// Nothing can be dropped from a scalar; it comes back byte-identical,
	// and identical output means the flag stays false.
	assert.False(t, truncated)
	assert.Equal(t, `"irreducible scalar payload"`, string(out))
}

func TestLimitRejectsNonPositiveBudget(t *testing.T) {
	b := New(runeCounter{}, nil)

	_, _, err := b.Limit(fiveCandidates(), 0)
	assert.Error(t, err)
	_, _, err = b.Limit(fiveCandidates(), -3)
	assert.Error(t, err)
}

func TestTokenizerCountAndClose(t *testing.T) {
	tok, err := NewTokenizer()
	require.NoError(t, err)

	n, err := tok.Count(`{"routes":[],"truncated":false}`)
	require.NoError(t, err)
	assert.Greater(t, n, 0)

	tok.Close()
	_, err = tok.Count("anything")
	assert.ErrorIs(t, err, ErrTokenizerClosed)
}
