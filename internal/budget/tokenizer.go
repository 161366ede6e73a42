package budget

import (
	"errors"
	"fmt"

	"github.com/tiktoken-go/tokenizer"
)

// TokenCounter measures serialized payloads in the same units the token
// budget is advertised in. The budget is a contract, not an
// approximation, so the production counter must be the same cl100k BPE
// the callers size their limits against.
type TokenCounter interface {
	Count(text string) (int, error)
}

// ErrTokenizerClosed is returned by Count after Close.
var ErrTokenizerClosed = errors.New("budget: tokenizer closed")

// Tokenizer wraps the embedded cl100k codec. Stateless between encode
// calls, so one instance is shared across sequential requests; Close
// releases the encoding tables at shutdown.
type Tokenizer struct {
	codec tokenizer.Codec
}

// NewTokenizer loads the cl100k encoding tables.
func NewTokenizer() (*Tokenizer, error) {
	codec, err := tokenizer.Get(tokenizer.Cl100kBase)
	if err != nil {
		return nil, fmt.Errorf("budget: load cl100k codec: %w", err)
	}
	return &Tokenizer{codec: codec}, nil
}

// Count returns the number of BPE tokens in text.
func (t *Tokenizer) Count(text string) (int, error) {
	if t.codec == nil {
		return 0, ErrTokenizerClosed
	}
	ids, _, err := t.codec.Encode(text)
	if err != nil {
		return 0, fmt.Errorf("budget: encode: %w", err)
	}
	return len(ids), nil
}

// Close releases the encoding tables. Count fails afterwards.
func (t *Tokenizer) Close() {
	t.codec = nil
}
